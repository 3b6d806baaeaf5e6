package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// Ensure RateLimitedEmbedding implements the interface.
var _ driven.EmbeddingService = (*RateLimitedEmbedding)(nil)

// DefaultRateLimitBackoff is how long requests pause after the provider reports a rate limit.
const DefaultRateLimitBackoff = 30 * time.Second

// RateLimitedEmbedding throttles an embedding service with a token bucket
// and pauses all requests after the provider reports a rate limit.
type RateLimitedEmbedding struct {
	driven.EmbeddingService

	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimitedEmbedding wraps svc. A non-positive rps returns svc unchanged.
func NewRateLimitedEmbedding(svc driven.EmbeddingService, rps float64) driven.EmbeddingService {
	if svc == nil || rps <= 0 {
		return svc
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedEmbedding{
		EmbeddingService: svc,
		limiter:          rate.NewLimiter(rate.Limit(rps), burst),
		backoff:          DefaultRateLimitBackoff,
		now:              time.Now,
	}
}

// EmbedDocuments waits for a token, then delegates.
func (r *RateLimitedEmbedding) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	out, err := r.EmbeddingService.EmbedDocuments(ctx, texts)
	r.record(err)
	return out, err
}

// EmbedQuery waits for a token, then delegates.
func (r *RateLimitedEmbedding) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	out, err := r.EmbeddingService.EmbedQuery(ctx, text)
	r.record(err)
	return out, err
}

// wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by record.
func (r *RateLimitedEmbedding) wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if delay := retryAt.Sub(r.now()); delay > 0 {
		logger.Debug("embedding: backing off %s after rate limit", delay.Round(time.Millisecond))
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return errors.Join(domain.ErrEmbeddingUnavailable, ctx.Err())
		case <-t.C:
		}
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return errors.Join(domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

func (r *RateLimitedEmbedding) record(err error) {
	if !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(r.backoff)
}
