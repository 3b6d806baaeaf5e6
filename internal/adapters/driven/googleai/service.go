// Package googleai builds clients for the Google Generative Language API
// shared by the Gemini embedding and LLM adapters.
package googleai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// Scope is the OAuth scope used with application default credentials.
const Scope = "https://www.googleapis.com/auth/generative-language"

// Config holds connection settings for the Generative Language API.
type Config struct {
	// APIKey authenticates with an AI Studio key (GOOGLE_API_KEY).
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// TokenSource authenticates with OAuth tokens instead of an API key.
	TokenSource oauth2.TokenSource

	// HTTPClient replaces the transport entirely; no credentials are added.
	HTTPClient *http.Client
}

// findDefaultCredentials is replaced in tests.
var findDefaultCredentials = google.FindDefaultCredentials

// NewService creates a Generative Language API service.
// Credentials are chosen in order: HTTPClient, APIKey, TokenSource,
// then application default credentials.
func NewService(ctx context.Context, cfg Config) (*generativelanguage.Service, error) {
	var opts []option.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(endpoint(cfg.BaseURL)))
	}

	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.TokenSource != nil:
		opts = append(opts, option.WithTokenSource(cfg.TokenSource))
	default:
		creds, err := findDefaultCredentials(ctx, Scope)
		if err != nil {
			return nil, fmt.Errorf("gemini: no API key set and no default credentials found (set %s): %w",
				domain.AIProviderGemini.APIKeyEnv(), domain.ErrConfigInvalid)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return svc, nil
}

// ModelName returns name in the "models/<id>" form the API expects.
func ModelName(name string) string {
	if name == "" || strings.HasPrefix(name, "models/") || strings.HasPrefix(name, "tunedModels/") {
		return name
	}
	return "models/" + name
}

// endpoint ensures the base URL ends with a slash, as the generated client joins paths onto it.
func endpoint(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
