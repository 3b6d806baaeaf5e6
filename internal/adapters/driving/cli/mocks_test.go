package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/core/services"
)

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	getErr      error
	validateErr error
	pingErr     error

	embedCalls []providerCall
	llmCalls   []providerCall
}

type providerCall struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedCalls = append(m.embedCalls, providerCall{provider, model, apiKey})
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmCalls = append(m.llmCalls, providerCall{provider, model, apiKey})
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	return m.pingErr
}

func (m *mockSettingsService) ValidateLLMConfig(_ context.Context) error {
	return m.pingErr
}

// mockIngestService implements driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	err    error

	dir, index string
}

func (m *mockIngestService) Ingest(_ context.Context, knowledgeDir, indexPath string) (*domain.IngestReport, error) {
	m.dir, m.index = knowledgeDir, indexPath
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockIngestService) Watch(
	ctx context.Context,
	_, _ string,
	_ func(*domain.IngestReport, error),
) error {
	<-ctx.Done()
	return ctx.Err()
}

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct {
	hits  []domain.ScoredChunk
	lastK int
}

func (m *mockRetrievalService) Retrieve(ctx context.Context, query string, k int) []domain.Chunk {
	return domain.Chunks(m.RetrieveScored(ctx, query, k))
}

func (m *mockRetrievalService) RetrieveScored(_ context.Context, _ string, k int) []domain.ScoredChunk {
	m.lastK = k
	if k < len(m.hits) {
		return m.hits[:k]
	}
	return m.hits
}

// mockChatService implements driving.ChatService. Replies echo the question.
type mockChatService struct {
	context   []domain.ScoredChunk
	degraded  bool
	reloadErr error

	reloaded []string
}

func (m *mockChatService) Answer(
	_ context.Context,
	sessions driving.SessionStore,
	userInput string,
) (*domain.Turn, error) {
	if strings.TrimSpace(userInput) == "" {
		return nil, domain.ErrInvalidInput
	}
	reply := "echo: " + userInput
	var cause error
	if m.degraded {
		cause = domain.GenerationFailure("mock", errors.New("model down"))
		reply = domain.DefaultPersona().DegradedReply(cause)
	}
	if err := sessions.Append(domain.RoleUser, userInput); err != nil {
		return nil, err
	}
	if err := sessions.Append(domain.RoleAssistant, reply); err != nil {
		return nil, err
	}
	return &domain.Turn{
		SessionID: sessions.Active().ID,
		Question:  userInput,
		Reply:     reply,
		Context:   m.context,
		Degraded:  m.degraded,
		Cause:     cause,
	}, nil
}

func (m *mockChatService) Persona() domain.Persona {
	return domain.DefaultPersona()
}

func (m *mockChatService) Reload(_ context.Context, indexPath string) error {
	m.reloaded = append(m.reloaded, indexPath)
	return m.reloadErr
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	settings  *mockSettingsService
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	chat      *mockChatService
}

func scoredHits() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		{Chunk: domain.Chunk{Source: "cash.txt", Content: "Cash is king."}, Score: 0.92},
		{Chunk: domain.Chunk{Source: "people.txt", Content: "Hire   slow,\nfire fast."}, Score: 0.41},
		{Chunk: domain.Chunk{Source: "cash.txt", Content: "Forecast 13 weeks."}, Score: 0.40},
	}
}

// setupTestServices installs mock services and returns a cleanup func.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		settings:  newMockSettingsService(),
		ingest:    &mockIngestService{report: &domain.IngestReport{Documents: 2, Chunks: 5, Embedded: 5}},
		retrieval: &mockRetrievalService{hits: scoredHits()},
		chat:      &mockChatService{},
	}

	settingsService = ts.settings
	ingestService = ts.ingest
	retrievalService = ts.retrieval
	chatService = ts.chat
	newSessionStore = func() driving.SessionStore { return services.NewSessionStore() }

	return ts, func() {
		settingsService = nil
		ingestService = nil
		retrievalService = nil
		chatService = nil
		newSessionStore = nil
	}
}

// executeCommand runs rootCmd with args and stdin, returning combined output.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // Defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
