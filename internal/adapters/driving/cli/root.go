// Package cli provides the cobra command tree for VerneBot.
// Commands drive the core through the driving ports; the services are
// built lazily by a bootstrap function injected from main.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driving"
	"github.com/custodia-labs/vernebot/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Root flags.
var (
	verbose    bool
	configPath string
	logFile    string
)

// Services holds the core services the commands drive.
type Services struct {
	Settings  driving.SettingsService
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Chat      driving.ChatService

	// NewSessions creates a session store for one interaction surface.
	NewSessions func() driving.SessionStore
}

// Options carries the root flags to the bootstrap.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// Progress receives ingestion progress for the terminal progress bar.
	Progress driving.IngestProgressFunc
}

// BootstrapFunc builds the services. The returned func releases them.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var bootstrap BootstrapFunc

// Services driven by the commands. Tests assign these directly.
var (
	settingsService  driving.SettingsService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	chatService      driving.ChatService
	newSessionStore  func() driving.SessionStore
)

var (
	closeServices func()
	closeLog      func() error
)

var rootCmd = &cobra.Command{
	Use:   "vernebot",
	Short: "VerneBot, a business-scaling coach grounded in your knowledge base",
	Long: `VerneBot answers questions about scaling a business using passages
retrieved from a local knowledge directory of PDF and text files.

Build the index once with 'vernebot ingest', then talk to VerneBot with
'vernebot chat', 'vernebot tui' or 'vernebot ask'.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.vernebot/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append log lines to this file")
}

// SetVersion sets the version reported by 'vernebot version'.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if logFile != "" {
		closer, err := logger.SetFile(logFile)
		if err != nil {
			return err
		}
		closeLog = closer
	}

	if bootstrap == nil {
		return nil
	}

	svc, closer, err := bootstrap(cmd.Context(), Options{
		ConfigPath: configPath,
		Progress:   progress.update,
	})
	if err != nil {
		return fmt.Errorf("starting vernebot: %w", err)
	}
	closeServices = closer
	useServices(svc)

	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closeServices != nil {
		closeServices()
		closeServices = nil
	}
	if closeLog != nil {
		err := closeLog()
		closeLog = nil
		return err
	}
	return nil
}

func useServices(svc *Services) {
	if svc == nil {
		return
	}
	settingsService = svc.Settings
	ingestService = svc.Ingest
	retrievalService = svc.Retrieval
	chatService = svc.Chat
	newSessionStore = svc.NewSessions
}

// requireValidConfig stops commands that need working providers.
func requireValidConfig() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("%w\nRun 'vernebot settings show' to review the configuration", err)
	}
	return nil
}

// loadIndex points the chat service at the persisted index.
// A missing index is not fatal: answers go out without knowledge context.
func loadIndex(cmd *cobra.Command) {
	if chatService == nil || settingsService == nil {
		return
	}
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("Reading settings: %v", err)
		return
	}
	if err := chatService.Reload(cmd.Context(), settings.Index.Path); err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			logger.Warn("No knowledge index at %s, answers will have no knowledge context. Run 'vernebot ingest' first.",
				settings.Index.Path)
			return
		}
		logger.Warn("Loading index: %v", err)
	}
}

// sessions returns a fresh session store for one command run.
func sessions() (driving.SessionStore, error) {
	if newSessionStore == nil {
		return nil, errors.New("session store not configured")
	}
	return newSessionStore(), nil
}
