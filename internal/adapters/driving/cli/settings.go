package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the knowledge directory, AI providers and chat options.

Settings are read from ~/.vernebot/config.toml. API keys may also come from
GOOGLE_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY, or a .env file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "set-embedding [provider]",
	Short: "Configure embedding provider",
	Long: `Configure the provider used to embed knowledge chunks and queries.

Without a provider argument, a menu is shown. Changing the embedding
provider or model requires re-running 'vernebot ingest'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "set-llm [provider]",
	Short: "Configure LLM provider",
	Long: `Configure the provider that generates VerneBot's replies.

Without a provider argument, a menu is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().String("model", "", "model name (default depends on provider)")
		c.Flags().String("api-key", "", "provider API key")
		c.Flags().Bool("no-validate", false, "skip the connectivity check")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Knowledge]")
	cmd.Printf("  Directory: %s\n", settings.Knowledge.Dir)
	cmd.Printf("  Include: %s\n", strings.Join(settings.Knowledge.Include, ", "))
	cmd.Printf("  Index: %s\n", settings.Index.Path)
	cmd.Printf("  Chunking: %d runes, %d overlap\n", settings.Chunking.Size, settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Passages per turn: %d\n", settings.Chat.TopK)
	cmd.Printf("  History window: %d messages\n", settings.Chat.HistoryWindow)
	cmd.Printf("  Timeout: %s\n", settings.Chat.Timeout)
	cmd.Printf("  Max tokens: %d\n", settings.Chat.MaxTokens)
	cmd.Printf("  Temperature: %.2f\n", settings.Chat.Temperature)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	printProviderAccess(cmd, settings.Embedding.Provider, settings.Embedding.BaseURL, settings.Embedding.APIKey)
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	cmd.Printf("  Requests per second: %g\n", settings.Embedding.RequestsPerSecond)
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	printProviderAccess(cmd, settings.LLM.Provider, settings.LLM.BaseURL, settings.LLM.APIKey)
	status = "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'vernebot settings set-embedding' or 'vernebot settings set-llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProviderAccess(cmd *cobra.Command, provider domain.AIProvider, baseURL, apiKey string) {
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.APIKeyEnv() == "" {
		return
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	} else {
		cmd.Printf("  API Key: (not set, %s)\n", provider.APIKeyEnv())
	}
}

//nolint:dupl // Mirrors runSettingsLLM
func runSettingsEmbedding(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := chooseProvider(cmd, reader, args, "Embedding", domain.AllEmbeddingProviders(),
		domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if !choice.skipValidation {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", choice.provider.Description(), choice.modelOrDefault())
	cmd.Println("Run 'vernebot ingest' to rebuild the index with the new embeddings.")
	return nil
}

//nolint:dupl // Mirrors runSettingsEmbedding
func runSettingsLLM(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	choice, err := chooseProvider(cmd, reader, args, "LLM", domain.AllLLMProviders(),
		domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !choice.skipValidation {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateLLMConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", choice.provider.Description(), choice.modelOrDefault())
	return nil
}

// providerChoice is the outcome of a set-embedding or set-llm prompt.
type providerChoice struct {
	provider       domain.AIProvider
	model          string
	defaultModel   string
	apiKey         string
	skipValidation bool
}

func (c providerChoice) modelOrDefault() string {
	if c.model != "" {
		return c.model
	}
	return c.defaultModel
}

// chooseProvider takes the provider from args or a menu, then the model and
// API key from flags or prompts. Prompts are only shown when a menu was used
// or stdin is a terminal.
func chooseProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	args []string,
	kind string,
	providers []domain.AIProvider,
	defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	var choice providerChoice
	var err error

	choice.model, err = cmd.Flags().GetString("model")
	if err != nil {
		return choice, err
	}
	choice.apiKey, err = cmd.Flags().GetString("api-key")
	if err != nil {
		return choice, err
	}
	choice.skipValidation, err = cmd.Flags().GetBool("no-validate")
	if err != nil {
		return choice, err
	}

	interactive := len(args) == 0
	if interactive {
		cmd.Printf("Select %s Provider\n", kind)
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		idx := parseChoice(readLine(reader), len(providers), 1)
		choice.provider = providers[idx-1]
	} else {
		choice.provider = domain.AIProvider(strings.ToLower(args[0]))
		if !slices.Contains(providers, choice.provider) {
			return choice, fmt.Errorf("%w: unknown provider %q (choose from %s)",
				domain.ErrInvalidInput, args[0], providerNames(providers))
		}
	}
	choice.defaultModel = defaults[choice.provider]

	if interactive && choice.model == "" {
		cmd.Printf("Enter model name [%s]: ", choice.defaultModel)
		choice.model = readLine(reader)
	}

	needsKey := choice.provider.RequiresAPIKey() &&
		choice.apiKey == "" &&
		os.Getenv(choice.provider.APIKeyEnv()) == ""
	if needsKey && (interactive || stdinIsTerminal(cmd.InOrStdin())) {
		cmd.Print("Enter API key: ")
		choice.apiKey = readPassword(reader)
		cmd.Println()
		if choice.apiKey == "" {
			return choice, errors.New("API key is required for this provider")
		}
	}

	return choice, nil
}

func providerNames(providers []domain.AIProvider) string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a line without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	return readLine(reader)
}

func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
