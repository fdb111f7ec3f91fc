package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, the chunk store and pipeline settings.

Use subcommands to configure specific settings or run the interactive wizard.
Pipeline thresholds are edited directly in config.toml under [pipeline].`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the AI providers and chunk store step by step.`,
	RunE:  runSettingsWizard,
}

var settingsGenerationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Configure generation provider",
	Long: `Configure the provider used for diagnosis, source discovery and guide writing.
Web-grounded search requires Google Gemini.`,
	RunE: runSettingsGeneration,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and retrieve passages.`,
	RunE:  runSettingsEmbedding,
}

var settingsStoreCmd = &cobra.Command{
	Use:   "store <memory|sqlite>",
	Short: "Select the chunk store backend",
	Long: `Select where indexed passages are kept.

  memory - discarded when the process exits (default)
  sqlite - persisted to chunks.db in the data directory so stores and manuals survive restarts`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsStore,
}

var settingsStorePath string

func init() {
	settingsStoreCmd.Flags().StringVar(&settingsStorePath, "path", "", "data directory for the sqlite backend")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsStoreCmd)
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

	// Generation settings
	cmd.Println("[Generation]")
	cmd.Printf("  Provider: %s\n", settings.Generation.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Generation.Model)
	if settings.Generation.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Generation.BaseURL)
	}
	printAPIKey(cmd, settings.Generation.Provider, settings.Generation.APIKey)
	printStatus(cmd, settings.Generation.IsConfigured())
	if !settings.Generation.Provider.SupportsGrounding() {
		cmd.Println("  Note: web-grounded source discovery needs Gemini; only registered manuals will be searched.")
	}
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() || settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	// Store settings
	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.Backend == domain.StoreBackendSQLite && settings.Store.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Store.Path)
	}
	if settings.PromptsDir != "" {
		cmd.Printf("  Prompts: %s\n", settings.PromptsDir)
	}
	cmd.Println()

	if settings.Search.IsConfigured() {
		cmd.Println("[Search]")
		cmd.Printf("  Programmable Search engine: %s\n", settings.Search.EngineID)
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Search.APIKey))
		cmd.Println()
	}

	// Pipeline settings
	p := settings.Pipeline
	cmd.Println("[Pipeline]")
	cmd.Printf("  Crawl targets: %d    Fetch timeout: %s    Per-host rate: %.1f/s\n",
		p.MaxCrawlTargets, p.FetchTimeout, p.PerHostRate)
	cmd.Printf("  Chunk size: %d    Overlap: %d words    Top K: %d    Min score: %.2f\n",
		p.ChunkSize, p.OverlapWords, p.RetrievalTopK, p.MinRetrievalScore)
	cmd.Printf("  Min chunks: %d    Timeout: %s\n", p.MinChunksThreshold, p.PipelineTimeout)
	cmd.Println()

	if settings.Generation.IsConfigured() && settings.Embedding.IsConfigured() {
		cmd.Println("Configuration is complete. Run 'fixpath doctor' to check the providers respond.")
	} else {
		cmd.Println("Run 'fixpath settings wizard' to finish configuration.")
	}

	return nil
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("fixpath Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Generation provider
	cmd.Println("Step 1: Configure Generation Provider")
	cmd.Println("-------------------------------------")
	cmd.Println("Used for diagnosis, source discovery and writing repair guides.")
	cmd.Println()
	if err := configureGenerationProvider(cmd, reader); err != nil {
		return err
	}

	// Step 2: Embedding provider
	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Used to index and retrieve documentation passages.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 3: Store backend
	cmd.Println("Step 3: Select Chunk Store")
	cmd.Println("--------------------------")
	backends := []domain.StoreBackend{domain.StoreBackendMemory, domain.StoreBackendSQLite}
	cmd.Println("  1. memory (nothing kept between runs)")
	cmd.Println("  2. sqlite (stores and manuals persist)")
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(backends), 1)
	if err := setStoreBackend(backends[idx-1], ""); err != nil {
		return err
	}
	cmd.Printf("Chunk store set to: %s\n\n", backends[idx-1])

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("All settings are saved.")

	return nil
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureGenerationProvider(cmd, reader)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsStore(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.StoreBackend(strings.ToLower(strings.TrimSpace(args[0])))
	if !backend.IsValid() {
		return fmt.Errorf("unknown store backend %q (want memory or sqlite)", args[0])
	}
	if err := setStoreBackend(backend, settingsStorePath); err != nil {
		return err
	}
	cmd.Printf("Chunk store set to: %s\n", backend)
	return nil
}

func setStoreBackend(backend domain.StoreBackend, path string) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	settings.Store.Backend = backend
	if path != "" {
		settings.Store.Path = path
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// providerPrompt describes one provider configuration flow.
type providerPrompt struct {
	kind      string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string, string) error
	validate  func() error
}

func configureGenerationProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return configureProvider(cmd, reader, providerPrompt{
		kind:      "generation",
		providers: domain.AllGenerationProviders(),
		defaults:  domain.DefaultGenerationModels(),
		set:       settingsService.SetGenerationProvider,
		validate:  settingsService.ValidateGenerationConfig,
	})
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	return configureProvider(cmd, reader, providerPrompt{
		kind:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	})
}

func configureProvider(cmd *cobra.Command, reader *bufio.Reader, p providerPrompt) error {
	cmd.Printf("Select %s provider\n", p.kind)
	for i, prov := range p.providers {
		cmd.Printf("  %d. %s\n", i+1, prov.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(p.providers), 1)
	selectedProvider := p.providers[idx-1]

	// Get model
	defaultModel := p.defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := p.set(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", p.kind, err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := p.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", p.kind, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n\n",
		strings.ToUpper(p.kind[:1])+p.kind[1:], selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal and falls back to
// the buffered reader otherwise.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
