package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured providers respond",
	Long: `Pings the generation and embedding providers with the saved settings and
reports which are reachable. Exits non-zero when either check fails.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	failed := false
	check := func(name, detail string, validate func() error) {
		cmd.Printf("%-11s %s ... ", name, detail)
		if err := validate(); err != nil {
			failed = true
			cmd.Printf("FAILED: %v\n", err)
			return
		}
		cmd.Println("OK")
	}

	check("Generation", settings.Generation.Provider.Description()+" "+settings.Generation.Model,
		settingsService.ValidateGenerationConfig)
	check("Embedding", settings.Embedding.Provider.Description()+" "+settings.Embedding.Model,
		settingsService.ValidateEmbeddingConfig)
	if !settings.Generation.Provider.SupportsGrounding() {
		cmd.Println("Note: web-grounded source discovery needs Gemini; only registered manuals will be searched.")
	}

	printWarnings(cmd)

	if failed {
		return errors.New("one or more providers failed; run 'fixpath settings wizard'")
	}
	cmd.Println("All providers are reachable.")
	return nil
}
