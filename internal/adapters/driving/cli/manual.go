package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

var (
	manualEquipment equipmentFlags
	manualTitle     string
	manualMIME      string
	manualJSON      bool
)

var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Manage user-supplied manuals",
}

var manualRegisterCmd = &cobra.Command{
	Use:   "register <file>",
	Short: "Register a manual for equipment",
	Long: `Extracts, chunks and indexes a manual (PDF, HTML, Markdown or plain text) into
a store for the given equipment. Later analyses of the same equipment retrieve
passages from it alongside crawled documentation.

Examples:
  fixpath manual register -c appliance --make Whirlpool --model WTW5000DW service.pdf
  fixpath manual register -c vehicle --make Honda --model Accord --year 2019 --title "Owner's manual" owners.pdf`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{annotationPipeline: "true"},
	RunE:        runManualRegister,
}

func init() {
	manualEquipment.bind(manualRegisterCmd)
	manualRegisterCmd.Flags().StringVar(&manualTitle, "title", "", "title shown on retrieved passages")
	manualRegisterCmd.Flags().StringVar(&manualMIME, "mime", "", "MIME type (detected from the file when empty)")
	manualRegisterCmd.Flags().BoolVar(&manualJSON, "json", false, "output the ingestion result as JSON")
	manualCmd.AddCommand(manualRegisterCmd)
	rootCmd.AddCommand(manualCmd)
}

func runManualRegister(cmd *cobra.Command, args []string) error {
	if manualService == nil {
		return errors.New("manual service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading manual: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := manualService.Register(ctx, driving.ManualUpload{
		Equipment: manualEquipment.query(),
		Title:     manualTitle,
		Source:    filepath.Base(path),
		MIMEType:  manualMIME,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("registering manual: %w", err)
	}

	if manualJSON {
		return writeStructured(cmd.OutOrStdout(), formatJSON, res)
	}
	cmd.Printf("Registered %s\n", filepath.Base(path))
	cmd.Printf("  Store:  %s\n", res.StoreID)
	cmd.Printf("  Chunks: %d\n", res.ChunksCreated)
	return nil
}
