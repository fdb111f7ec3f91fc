package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

var storesJSON bool

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List document stores",
	Long: `Lists the document stores built by analyses and manual registrations.
With the sqlite backend stores persist between runs.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPipeline: "true"},
	RunE:        runStores,
}

func init() {
	storesCmd.Flags().BoolVar(&storesJSON, "json", false, "output stores as JSON")
	rootCmd.AddCommand(storesCmd)
}

func runStores(cmd *cobra.Command, _ []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stores, err := retrievalService.Stores(ctx)
	if err != nil {
		return fmt.Errorf("listing stores: %w", err)
	}

	if storesJSON {
		if stores == nil {
			stores = []domain.Store{}
		}
		data, err := json.MarshalIndent(stores, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stores: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(stores) == 0 {
		cmd.Println("No stores yet. Run 'fixpath analyze' or 'fixpath manual register'.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEQUIPMENT\tORIGIN\tCHUNKS\tUPDATED")
	for i := range stores {
		s := &stores[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			s.ID, s.EquipmentKey, s.Origin, s.ChunkCount, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
