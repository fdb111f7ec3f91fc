package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	queriesEquipment equipmentFlags
	queriesDiagnosis string
	queriesJSON      bool
)

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the search queries planned for equipment",
	Long: `Prints the search queries source discovery would run for the given equipment,
without calling any AI provider. Useful for checking how metadata is phrased.`,
	Args: cobra.NoArgs,
	RunE: runQueries,
}

func init() {
	queriesEquipment.bind(queriesCmd)
	queriesCmd.Flags().StringVar(&queriesDiagnosis, "diagnosis", "", "diagnosed fault to target")
	queriesCmd.Flags().BoolVar(&queriesJSON, "json", false, "output queries as JSON")
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, _ []string) error {
	if queryPlanner == nil {
		return errors.New("query planner not configured")
	}

	eq := queriesEquipment.query()
	eq.Diagnosis = queriesDiagnosis
	queries := queryPlanner.Queries(eq)
	if queries == nil {
		queries = []string{}
	}

	if queriesJSON {
		return writeStructured(cmd.OutOrStdout(), formatJSON, queries)
	}
	if len(queries) == 0 {
		cmd.Println("No queries: describe the equipment with --category, --make, --model or --year.")
		return nil
	}
	for _, q := range queries {
		cmd.Println(q)
	}
	return nil
}
