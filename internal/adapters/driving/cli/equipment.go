package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// equipmentFlags binds the equipment description flags shared by several commands.
type equipmentFlags struct {
	category string
	make     string
	model    string
	year     string
	symptom  string
}

func (f *equipmentFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.category, "category", "c", "",
		"equipment category (vehicle, appliance, hvac, plumbing, electrical, electronics, small_engine)")
	cmd.Flags().StringVar(&f.make, "make", "", "manufacturer, e.g. Honda")
	cmd.Flags().StringVar(&f.model, "model", "", "model name or number")
	cmd.Flags().StringVar(&f.year, "year", "", "model year")
	cmd.Flags().StringVar(&f.symptom, "symptom", "", "observed symptom")
}

func (f *equipmentFlags) query() domain.EquipmentQuery {
	return domain.EquipmentQuery{
		Category: strings.TrimSpace(f.category),
		Make:     strings.TrimSpace(f.make),
		Model:    strings.TrimSpace(f.model),
		Year:     strings.TrimSpace(f.year),
		Symptom:  strings.TrimSpace(f.symptom),
	}
}
