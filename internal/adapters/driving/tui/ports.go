// Package tui renders the analyze pipeline's progress in the terminal.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports the progress view needs.
type Ports struct {
	// Repair runs the analysis being displayed.
	Repair driving.RepairService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Repair == nil {
		return ErrMissingRepairService
	}
	return nil
}
