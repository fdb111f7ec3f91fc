package mcp

import (
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Repair runs the analyze pipeline.
	Repair driving.RepairService

	// Manual registers caller-supplied manuals.
	Manual driving.ManualService

	// Retrieval lists stores and searches them.
	Retrieval driving.RetrievalService

	// Planner previews the search queries for a piece of equipment.
	Planner driving.QueryPlanner
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Repair == nil {
		return ErrMissingRepairService
	}
	// Manual, Retrieval and Planner are optional.
	return nil
}
