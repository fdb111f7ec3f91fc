package driving

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// StageObserver receives pipeline stage transitions. It is called
// synchronously from the pipeline goroutine and must not block.
type StageObserver func(domain.StageEvent)

// RepairService runs the full diagnose-then-repair pipeline.
type RepairService interface {
	// Analyze diagnoses an equipment issue and returns a repair guide.
	// Fatal failures are returned as *domain.StageError naming the stage.
	// The observer may be nil.
	Analyze(ctx context.Context, req domain.AnalyzeRequest, observer StageObserver) (*domain.RepairGuide, error)
}

// QueryPlanner turns equipment metadata into search queries.
type QueryPlanner interface {
	// Queries returns the deduplicated search queries for the equipment.
	Queries(q domain.EquipmentQuery) []string
}
