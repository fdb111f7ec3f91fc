// Package messages defines Bubbletea message types for the terminal views.
package messages

import (
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// StageChanged is sent when the pipeline enters a stage.
type StageChanged struct {
	Event domain.StageEvent
}

// AnalysisDone carries the pipeline result back to the model.
type AnalysisDone struct {
	Guide *domain.RepairGuide
	Err   error
}
