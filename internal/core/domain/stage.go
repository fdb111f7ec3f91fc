package domain

import "time"

// Stage is a state of the repair pipeline.
type Stage string

// Pipeline stages, in execution order. StageFailed is the single terminal
// failure state and may follow any other stage.
const (
	StageDiagnosing          Stage = "diagnosing"
	StageIngesting           Stage = "ingesting"
	StageEvaluatingIngestion Stage = "evaluating_ingestion"
	StageTargetedRecrawl     Stage = "targeted_recrawl"
	StageRetrieving          Stage = "retrieving"
	StageWebFallback         Stage = "web_fallback"
	StageSynthesizing        Stage = "synthesizing"
	StagePartsLookup         Stage = "parts_lookup"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// Terminal reports whether no further transitions follow s.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// StageEvent is published when the pipeline enters a stage.
type StageEvent struct {
	Stage   Stage
	Message string
	At      time.Time
}
