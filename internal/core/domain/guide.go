package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Context coverage values recorded on the final guide.
const (
	CoverageStore    = "store"
	CoverageStoreWeb = "store+web"
	CoverageWeb      = "web"
	CoverageNone     = "none"
)

// RepairGuide is the structured repair plan returned to the caller.
//
// The first block of fields is produced by guide synthesis and validated by
// DecodeRepairGuide. The remaining fields are annotations added by the
// orchestrator afterwards.
type RepairGuide struct {
	Title          string      `json:"title" yaml:"title"`
	Summary        string      `json:"summary" yaml:"summary"`
	TotalTime      string      `json:"total_time" yaml:"total_time"`
	Difficulty     string      `json:"difficulty" yaml:"difficulty"`
	SafetyWarnings []string    `json:"safety_warnings" yaml:"safety_warnings"`
	Tools          []GuideTool `json:"tools" yaml:"tools"`
	Parts          []GuidePart `json:"parts" yaml:"parts"`
	Steps          []GuideStep `json:"steps" yaml:"steps"`

	Diagnosis       *Diagnosis `json:"diagnosis,omitempty" yaml:"diagnosis,omitempty"`
	Confidence      float64    `json:"confidence" yaml:"confidence"`
	GeneratedAt     time.Time  `json:"generated_at" yaml:"generated_at"`
	Disclaimers     []string   `json:"disclaimers" yaml:"disclaimers"`
	References      []string   `json:"references,omitempty" yaml:"references,omitempty"`
	ContextCoverage string     `json:"context_coverage" yaml:"context_coverage"`
	StoreID         string     `json:"store_id,omitempty" yaml:"store_id,omitempty"`
}

// GuideTool is a tool required by the guide.
type GuideTool struct {
	Name     string `json:"name" yaml:"name"`
	Purpose  string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// GuidePart is a replacement part required by the guide.
type GuidePart struct {
	Name          string       `json:"name" yaml:"name"`
	PartNumber    string       `json:"part_number,omitempty" yaml:"part_number,omitempty"`
	Quantity      int          `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	EstimatedCost string       `json:"estimated_cost,omitempty" yaml:"estimated_cost,omitempty"`
	Sources       []PartSource `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// Query returns the description used to search for the part.
func (p GuidePart) Query() string {
	if p.PartNumber == "" {
		return p.Name
	}
	return p.Name + " " + p.PartNumber
}

// GuideStep is a single numbered repair step.
type GuideStep struct {
	Number      int    `json:"number" yaml:"number"`
	Title       string `json:"title" yaml:"title"`
	Instruction string `json:"instruction" yaml:"instruction"`
	Duration    string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Caution     string `json:"caution,omitempty" yaml:"caution,omitempty"`
	Tip         string `json:"tip,omitempty" yaml:"tip,omitempty"`
}

// GuideRequiredFields lists the top-level keys a synthesized guide must contain.
var GuideRequiredFields = []string{
	"title", "summary", "total_time", "difficulty",
	"safety_warnings", "tools", "parts", "steps",
}

// DecodeRepairGuide parses a synthesized guide and validates it against the
// required schema. Fenced code blocks around the JSON are tolerated.
// A missing or empty required field yields a *MissingFieldError.
func DecodeRepairGuide(data []byte) (*RepairGuide, error) {
	raw := []byte(StripCodeFence(string(data)))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	for _, name := range GuideRequiredFields {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return nil, &MissingFieldError{Field: name}
		}
	}

	var guide RepairGuide
	if err := json.Unmarshal(raw, &guide); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if err := guide.Validate(); err != nil {
		return nil, err
	}
	return &guide, nil
}

// Validate checks the synthesized fields that must carry content.
func (g *RepairGuide) Validate() error {
	switch {
	case strings.TrimSpace(g.Title) == "":
		return &MissingFieldError{Field: "title"}
	case strings.TrimSpace(g.Summary) == "":
		return &MissingFieldError{Field: "summary"}
	case len(g.Steps) == 0:
		return &MissingFieldError{Field: "steps"}
	}
	for i, s := range g.Steps {
		if strings.TrimSpace(s.Instruction) == "" {
			return &MissingFieldError{Field: fmt.Sprintf("steps[%d].instruction", i)}
		}
	}
	return nil
}

// StripCodeFence removes a surrounding markdown code fence, if any.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
