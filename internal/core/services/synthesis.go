package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

const defaultSynthesisPrompt = `You write step-by-step repair guides for people fixing their own equipment.
Ground every step in the technical context provided. Prefer values from the context
(torque specs, part numbers, clearances) over general knowledge and never invent part numbers.
Match the depth of explanation to the user's skill level and prefer tools they already own.
Put hazards in safety_warnings and in the caution field of the step where they apply.
Respond with a JSON object only.`

var (
	stringSchema      = map[string]any{"type": "string"}
	stringArraySchema = map[string]any{"type": "array", "items": stringSchema}
)

var guideSchema = &driven.ResponseSchema{
	Name: "repair_guide",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":           stringSchema,
			"summary":         stringSchema,
			"total_time":      stringSchema,
			"difficulty":      map[string]any{"type": "string", "enum": []string{"easy", "moderate", "hard", "expert"}},
			"safety_warnings": stringArraySchema,
			"tools": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":     stringSchema,
						"purpose":  stringSchema,
						"optional": map[string]any{"type": "boolean"},
					},
					"required":             []string{"name", "purpose", "optional"},
					"additionalProperties": false,
				},
			},
			"parts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":           stringSchema,
						"part_number":    stringSchema,
						"quantity":       map[string]any{"type": "integer"},
						"estimated_cost": stringSchema,
					},
					"required":             []string{"name", "part_number", "quantity", "estimated_cost"},
					"additionalProperties": false,
				},
			},
			"steps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"number":      map[string]any{"type": "integer"},
						"title":       stringSchema,
						"instruction": stringSchema,
						"duration":    stringSchema,
						"caution":     stringSchema,
						"tip":         stringSchema,
					},
					"required":             []string{"number", "title", "instruction", "duration", "caution", "tip"},
					"additionalProperties": false,
				},
			},
		},
		"required":             domain.GuideRequiredFields,
		"additionalProperties": false,
	},
}

// SynthesisInput is everything guide synthesis is grounded on.
type SynthesisInput struct {
	Diagnosis   *domain.Diagnosis
	Context     string
	Equipment   domain.EquipmentQuery
	Preferences domain.UserPreferences
}

// GuideSynthesizer produces schema-validated repair guides.
type GuideSynthesizer struct {
	generator driven.GenerationService
	prompts   driven.PromptStore
}

// NewGuideSynthesizer creates a guide synthesizer.
func NewGuideSynthesizer(generator driven.GenerationService) *GuideSynthesizer {
	return &GuideSynthesizer{generator: generator}
}

// SetPromptStore sets the prompt store for the synthesis instruction.
func (s *GuideSynthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Synthesize makes one structured generation call and validates the result.
// A response missing required fields yields an error matching
// domain.ErrSchemaInvalid.
func (s *GuideSynthesizer) Synthesize(ctx context.Context, in SynthesisInput) (*domain.RepairGuide, error) {
	if s.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}
	logger.Debug("Synthesizing guide with %d chars of context", len(in.Context))

	resp, err := s.generator.Generate(ctx, driven.GenerateRequest{
		System:      loadPrompt(s.prompts, driven.PromptGuideSynthesis, defaultSynthesisPrompt),
		Prompt:      synthesisPrompt(in),
		Schema:      guideSchema,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("generate guide: %w", err)
	}

	guide, err := domain.DecodeRepairGuide([]byte(resp.Text))
	if err != nil {
		return nil, fmt.Errorf("validate guide: %w", err)
	}
	for i := range guide.Steps {
		guide.Steps[i].Number = i + 1
	}
	return guide, nil
}

func synthesisPrompt(in SynthesisInput) string {
	var b strings.Builder
	eq := in.Equipment

	b.WriteString("EQUIPMENT\n")
	fmt.Fprintf(&b, "Category: %s\n", eq.Category)
	writeField(&b, "Make", eq.Make)
	writeField(&b, "Model", eq.Model)
	writeField(&b, "Year", eq.Year)

	b.WriteString("\nDIAGNOSIS\n")
	if d := in.Diagnosis; d != nil {
		fmt.Fprintf(&b, "Fault: %s\n", d.Fault)
		writeField(&b, "Summary", d.Summary)
		writeField(&b, "Symptoms", strings.Join(d.Symptoms, "; "))
		writeField(&b, "Likely causes", strings.Join(d.LikelyCauses, "; "))
		writeField(&b, "Severity", d.Severity)
	}

	b.WriteString("\nUSER\n")
	skill := in.Preferences.SkillLevel
	if skill == "" {
		skill = domain.SkillBeginner
	}
	fmt.Fprintf(&b, "Skill level: %s\n", skill)
	writeField(&b, "Tools on hand", strings.Join(in.Preferences.AvailableTools, ", "))
	writeField(&b, "Budget", in.Preferences.MaxBudget)

	b.WriteString("\nTECHNICAL CONTEXT\n")
	if strings.TrimSpace(in.Context) == "" {
		b.WriteString("(none found; rely on general knowledge and say so in the summary)\n")
	} else {
		b.WriteString(in.Context)
		b.WriteString("\n")
	}
	return b.String()
}
