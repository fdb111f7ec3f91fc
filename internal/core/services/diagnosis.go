package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

const defaultDiagnosisPrompt = `You are an experienced repair technician.
Diagnose the most likely fault from the user's description and any attached photos, audio or video.
Be specific about the failing component. List the observable symptoms you relied on.
Report your confidence between 0 and 1; lower it when the evidence is ambiguous.
Respond with a JSON object only.`

var diagnosisSchema = &driven.ResponseSchema{
	Name: "diagnosis",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fault":         map[string]any{"type": "string", "description": "the failing component and failure mode"},
			"summary":       map[string]any{"type": "string"},
			"symptoms":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"likely_causes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"severity":      map[string]any{"type": "string", "enum": []string{"low", "medium", "high", "critical"}},
			"confidence":    map[string]any{"type": "number"},
		},
		"required":             []string{"fault", "summary", "symptoms", "likely_causes", "severity", "confidence"},
		"additionalProperties": false,
	},
}

// Diagnoser runs the multimodal diagnosis call.
type Diagnoser struct {
	generator driven.GenerationService
	prompts   driven.PromptStore
}

// NewDiagnoser creates a diagnoser.
func NewDiagnoser(generator driven.GenerationService) *Diagnoser {
	return &Diagnoser{generator: generator}
}

// SetPromptStore sets the prompt store for the diagnosis instruction.
func (d *Diagnoser) SetPromptStore(store driven.PromptStore) {
	d.prompts = store
}

// Diagnose returns the structured diagnosis for a request.
// A response without a fault is domain.ErrNoDiagnosis.
func (d *Diagnoser) Diagnose(ctx context.Context, req domain.AnalyzeRequest) (*domain.Diagnosis, error) {
	if d.generator == nil {
		return nil, domain.ErrGenerationUnavailable
	}
	logger.Debug("Diagnosing %s with %d media parts", req.Equipment, len(req.Media))

	resp, err := d.generator.Generate(ctx, driven.GenerateRequest{
		System:      loadPrompt(d.prompts, driven.PromptDiagnosis, defaultDiagnosisPrompt),
		Prompt:      diagnosisPrompt(req),
		Media:       req.Media,
		Schema:      diagnosisSchema,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("generate diagnosis: %w", err)
	}

	var diag domain.Diagnosis
	if err := json.Unmarshal([]byte(domain.StripCodeFence(resp.Text)), &diag); err != nil {
		return nil, fmt.Errorf("%w: decode diagnosis: %v", domain.ErrSchemaInvalid, err)
	}
	diag.Fault = strings.TrimSpace(diag.Fault)
	if !diag.Valid() {
		return nil, domain.ErrNoDiagnosis
	}
	diag.Confidence = min(max(diag.Confidence, 0), 1)
	logger.Info("Diagnosis: %s (confidence %.2f)", diag.Fault, diag.Confidence)
	return &diag, nil
}

func diagnosisPrompt(req domain.AnalyzeRequest) string {
	var b strings.Builder
	eq := req.Equipment
	fmt.Fprintf(&b, "Equipment category: %s\n", eq.Category)
	writeField(&b, "Make", eq.Make)
	writeField(&b, "Model", eq.Model)
	writeField(&b, "Year", eq.Year)
	writeField(&b, "Reported symptom", eq.Symptom)
	writeField(&b, "Description", req.Description)
	if len(req.Media) > 0 {
		fmt.Fprintf(&b, "Attached media: %d file(s)\n", len(req.Media))
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

// loadPrompt loads a named prompt, falling back when no store is set or the
// prompt is missing.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	p, err := store.Load(name)
	if err != nil || p == "" {
		return fallback
	}
	return p
}

// DefaultPrompts returns the built-in templates for the prompts owned by
// the core services, keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptDiagnosis:      defaultDiagnosisPrompt,
		driven.PromptDistill:        defaultDistillPrompt,
		driven.PromptGuideSynthesis: defaultSynthesisPrompt,
		driven.PromptWebFallback:    defaultWebFallbackPrompt,
	}
}
