package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// defaultSearchLimit is used when search_store is called without a limit.
const defaultSearchLimit = 8

// EquipmentInput identifies the equipment under repair.
type EquipmentInput struct {
	Category string `json:"category" jsonschema:"equipment category: vehicle, appliance, hvac, plumbing, electrical, electronics, small_engine or any other"`
	Make     string `json:"make,omitempty" jsonschema:"manufacturer, e.g. Honda"`
	Model    string `json:"model,omitempty" jsonschema:"model name or number"`
	Year     string `json:"year,omitempty" jsonschema:"model year"`
	Symptom  string `json:"symptom,omitempty" jsonschema:"observed symptom, e.g. clicking when turning"`
}

func (e EquipmentInput) query() domain.EquipmentQuery {
	return domain.EquipmentQuery{
		Category: strings.TrimSpace(e.Category),
		Make:     strings.TrimSpace(e.Make),
		Model:    strings.TrimSpace(e.Model),
		Year:     strings.TrimSpace(e.Year),
		Symptom:  strings.TrimSpace(e.Symptom),
	}
}

// MediaInput is a photo, audio clip or video of the fault.
type MediaInput struct {
	Name     string `json:"name,omitempty" jsonschema:"original file name"`
	MimeType string `json:"mime_type" jsonschema:"MIME type such as image/jpeg or audio/wav"`
	Data     string `json:"data" jsonschema:"base64-encoded file content"`
}

// AnalyzeInput is the input schema for the analyze_equipment tool.
type AnalyzeInput struct {
	Description    string         `json:"description,omitempty" jsonschema:"free-text description of the problem"`
	Equipment      EquipmentInput `json:"equipment" jsonschema:"the equipment being repaired"`
	Media          []MediaInput   `json:"media,omitempty" jsonschema:"photos, audio or video of the fault"`
	SkillLevel     string         `json:"skill_level,omitempty" jsonschema:"beginner, intermediate or advanced"`
	AvailableTools []string       `json:"available_tools,omitempty" jsonschema:"tools the user already owns"`
	MaxBudget      string         `json:"max_budget,omitempty" jsonschema:"spending limit for parts"`
	Location       string         `json:"location,omitempty" jsonschema:"where the user buys parts, e.g. United Kingdom"`
}

// GuideOutput is the output schema for the analyze_equipment tool.
type GuideOutput struct {
	Title           string             `json:"title"`
	Summary         string             `json:"summary"`
	TotalTime       string             `json:"total_time"`
	Difficulty      string             `json:"difficulty"`
	SafetyWarnings  []string           `json:"safety_warnings"`
	Tools           []domain.GuideTool `json:"tools"`
	Parts           []domain.GuidePart `json:"parts"`
	Steps           []domain.GuideStep `json:"steps"`
	Diagnosis       *domain.Diagnosis  `json:"diagnosis,omitempty"`
	Confidence      float64            `json:"confidence"`
	GeneratedAt     string             `json:"generated_at"`
	Disclaimers     []string           `json:"disclaimers"`
	References      []string           `json:"references,omitempty"`
	ContextCoverage string             `json:"context_coverage"`
	StoreID         string             `json:"store_id,omitempty"`
}

// RegisterManualInput is the input schema for the register_manual tool.
type RegisterManualInput struct {
	Equipment     EquipmentInput `json:"equipment" jsonschema:"the equipment the manual covers"`
	Title         string         `json:"title,omitempty" jsonschema:"title shown on retrieved passages"`
	Source        string         `json:"source,omitempty" jsonschema:"file name or URL the manual came from"`
	MimeType      string         `json:"mime_type,omitempty" jsonschema:"application/pdf, text/html, text/markdown or text/plain"`
	Content       string         `json:"content,omitempty" jsonschema:"manual text"`
	ContentBase64 string         `json:"content_base64,omitempty" jsonschema:"base64-encoded manual file, used for PDFs"`
}

// IngestionOutput is the output schema for the register_manual tool.
type IngestionOutput struct {
	StoreID       string   `json:"store_id"`
	Success       bool     `json:"success"`
	ChunksCreated int      `json:"chunks_created"`
	Errors        []string `json:"errors,omitempty"`
}

// SearchStoreInput is the input schema for the search_store tool.
type SearchStoreInput struct {
	StoreID string `json:"store_id" jsonschema:"store to search, see fixpath://stores"`
	Query   string `json:"query" jsonschema:"what to look for"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum passages to return (default 8)"`
}

// SearchStoreOutput is the output schema for the search_store tool.
type SearchStoreOutput struct {
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput is a single retrieved passage.
type PassageOutput struct {
	URL    string  `json:"url"`
	Title  string  `json:"title,omitempty"`
	Source string  `json:"source,omitempty"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// PlanQueriesInput is the input schema for the plan_queries tool.
type PlanQueriesInput struct {
	Equipment EquipmentInput `json:"equipment" jsonschema:"the equipment to plan searches for"`
}

// PlanQueriesOutput is the output schema for the plan_queries tool.
type PlanQueriesOutput struct {
	Queries []string `json:"queries"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_equipment",
		Description: "Diagnose an equipment fault from a description and optional media, then return a step-by-step repair guide",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "register_manual",
		Description: "Index a service manual so later analyses of the same equipment retrieve from it",
	}, s.handleRegisterManual)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_store",
		Description: "Search a repair documentation store for passages relevant to a query",
	}, s.handleSearchStore)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "plan_queries",
		Description: "Preview the web search queries fixpath would run for a piece of equipment",
	}, s.handlePlanQueries)
}

// handleAnalyze handles the analyze_equipment tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeInput,
) (*mcp.CallToolResult, GuideOutput, error) {
	media, err := decodeMedia(input.Media)
	if err != nil {
		return nil, GuideOutput{}, err
	}

	req := domain.AnalyzeRequest{
		Media:       media,
		Description: strings.TrimSpace(input.Description),
		Equipment:   input.Equipment.query(),
		Preferences: domain.UserPreferences{
			SkillLevel:     input.SkillLevel,
			AvailableTools: input.AvailableTools,
			MaxBudget:      input.MaxBudget,
		},
		Location: input.Location,
	}

	guide, err := s.ports.Repair.Analyze(ctx, req, func(ev domain.StageEvent) {
		logger.With("stage", ev.Stage).Debug("mcp analyze: %s", ev.Message)
	})
	if err != nil {
		return nil, GuideOutput{}, err
	}
	return nil, guideOutput(guide), nil
}

// handleRegisterManual handles the register_manual tool invocation.
func (s *Server) handleRegisterManual(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RegisterManualInput,
) (*mcp.CallToolResult, IngestionOutput, error) {
	if s.ports.Manual == nil {
		return nil, IngestionOutput{}, fmt.Errorf("register_manual: %w", ErrUnavailable)
	}

	content := []byte(input.Content)
	if input.ContentBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(input.ContentBase64)
		if err != nil {
			return nil, IngestionOutput{}, fmt.Errorf("%w: content_base64: %v", domain.ErrInvalidInput, err)
		}
		content = decoded
	}

	result, err := s.ports.Manual.Register(ctx, driving.ManualUpload{
		Equipment: input.Equipment.query(),
		Title:     input.Title,
		Source:    input.Source,
		MIMEType:  input.MimeType,
		Content:   content,
	})
	if err != nil {
		return nil, IngestionOutput{}, err
	}

	return nil, IngestionOutput{
		StoreID:       result.StoreID,
		Success:       result.Success,
		ChunksCreated: result.ChunksCreated,
		Errors:        result.Errors,
	}, nil
}

// handleSearchStore handles the search_store tool invocation.
func (s *Server) handleSearchStore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchStoreInput,
) (*mcp.CallToolResult, SearchStoreOutput, error) {
	if s.ports.Retrieval == nil {
		return nil, SearchStoreOutput{}, fmt.Errorf("search_store: %w", ErrUnavailable)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	passages, err := s.ports.Retrieval.Retrieve(ctx, input.StoreID, input.Query, limit)
	if err != nil {
		return nil, SearchStoreOutput{}, err
	}

	output := SearchStoreOutput{
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i := range passages {
		p := &passages[i]
		output.Passages[i] = PassageOutput{
			URL:    p.URL,
			Title:  p.Chunk.Metadata.Title,
			Source: p.Chunk.Metadata.Source,
			Text:   p.Chunk.Text,
			Score:  p.Score,
		}
	}
	return nil, output, nil
}

// handlePlanQueries handles the plan_queries tool invocation.
func (s *Server) handlePlanQueries(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PlanQueriesInput,
) (*mcp.CallToolResult, PlanQueriesOutput, error) {
	if s.ports.Planner == nil {
		return nil, PlanQueriesOutput{}, fmt.Errorf("plan_queries: %w", ErrUnavailable)
	}
	queries := s.ports.Planner.Queries(input.Equipment.query())
	if queries == nil {
		queries = []string{}
	}
	return nil, PlanQueriesOutput{Queries: queries}, nil
}

func decodeMedia(inputs []MediaInput) ([]domain.MediaPart, error) {
	parts := make([]domain.MediaPart, 0, len(inputs))
	for i, in := range inputs {
		if in.MimeType == "" {
			return nil, fmt.Errorf("%w: media[%d] has no mime_type", domain.ErrInvalidInput, i)
		}
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: media[%d]: %v", domain.ErrInvalidInput, i, err)
		}
		parts = append(parts, domain.MediaPart{Name: in.Name, MimeType: in.MimeType, Data: data})
	}
	return parts, nil
}

func guideOutput(g *domain.RepairGuide) GuideOutput {
	return GuideOutput{
		Title:           g.Title,
		Summary:         g.Summary,
		TotalTime:       g.TotalTime,
		Difficulty:      g.Difficulty,
		SafetyWarnings:  nonNil(g.SafetyWarnings),
		Tools:           nonNil(g.Tools),
		Parts:           nonNil(g.Parts),
		Steps:           nonNil(g.Steps),
		Diagnosis:       g.Diagnosis,
		Confidence:      g.Confidence,
		GeneratedAt:     g.GeneratedAt.Format(time.RFC3339),
		Disclaimers:     nonNil(g.Disclaimers),
		References:      g.References,
		ContextCoverage: g.ContextCoverage,
		StoreID:         g.StoreID,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
