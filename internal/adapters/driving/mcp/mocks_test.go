package mcp

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

// mockRepairService is a mock implementation of driving.RepairService.
type mockRepairService struct {
	guide  *domain.RepairGuide
	events []domain.StageEvent
	err    error

	lastRequest domain.AnalyzeRequest
}

func (m *mockRepairService) Analyze(
	_ context.Context,
	req domain.AnalyzeRequest,
	observer driving.StageObserver,
) (*domain.RepairGuide, error) {
	m.lastRequest = req
	if observer != nil {
		for _, ev := range m.events {
			observer(ev)
		}
	}
	return m.guide, m.err
}

// mockManualService is a mock implementation of driving.ManualService.
type mockManualService struct {
	result *domain.IngestionResult
	err    error

	lastUpload driving.ManualUpload
}

func (m *mockManualService) Register(_ context.Context, upload driving.ManualUpload) (*domain.IngestionResult, error) {
	m.lastUpload = upload
	return m.result, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	passages []domain.RetrievedPassage
	stores   []domain.Store
	err      error

	lastK int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _, _ string, k int) ([]domain.RetrievedPassage, error) {
	m.lastK = k
	return m.passages, m.err
}

func (m *mockRetrievalService) Stores(_ context.Context) ([]domain.Store, error) {
	return m.stores, m.err
}

// mockPlanner is a mock implementation of driving.QueryPlanner.
type mockPlanner struct {
	queries []string
}

func (m *mockPlanner) Queries(_ domain.EquipmentQuery) []string {
	return m.queries
}
