package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

type mockRepairService struct {
	mu      sync.Mutex
	guide   *domain.RepairGuide
	err     error
	stages  []domain.Stage
	lastReq domain.AnalyzeRequest
}

func (m *mockRepairService) Analyze(_ context.Context, req domain.AnalyzeRequest, observer driving.StageObserver) (*domain.RepairGuide, error) {
	m.mu.Lock()
	m.lastReq = req
	m.mu.Unlock()
	if observer != nil {
		for _, s := range m.stages {
			observer(domain.StageEvent{Stage: s})
		}
	}
	return m.guide, m.err
}

type mockPlanner struct {
	queries []string
	last    domain.EquipmentQuery
}

func (m *mockPlanner) Queries(q domain.EquipmentQuery) []string {
	m.last = q
	return m.queries
}

type mockManualService struct {
	result *domain.IngestionResult
	err    error
	last   driving.ManualUpload
}

func (m *mockManualService) Register(_ context.Context, upload driving.ManualUpload) (*domain.IngestionResult, error) {
	m.last = upload
	return m.result, m.err
}

type mockRetrievalService struct {
	passages  []domain.RetrievedPassage
	stores    []domain.Store
	err       error
	lastStore string
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, storeID, query string, k int) ([]domain.RetrievedPassage, error) {
	m.lastStore, m.lastQuery, m.lastK = storeID, query, k
	return m.passages, m.err
}

func (m *mockRetrievalService) Stores(_ context.Context) ([]domain.Store, error) {
	return m.stores, m.err
}

type mockSettingsService struct {
	settings      domain.Settings
	saved         *domain.Settings
	generationErr error
	embeddingErr  error
	setGeneration []string
	setEmbedding  []string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings()}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.Settings) error {
	m.settings = *s
	m.saved = s
	return nil
}

func (m *mockSettingsService) SetGenerationProvider(p domain.AIProvider, model, apiKey string) error {
	m.setGeneration = []string{string(p), model, apiKey}
	m.settings.Generation = domain.GenerationSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.setEmbedding = []string{string(p), model, apiKey}
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.Settings { return domain.DefaultSettings() }

func (m *mockSettingsService) ValidateGenerationConfig() error { return m.generationErr }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embeddingErr }

var (
	_ driving.RepairService    = (*mockRepairService)(nil)
	_ driving.QueryPlanner     = (*mockPlanner)(nil)
	_ driving.ManualService    = (*mockManualService)(nil)
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.SettingsService  = (*mockSettingsService)(nil)
)
