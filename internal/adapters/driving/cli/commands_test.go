package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func TestQueriesCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.planner.queries = []string{"2019 Honda Accord repair manual", "2019 Honda Accord clicking"}

	stdout, _, err := runCommand(t, "", "queries", "-c", "vehicle", "--make", "Honda",
		"--model", "Accord", "--year", "2019", "--diagnosis", "CV joint")
	require.NoError(t, err)
	assert.Equal(t, "2019 Honda Accord repair manual\n2019 Honda Accord clicking\n", stdout)
	assert.Equal(t, "CV joint", ts.planner.last.Diagnosis)
	assert.Equal(t, "Accord", ts.planner.last.Model)

	stdout, _, err = runCommand(t, "", "queries", "--make", "Honda", "--json")
	require.NoError(t, err)
	var got []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Len(t, got, 2)

	ts.planner.queries = nil
	stdout, _, err = runCommand(t, "", "queries")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No queries")
}

func TestManualRegisterCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.manual.result = &domain.IngestionResult{Success: true, StoreID: "manual-1", ChunksCreated: 12}

	path := filepath.Join(t.TempDir(), "service.md")
	require.NoError(t, os.WriteFile(path, []byte("# Service manual"), 0o600))

	stdout, _, err := runCommand(t, "", "manual", "register", "-c", "appliance", "--make", "Whirlpool",
		"--title", "Service manual", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Store:  manual-1")
	assert.Contains(t, stdout, "Chunks: 12")

	up := ts.manual.last
	assert.Equal(t, "service.md", up.Source)
	assert.Equal(t, "Service manual", up.Title)
	assert.Equal(t, "Whirlpool", up.Equipment.Make)
	assert.Equal(t, []byte("# Service manual"), up.Content)
}

func TestManualRegisterCmd_Errors(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := runCommand(t, "", "manual", "register", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manual")

	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	ts.manual.err = domain.ErrContentTooShort
	_, _, err = runCommand(t, "", "manual", "register", path)
	assert.ErrorIs(t, err, domain.ErrContentTooShort)
}

func TestStoresCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := runCommand(t, "", "stores")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No stores yet")

	now := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)
	ts.retrieval.stores = []domain.Store{
		{ID: "store-1", EquipmentKey: "vehicle-honda-accord-2019", Origin: domain.StoreOriginCrawl, ChunkCount: 42, UpdatedAt: now},
		{ID: "manual-1", EquipmentKey: "appliance-whirlpool", Origin: domain.StoreOriginManual, ChunkCount: 7, UpdatedAt: now},
	}
	stdout, _, err = runCommand(t, "", "stores")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "EQUIPMENT")
	assert.Contains(t, lines[1], "vehicle-honda-accord-2019")
	assert.Contains(t, lines[2], "manual")

	stdout, _, err = runCommand(t, "", "stores", "--json")
	require.NoError(t, err)
	var got []domain.Store
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Len(t, got, 2)

	ts.retrieval.err = errors.New("db closed")
	_, _, err = runCommand(t, "", "stores")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing stores")
}

func TestDoctorCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := runCommand(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "All providers are reachable.")
	assert.Equal(t, 2, strings.Count(stdout, "OK"))

	ts.settings.embeddingErr = domain.ErrEmbeddingUnavailable
	ts.settings.settings.Generation.Provider = domain.AIProviderOpenAI
	stdout, _, err = runCommand(t, "", "doctor")
	require.Error(t, err)
	assert.Contains(t, stdout, "FAILED")
	assert.Contains(t, stdout, "needs Gemini")
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Generation.APIKey = "AIzaSyExampleKey1234"
	ts.settings.settings.Store = domain.StoreSettings{Backend: domain.StoreBackendSQLite, Path: "/data/fixpath"}

	stdout, _, err := runCommand(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[Generation]")
	assert.Contains(t, stdout, "API Key: AIza...1234")
	assert.Contains(t, stdout, "[Embedding]")
	assert.Contains(t, stdout, "API Key: (not set)")
	assert.Contains(t, stdout, "Backend: sqlite")
	assert.Contains(t, stdout, "Path: /data/fixpath")
	assert.Contains(t, stdout, "[Pipeline]")
	assert.Contains(t, stdout, "settings wizard")
	assert.NotContains(t, stdout, "[Search]")
}

func TestSettingsShowCmd_ProgrammableSearch(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.Search = domain.SearchSettings{APIKey: "AIzaSySearchKey98765", EngineID: "0123abc"}

	stdout, _, err := runCommand(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[Search]")
	assert.Contains(t, stdout, "Programmable Search engine: 0123abc")
	assert.Contains(t, stdout, "API Key: AIza...8765")
}

func TestSettingsGenerationCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := runCommand(t, "2\n\nsk-test-key-123456\n", "settings", "generation")
	require.NoError(t, err)
	assert.Equal(t, []string{"openai", "gpt-4o-mini", "sk-test-key-123456"}, ts.settings.setGeneration)
	assert.Contains(t, stdout, "Validating configuration... OK")
	assert.Contains(t, stdout, "Generation provider configured: OpenAI (cloud) (gpt-4o-mini)")
}

func TestSettingsEmbeddingCmd_ValidationFails(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.embeddingErr = errors.New("connection refused")

	stdout, _, err := runCommand(t, "3\nmxbai-embed-large\n", "settings", "embedding")
	require.Error(t, err)
	assert.Equal(t, []string{"ollama", "mxbai-embed-large", ""}, ts.settings.setEmbedding)
	assert.Contains(t, stdout, "FAILED: connection refused")
}

func TestSettingsEmbeddingCmd_MissingAPIKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := runCommand(t, "1\n\n\n", "settings", "embedding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestSettingsWizardCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	input := "1\n\nAIzaSyKey12345678\n3\n\n2\n"
	stdout, _, err := runCommand(t, input, "settings", "wizard")
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "gemini-2.5-flash", "AIzaSyKey12345678"}, ts.settings.setGeneration)
	assert.Equal(t, []string{"ollama", "nomic-embed-text", ""}, ts.settings.setEmbedding)
	assert.Equal(t, domain.StoreBackendSQLite, ts.settings.settings.Store.Backend)
	assert.Contains(t, stdout, "Configuration Complete!")
}

func TestSettingsStoreCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	stdout, _, err := runCommand(t, "", "settings", "store", "SQLite", "--path", "/tmp/fixpath-data")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Chunk store set to: sqlite")
	require.NotNil(t, ts.settings.saved)
	assert.Equal(t, "/tmp/fixpath-data", ts.settings.saved.Store.Path)

	_, _, err = runCommand(t, "", "settings", "store", "redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}
