package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func TestExtractStoreID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid store URI",
			uri:      "fixpath://stores/vehicle-honda-accord-2019-ab12",
			expected: "vehicle-honda-accord-2019-ab12",
		},
		{
			name:     "invalid prefix",
			uri:      "file://stores/s1",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "fixpath://stores/s1/chunks",
			expected: "",
		},
		{
			name:     "store list URI",
			uri:      "fixpath://stores",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractStoreID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func testStores() []domain.Store {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Store{
		{ID: "s1", EquipmentKey: "vehicle-honda-accord-2019", Origin: domain.StoreOriginCrawl, ChunkCount: 12, CreatedAt: created},
		{ID: "m1", EquipmentKey: "appliance-whirlpool", Origin: domain.StoreOriginManual, ChunkCount: 40, CreatedAt: created},
	}
}

func TestServer_handleStoresResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil retrieval service returns empty list", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		result, err := server.handleStoresResource(ctx, makeReadResourceRequest("fixpath://stores"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns stores", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{stores: testStores()}})

		result, err := server.handleStoresResource(ctx, makeReadResourceRequest("fixpath://stores"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"id": "s1"`)
		assert.Contains(t, result.Contents[0].Text, `"origin": "manual"`)
		assert.Contains(t, result.Contents[0].Text, `"chunk_count": 40`)
	})

	t.Run("empty store list", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{}})

		result, err := server.handleStoresResource(ctx, makeReadResourceRequest("fixpath://stores"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{err: errors.New("database error")}})

		_, err := server.handleStoresResource(ctx, makeReadResourceRequest("fixpath://stores"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing stores")
	})
}

func TestServer_handleStoreResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil retrieval service returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{})

		_, err := server.handleStoreResource(ctx, makeReadResourceRequest("fixpath://stores/s1"))

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{stores: testStores()}})

		_, err := server.handleStoreResource(ctx, makeReadResourceRequest("fixpath://invalid/uri"))

		require.Error(t, err)
	})

	t.Run("unknown store returns not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{stores: testStores()}})

		_, err := server.handleStoreResource(ctx, makeReadResourceRequest("fixpath://stores/missing"))

		require.Error(t, err)
	})

	t.Run("returns the store", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{stores: testStores()}})

		result, err := server.handleStoreResource(ctx, makeReadResourceRequest("fixpath://stores/m1"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"id": "m1"`)
		assert.NotContains(t, result.Contents[0].Text, `"id": "s1"`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server := newTestServer(t, &Ports{Retrieval: &mockRetrievalService{err: errors.New("database error")}})

		_, err := server.handleStoreResource(ctx, makeReadResourceRequest("fixpath://stores/s1"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing stores")
	})
}
