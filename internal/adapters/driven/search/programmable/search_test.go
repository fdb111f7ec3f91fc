package programmable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

func newTestSearch(t *testing.T, handler http.HandlerFunc, maxResults int) *Search {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := New(context.Background(), Config{
		APIKey:     "test-key",
		EngineID:   "engine-1",
		BaseURL:    server.URL,
		MaxResults: maxResults,
	})
	require.NoError(t, err)
	return s
}

func TestNew_RequiresKeyAndEngine(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: "k"})
	assert.Error(t, err)
	_, err = New(context.Background(), Config{EngineID: "cx"})
	assert.Error(t, err)

	s, err := New(context.Background(), Config{APIKey: "k", EngineID: "cx", MaxResults: 50})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, s.maxResults)
}

func TestSearch_ReturnsRankedHits(t *testing.T) {
	s := newTestSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/customsearch/v1"), r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "engine-1", q.Get("cx"))
		assert.Equal(t, "honda accord cv axle clicking", q.Get("q"))
		assert.Equal(t, "4", q.Get("num"))
		assert.Equal(t, "test-key", q.Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"link":"https://www.ifixit.com/Guide/1","title":"CV Axle Replacement","snippet":" Remove the hub nut. "},
			{"link":"https://www.2carpros.com/axle","title":"Clicking when turning"},
			{"link":"https://www.ifixit.com/Guide/1","title":"dup"},
			{"link":"","title":"no link"}
		]}`))
	}, 4)

	hits, err := s.Search(context.Background(), "  honda accord cv axle clicking ")

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://www.ifixit.com/Guide/1", hits[0].URL)
	assert.Equal(t, "CV Axle Replacement", hits[0].Title)
	assert.Equal(t, "Remove the hub nut.", hits[0].Snippet)
	assert.InDelta(t, 1.0, hits[0].Confidence, 1e-9)
	assert.InDelta(t, 0.5, hits[1].Confidence, 1e-9)
}

func TestSearch_NoItems(t *testing.T) {
	s := newTestSearch(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}, 0)

	hits, err := s.Search(context.Background(), "obscure model")

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_Errors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		s := newTestSearch(t, func(_ http.ResponseWriter, _ *http.Request) {
			t.Error("no request expected")
		}, 0)
		_, err := s.Search(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rate limited", func(t *testing.T) {
		s := newTestSearch(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
		}, 0)
		_, err := s.Search(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("forbidden", func(t *testing.T) {
		s := newTestSearch(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
		}, 0)
		_, err := s.Search(context.Background(), "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})
}
