package grounded

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

type mockGenerator struct {
	grounding bool
	resp      *driven.GenerateResponse
	err       error
	requests  []driven.GenerateRequest
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (*driven.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockGenerator) SupportsGrounding() bool      { return m.grounding }
func (m *mockGenerator) ModelName() string            { return "mock" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", errors.New("not found")
}

func (m *mockPromptStore) Reload() {}

func TestSearch_MergesListedAndGroundingSources(t *testing.T) {
	gen := &mockGenerator{
		grounding: true,
		resp: &driven.GenerateResponse{
			Text: "Here you go:\n```json\n[" +
				`{"url":"https://www.2carpros.com/axle","title":"CV axle","snippet":"Replacing a CV axle","relevance":0.6},` +
				`{"url":"https://forum.example.com/t/1","title":"Clicking on turns","relevance":3},` +
				`{"url":"https://www.2carpros.com/axle","title":"dup"},` +
				`{"url":"","title":"blank"}` +
				"]\n```",
			Sources: []domain.SearchHit{
				{URL: "https://www.2carpros.com/axle", Title: "2carpros.com", Confidence: 0.9},
				{URL: "https://www.ifixit.com/Guide/9", Title: "ifixit.com", Confidence: 0.4},
			},
		},
	}
	s := New(gen)

	hits, err := s.Search(context.Background(), "  honda accord clicking  ")

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, domain.SearchHit{
		URL: "https://www.2carpros.com/axle", Title: "CV axle", Snippet: "Replacing a CV axle", Confidence: 0.9,
	}, hits[0])
	assert.Equal(t, "https://forum.example.com/t/1", hits[1].URL)
	assert.InDelta(t, 1.0, hits[1].Confidence, 1e-9, "relevance is clamped")
	assert.Equal(t, "https://www.ifixit.com/Guide/9", hits[2].URL)

	require.Len(t, gen.requests, 1)
	assert.True(t, gen.requests[0].Grounded)
	assert.Contains(t, gen.requests[0].Prompt, "honda accord clicking")
	assert.Contains(t, gen.requests[0].Prompt, "up to 8 objects")
}

func TestSearch_UnparseableTextFallsBackToSources(t *testing.T) {
	gen := &mockGenerator{
		grounding: true,
		resp: &driven.GenerateResponse{
			Text:    "I found some pages about this.",
			Sources: []domain.SearchHit{{URL: "https://a.example/p", Confidence: 0.5}},
		},
	}

	hits, err := New(gen).Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []domain.SearchHit{{URL: "https://a.example/p", Confidence: 0.5}}, hits)
}

func TestSearch_MaxResults(t *testing.T) {
	gen := &mockGenerator{
		grounding: true,
		resp: &driven.GenerateResponse{Sources: []domain.SearchHit{
			{URL: "https://a.example/1"}, {URL: "https://a.example/2"}, {URL: "https://a.example/3"},
		}},
	}

	hits, err := New(gen, WithMaxResults(2), WithMaxResults(0)).Search(context.Background(), "q")

	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Contains(t, gen.requests[0].Prompt, "up to 2 objects")
}

func TestSearch_Errors(t *testing.T) {
	t.Run("no generator", func(t *testing.T) {
		_, err := New(nil).Search(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrGroundingUnsupported)
	})

	t.Run("generator cannot ground", func(t *testing.T) {
		_, err := New(&mockGenerator{}).Search(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrGroundingUnsupported)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := New(&mockGenerator{grounding: true}).Search(context.Background(), "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("upstream failure", func(t *testing.T) {
		gen := &mockGenerator{grounding: true, err: domain.ErrRateLimited}
		_, err := New(gen).Search(context.Background(), "q")
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})
}

func TestSearch_PromptStore(t *testing.T) {
	gen := &mockGenerator{grounding: true, resp: &driven.GenerateResponse{}}
	s := New(gen)
	s.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptSourceSearch: "custom %s (max %d)",
	}})

	_, err := s.Search(context.Background(), "brake squeal")

	require.NoError(t, err)
	assert.Equal(t, "custom brake squeal (max 8)", gen.requests[0].Prompt)
}
