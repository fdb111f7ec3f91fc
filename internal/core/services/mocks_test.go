package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// mockGenerator answers generation calls through a function so tests can
// route by prompt content. Calls are recorded.
type mockGenerator struct {
	mu        sync.Mutex
	grounding bool
	respond   func(req driven.GenerateRequest) (*driven.GenerateResponse, error)
	calls     []driven.GenerateRequest
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (*driven.GenerateResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if req.Grounded && !m.grounding {
		return nil, domain.ErrGroundingUnsupported
	}
	if m.respond == nil {
		return &driven.GenerateResponse{}, nil
	}
	return m.respond(req)
}

func (m *mockGenerator) SupportsGrounding() bool { return m.grounding }
func (m *mockGenerator) ModelName() string       { return "mock-model" }
func (m *mockGenerator) Ping(_ context.Context) error {
	return nil
}
func (m *mockGenerator) Close() error { return nil }

func (m *mockGenerator) callsMatching(pred func(driven.GenerateRequest) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if pred(c) {
			n++
		}
	}
	return n
}

// mockEmbedder maps text onto a small vector space using keyword presence,
// so similarity between texts that share keywords is predictable.
type mockEmbedder struct {
	mu       sync.Mutex
	keywords []string
	err      error
	failOn   int // 1-based EmbedBatch call to fail, 0 = never
	batches  [][]string
	tasks    []domain.EmbeddingTask
}

func (m *mockEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(m.keywords)+1)
	for i, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	vec[len(m.keywords)] = 0.01
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string, task domain.EmbeddingTask) ([]float32, error) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string, task domain.EmbeddingTask) ([][]float32, error) {
	m.mu.Lock()
	m.batches = append(m.batches, texts)
	m.tasks = append(m.tasks, task)
	call := len(m.batches)
	m.mu.Unlock()
	if m.err != nil || (m.failOn > 0 && call == m.failOn) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, errMockBatch
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.keywords) + 1 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

type mockError string

func (e mockError) Error() string { return string(e) }

const errMockBatch = mockError("batch failed")

// mockWebSearch returns canned hits per query; unknown queries get the
// fallback function's answer.
type mockWebSearch struct {
	mu      sync.Mutex
	hits    map[string][]domain.SearchHit
	errs    map[string]error
	respond func(query string) ([]domain.SearchHit, error)
	queries []string
}

func (m *mockWebSearch) Search(_ context.Context, query string) ([]domain.SearchHit, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if err, ok := m.errs[query]; ok {
		return nil, err
	}
	if hits, ok := m.hits[query]; ok {
		return hits, nil
	}
	if m.respond != nil {
		return m.respond(query)
	}
	return nil, nil
}

// mockFetcher serves pages from a map keyed by URL.
type mockFetcher struct {
	mu    sync.Mutex
	pages map[string]*domain.FetchedPage
	errs  map[string]error
	calls map[string]int
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (*domain.FetchedPage, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[url]++
	m.mu.Unlock()
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	page, ok := m.pages[url]
	if !ok {
		return nil, &domain.FetchError{URL: url, StatusCode: 404, Reason: "not found"}
	}
	return page, nil
}

func (m *mockFetcher) callCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// textNormaliser treats every body as plain text; a first line starting
// with "# " becomes the title.
type textNormaliser struct{}

func (textNormaliser) Normalise(_ context.Context, raw *domain.RawContent) (*driven.NormaliseResult, error) {
	text := string(raw.Content)
	res := &driven.NormaliseResult{Text: text, HasImages: strings.Contains(text, "<img")}
	if strings.HasPrefix(text, "# ") {
		title, rest, _ := strings.Cut(text, "\n")
		res.Title = strings.TrimPrefix(title, "# ")
		res.Text = rest
	}
	return res, nil
}

func (textNormaliser) Register(_ driven.Normaliser) {}

func (textNormaliser) SupportedMIMETypes() []string { return []string{"text/plain", "text/html"} }

// mockPartsSearch returns canned sources per part name.
type mockPartsSearch struct {
	mu      sync.Mutex
	sources map[string][]domain.PartSource
	err     error
	calls   []string
}

func (m *mockPartsSearch) FindSources(
	_ context.Context, part domain.GuidePart, _ domain.EquipmentQuery, _ string,
) ([]domain.PartSource, error) {
	m.mu.Lock()
	m.calls = append(m.calls, part.Name)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sources[part.Name], nil
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// htmlPage builds a fetched page whose body is padded past the raw size floor.
func htmlPage(url, body string) *domain.FetchedPage {
	if len(body) < 600 {
		body += "\n" + strings.Repeat(" ", 600-len(body))
	}
	return &domain.FetchedPage{URL: url, StatusCode: 200, ContentType: "text/html; charset=utf-8", Body: []byte(body)}
}

var (
	_ driven.GenerationService  = (*mockGenerator)(nil)
	_ driven.EmbeddingService   = (*mockEmbedder)(nil)
	_ driven.WebSearch          = (*mockWebSearch)(nil)
	_ driven.PageFetcher        = (*mockFetcher)(nil)
	_ driven.NormaliserRegistry = textNormaliser{}
	_ driven.PartsSearch        = (*mockPartsSearch)(nil)
	_ driven.PromptStore        = (*mockPromptStore)(nil)
)
