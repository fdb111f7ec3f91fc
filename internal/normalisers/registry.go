package normalisers

import (
	"context"
	"fmt"
	"mime"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/normalisers/html"
	"github.com/custodia-labs/fixpath-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/fixpath-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/fixpath-cli/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw content to the highest-priority normaliser that
// supports its MIME type. A normaliser may claim a whole family with a
// "type/*" pattern; exact matches are tried first.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with the HTML, PDF, Markdown and
// plain text normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(html.New())
	r.Register(pdf.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())
	return r
}

// Register adds a normaliser to the registry.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise extracts text using the best matching normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawContent) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n := r.lookup(raw.MIMEType)
	if n == nil {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, raw.MIMEType)
	}
	return n.Normalise(ctx, raw)
}

// SupportedMIMETypes returns all MIME types that can be normalised.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}
	}
	return types
}

func (r *Registry) lookup(contentType string) driven.Normaliser {
	mediaType := baseMIMEType(contentType)
	if mediaType == "" {
		return nil
	}
	family, _, _ := strings.Cut(mediaType, "/")

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pattern := range []string{mediaType, family + "/*"} {
		for _, n := range r.normalisers {
			if slices.Contains(n.SupportedMIMETypes(), pattern) {
				return n
			}
		}
	}
	return nil
}

// baseMIMEType strips parameters and lowercases a Content-Type value.
func baseMIMEType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
