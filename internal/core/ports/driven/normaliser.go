package driven

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// Normaliser extracts plain text from raw content.
// Each normaliser handles specific MIME types (e.g., HTML, PDF).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the text of a raw document.
	Normalise(ctx context.Context, raw *domain.RawContent) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking happens later, on the distilled text.
type NormaliseResult struct {
	// Title is the document title, if one could be found.
	Title string

	// Text is the cleaned plain text.
	Text string

	// HasImages is set when the raw markup referenced images.
	HasImages bool
}
