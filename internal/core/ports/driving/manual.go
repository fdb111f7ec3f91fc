package driving

import (
	"context"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// ManualUpload is a manual supplied by the caller ahead of analysis.
type ManualUpload struct {
	Equipment domain.EquipmentQuery

	// Title is shown on retrieved passages. Defaults to the extracted title.
	Title string

	// Source is the file name or URL the manual came from.
	Source string

	// MIMEType selects the extractor ("application/pdf", "text/html", ...).
	// Empty means it is detected from Source and the content.
	MIMEType string

	Content []byte
}

// ManualService seeds stores with caller-supplied manuals.
type ManualService interface {
	// Register extracts, chunks and indexes a manual into a new store for
	// its equipment. Later analyses of the same equipment retrieve from it.
	Register(ctx context.Context, upload ManualUpload) (*domain.IngestionResult, error)
}
