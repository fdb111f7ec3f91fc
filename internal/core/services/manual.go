package services

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// Ensure ManualService implements the interface.
var _ driving.ManualService = (*ManualService)(nil)

var extensionMIMETypes = map[string]string{
	".pdf":      "application/pdf",
	".html":     "text/html",
	".htm":      "text/html",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
}

// ManualService seeds stores with caller-supplied manuals.
type ManualService struct {
	session     *Session
	normalisers driven.NormaliserRegistry
	chunker     driven.Chunker
	indexer     *Indexer
	minLength   int
	now         func() time.Time
}

// NewManualService creates a manual service.
func NewManualService(
	session *Session,
	normalisers driven.NormaliserRegistry,
	chunker driven.Chunker,
	indexer *Indexer,
	minLength int,
) *ManualService {
	return &ManualService{
		session:     session,
		normalisers: normalisers,
		chunker:     chunker,
		indexer:     indexer,
		minLength:   minLength,
		now:         time.Now,
	}
}

// Register extracts, chunks and indexes a manual into a new store and
// records it in the session for the manual's equipment.
func (m *ManualService) Register(ctx context.Context, upload driving.ManualUpload) (*domain.IngestionResult, error) {
	start := m.now()
	logger.Section("Register Manual")

	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: empty manual", domain.ErrInvalidInput)
	}
	if !upload.Equipment.HasFields() {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, &domain.MissingFieldError{Field: "equipment"})
	}

	mimeType := upload.MIMEType
	if mimeType == "" {
		mimeType = DetectMIMEType(upload.Source, upload.Content)
	}
	result, err := m.normalisers.Normalise(ctx, &domain.RawContent{
		URI:       upload.Source,
		MIMEType:  mimeType,
		Content:   upload.Content,
		TitleHint: upload.Title,
	})
	if err != nil {
		return nil, fmt.Errorf("extract manual: %w", err)
	}
	text := strings.TrimSpace(result.Text)
	if len(text) < m.minLength {
		return nil, fmt.Errorf("%w: %d chars", domain.ErrContentTooShort, len(text))
	}

	title := upload.Title
	if title == "" {
		title = result.Title
	}
	docURL := upload.Source
	if !domain.ValidWebURL(docURL) {
		docURL = "manual://" + upload.Equipment.Key() + "/" + filepath.Base(upload.Source)
	}
	doc := &domain.CrawledDocument{
		URL:         docURL,
		Title:       title,
		Content:     text,
		ContentType: domain.ContentTypeManual,
		Metadata:    extractionMetadata(text, result.HasImages),
		FetchedAt:   start,
	}

	chunks := m.chunker.Chunk(doc)
	info := domain.Store{
		ID:           domain.NewStoreID(upload.Equipment, "manual-"+newStoreSuffix()),
		EquipmentKey: upload.Equipment.Key(),
		Origin:       domain.StoreOriginManual,
	}
	stored, err := m.indexer.Index(ctx, info, chunks)
	if stored == 0 {
		if err == nil {
			err = fmt.Errorf("%w: manual produced no chunks", domain.ErrContentTooShort)
		}
		return nil, fmt.Errorf("index manual: %w", err)
	}
	m.session.AddManual(upload.Equipment, info.ID)

	end := m.now()
	res := &domain.IngestionResult{
		Success:          true,
		DocumentsFound:   1,
		DocumentsCrawled: 1,
		ChunksCreated:    stored,
		StoreID:          info.ID,
		Elapsed:          end.Sub(start),
		CompletedAt:      end,
	}
	if err != nil {
		res.Errors = []string{err.Error()}
	}
	logger.Info("Registered manual %q as %s (%d chunks)", title, info.ID, stored)
	return res, nil
}

// DetectMIMEType guesses a MIME type from the file extension, then from the content.
func DetectMIMEType(name string, content []byte) string {
	if t, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(name))]; ok {
		return t
	}
	t := http.DetectContentType(content)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return t
}
