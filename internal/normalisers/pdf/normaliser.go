package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxTitleLength bounds a first line used as a title.
const maxTitleLength = 200

// Extractor returns the document title (possibly empty) and plain text of a PDF.
type Extractor func(data []byte) (title, text string, err error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract Extractor
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{extract: extractText}
}

// NewWithExtractor creates a PDF normaliser with a custom extractor (for testing).
func NewWithExtractor(extract Extractor) *Normaliser {
	return &Normaliser{extract: extract}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text layer of a PDF.
// Scanned PDFs without a text layer yield empty text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawContent) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, text, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	text = cleanText(text)

	if title = strings.TrimSpace(title); title == "" {
		title = raw.TitleHint
	}
	if title == "" {
		title = extractTitle(text, raw.URI)
	}

	return &driven.NormaliseResult{
		Title: title,
		Text:  text,
	}, nil
}

// extractText reads a PDF from memory. The parser panics on some malformed
// files; that is reported as an error.
func extractText(data []byte) (title, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("open pdf: %w", err)
	}

	title = reader.Trailer().Key("Info").Key("Title").Text()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", "", fmt.Errorf("read pdf buffer: %w", err)
	}
	return title, buf.String(), nil
}

// extractTitle uses the first short non-empty line, then the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= maxTitleLength {
			return line
		}
	}

	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

// cleanText trims lines, drops NUL bytes and collapses blank runs.
func cleanText(content string) string {
	content = strings.ReplaceAll(content, "\x00", "")
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(result) > 0 {
				result = append(result, "")
			}
			blank = true
			continue
		}
		blank = false
		result = append(result, line)
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}
