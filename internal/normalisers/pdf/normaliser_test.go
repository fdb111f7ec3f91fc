package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

func stubExtractor(title, text string, err error) Extractor {
	return func([]byte) (string, string, error) { return title, text, err }
}

func TestNew(t *testing.T) {
	n := New()
	require.NotNil(t, n)
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_WithExtractor(t *testing.T) {
	n := NewWithExtractor(stubExtractor("", "  GE Dishwasher Service Manual \n\n\n\nDrain pump\x00 removal\n", nil))

	result, err := n.Normalise(context.Background(), &domain.RawContent{
		URI:      "/manuals/ge.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4"),
	})

	require.NoError(t, err)
	assert.Equal(t, "GE Dishwasher Service Manual", result.Title)
	assert.Equal(t, "GE Dishwasher Service Manual\n\nDrain pump removal", result.Text)
	assert.False(t, result.HasImages)
}

func TestNormalise_TitlePrecedence(t *testing.T) {
	raw := &domain.RawContent{URI: "/manuals/ge.pdf", TitleHint: "Hint", Content: []byte("%PDF")}

	result, err := NewWithExtractor(stubExtractor("Info Title", "first line", nil)).Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Info Title", result.Title)

	result, err = NewWithExtractor(stubExtractor(" ", "first line", nil)).Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Hint", result.Title)
}

func TestNormalise_ExtractorError(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewWithExtractor(stubExtractor("", "", boom)).Normalise(context.Background(), &domain.RawContent{})

	assert.ErrorIs(t, err, boom)
}

func TestNormalise_NotAPDF(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawContent{
		URI:     "notes.pdf",
		Content: []byte("this is not a pdf at all"),
	})

	assert.Error(t, err)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		uri      string
		expected string
	}{
		{"first line as title", "Document Title\n\nSome content here.", "/doc.pdf", "Document Title"},
		{"skip empty lines", "\n\n\nActual Title\nContent", "/doc.pdf", "Actual Title"},
		{"fallback to filename", "", "/path/to/my_document.pdf", "my document"},
		{"skip very long first line", strings.Repeat("x", 250) + "\nShort Title\nContent", "/doc.pdf", "Short Title"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.uri))
		})
	}
}
