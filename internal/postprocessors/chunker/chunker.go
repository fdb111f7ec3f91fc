// Package chunker provides a paragraph-aligned text chunker.
package chunker

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default target number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlapWords is the default number of trailing words carried into the next chunk.
const DefaultOverlapWords = 40

// DefaultMinLength is the length below which a trailing chunk is discarded.
const DefaultMinLength = 50

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]\s+`)
)

// Chunker splits document content on paragraph boundaries into overlapping passages.
// It is deterministic: the same content always yields the same chunks.
type Chunker struct {
	chunkSize    int
	overlapWords int
	minLength    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlapWords sets how many trailing words seed the next chunk.
func WithOverlapWords(words int) Option {
	return func(c *Chunker) {
		if words >= 0 {
			c.overlapWords = words
		}
	}
}

// WithMinLength sets the minimum length of the trailing chunk.
func WithMinLength(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.minLength = n
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:    DefaultChunkSize,
		overlapWords: DefaultOverlapWords,
		minLength:    DefaultMinLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the chunker name.
func (c *Chunker) Name() string {
	return "paragraph"
}

// Chunk splits the document into passages.
//
// Paragraphs accumulate in a buffer until the next one would push it past
// the chunk size. The buffer is then emitted and the next buffer starts with
// the last overlapWords words of the emitted one followed by the paragraph
// that did not fit. A trailing buffer shorter than minLength is dropped.
func (c *Chunker) Chunk(doc *domain.CrawledDocument) []domain.DocumentChunk {
	if doc == nil || strings.TrimSpace(doc.Content) == "" {
		return nil
	}

	meta := domain.ChunkMetadata{
		Title:       doc.Title,
		Source:      doc.Source(),
		ContentType: doc.ContentType,
	}

	var chunks []domain.DocumentChunk
	emit := func(text string) {
		ordinal := len(chunks)
		chunks = append(chunks, domain.DocumentChunk{
			ID:          domain.ChunkID(doc.URL, ordinal),
			DocumentURL: doc.URL,
			Text:        text,
			Ordinal:     ordinal,
			Metadata:    meta,
		})
	}

	var buf string
	for _, para := range c.paragraphs(doc.Content) {
		switch {
		case buf == "":
			buf = para
		case len(buf)+2+len(para) > c.chunkSize:
			emit(buf)
			if tail := lastWords(buf, c.overlapWords); tail != "" {
				buf = tail + "\n\n" + para
			} else {
				buf = para
			}
		default:
			buf += "\n\n" + para
		}
	}
	if len(strings.TrimSpace(buf)) >= c.minLength {
		emit(buf)
	}
	return chunks
}

// paragraphs splits content on blank lines. Paragraphs longer than the chunk
// size are split further at sentence ends, then at word boundaries.
func (c *Chunker) paragraphs(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var out []string
	for _, p := range paragraphBreak.Split(content, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) <= c.chunkSize {
			out = append(out, p)
			continue
		}
		out = append(out, c.splitLong(p)...)
	}
	return out
}

func (c *Chunker) splitLong(p string) []string {
	var (
		out, pieces []string
		cur         string
		last        int
	)
	for _, loc := range sentenceEnd.FindAllStringIndex(p, -1) {
		pieces = append(pieces, strings.TrimSpace(p[last:loc[1]]))
		last = loc[1]
	}
	if last < len(p) {
		pieces = append(pieces, strings.TrimSpace(p[last:]))
	}

	for _, s := range pieces {
		if s == "" {
			continue
		}
		for _, piece := range splitWords(s, c.chunkSize) {
			switch {
			case cur == "":
				cur = piece
			case len(cur)+1+len(piece) > c.chunkSize:
				out = append(out, cur)
				cur = piece
			default:
				cur += " " + piece
			}
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// splitWords breaks s into pieces of at most size bytes at word boundaries.
// A single word longer than size is kept whole.
func splitWords(s string, size int) []string {
	if len(s) <= size {
		return []string{s}
	}
	var (
		out []string
		cur string
	)
	for _, w := range strings.Fields(s) {
		if cur != "" && len(cur)+1+len(w) > size {
			out = append(out, cur)
			cur = w
			continue
		}
		if cur == "" {
			cur = w
		} else {
			cur += " " + w
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func lastWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
