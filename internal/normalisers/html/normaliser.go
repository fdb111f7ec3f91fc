package html

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// boilerplate matches page chrome that never carries repair content.
const boilerplate = "script, style, noscript, svg, iframe, form, nav, header, footer, aside, " +
	"[role=navigation], [role=banner], [role=contentinfo], [aria-hidden=true]"

// blocks end a line of text.
const blocks = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote, pre, table, section, article, dd, dt"

// minMainText is the shortest main/article element preferred over body.
const minMainText = 200

var multiSpaces = regexp.MustCompile(`[ \t\p{Zs}]+`)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the readable text of an HTML page.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawContent) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := extractTitle(doc, raw)
	hasImages := doc.Find("img").Length() > 0

	doc.Find(boilerplate).Remove()
	root := contentRoot(doc)

	root.Find("br").ReplaceWithHtml("\n")
	root.Find("hr").ReplaceWithHtml("\n")
	root.Find(blocks).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	return &driven.NormaliseResult{
		Title:     title,
		Text:      cleanText(root.Text()),
		HasImages: hasImages,
	}, nil
}

// contentRoot prefers an article or main element with real text over body.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"article", "main", "[role=main]"} {
		s := doc.Find(sel).First()
		if s.Length() > 0 && len(strings.TrimSpace(s.Text())) >= minMainText {
			return s
		}
	}
	if body := doc.Find("body"); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

// extractTitle tries <title>, og:title and the first h1, then the caller's
// hint, then the file name.
func extractTitle(doc *goquery.Document, raw *domain.RawContent) string {
	candidates := []string{
		doc.Find("title").First().Text(),
		doc.Find(`meta[property="og:title"]`).AttrOr("content", ""),
		doc.Find("h1").First().Text(),
		raw.TitleHint,
	}
	for _, c := range candidates {
		if c = strings.Join(strings.Fields(c), " "); c != "" {
			return c
		}
	}
	return titleFromURI(raw.URI)
}

func titleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if filename == "." || filename == "/" {
		return ""
	}
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

// cleanText collapses spaces, trims each line and drops empty lines.
func cleanText(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
