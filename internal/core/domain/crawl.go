package domain

import (
	"net/url"
	"strings"
	"time"
)

// ContentType is the coarse classification of a crawled page.
type ContentType string

// Content types assigned by the crawler.
const (
	ContentTypeArticle         ContentType = "article"
	ContentTypeManual          ContentType = "manual"
	ContentTypeForum           ContentType = "forum"
	ContentTypeVideoTranscript ContentType = "video_transcript"
	ContentTypePartsCatalog    ContentType = "parts_catalog"
)

// IsValid returns true if the content type is recognised.
func (c ContentType) IsValid() bool {
	switch c {
	case ContentTypeArticle, ContentTypeManual, ContentTypeForum,
		ContentTypeVideoTranscript, ContentTypePartsCatalog:
		return true
	default:
		return false
	}
}

// SearchHit is a single result returned by a grounded web search.
type SearchHit struct {
	URL     string
	Title   string
	Snippet string

	// Confidence is the engine-provided relevance signal in [0,1].
	// Zero means the engine reported none.
	Confidence float64
}

// CrawlTarget is a candidate page produced by source discovery.
type CrawlTarget struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	Domain  string  `json:"domain"`
	Score   float64 `json:"score"`

	// Trusted is set when Domain matched the trusted-source table.
	Trusted bool `json:"trusted"`
}

// ExtractionMetadata holds auxiliary flags computed during extraction.
type ExtractionMetadata struct {
	WordCount      int  `json:"word_count"`
	HasPartNumbers bool `json:"has_part_numbers"`
	HasTorqueSpecs bool `json:"has_torque_specs"`
	HasImages      bool `json:"has_images"`
}

// CrawledDocument is a fetched, cleaned and (optionally) distilled page.
type CrawledDocument struct {
	URL         string             `json:"url"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	ContentType ContentType        `json:"content_type"`
	Metadata    ExtractionMetadata `json:"metadata"`

	// Distilled is false when Content is the raw extracted text because
	// distillation failed or reported the page as not relevant.
	Distilled bool      `json:"distilled"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Source returns the host the document was fetched from.
func (d *CrawledDocument) Source() string {
	return HostOf(d.URL)
}

// HostOf returns the lower-cased host of rawURL without a leading "www.".
// Returns an empty string for malformed URLs.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// ValidWebURL reports whether rawURL is an absolute http(s) URL with a host.
func ValidWebURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
