package domain

import "time"

// RawContent is opaque bytes awaiting text extraction: a fetched page body
// or an uploaded manual.
type RawContent struct {
	// URI is the original location (URL or file name).
	URI string

	// MIMEType is the content type (e.g., "text/html", "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// TitleHint is used when the content carries no title of its own.
	TitleHint string
}

// FetchedPage is a validated HTTP response body.
type FetchedPage struct {
	// URL is the final URL after redirects.
	URL string

	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}
