// Package html provides a Normaliser implementation for HTML pages.
// It parses the page with goquery, drops navigation and other page chrome,
// and extracts the readable text of the main content with block structure
// preserved as line breaks.
package html
