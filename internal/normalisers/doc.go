// Package normalisers provides implementations of the Normaliser interface
// for the document formats the pipeline reads: HTML pages, PDF manuals,
// Markdown and plain text. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with a Registry at startup; NewDefaultRegistry
// registers all of them.
package normalisers
