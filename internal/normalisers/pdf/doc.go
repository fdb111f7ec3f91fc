// Package pdf provides a Normaliser implementation for PDF manuals.
// Text is extracted in pure Go with github.com/ledongthuc/pdf, so no
// external tool has to be installed.
package pdf
