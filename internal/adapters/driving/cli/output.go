package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshalling yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// writeGuideText renders a repair guide for reading in a terminal.
func writeGuideText(w io.Writer, g *domain.RepairGuide) {
	p := func(format string, args ...any) { fmt.Fprintf(w, format, args...) }

	p("%s\n%s\n\n", g.Title, strings.Repeat("=", len([]rune(g.Title))))
	if g.Diagnosis.Valid() {
		p("Diagnosis: %s", g.Diagnosis.Fault)
		if g.Diagnosis.Severity != "" {
			p(" (severity: %s)", g.Diagnosis.Severity)
		}
		p("\n")
	}
	p("%s\n\n", g.Summary)
	p("Difficulty: %s    Time: %s    Confidence: %.0f%%\n\n", g.Difficulty, g.TotalTime, g.Confidence*100)

	if len(g.SafetyWarnings) > 0 {
		p("Safety\n")
		for _, s := range g.SafetyWarnings {
			p("  ! %s\n", s)
		}
		p("\n")
	}

	if len(g.Tools) > 0 {
		p("Tools\n")
		for _, t := range g.Tools {
			line := t.Name
			if t.Purpose != "" {
				line += " - " + t.Purpose
			}
			if t.Optional {
				line += " (optional)"
			}
			p("  - %s\n", line)
		}
		p("\n")
	}

	if len(g.Parts) > 0 {
		p("Parts\n")
		for _, part := range g.Parts {
			line := part.Name
			if part.PartNumber != "" {
				line += " #" + part.PartNumber
			}
			if part.Quantity > 1 {
				line += fmt.Sprintf(" x%d", part.Quantity)
			}
			if part.EstimatedCost != "" {
				line += " ~" + part.EstimatedCost
			}
			p("  - %s\n", line)
			for _, src := range part.Sources {
				p("      %s", src.Name)
				if src.Price != "" {
					p(" %s", src.Price)
				}
				if src.URL != "" {
					p("  %s", src.URL)
				}
				p("\n")
			}
		}
		p("\n")
	}

	p("Steps\n")
	for _, s := range g.Steps {
		p("  %d. %s\n", s.Number, s.Title)
		p("     %s\n", s.Instruction)
		if s.Caution != "" {
			p("     Caution: %s\n", s.Caution)
		}
		if s.Tip != "" {
			p("     Tip: %s\n", s.Tip)
		}
	}
	p("\n")

	for _, d := range g.Disclaimers {
		p("Note: %s\n", d)
	}
	if len(g.References) > 0 {
		p("\nReferences\n")
		for _, r := range g.References {
			p("  %s\n", r)
		}
	}
	p("\nContext: %s", g.ContextCoverage)
	if g.StoreID != "" {
		p("    Store: %s", g.StoreID)
	}
	p("\n")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
