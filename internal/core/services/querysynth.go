package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
)

// Ensure QuerySynthesizer implements the interface.
var _ driving.QueryPlanner = (*QuerySynthesizer)(nil)

// Query templates per equipment category. Placeholders: {type} {make}
// {model} {year} {symptom} {diagnosis}.
var queryTemplates = map[string][]string{
	domain.CategoryVehicle: {
		"{year} {make} {model} {symptom}",
		"{year} {make} {model} {diagnosis} repair",
		"{make} {model} {symptom} causes",
		"{year} {make} {model} {diagnosis} replacement procedure",
		"{year} {make} {model} service manual {diagnosis}",
		"{make} {model} {symptom} forum",
	},
	domain.CategoryAppliance: {
		"{make} {model} {symptom}",
		"{make} {model} {type} {diagnosis} repair",
		"{make} {type} {symptom} troubleshooting",
		"{make} {model} service manual",
		"{make} {model} {diagnosis} part replacement",
	},
	domain.CategoryHVAC: {
		"{make} {model} {type} {symptom}",
		"{make} {model} {diagnosis} repair",
		"{make} {model} installation service manual",
		"{type} {symptom} troubleshooting",
	},
	domain.CategoryPlumbing: {
		"{make} {model} {symptom}",
		"{type} {symptom} fix",
		"{make} {model} {diagnosis} repair instructions",
	},
	domain.CategoryElectrical: {
		"{make} {model} {symptom}",
		"{type} {symptom} troubleshooting",
		"{make} {model} {diagnosis} wiring repair",
	},
	domain.CategoryElectronics: {
		"{make} {model} {symptom}",
		"{make} {model} {diagnosis} repair guide",
		"{make} {model} teardown",
		"{make} {model} {symptom} fix",
	},
	domain.CategorySmallEngine: {
		"{make} {model} {symptom}",
		"{make} {model} engine {diagnosis} repair",
		"{make} {model} parts diagram",
		"{type} {symptom} troubleshooting",
	},
}

var genericQueryTemplates = []string{
	"{make} {model} {type} {symptom}",
	"{make} {model} {diagnosis} repair guide",
	"{year} {make} {model} manual",
	"{type} {symptom} troubleshooting",
	"how to fix {type} {diagnosis}",
}

var (
	placeholderPattern = regexp.MustCompile(`\{[a-z]+\}`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

// QuerySynthesizer turns equipment metadata into search queries.
// It performs no I/O.
type QuerySynthesizer struct {
	minLength int
}

// NewQuerySynthesizer creates a query synthesizer that discards queries
// shorter than minLength characters.
func NewQuerySynthesizer(minLength int) *QuerySynthesizer {
	if minLength <= 0 {
		minLength = domain.DefaultPipelineSettings().MinQueryLength
	}
	return &QuerySynthesizer{minLength: minLength}
}

// Queries returns the ordered, deduplicated queries for q.
// An empty result means there is nothing to search for.
func (s *QuerySynthesizer) Queries(q domain.EquipmentQuery) []string {
	if !q.HasFields() {
		return nil
	}
	templates, ok := queryTemplates[q.NormalisedCategory()]
	if !ok {
		templates = genericQueryTemplates
	}

	values := map[string]string{
		"{type}":      strings.ReplaceAll(q.NormalisedCategory(), "_", " "),
		"{make}":      q.Make,
		"{model}":     q.Model,
		"{year}":      q.Year,
		"{symptom}":   q.Symptom,
		"{diagnosis}": q.Diagnosis,
	}

	seen := make(map[string]struct{}, len(templates))
	queries := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		query := placeholderPattern.ReplaceAllStringFunc(tmpl, func(ph string) string {
			return strings.TrimSpace(values[ph])
		})
		query = strings.TrimSpace(spacePattern.ReplaceAllString(query, " "))
		if len(query) < s.minLength {
			continue
		}
		if _, dup := seen[query]; dup {
			continue
		}
		seen[query] = struct{}{}
		queries = append(queries, query)
	}
	return queries
}
