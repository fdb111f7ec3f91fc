package domain

import "strings"

// Equipment categories with dedicated query templates, trusted sources and disclaimers.
// Any other category value is valid and falls back to the generic tables.
const (
	CategoryVehicle     = "vehicle"
	CategoryAppliance   = "appliance"
	CategoryHVAC        = "hvac"
	CategoryPlumbing    = "plumbing"
	CategoryElectrical  = "electrical"
	CategoryElectronics = "electronics"
	CategorySmallEngine = "small_engine"
)

// EquipmentQuery describes the equipment being repaired.
// It is immutable for the lifetime of a request; use the With* helpers
// to derive enriched copies.
type EquipmentQuery struct {
	Category  string `json:"category"`
	Make      string `json:"make,omitempty"`
	Model     string `json:"model,omitempty"`
	Year      string `json:"year,omitempty"`
	Symptom   string `json:"symptom,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
}

// NormalisedCategory returns the lower-cased, trimmed category with spaces
// and dashes folded to underscores ("Small Engine" -> "small_engine").
func (q EquipmentQuery) NormalisedCategory() string {
	c := strings.ToLower(strings.TrimSpace(q.Category))
	c = strings.NewReplacer(" ", "_", "-", "_").Replace(c)
	return c
}

// HasFields reports whether any descriptive field is populated.
func (q EquipmentQuery) HasFields() bool {
	for _, v := range []string{q.Category, q.Make, q.Model, q.Year, q.Symptom, q.Diagnosis} {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// Key returns the equipment-derived part of a store identifier.
// It is built from category, make, model and year only, so the same
// machine always maps to the same key regardless of symptom.
func (q EquipmentQuery) Key() string {
	parts := make([]string, 0, 4)
	for _, v := range []string{q.NormalisedCategory(), q.Make, q.Model, q.Year} {
		if s := slugify(v); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "-")
}

// WithDiagnosis returns a copy of the query enriched with a diagnosed fault
// and any observed symptoms not already in the symptom text.
func (q EquipmentQuery) WithDiagnosis(fault string, symptoms []string) EquipmentQuery {
	out := q
	out.Diagnosis = strings.TrimSpace(fault)
	var fresh []string
	for _, sym := range symptoms {
		sym = strings.TrimSpace(sym)
		if sym != "" && !strings.Contains(strings.ToLower(out.Symptom), strings.ToLower(sym)) {
			fresh = append(fresh, sym)
		}
	}
	extra := strings.Join(fresh, ", ")
	switch {
	case extra == "":
	case out.Symptom == "":
		out.Symptom = extra
	default:
		out.Symptom = out.Symptom + ", " + extra
	}
	return out
}

// String renders the equipment as a short human-readable label.
func (q EquipmentQuery) String() string {
	fields := make([]string, 0, 4)
	for _, v := range []string{q.Year, q.Make, q.Model} {
		if v = strings.TrimSpace(v); v != "" {
			fields = append(fields, v)
		}
	}
	if len(fields) == 0 {
		if c := strings.TrimSpace(q.Category); c != "" {
			return c
		}
		return "equipment"
	}
	return strings.Join(fields, " ")
}

// NewStoreID joins an equipment key with a uniqueness suffix.
func NewStoreID(q EquipmentQuery, suffix string) string {
	if suffix == "" {
		return q.Key()
	}
	return q.Key() + "-" + suffix
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
