package domain

// MediaPart is a piece of user-supplied media (image, audio or video) passed
// to the diagnosis service as-is.
type MediaPart struct {
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Skill levels accepted in UserPreferences.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// UserPreferences tailor the synthesized guide to the person doing the repair.
type UserPreferences struct {
	SkillLevel     string   `json:"skill_level,omitempty"`
	AvailableTools []string `json:"available_tools,omitempty"`
	MaxBudget      string   `json:"max_budget,omitempty"`
}

// AnalyzeRequest is the input of the "analyze equipment issue" operation.
type AnalyzeRequest struct {
	Media       []MediaPart     `json:"media,omitempty"`
	Description string          `json:"description"`
	Equipment   EquipmentQuery  `json:"equipment"`
	Preferences UserPreferences `json:"preferences"`
	Location    string          `json:"location,omitempty"`
}

// Validate checks that the request carries something to diagnose.
func (r *AnalyzeRequest) Validate() error {
	if len(r.Media) == 0 && r.Description == "" && r.Equipment.Symptom == "" {
		return &MissingFieldError{Field: "media or description"}
	}
	if !r.Equipment.HasFields() {
		return &MissingFieldError{Field: "equipment"}
	}
	return nil
}

// Diagnosis is the structured output of the diagnosis call.
type Diagnosis struct {
	Fault        string   `json:"fault"`
	Summary      string   `json:"summary"`
	Symptoms     []string `json:"symptoms"`
	LikelyCauses []string `json:"likely_causes"`
	Severity     string   `json:"severity"`

	// Confidence is the model's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Valid reports whether the diagnosis names a fault.
func (d *Diagnosis) Valid() bool {
	return d != nil && d.Fault != ""
}
