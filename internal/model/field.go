package model

// ReviewPriority classifies how much human attention a field needs.
type ReviewPriority string

const (
	PriorityAuto    ReviewPriority = "auto"    // full confidence, low stakes
	PriorityConfirm ReviewPriority = "confirm" // full confidence, high stakes
	PriorityDecide  ReviewPriority = "decide"  // conflict or uncertainty, user must choose
	PriorityMissing ReviewPriority = "missing" // not found, user must provide
)

// SourceReference identifies exactly where a value was read from,
// e.g. {File: "Model.xlsx", Location: "Sheet1!C5"} or
// {File: "firm_policy.md", Location: "Section 2.4"}.
type SourceReference struct {
	File     string `json:"file"`
	Location string `json:"location"`
}

// ConflictingValue is an alternative reading that disagrees with the
// chosen value for a field.
type ConflictingValue struct {
	Value      string          `json:"value"`
	Source     SourceReference `json:"source"`
	Confidence float64         `json:"confidence"`
}

// FieldRecord is a single extracted field with provenance metadata.
//
// Confidence is intentionally binary upstream: the extractor is instructed
// to emit 1.0 only when a value is explicitly and unambiguously stated, and
// 0.0 for anything inferred. No blending or averaging is ever performed on
// it; review routing is a plain threshold against 1.0.
type FieldRecord struct {
	Value             *string            `json:"value"`
	Source            *SourceReference   `json:"source"`
	Confidence        float64            `json:"confidence"`
	Conflicts         []ConflictingValue `json:"conflicts"`
	Found             bool               `json:"found"`
	DerivedFromPolicy bool               `json:"derived_from_policy"`
	UserEdited        bool               `json:"user_edited"`
	Reasoning         string             `json:"reasoning,omitempty"`
}

// ReviewPriority determines how the field should be handled during human
// review. The checks run in a fixed order; the first match wins.
func (f *FieldRecord) ReviewPriority(isHighStakes bool) ReviewPriority {
	if !f.Found || f.Value == nil {
		return PriorityMissing
	}
	if len(f.Conflicts) > 0 {
		return PriorityDecide
	}
	if f.Confidence < 1.0 {
		return PriorityDecide
	}
	if isHighStakes {
		return PriorityConfirm
	}
	return PriorityAuto
}

// ValueOr returns the field's value, or def when the field has none.
func (f *FieldRecord) ValueOr(def string) string {
	if f != nil && f.Value != nil && *f.Value != "" {
		return *f.Value
	}
	return def
}

// StringPtr is a convenience for building field values.
func StringPtr(s string) *string {
	return &s
}
