package model

import "encoding/json"

// Section is a fixed named group of field records. Field membership is
// decided by the schema table at construction time, never by incoming data.
type Section struct {
	name   string
	fields map[string]*FieldRecord
}

// NewSection builds a section with one zero-value FieldRecord per declared
// field. The signatures section pre-seeds binding_status: term sheets are
// non-binding by standard practice, so that field ships at full confidence.
func NewSection(name string) (*Section, error) {
	names, err := SectionFieldNames(name)
	if err != nil {
		return nil, err
	}

	s := &Section{
		name:   name,
		fields: make(map[string]*FieldRecord, len(names)),
	}
	for _, fn := range names {
		s.fields[fn] = &FieldRecord{}
	}

	if name == "signatures" {
		s.fields["binding_status"] = &FieldRecord{
			Value:      StringPtr("non-binding"),
			Confidence: 1.0,
			Found:      true,
			Reasoning:  "Term sheets are typically non-binding except for exclusivity and confidentiality",
		}
	}

	return s, nil
}

// Name returns the section's schema name.
func (s *Section) Name() string {
	return s.name
}

// Field returns the record for a declared field name.
func (s *Section) Field(name string) (*FieldRecord, error) {
	f, ok := s.fields[name]
	if !ok {
		return nil, ErrUnknownField
	}
	return f, nil
}

// FieldNames returns the section's field names in schema order.
func (s *Section) FieldNames() []string {
	names, _ := SectionFieldNames(s.name)
	return names
}

// Each calls fn for every field in schema order.
func (s *Section) Each(fn func(field string, rec *FieldRecord)) {
	for _, name := range s.FieldNames() {
		fn(name, s.fields[name])
	}
}

// MarshalJSON emits the section as a field-name → record object.
func (s *Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.fields)
}

// UnmarshalJSON restores a section's records. The section must have been
// constructed with NewSection first so its name and field set are known;
// undeclared field names in the payload are dropped.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw map[string]*FieldRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name, rec := range raw {
		if _, ok := s.fields[name]; ok && rec != nil {
			s.fields[name] = rec
		}
	}
	return nil
}
