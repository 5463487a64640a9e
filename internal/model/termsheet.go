package model

import (
	"encoding/json"
	"time"
)

// DocumentTypeTermSheet is the only document type this schema describes.
const DocumentTypeTermSheet = "term_sheet"

// TermSheet is the complete extracted document: seven fixed sections plus
// document metadata. ExtractedAt is set once when extraction completes and
// is never touched by later edits.
type TermSheet struct {
	DocumentType string
	ExtractedAt  time.Time
	sections     map[string]*Section
}

// NewTermSheet builds an empty term sheet with all seven sections at their
// schema defaults.
func NewTermSheet() *TermSheet {
	ts := &TermSheet{
		DocumentType: DocumentTypeTermSheet,
		sections:     make(map[string]*Section, len(SectionNames)),
	}
	for _, name := range SectionNames {
		s, _ := NewSection(name)
		ts.sections[name] = s
	}
	return ts
}

// Section returns the named section.
func (t *TermSheet) Section(name string) (*Section, error) {
	s, ok := t.sections[name]
	if !ok {
		return nil, ErrUnknownSection
	}
	return s, nil
}

// SetSection installs a fully-parsed section at its fixed slot.
func (t *TermSheet) SetSection(s *Section) error {
	if _, ok := t.sections[s.name]; !ok {
		return ErrUnknownSection
	}
	t.sections[s.name] = s
	return nil
}

// Field resolves a (section, field) pair against the fixed schema.
func (t *TermSheet) Field(section, field string) (*FieldRecord, error) {
	s, err := t.Section(section)
	if err != nil {
		return nil, err
	}
	return s.Field(field)
}

// EachField calls fn for every field record, sections in extraction order,
// fields in schema order.
func (t *TermSheet) EachField(fn func(section, field string, rec *FieldRecord)) {
	for _, name := range SectionNames {
		s := t.sections[name]
		s.Each(func(field string, rec *FieldRecord) {
			fn(name, field, rec)
		})
	}
}

// ConflictEntry surfaces one conflicted field with all competing readings.
type ConflictEntry struct {
	Section      string             `json:"section"`
	Field        string             `json:"field"`
	CurrentValue *string            `json:"current_value"`
	Conflicts    []ConflictingValue `json:"conflicts"`
}

// Conflicts lists every field that carries conflicting alternative values.
func (t *TermSheet) Conflicts() []ConflictEntry {
	var out []ConflictEntry
	t.EachField(func(section, field string, rec *FieldRecord) {
		if len(rec.Conflicts) > 0 {
			out = append(out, ConflictEntry{
				Section:      section,
				Field:        field,
				CurrentValue: rec.Value,
				Conflicts:    rec.Conflicts,
			})
		}
	})
	return out
}

// MissingRequired lists required fields that extraction did not locate.
func (t *TermSheet) MissingRequired() []FieldRef {
	var out []FieldRef
	for _, ref := range RequiredFields {
		rec, err := t.Field(ref.Section, ref.Field)
		if err != nil {
			continue
		}
		if !rec.Found || rec.Value == nil {
			out = append(out, ref)
		}
	}
	return out
}

// termSheetJSON is the persisted shape of a term sheet.
type termSheetJSON struct {
	DocumentType string                  `json:"document_type"`
	ExtractedAt  time.Time               `json:"extracted_at"`
	Sections     map[string]*jsonSection `json:"sections"`
}

// jsonSection defers section decoding until the owning slot is known.
type jsonSection struct {
	raw json.RawMessage
}

func (j *jsonSection) MarshalJSON() ([]byte, error)    { return j.raw, nil }
func (j *jsonSection) UnmarshalJSON(data []byte) error { j.raw = data; return nil }

// MarshalJSON emits the persisted structured form: document metadata plus a
// sections object keyed by section name.
func (t *TermSheet) MarshalJSON() ([]byte, error) {
	out := termSheetJSON{
		DocumentType: t.DocumentType,
		ExtractedAt:  t.ExtractedAt,
		Sections:     make(map[string]*jsonSection, len(SectionNames)),
	}
	for name, s := range t.sections {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		out.Sections[name] = &jsonSection{raw: raw}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a term sheet from its persisted form. Sections and
// fields outside the fixed schema are dropped; the round trip is lossless
// for everything the schema declares.
func (t *TermSheet) UnmarshalJSON(data []byte) error {
	var in termSheetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	fresh := NewTermSheet()
	t.DocumentType = in.DocumentType
	t.ExtractedAt = in.ExtractedAt
	t.sections = fresh.sections

	for name, js := range in.Sections {
		s, ok := t.sections[name]
		if !ok || js == nil {
			continue
		}
		if err := json.Unmarshal(js.raw, s); err != nil {
			return err
		}
	}
	return nil
}
