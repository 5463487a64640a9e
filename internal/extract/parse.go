package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// rawField mirrors the per-field JSON object the model returns. Value and
// confidence stay loosely typed because models sometimes emit numbers where
// strings were asked for, and vice versa.
type rawField struct {
	Value      any             `json:"value"`
	Source     json.RawMessage `json:"source"`
	Confidence any             `json:"confidence"`
	Conflicts  []rawConflict   `json:"conflicts"`
	Reasoning  string          `json:"reasoning"`
}

type rawConflict struct {
	Source     any `json:"source"`
	Value      any `json:"value"`
	Confidence any `json:"confidence"`
}

// parseSection validates a model response against the section's declared
// schema and builds the section's field records. Undeclared fields are
// ignored; fields whose payload does not decode are skipped with a warning
// and keep their zero-value record. The response as a whole must be a JSON
// object or an error is returned.
func parseSection(sectionName, response string) (*model.Section, error) {
	section, err := model.NewSection(sectionName)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleanJSON(response)), &raw); err != nil {
		return nil, eris.Wrapf(err, "extract: section %s response is not a JSON object", sectionName)
	}

	for fieldName, payload := range raw {
		rec, err := section.Field(fieldName)
		if err != nil {
			continue // undeclared field, ignore
		}

		var rf rawField
		if err := json.Unmarshal(payload, &rf); err != nil {
			zap.L().Warn("skipping malformed field payload",
				zap.String("section", sectionName),
				zap.String("field", fieldName),
				zap.Error(err),
			)
			continue
		}

		parsed, err := fieldRecord(rf)
		if err != nil {
			zap.L().Warn("skipping malformed field payload",
				zap.String("section", sectionName),
				zap.String("field", fieldName),
				zap.Error(err),
			)
			continue
		}
		*rec = parsed
	}

	return section, nil
}

// fieldRecord converts a raw model field into a validated record:
//   - value is stringified; null means not found
//   - a source reference requires both file and location as non-empty strings
//   - derived_from_policy is a substring check on the raw source object, so
//     it holds even when the reference itself was rejected
//   - conflicts missing source or value are dropped; conflict confidence
//     defaults to 0.5 when absent or unparsable
//   - field confidence defaults to 0.5 when absent; a present but
//     non-numeric confidence fails the field's parse
func fieldRecord(rf rawField) (model.FieldRecord, error) {
	rec := model.FieldRecord{
		Confidence: 0.5,
		Reasoning:  rf.Reasoning,
	}

	// found tracks value presence, not truthiness: an explicit empty string
	// still counts as found.
	if rf.Value != nil {
		rec.Value = model.StringPtr(stringify(rf.Value))
		rec.Found = true
	}

	if rf.Confidence != nil {
		c, ok := toFloat64(rf.Confidence)
		if !ok {
			return model.FieldRecord{}, eris.Errorf("extract: unparsable confidence %v", rf.Confidence)
		}
		rec.Confidence = c
	}

	if len(rf.Source) > 0 {
		var src struct {
			File     any `json:"file"`
			Location any `json:"location"`
		}
		if err := json.Unmarshal(rf.Source, &src); err == nil {
			file, fileOK := src.File.(string)
			location, locOK := src.Location.(string)
			if fileOK && locOK && file != "" && location != "" {
				rec.Source = &model.SourceReference{File: file, Location: location}
			}
		}
		rec.DerivedFromPolicy = strings.Contains(string(rf.Source), "firm_policy")
	}

	for _, c := range rf.Conflicts {
		source, sourceOK := conflictSource(c.Source)
		value := stringify(c.Value)
		if !sourceOK || value == "" {
			continue
		}
		confidence := 0.5
		if f, ok := toFloat64(c.Confidence); ok {
			confidence = f
		}
		rec.Conflicts = append(rec.Conflicts, model.ConflictingValue{
			Source:     source,
			Value:      value,
			Confidence: confidence,
		})
	}

	return rec, nil
}

// conflictSource accepts either the object form {file, location} or a bare
// file name string.
func conflictSource(v any) (model.SourceReference, bool) {
	switch s := v.(type) {
	case string:
		if s == "" {
			return model.SourceReference{}, false
		}
		return model.SourceReference{File: s}, true
	case map[string]any:
		file, _ := s["file"].(string)
		if file == "" {
			return model.SourceReference{}, false
		}
		location, _ := s["location"].(string)
		return model.SourceReference{File: file, Location: location}, true
	default:
		return model.SourceReference{}, false
	}
}

// stringify renders a JSON scalar as a string. Null and empty values come
// back as "".
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// cleanJSON strips markdown code fences and trims a response down to its
// outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
