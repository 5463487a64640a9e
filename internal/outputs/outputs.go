// Package outputs writes the flat-file deliverables of a run: the extracted
// data, the conflict report, the decision log, the rendered term sheet, and
// an execution summary.
package outputs

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/crestline-vc/termsheet-cli/internal/model"
	"github.com/crestline-vc/termsheet-cli/internal/render"
	"github.com/crestline-vc/termsheet-cli/internal/session"
	"github.com/crestline-vc/termsheet-cli/pkg/anthropic"
)

// File names under the output directory.
const (
	FileExtractedData = "extracted_data.json"
	FileConflicts     = "conflicts.json"
	FileUserDecisions = "user_decisions.json"
	FileTermSheet     = "term_sheet.md"
	FileExecutionLog  = "execution_log.json"
)

// WriteExtractedData persists the full term sheet aggregate as JSON.
func WriteExtractedData(ts *model.TermSheet, dir string) (string, error) {
	return writeJSON(dir, FileExtractedData, ts)
}

// conflictReport is the conflicts.json payload.
type conflictReport struct {
	Conflicts []conflictEntry `json:"conflicts"`
}

type conflictEntry struct {
	Field         string          `json:"field"`
	Values        []conflictValue `json:"values"`
	Resolution    string          `json:"resolution"`
	ResolvedValue *string         `json:"resolved_value"`
	ResolvedAt    *string         `json:"resolved_at"`
}

type conflictValue struct {
	Value  *string `json:"value"`
	Source any     `json:"source"`
}

// WriteConflicts persists every conflicted field with all competing values.
// Resolution is "user_selected" when a human edited the field, otherwise
// "agent_selected" (the extractor's chosen value stands).
func WriteConflicts(ts *model.TermSheet, dir string) (string, error) {
	report := conflictReport{Conflicts: []conflictEntry{}}

	ts.EachField(func(section, field string, rec *model.FieldRecord) {
		if len(rec.Conflicts) == 0 {
			return
		}

		var chosenSource any = "extracted"
		if rec.Source != nil {
			chosenSource = rec.Source
		}

		values := []conflictValue{{Value: rec.Value, Source: chosenSource}}
		for _, c := range rec.Conflicts {
			v := c.Value
			values = append(values, conflictValue{Value: &v, Source: c.Source})
		}

		entry := conflictEntry{
			Field:         section + "." + field,
			Values:        values,
			Resolution:    "agent_selected",
			ResolvedValue: rec.Value,
		}
		if rec.UserEdited {
			entry.Resolution = "user_selected"
			now := time.Now().Format(time.RFC3339)
			entry.ResolvedAt = &now
		}
		report.Conflicts = append(report.Conflicts, entry)
	})

	return writeJSON(dir, FileConflicts, report)
}

// decisionLog is the user_decisions.json payload.
type decisionLog struct {
	Decisions []decisionEntry `json:"decisions"`
}

type decisionEntry struct {
	Timestamp string  `json:"timestamp"`
	Type      string  `json:"type"`
	Section   string  `json:"section"`
	Field     string  `json:"field"`
	OldValue  *string `json:"old_value"`
	NewValue  string  `json:"new_value"`
	Reason    string  `json:"reason,omitempty"`
}

// WriteUserDecisions persists the append-only decision log.
func WriteUserDecisions(decisions []model.UserDecision, dir string) (string, error) {
	log := decisionLog{Decisions: make([]decisionEntry, 0, len(decisions))}
	for _, d := range decisions {
		log.Decisions = append(log.Decisions, decisionEntry{
			Timestamp: d.Timestamp.Format(time.RFC3339),
			Type:      d.DecisionType,
			Section:   d.Section,
			Field:     d.Field,
			OldValue:  d.OldValue,
			NewValue:  d.NewValue,
			Reason:    d.Reason,
		})
	}
	return writeJSON(dir, FileUserDecisions, log)
}

// WriteTermSheet renders and persists the markdown term sheet.
func WriteTermSheet(ts *model.TermSheet, dir string) (string, error) {
	markdown, err := render.TermSheet(ts)
	if err != nil {
		return "", err
	}

	if err := ensureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileTermSheet)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", eris.Wrap(err, "outputs: write term sheet")
	}
	return path, nil
}

// executionLog is the execution_log.json payload.
type executionLog struct {
	SessionID         string  `json:"session_id"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       string  `json:"completed_at"`
	FinalState        string  `json:"final_state"`
	LLMCalls          int     `json:"llm_calls"`
	InputTokens       int     `json:"input_tokens"`
	OutputTokens      int     `json:"output_tokens"`
	EstimatedCostUSD  float64 `json:"estimated_cost_usd"`
	UserDecisions     int     `json:"user_decisions"`
	ConflictsResolved int     `json:"conflicts_resolved"`
}

// WriteExecutionLog persists the run summary: token totals, estimated cost
// for the given model, and decision counts.
func WriteExecutionLog(sess *session.Session, llmModel string, dir string) (string, error) {
	usage := model.TotalUsage(sess.Calls)

	resolved := 0
	for _, d := range sess.Decisions {
		if d.DecisionType == model.DecisionConflictResolution {
			resolved++
		}
	}

	cost := anthropic.EstimateCostTokens(llmModel, usage.InputTokens, usage.OutputTokens)

	log := executionLog{
		SessionID:         sess.ID,
		StartedAt:         sess.CreatedAt.Format(time.RFC3339),
		CompletedAt:       time.Now().Format(time.RFC3339),
		FinalState:        string(sess.State),
		LLMCalls:          len(sess.Calls),
		InputTokens:       usage.InputTokens,
		OutputTokens:      usage.OutputTokens,
		EstimatedCostUSD:  math.Round(cost*10000) / 10000,
		UserDecisions:     len(sess.Decisions),
		ConflictsResolved: resolved,
	}

	return writeJSON(dir, FileExecutionLog, log)
}

// WriteAll writes every output file and returns name → path. The term sheet
// aggregate must be present on the session.
func WriteAll(sess *session.Session, llmModel string, dir string) (map[string]string, error) {
	if sess.TermSheet == nil {
		return nil, eris.New("outputs: session has no term sheet")
	}

	paths := make(map[string]string, 5)

	writers := []struct {
		name string
		fn   func() (string, error)
	}{
		{"extracted_data", func() (string, error) { return WriteExtractedData(sess.TermSheet, dir) }},
		{"conflicts", func() (string, error) { return WriteConflicts(sess.TermSheet, dir) }},
		{"user_decisions", func() (string, error) { return WriteUserDecisions(sess.Decisions, dir) }},
		{"term_sheet", func() (string, error) { return WriteTermSheet(sess.TermSheet, dir) }},
		{"execution_log", func() (string, error) { return WriteExecutionLog(sess, llmModel, dir) }},
	}

	for _, w := range writers {
		path, err := w.fn()
		if err != nil {
			return paths, err
		}
		paths[w.name] = path
	}

	return paths, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "outputs: create output dir")
	}
	return nil
}

func writeJSON(dir, name string, v any) (string, error) {
	if err := ensureDir(dir); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", eris.Wrapf(err, "outputs: marshal %s", name)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", eris.Wrapf(err, "outputs: write %s", name)
	}
	return path, nil
}
