package outputs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline-vc/termsheet-cli/internal/model"
	"github.com/crestline-vc/termsheet-cli/internal/session"
)

func reviewingSession(t *testing.T) *session.Session {
	t.Helper()

	sess := session.New()
	require.NoError(t, sess.BeginExtraction())

	ts := model.NewTermSheet()
	rec, err := ts.Field("parties", "company_name")
	require.NoError(t, err)
	rec.Value = model.StringPtr("Acme Robotics, Inc.")
	rec.Found = true
	rec.Confidence = 1.0
	rec.Source = &model.SourceReference{File: "Model.xlsx", Location: "Summary!B2"}

	valuation, err := ts.Field("deal_economics", "pre_money_valuation")
	require.NoError(t, err)
	valuation.Value = model.StringPtr("$20,000,000")
	valuation.Found = true
	valuation.Conflicts = []model.ConflictingValue{
		{Source: model.SourceReference{File: "Termsheets/old.docx", Location: "Valuation"}, Value: "$18,000,000", Confidence: 0.5},
	}

	calls := []model.CallRecord{
		{Section: "parties", InputTokens: 1000, OutputTokens: 200},
		{Section: "deal_economics", InputTokens: 1500, OutputTokens: 300},
	}
	require.NoError(t, sess.CompleteExtraction(ts, calls))

	return sess
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestWriteExtractedData(t *testing.T) {
	t.Parallel()

	sess := reviewingSession(t)
	dir := t.TempDir()

	path, err := WriteExtractedData(sess.TermSheet, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileExtractedData), path)

	var restored model.TermSheet
	readJSON(t, path, &restored)

	rec, err := restored.Field("parties", "company_name")
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics, Inc.", rec.ValueOr(""))
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestWriteConflicts(t *testing.T) {
	t.Parallel()

	t.Run("agent selected", func(t *testing.T) {
		t.Parallel()

		sess := reviewingSession(t)
		path, err := WriteConflicts(sess.TermSheet, t.TempDir())
		require.NoError(t, err)

		var report struct {
			Conflicts []struct {
				Field      string `json:"field"`
				Resolution string `json:"resolution"`
				Values     []struct {
					Value *string `json:"value"`
				} `json:"values"`
				ResolvedValue *string `json:"resolved_value"`
				ResolvedAt    *string `json:"resolved_at"`
			} `json:"conflicts"`
		}
		readJSON(t, path, &report)

		require.Len(t, report.Conflicts, 1)
		c := report.Conflicts[0]
		assert.Equal(t, "deal_economics.pre_money_valuation", c.Field)
		assert.Equal(t, "agent_selected", c.Resolution)
		require.Len(t, c.Values, 2)
		assert.Equal(t, "$20,000,000", *c.Values[0].Value)
		assert.Equal(t, "$18,000,000", *c.Values[1].Value)
		assert.Equal(t, "$20,000,000", *c.ResolvedValue)
		assert.Nil(t, c.ResolvedAt)
	})

	t.Run("user selected after edit", func(t *testing.T) {
		t.Parallel()

		sess := reviewingSession(t)
		rec, err := sess.TermSheet.Field("deal_economics", "pre_money_valuation")
		require.NoError(t, err)
		// A user edit clears conflicts, so fake a resolved-but-conflicted
		// record the way a partial snapshot would look mid-edit.
		rec.UserEdited = true

		path, err := WriteConflicts(sess.TermSheet, t.TempDir())
		require.NoError(t, err)

		var report struct {
			Conflicts []struct {
				Resolution string  `json:"resolution"`
				ResolvedAt *string `json:"resolved_at"`
			} `json:"conflicts"`
		}
		readJSON(t, path, &report)
		require.Len(t, report.Conflicts, 1)
		assert.Equal(t, "user_selected", report.Conflicts[0].Resolution)
		assert.NotNil(t, report.Conflicts[0].ResolvedAt)
	})

	t.Run("no conflicts yields empty list", func(t *testing.T) {
		t.Parallel()

		path, err := WriteConflicts(model.NewTermSheet(), t.TempDir())
		require.NoError(t, err)

		var report struct {
			Conflicts []any `json:"conflicts"`
		}
		readJSON(t, path, &report)
		assert.Empty(t, report.Conflicts)
	})
}

func TestWriteUserDecisions(t *testing.T) {
	t.Parallel()

	old := "old"
	decisions := []model.UserDecision{
		{
			Timestamp:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
			DecisionType: model.DecisionFieldEdit,
			Section:      "parties",
			Field:        "company_name",
			OldValue:     &old,
			NewValue:     "new",
			Reason:       "corrected",
		},
	}

	path, err := WriteUserDecisions(decisions, t.TempDir())
	require.NoError(t, err)

	var log struct {
		Decisions []struct {
			Timestamp string  `json:"timestamp"`
			Type      string  `json:"type"`
			OldValue  *string `json:"old_value"`
			NewValue  string  `json:"new_value"`
		} `json:"decisions"`
	}
	readJSON(t, path, &log)

	require.Len(t, log.Decisions, 1)
	assert.Equal(t, "field_edit", log.Decisions[0].Type)
	assert.Equal(t, "2026-08-30T12:00:00Z", log.Decisions[0].Timestamp)
	assert.Equal(t, "old", *log.Decisions[0].OldValue)
	assert.Equal(t, "new", log.Decisions[0].NewValue)
}

func TestWriteExecutionLog(t *testing.T) {
	t.Parallel()

	sess := reviewingSession(t)
	path, err := WriteExecutionLog(sess, "claude-sonnet-4-5-20250929", t.TempDir())
	require.NoError(t, err)

	var log struct {
		SessionID        string  `json:"session_id"`
		FinalState       string  `json:"final_state"`
		LLMCalls         int     `json:"llm_calls"`
		InputTokens      int     `json:"input_tokens"`
		OutputTokens     int     `json:"output_tokens"`
		EstimatedCostUSD float64 `json:"estimated_cost_usd"`
	}
	readJSON(t, path, &log)

	assert.Equal(t, sess.ID, log.SessionID)
	assert.Equal(t, "reviewing", log.FinalState)
	assert.Equal(t, 2, log.LLMCalls)
	assert.Equal(t, 2500, log.InputTokens)
	assert.Equal(t, 500, log.OutputTokens)
	// 2500 in @ $3/MTok + 500 out @ $15/MTok.
	assert.InDelta(t, 0.015, log.EstimatedCostUSD, 1e-9)
}

func TestWriteAll(t *testing.T) {
	t.Parallel()

	t.Run("writes all five files", func(t *testing.T) {
		t.Parallel()

		sess := reviewingSession(t)
		dir := t.TempDir()

		paths, err := WriteAll(sess, "claude-sonnet-4-5-20250929", dir)
		require.NoError(t, err)
		require.Len(t, paths, 5)

		for _, name := range []string{
			FileExtractedData, FileConflicts, FileUserDecisions, FileTermSheet, FileExecutionLog,
		} {
			_, err := os.Stat(filepath.Join(dir, name))
			assert.NoError(t, err, name)
		}
	})

	t.Run("no term sheet", func(t *testing.T) {
		t.Parallel()

		_, err := WriteAll(session.New(), "claude-sonnet-4-5-20250929", t.TempDir())
		assert.Error(t, err)
	})
}
