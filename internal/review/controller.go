// Package review holds the human-in-the-loop controls: applying field
// edits and gating finalization on full confidence.
package review

import (
	"time"

	"go.uber.org/zap"

	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// UpdateField applies a human edit to one field. The edit is authoritative:
// confidence goes to 1.0, conflicts are cleared, and the source is replaced
// with the manual-edit marker. The decision is appended to decisions and the
// new slice returned. Unknown section or field names return false with the
// term sheet and decision log untouched.
func UpdateField(
	ts *model.TermSheet,
	decisions []model.UserDecision,
	section, field, value, reason string,
) ([]model.UserDecision, bool) {
	rec, err := ts.Field(section, field)
	if err != nil {
		zap.L().Warn("rejecting edit for unknown field",
			zap.String("section", section),
			zap.String("field", field),
			zap.Error(err),
		)
		return decisions, false
	}

	oldValue := rec.Value
	rec.Value = model.StringPtr(value)
	rec.Found = true
	rec.UserEdited = true
	rec.Confidence = 1.0
	rec.Source = &model.SourceReference{File: "user_input", Location: "manual edit"}
	rec.Conflicts = nil

	decisions = append(decisions, model.UserDecision{
		Timestamp:    time.Now(),
		DecisionType: model.DecisionFieldEdit,
		Section:      section,
		Field:        field,
		OldValue:     oldValue,
		NewValue:     value,
		Reason:       reason,
	})

	zap.L().Info("field updated",
		zap.String("section", section),
		zap.String("field", field),
		zap.String("new_value", value),
	)

	return decisions, true
}
