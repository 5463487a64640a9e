package model

import "time"

// Decision types recorded in the session log.
const (
	DecisionFieldEdit          = "field_edit"
	DecisionConflictResolution = "conflict_resolution"
	DecisionApproval           = "approval"
)

// UserDecision is one append-only entry in a session's decision log. Entries
// are written by the review controller and never mutated or removed.
type UserDecision struct {
	Timestamp    time.Time `json:"timestamp"`
	DecisionType string    `json:"decision_type"`
	Section      string    `json:"section"`
	Field        string    `json:"field"`
	OldValue     *string   `json:"old_value,omitempty"`
	NewValue     string    `json:"new_value"`
	Reason       string    `json:"reason,omitempty"`
}
