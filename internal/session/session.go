// Package session tracks the lifecycle of one extraction-to-finalization
// workflow and stores live sessions for the serve mode.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crestline-vc/termsheet-cli/internal/model"
)

// State is the session lifecycle phase.
type State string

const (
	StateInit       State = "init"
	StateExtracting State = "extracting"
	StateReviewing  State = "reviewing"
	StateComplete   State = "complete"
)

// ErrInvalidTransition is returned when a lifecycle method is called out of
// order, including any attempt to move a completed session.
var ErrInvalidTransition = errors.New("session: invalid state transition")

// Session is one extraction workflow: a term sheet under construction, the
// decision log, and the LLM call records accumulated so far.
//
// The mutex serializes the serve mode's concurrent handlers. Sessions are
// independent of each other; holding one session's lock never blocks
// another session.
type Session struct {
	mu sync.Mutex

	ID        string               `json:"session_id"`
	State     State                `json:"state"`
	TermSheet *model.TermSheet     `json:"term_sheet,omitempty"`
	Decisions []model.UserDecision `json:"user_decisions"`
	Calls     []model.CallRecord   `json:"llm_calls"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// New creates a session in the initial state with a fresh UUID.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithLock runs fn while holding the session's mutex. All reads and writes
// of session fields in the serve mode go through here.
func (s *Session) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// BeginExtraction moves INIT → EXTRACTING. Re-entering EXTRACTING is
// allowed so a failed run can be retried.
func (s *Session) BeginExtraction() error {
	if s.State != StateInit && s.State != StateExtracting {
		return ErrInvalidTransition
	}
	s.State = StateExtracting
	s.touch()
	return nil
}

// CompleteExtraction installs the extracted term sheet and call records and
// moves EXTRACTING → REVIEWING. On a failed run this is never called, so
// the session stays in EXTRACTING and the run can be retried.
func (s *Session) CompleteExtraction(ts *model.TermSheet, calls []model.CallRecord) error {
	if s.State != StateExtracting {
		return ErrInvalidTransition
	}
	s.TermSheet = ts
	s.Calls = append(s.Calls, calls...)
	s.State = StateReviewing
	s.touch()
	return nil
}

// RecordEdit appends to the decision log. Edits keep the session in
// REVIEWING; there is no separate editing state.
func (s *Session) RecordEdit(decisions []model.UserDecision) error {
	if s.State != StateReviewing {
		return ErrInvalidTransition
	}
	s.Decisions = decisions
	s.touch()
	return nil
}

// Finalize moves REVIEWING → COMPLETE. COMPLETE is terminal: no method
// transitions out of it.
func (s *Session) Finalize() error {
	if s.State != StateReviewing {
		return ErrInvalidTransition
	}
	s.State = StateComplete
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
