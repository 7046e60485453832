// Package synclog records reconciliation attempts against the issue tracker.
// Entries are append-only. The only allowed change is the single move out of
// in_progress into a final outcome.
package synclog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Type is what a reconciliation attempt covered.
type Type string

const (
	TypeProject Type = "project"
	TypeTask    Type = "task"
	TypeStatus  Type = "status"
)

// Direction is which side was written.
type Direction string

const (
	ToTracker   Direction = "to_tracker"
	FromTracker Direction = "from_tracker"
)

// Status is the outcome of an attempt.
type Status string

const (
	StatusInProgress Status = StateInProgress
	StatusSuccess    Status = StateSuccess
	StatusPartial    Status = StatePartial
	StatusError      Status = StateError
)

// IsFinal reports whether the status is a concluded outcome.
func (s Status) IsFinal() bool {
	return s == StatusSuccess || s == StatusPartial || s == StatusError
}

// ErrAlreadyConcluded is returned when a concluded entry is concluded again.
var ErrAlreadyConcluded = errors.New("sync log already concluded")

// Entry is one reconciliation attempt.
type Entry struct {
	ID           int64           `json:"id"`
	Type         Type            `json:"sync_type"`
	Direction    Direction       `json:"sync_direction"`
	Status       Status          `json:"status"`
	ProjectID    *int64          `json:"project_id"`
	TaskID       *int64          `json:"task_id"`
	Details      json.RawMessage `json:"details,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// EventName labels the entry for subscribers, e.g. "sync.project.partial".
func (e Entry) EventName() string {
	return fmt.Sprintf("sync.%s.%s", e.Type, e.Status)
}

// Open starts an in_progress entry.
func Open(typ Type, dir Direction, projectID, taskID *int64) *Entry {
	return &Entry{
		Type:      typ,
		Direction: dir,
		Status:    StatusInProgress,
		ProjectID: projectID,
		TaskID:    taskID,
		CreatedAt: time.Now().UTC(),
	}
}

// New builds an entry that is already concluded, for attempts that need no
// visible in_progress phase.
func New(typ Type, dir Direction, status Status, projectID, taskID *int64, details any, errMsg string) (*Entry, error) {
	e := Open(typ, dir, projectID, taskID)
	if err := e.Conclude(status, details, errMsg); err != nil {
		return nil, err
	}
	return e, nil
}

// Conclude moves the entry to its final outcome and attaches details.
func (e *Entry) Conclude(status Status, details any, errMsg string) error {
	fsm, err := newLifecycle(string(e.Status))
	if err != nil {
		return err
	}
	if err := fsm.transition(string(status)); err != nil {
		return err
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode sync log details: %w", err)
		}
		e.Details = raw
	}
	e.Status = Status(fsm.current())
	e.ErrorMessage = errMsg
	return nil
}

// OutcomeFor derives the final status of a batch from its error count.
func OutcomeFor(errorCount int) Status {
	if errorCount > 0 {
		return StatusPartial
	}
	return StatusSuccess
}
