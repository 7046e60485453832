// Package tracker defines the contract with the external issue tracker.
package tracker

import (
	"context"
	"errors"
	"fmt"
)

// Issue type names used when mirroring tasks.
const (
	IssueTypeTask    = "Task"
	IssueTypeSubtask = "Sub-task"
)

// IssueRequest describes an issue to create.
type IssueRequest struct {
	Summary     string
	IssueType   string
	Description string
	AssigneeID  string
	ParentKey   string
	Labels      []string
	// PriorityName is informational and never sent to the tracker.
	PriorityName string
}

// IssueRef identifies a created issue.
type IssueRef struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Issue is the subset of remote issue state the tool reads back.
type Issue struct {
	ID         string         `json:"id"`
	Key        string         `json:"key"`
	Summary    string         `json:"summary"`
	StatusName string         `json:"status"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Client talks to the issue tracker. Callers record failures and never retry.
type Client interface {
	CreateIssue(ctx context.Context, req IssueRequest) (IssueRef, error)
	GetIssue(ctx context.Context, key string) (*Issue, error)
	TransitionIssue(ctx context.Context, key, transitionID string) error
}

// ErrorKind classifies why a tracker call failed.
type ErrorKind string

const (
	KindUnreachable      ErrorKind = "unreachable"
	KindTimeout          ErrorKind = "timeout"
	KindRemote           ErrorKind = "remote"
	KindInvalidResponse  ErrorKind = "invalid_response"
	KindUnknownIssueType ErrorKind = "unknown_issue_type"
	KindNotConfigured    ErrorKind = "not_configured"
)

// Error is a failed tracker call.
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tracker %s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a tracker error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Kind
	}
	return ""
}

// ErrNotConfigured is wrapped by Unconfigured's errors.
var ErrNotConfigured = errors.New("issue tracker is not configured")

// Unconfigured is the client used when no tracker credentials are set.
// Every call fails with KindNotConfigured.
type Unconfigured struct{}

func (Unconfigured) CreateIssue(context.Context, IssueRequest) (IssueRef, error) {
	return IssueRef{}, &Error{Op: "create issue", Kind: KindNotConfigured, Err: ErrNotConfigured}
}

func (Unconfigured) GetIssue(context.Context, string) (*Issue, error) {
	return nil, &Error{Op: "get issue", Kind: KindNotConfigured, Err: ErrNotConfigured}
}

func (Unconfigured) TransitionIssue(context.Context, string, string) error {
	return &Error{Op: "transition issue", Kind: KindNotConfigured, Err: ErrNotConfigured}
}
