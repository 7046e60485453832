package synclog

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEntry_Conclude(t *testing.T) {
	tests := []struct {
		name   string
		status Status
	}{
		{"success", StatusSuccess},
		{"partial", StatusPartial},
		{"error", StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid := int64(4)
			e := Open(TypeProject, ToTracker, &pid, nil)
			if e.Status != StatusInProgress {
				t.Fatalf("fresh entry status = %s", e.Status)
			}
			if err := e.Conclude(tt.status, map[string]int{"tasks": 2}, ""); err != nil {
				t.Fatalf("Conclude: %v", err)
			}
			if e.Status != tt.status {
				t.Errorf("status = %s, want %s", e.Status, tt.status)
			}
			var details map[string]int
			if err := json.Unmarshal(e.Details, &details); err != nil || details["tasks"] != 2 {
				t.Errorf("details = %s (%v)", e.Details, err)
			}
		})
	}
}

func TestEntry_ConcludeIsOneShot(t *testing.T) {
	e := Open(TypeTask, ToTracker, nil, nil)
	if err := e.Conclude(StatusSuccess, nil, ""); err != nil {
		t.Fatalf("first Conclude: %v", err)
	}
	for _, next := range []Status{StatusSuccess, StatusError, StatusPartial} {
		err := e.Conclude(next, nil, "late")
		if !errors.Is(err, ErrAlreadyConcluded) {
			t.Errorf("Conclude(%s) after success = %v, want ErrAlreadyConcluded", next, err)
		}
	}
	if e.Status != StatusSuccess || e.ErrorMessage != "" {
		t.Errorf("entry mutated after conclusion: %+v", e)
	}
}

func TestEntry_ConcludeRejectsInProgress(t *testing.T) {
	e := Open(TypeStatus, FromTracker, nil, nil)
	if err := e.Conclude(StatusInProgress, nil, ""); err == nil {
		t.Error("expected error when concluding as in_progress")
	}
}

func TestNew(t *testing.T) {
	tid := int64(9)
	e, err := New(TypeTask, ToTracker, StatusError, nil, &tid, nil, "boom")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.Status != StatusError || e.ErrorMessage != "boom" || *e.TaskID != 9 {
		t.Errorf("unexpected entry %+v", e)
	}
}

func TestOutcomeFor(t *testing.T) {
	if OutcomeFor(0) != StatusSuccess {
		t.Error("no errors should be success")
	}
	if OutcomeFor(3) != StatusPartial {
		t.Error("errors should be partial")
	}
}
