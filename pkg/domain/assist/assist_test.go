package assist

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

func TestSnapshot(t *testing.T) {
	p := &planning.Project{
		ID:                 2,
		Title:              "Portal",
		ProblemDescription: "slow onboarding",
		Tasks: []planning.Task{
			{ID: 10, Number: 1, Title: "Login", Priority: planning.PriorityHigh, RequiredSkills: []string{"react"}},
			{ID: 11, Number: 2, Title: "API", Assignment: &planning.Assignment{EmployeeID: 1}},
		},
	}
	emps := []*team.Employee{{ID: 1, ExternalID: "e1", Name: "Ayse", CapacityHours: 40}}

	snap := Snapshot(p, emps)
	if snap.ProjectID != 2 || snap.Description != "slow onboarding" {
		t.Errorf("snapshot header = %+v", snap)
	}
	if len(snap.Team) != 1 || snap.Team[0].Name != "Ayse" {
		t.Errorf("team = %+v", snap.Team)
	}
	if len(snap.Tasks) != 2 || snap.Tasks[0].TaskID != 1 || snap.Tasks[0].Priority != "high" {
		t.Errorf("tasks = %+v", snap.Tasks)
	}
	if snap.Tasks[0].Assigned || !snap.Tasks[1].Assigned {
		t.Error("assigned flags mismatch")
	}
}

func TestError(t *testing.T) {
	err := &Error{Op: "generate assignments", StatusCode: 503, Err: errors.New("overloaded")}
	if !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("message = %q", err.Error())
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected Unwrap to expose the cause")
	}
}
