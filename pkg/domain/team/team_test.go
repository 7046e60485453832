package team

import (
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/domain"
)

func TestNormalizeSkillNames(t *testing.T) {
	got := NormalizeSkillNames([]string{"Python", " redis", "python", "", "FastAPI"})
	want := []string{"fastapi", "python", "redis"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeSkillNames = %v, want %v", got, want)
	}
}

func TestEmployee_SkillSet(t *testing.T) {
	e := &Employee{Skills: []Skill{{Name: "Go", Level: 2}, {Name: "go", Level: 4}, {Name: "SQL", Level: 3}}}
	set := e.SkillSet()
	if set["go"] != 4 {
		t.Errorf("expected higher duplicate level to win, got %d", set["go"])
	}
	if set["sql"] != 3 {
		t.Errorf("expected sql level 3, got %d", set["sql"])
	}
}

func TestEmployee_Validate(t *testing.T) {
	tests := []struct {
		name  string
		emp   Employee
		field string
	}{
		{"valid", Employee{ExternalID: "e14", Name: "Yavuz"}, ""},
		{"missing id", Employee{Name: "Yavuz"}, "employee_id"},
		{"bad id format", Employee{ExternalID: "x14", Name: "Yavuz"}, "employee_id"},
		{"missing name", Employee{ExternalID: "e1"}, "name"},
		{"negative load", Employee{ExternalID: "e1", Name: "A", CurrentLoadHours: -1}, "current_load_hours"},
		{"skill level out of range", Employee{ExternalID: "e1", Name: "A", Skills: []Skill{{Name: "go", Level: 6}}}, "skills"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.emp.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("field = %q, want %q", vErr.Field, tt.field)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Error("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func TestEmployee_ApplyDefaults(t *testing.T) {
	e := &Employee{}
	e.ApplyDefaults()
	if e.CapacityHours != DefaultCapacityHours {
		t.Errorf("capacity = %d, want %d", e.CapacityHours, DefaultCapacityHours)
	}
	if e.Skills == nil || e.Languages == nil {
		t.Error("expected empty, non-nil slices")
	}
}

func TestSkillsFromNames(t *testing.T) {
	skills := SkillsFromNames([]string{"python", "", "react"})
	if len(skills) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(skills))
	}
	for _, s := range skills {
		if s.Level != DefaultSkillLevel {
			t.Errorf("skill %s level = %d, want %d", s.Name, s.Level, DefaultSkillLevel)
		}
	}
}
