package assignment

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

func employee(id string, load, capacity int, skills ...team.Skill) *team.Employee {
	return &team.Employee{
		ExternalID:       id,
		Name:             "Employee " + id,
		CapacityHours:    capacity,
		CurrentLoadHours: load,
		Skills:           skills,
	}
}

func TestMatchRatio_NoRequirements(t *testing.T) {
	cases := []*team.Employee{
		employee("e1", 0, 40),
		employee("e2", 0, 40, team.Skill{Name: "go", Level: 5}),
	}
	for _, e := range cases {
		ratio, matched := MatchRatio(nil, e)
		if ratio != NoRequirementsMatchRatio {
			t.Errorf("%s: ratio = %v, want 0.5", e.ExternalID, ratio)
		}
		if len(matched) != 0 {
			t.Errorf("%s: matched = %v, want none", e.ExternalID, matched)
		}
	}
}

func TestMatchRatio_CaseInsensitive(t *testing.T) {
	e := employee("e1", 0, 40, team.Skill{Name: "Python", Level: 4})
	ratio, matched := MatchRatio([]string{"PYTHON", "redis", "python"}, e)
	if ratio != 0.5 {
		t.Errorf("ratio = %v, want 0.5", ratio)
	}
	if !reflect.DeepEqual(matched, []string{"python"}) {
		t.Errorf("matched = %v", matched)
	}
}

func TestRemainingRatio(t *testing.T) {
	tests := []struct {
		name     string
		load     int
		capacity int
		want     float64
	}{
		{"idle", 0, 40, 1},
		{"quarter booked", 10, 40, 0.75},
		{"full", 40, 40, 0},
		{"overloaded", 55, 40, 0},
		{"zero capacity", 0, 0, 0},
		{"negative capacity", 5, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemainingRatio(employee("e1", tt.load, tt.capacity)); got != tt.want {
				t.Errorf("RemainingRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScore_AlwaysInUnitInterval(t *testing.T) {
	skillSets := [][]team.Skill{
		nil,
		{{Name: "go", Level: 1}},
		{{Name: "go", Level: 5}, {Name: "sql", Level: 3}},
	}
	requirements := [][]string{nil, {"go"}, {"go", "sql", "k8s"}, {"rust"}}
	for _, req := range requirements {
		task := &planning.Task{RequiredSkills: req}
		for _, skills := range skillSets {
			for _, capacity := range []int{-5, 0, 1, 40} {
				for _, load := range []int{0, 1, 39, 40, 200} {
					s := Score(task, employee("e1", load, capacity, skills...))
					if s < 0 || s > 1 {
						t.Fatalf("score %v out of range for req=%v skills=%v load=%d cap=%d", s, req, skills, load, capacity)
					}
				}
			}
		}
	}
}

func TestSelectBest_Scenario(t *testing.T) {
	task := &planning.Task{Number: 1, Title: "T1", RequiredSkills: []string{"python", "redis"}}
	a := employee("A", 38, 40, team.Skill{Name: "python", Level: 5})
	b := employee("B", 10, 40, team.Skill{Name: "python", Level: 5}, team.Skill{Name: "redis", Level: 4})

	if got := Score(task, a); got != 0.365 {
		t.Errorf("score A = %v, want 0.365", got)
	}
	if got := Score(task, b); got != 0.925 {
		t.Errorf("score B = %v, want 0.925", got)
	}

	sel, ok := SelectBest(task, []*team.Employee{a, b})
	if !ok {
		t.Fatal("expected a winner")
	}
	if sel.Employee != b {
		t.Errorf("winner = %s, want B", sel.Employee.ExternalID)
	}
	if sel.Score != 0.925 {
		t.Errorf("winning score = %v, want 0.925", sel.Score)
	}
	if !reflect.DeepEqual(sel.MatchedSkills, []string{"python", "redis"}) {
		t.Errorf("matched = %v", sel.MatchedSkills)
	}
}

func TestSelectBest_TiesKeepFirst(t *testing.T) {
	task := &planning.Task{RequiredSkills: []string{"go"}}
	first := employee("e1", 0, 40, team.Skill{Name: "go", Level: 3})
	second := employee("e2", 0, 40, team.Skill{Name: "go", Level: 5})
	sel, _ := SelectBest(task, []*team.Employee{first, second})
	if sel.Employee != first {
		t.Errorf("winner = %s, want e1", sel.Employee.ExternalID)
	}
}

func TestSelectBest_ZeroScoreStillWins(t *testing.T) {
	task := &planning.Task{RequiredSkills: []string{"cobol"}}
	booked := employee("e1", 40, 40, team.Skill{Name: "go", Level: 3})
	sel, ok := SelectBest(task, []*team.Employee{booked})
	if !ok {
		t.Fatal("expected a winner for a non-empty pool")
	}
	if sel.Score != 0 {
		t.Errorf("score = %v, want 0", sel.Score)
	}
}

func TestSelectBest_EmptyPool(t *testing.T) {
	if _, ok := SelectBest(&planning.Task{}, nil); ok {
		t.Error("expected no winner for an empty pool")
	}
}

func TestSkillQuality(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		skills   []team.Skill
		want     float64
	}{
		{"no requirements", nil, nil, 1.0},
		{"no skills", []string{"go"}, nil, 0},
		{"no match", []string{"go"}, []team.Skill{{Name: "java", Level: 5}}, 0},
		{"full expert match", []string{"go"}, []team.Skill{{Name: "Go", Level: 5}}, 1.0},
		// 0.5*0.7 + (4/5)*0.3 = 0.59
		{"half match", []string{"python", "redis"}, []team.Skill{{Name: "python", Level: 4}}, 0.59},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SkillQuality(tt.required, employee("e1", 0, 40, tt.skills...))
			if got != tt.want {
				t.Errorf("SkillQuality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWorkloadScore(t *testing.T) {
	tests := []struct {
		load, capacity int
		want           float64
	}{
		{10, 40, 0.75},
		{0, 40, 1},
		{40, 40, 0},
		{50, 40, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := WorkloadScore(tt.load, tt.capacity); got != tt.want {
			t.Errorf("WorkloadScore(%d, %d) = %v, want %v", tt.load, tt.capacity, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	task := &planning.Task{RequiredSkills: []string{"python", "redis"}}
	a := employee("A", 38, 40, team.Skill{Name: "python", Level: 5})
	b := employee("B", 10, 40, team.Skill{Name: "python", Level: 5}, team.Skill{Name: "redis", Level: 4})
	c := employee("C", 38, 40, team.Skill{Name: "python", Level: 1})

	ranked := Rank(task, []*team.Employee{a, b, c})
	if len(ranked) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(ranked))
	}
	order := []string{ranked[0].EmployeeID, ranked[1].EmployeeID, ranked[2].EmployeeID}
	if !reflect.DeepEqual(order, []string{"B", "A", "C"}) {
		t.Errorf("order = %v, want [B A C]", order)
	}
	if !reflect.DeepEqual(ranked[1].MissingSkills, []string{"redis"}) {
		t.Errorf("missing skills for A = %v", ranked[1].MissingSkills)
	}
	if ranked[0].WorkloadScore != 0.75 || ranked[0].LoadRatio != 0.25 {
		t.Errorf("unexpected workload numbers for B: %+v", ranked[0])
	}
}

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name          string
		required      []string
		e             *team.Employee
		skillW, loadW float64
		want          AssignmentScore
	}{
		{
			name:     "full match quarter booked",
			required: []string{"python", "go"},
			e:        employee("e1", 10, 40, team.Skill{Name: "python", Level: 5}, team.Skill{Name: "Go", Level: 3}),
			skillW:   DefaultQualityWeight, loadW: DefaultWorkloadWeight,
			want: AssignmentScore{TotalScore: 0.88, SkillScore: 0.94, WorkloadScore: 0.75,
				Breakdown: AssignmentBreakdown{SkillWeight: 0.7, WorkloadWeight: 0.3, CurrentLoadRatio: 0.25}},
		},
		{
			name:     "half match mostly booked",
			required: []string{"python", "rust"},
			e:        employee("e2", 30, 40, team.Skill{Name: "python", Level: 4}),
			skillW:   DefaultQualityWeight, loadW: DefaultWorkloadWeight,
			want: AssignmentScore{TotalScore: 0.49, SkillScore: 0.59, WorkloadScore: 0.25,
				Breakdown: AssignmentBreakdown{SkillWeight: 0.7, WorkloadWeight: 0.3, CurrentLoadRatio: 0.75}},
		},
		{
			name:     "custom weights",
			required: []string{"python", "rust"},
			e:        employee("e2", 30, 40, team.Skill{Name: "python", Level: 4}),
			skillW:   0.5, loadW: 0.5,
			want: AssignmentScore{TotalScore: 0.42, SkillScore: 0.59, WorkloadScore: 0.25,
				Breakdown: AssignmentBreakdown{SkillWeight: 0.5, WorkloadWeight: 0.5, CurrentLoadRatio: 0.75}},
		},
		{
			name:   "no requirements fully booked",
			e:      employee("e3", 40, 40),
			skillW: DefaultQualityWeight, loadW: DefaultWorkloadWeight,
			want: AssignmentScore{TotalScore: 0.7, SkillScore: 1, WorkloadScore: 0,
				Breakdown: AssignmentBreakdown{SkillWeight: 0.7, WorkloadWeight: 0.3, CurrentLoadRatio: 1}},
		},
		{
			name:     "no capacity",
			required: []string{"go"},
			e:        employee("e4", 0, 0),
			skillW:   DefaultQualityWeight, loadW: DefaultWorkloadWeight,
			want: AssignmentScore{TotalScore: 0, SkillScore: 0, WorkloadScore: 0,
				Breakdown: AssignmentBreakdown{SkillWeight: 0.7, WorkloadWeight: 0.3, CurrentLoadRatio: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedScore(tt.required, tt.e, tt.skillW, tt.loadW)
			if got != tt.want {
				t.Errorf("WeightedScore() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_ReportsWeightedScoreSeparately(t *testing.T) {
	task := &planning.Task{RequiredSkills: []string{"python", "redis"}}
	b := employee("B", 10, 40, team.Skill{Name: "python", Level: 5}, team.Skill{Name: "redis", Level: 4})

	got := Evaluate(task, b)
	if got.Assignment.TotalScore != 0.9 {
		t.Errorf("assignment total = %v, want 0.9", got.Assignment.TotalScore)
	}
	if got.Score != Score(task, b) {
		t.Errorf("selection score = %v, want %v", got.Score, Score(task, b))
	}
	if got.Assignment.SkillScore != got.SkillQuality || got.Assignment.Breakdown.CurrentLoadRatio != got.LoadRatio {
		t.Errorf("breakdown disagrees with flat fields: %+v", got)
	}
}
