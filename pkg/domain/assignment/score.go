// Package assignment scores employees against tasks and picks assignees.
// The candidate-selection score blends skill coverage with spare capacity.
// Skill quality and workload scores are reported for ranking only.
package assignment

import (
	"math"
	"sort"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// Fixed weights of the selection score.
const (
	SkillWeight    = 0.7
	CapacityWeight = 0.3

	// NoRequirementsMatchRatio is the match ratio of a task without required skills.
	NoRequirementsMatchRatio = 0.5

	// Default weights of the reported assignment score.
	DefaultQualityWeight  = 0.7
	DefaultWorkloadWeight = 0.3
)

// MatchRatio returns |R ∩ E| / |R| and the sorted matched skill names.
func MatchRatio(required []string, e *team.Employee) (float64, []string) {
	req := team.NormalizeSkillNames(required)
	if len(req) == 0 {
		return NoRequirementsMatchRatio, []string{}
	}
	skills := e.SkillSet()
	matched := make([]string, 0, len(req))
	for _, name := range req {
		if _, ok := skills[name]; ok {
			matched = append(matched, name)
		}
	}
	return float64(len(matched)) / float64(len(req)), matched
}

// RemainingRatio is the share of weekly capacity still free, clamped to
// [0, 1]. A non-positive capacity has no room.
func RemainingRatio(e *team.Employee) float64 {
	if e.CapacityHours <= 0 {
		return 0
	}
	capacity := float64(e.CapacityHours)
	return clamp((capacity-float64(e.CurrentLoadHours))/capacity, 0, 1)
}

// Score is the candidate-selection score, rounded to three decimals.
func Score(task *planning.Task, e *team.Employee) float64 {
	match, _ := MatchRatio(task.RequiredSkills, e)
	return combine(match, RemainingRatio(e))
}

func combine(match, remaining float64) float64 {
	return round(SkillWeight*match+CapacityWeight*remaining, 3)
}

// SkillQuality blends match ratio with the average proficiency of the
// matched skills, rounded to two decimals. It is not used for selection.
func SkillQuality(required []string, e *team.Employee) float64 {
	req := team.NormalizeSkillNames(required)
	if len(req) == 0 {
		return 1.0
	}
	skills := e.SkillSet()
	if len(skills) == 0 {
		return 0
	}
	matched, total := 0, 0
	for _, name := range req {
		if lvl, ok := skills[name]; ok {
			matched++
			total += lvl
		}
	}
	if matched == 0 {
		return 0
	}
	ratio := float64(matched) / float64(len(req))
	avgLevel := float64(total) / float64(matched) / float64(team.MaxSkillLevel)
	return round(ratio*0.7+avgLevel*0.3, 2)
}

// WorkloadScore is 1 - load/capacity rounded to two decimals, or 0 when the
// employee has no capacity or is fully booked.
func WorkloadScore(load, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	ratio := float64(load) / float64(capacity)
	if ratio >= 1 {
		return 0
	}
	return round(1-ratio, 2)
}

// AssignmentBreakdown records the inputs of an AssignmentScore.
type AssignmentBreakdown struct {
	SkillWeight      float64 `json:"skill_weight"`
	WorkloadWeight   float64 `json:"workload_weight"`
	CurrentLoadRatio float64 `json:"current_load_ratio"`
}

// AssignmentScore is the weighted blend of skill quality and workload score.
// It is reported alongside a candidate and never drives selection.
type AssignmentScore struct {
	TotalScore    float64             `json:"total_score"`
	SkillScore    float64             `json:"skill_score"`
	WorkloadScore float64             `json:"workload_score"`
	Breakdown     AssignmentBreakdown `json:"breakdown"`
}

// WeightedScore computes total = skill*skillWeight + workload*workloadWeight,
// rounded to two decimals. The load ratio is 1 when capacity is not positive.
func WeightedScore(required []string, e *team.Employee, skillWeight, workloadWeight float64) AssignmentScore {
	skill := SkillQuality(required, e)
	workload := WorkloadScore(e.CurrentLoadHours, e.CapacityHours)
	return AssignmentScore{
		TotalScore:    round(skill*skillWeight+workload*workloadWeight, 2),
		SkillScore:    skill,
		WorkloadScore: workload,
		Breakdown: AssignmentBreakdown{
			SkillWeight:      skillWeight,
			WorkloadWeight:   workloadWeight,
			CurrentLoadRatio: loadRatio(e),
		},
	}
}

func loadRatio(e *team.Employee) float64 {
	if e.CapacityHours <= 0 {
		return 1.0
	}
	return round(float64(e.CurrentLoadHours)/float64(e.CapacityHours), 2)
}

// Breakdown explains how a candidate scored against a task.
type Breakdown struct {
	EmployeeID     string   `json:"employee_id"`
	Name           string   `json:"name"`
	Score          float64  `json:"score"`
	MatchRatio     float64  `json:"match_ratio"`
	RemainingRatio float64  `json:"remaining_ratio"`
	SkillQuality   float64  `json:"skill_score"`
	WorkloadScore  float64  `json:"workload_score"`
	LoadRatio      float64  `json:"current_load_ratio"`
	MatchedSkills  []string `json:"matched_skills"`
	MissingSkills  []string `json:"missing_skills"`

	Assignment AssignmentScore `json:"assignment_score"`
}

// Evaluate computes every metric for one candidate.
func Evaluate(task *planning.Task, e *team.Employee) Breakdown {
	match, matched := MatchRatio(task.RequiredSkills, e)
	remaining := RemainingRatio(e)
	weighted := WeightedScore(task.RequiredSkills, e, DefaultQualityWeight, DefaultWorkloadWeight)

	matchedSet := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		matchedSet[m] = struct{}{}
	}
	missing := []string{}
	for _, r := range team.NormalizeSkillNames(task.RequiredSkills) {
		if _, ok := matchedSet[r]; !ok {
			missing = append(missing, r)
		}
	}

	return Breakdown{
		EmployeeID:     e.ExternalID,
		Name:           e.Name,
		Score:          combine(match, remaining),
		MatchRatio:     match,
		RemainingRatio: remaining,
		SkillQuality:   weighted.SkillScore,
		WorkloadScore:  weighted.WorkloadScore,
		LoadRatio:      weighted.Breakdown.CurrentLoadRatio,
		MatchedSkills:  matched,
		MissingSkills:  missing,
		Assignment:     weighted,
	}
}

// Selection is the winner of SelectBest.
type Selection struct {
	Employee      *team.Employee
	Score         float64
	MatchedSkills []string
}

// SelectBest returns the highest scoring candidate. Ties keep the first
// candidate encountered. The running best starts below zero, so any
// non-empty pool produces a winner; ok is false only for an empty pool.
func SelectBest(task *planning.Task, candidates []*team.Employee) (Selection, bool) {
	best := Selection{Score: -1}
	for _, e := range candidates {
		if e == nil {
			continue
		}
		match, matched := MatchRatio(task.RequiredSkills, e)
		score := combine(match, RemainingRatio(e))
		if score > best.Score {
			best = Selection{Employee: e, Score: score, MatchedSkills: matched}
		}
	}
	if best.Employee == nil {
		return Selection{}, false
	}
	return best, true
}

// Rank evaluates every candidate and orders them by descending score.
// Equal scores keep pool order.
func Rank(task *planning.Task, candidates []*team.Employee) []Breakdown {
	out := make([]Breakdown, 0, len(candidates))
	for _, e := range candidates {
		if e == nil {
			continue
		}
		out = append(out, Evaluate(task, e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
