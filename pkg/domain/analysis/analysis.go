// Package analysis summarizes a project's staffing and skill coverage.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
)

// ProjectRef identifies the analyzed project.
type ProjectRef struct {
	ID         int64  `json:"id"`
	Title      string `json:"project_title"`
	TotalTasks int    `json:"total_tasks"`
}

// Summary breaks tasks down by status, priority and assignment.
type Summary struct {
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
	AssignedTasks     int            `json:"assigned_tasks"`
	UnassignedTasks   int            `json:"unassigned_tasks"`
}

// SkillCoverage compares what the team knows to what the tasks need.
type SkillCoverage struct {
	TeamSkills     []string `json:"team_skills"`
	RequiredSkills []string `json:"required_skills"`
	MissingSkills  []string `json:"missing_skills"`
	CoverageRatio  float64  `json:"coverage_ratio"`
}

// Risk is a task needing skills nobody on the team has.
type Risk struct {
	TaskID        int64    `json:"task_id"`
	Title         string   `json:"title"`
	MissingSkills []string `json:"missing_skills"`
}

// Report is the full analysis of one project.
type Report struct {
	Project         ProjectRef    `json:"project"`
	Summary         Summary       `json:"summary"`
	SkillCoverage   SkillCoverage `json:"skill_coverage"`
	Risks           []Risk        `json:"risks"`
	Recommendations []string      `json:"recommendations"`
}

// Analyze builds the report for a project with its members and tasks loaded.
func Analyze(p *planning.Project) Report {
	status := make(map[string]int)
	priority := make(map[string]int)
	assigned := 0
	for _, t := range p.Tasks {
		s := t.Status
		if s == "" {
			s = "unknown"
		}
		status[s]++
		pr := string(t.Priority)
		if pr == "" {
			pr = "unspecified"
		}
		priority[pr]++
		if t.IsAssigned() {
			assigned++
		}
	}

	teamSkills := make(map[string]struct{})
	for _, e := range p.TeamEmployees() {
		for name := range e.SkillSet() {
			teamSkills[name] = struct{}{}
		}
	}

	required := make(map[string]struct{})
	missing := make(map[string]struct{})
	risks := []Risk{}
	for _, t := range p.Tasks {
		var uncovered []string
		for _, name := range team.NormalizeSkillNames(t.RequiredSkills) {
			required[name] = struct{}{}
			if _, ok := teamSkills[name]; !ok {
				uncovered = append(uncovered, name)
				missing[name] = struct{}{}
			}
		}
		if len(uncovered) > 0 {
			risks = append(risks, Risk{TaskID: t.ID, Title: t.Title, MissingSkills: uncovered})
		}
	}

	coverage := 1.0
	if len(required) > 0 {
		coverage = float64(len(required)-len(missing)) / float64(len(required))
	}

	missingList := sortedKeys(missing)
	return Report{
		Project: ProjectRef{ID: p.ID, Title: p.Title, TotalTasks: len(p.Tasks)},
		Summary: Summary{
			StatusBreakdown:   status,
			PriorityBreakdown: priority,
			AssignedTasks:     assigned,
			UnassignedTasks:   len(p.Tasks) - assigned,
		},
		SkillCoverage: SkillCoverage{
			TeamSkills:     sortedKeys(teamSkills),
			RequiredSkills: sortedKeys(required),
			MissingSkills:  missingList,
			CoverageRatio:  math.Round(coverage*100) / 100,
		},
		Risks:           risks,
		Recommendations: recommend(p.Tasks, missingList),
	}
}

func recommend(tasks []planning.Task, missing []string) []string {
	var recs []string

	unassigned, urgent := 0, 0
	for _, t := range tasks {
		if t.IsAssigned() {
			continue
		}
		unassigned++
		if t.Priority.IsUrgent() {
			urgent++
		}
	}

	if unassigned > 0 {
		recs = append(recs, fmt.Sprintf("%d task(s) are not assigned yet. Consider auto-assignment or a manual review.", unassigned))
	}
	if len(missing) > 0 {
		recs = append(recs, "Skills missing from the team: "+strings.Join(missing, ", "))
	}
	if urgent > 0 {
		recs = append(recs, fmt.Sprintf("%d high priority task(s) need an assignee urgently.", urgent))
	}
	if len(recs) == 0 {
		recs = append(recs, "No significant risk detected in the project.")
	}
	return recs
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
