package team

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
)

// Capacity and proficiency bounds.
const (
	DefaultCapacityHours = 40
	MinSkillLevel        = 1
	MaxSkillLevel        = 5
	DefaultSkillLevel    = 3
)

var externalIDPattern = regexp.MustCompile(`^e\d+`)

// Skill is a named proficiency, level 1 (novice) to 5 (expert).
type Skill struct {
	Name  string `json:"name" yaml:"name"`
	Level int    `json:"level" yaml:"level"`
}

// Integrations holds the employee's identities in external systems.
type Integrations struct {
	Email            string `json:"email,omitempty"`
	SlackUserID      string `json:"slack_user_id,omitempty"`
	TrackerAccountID string `json:"jira_account_id,omitempty"`
}

// Employee is a person that tasks can be assigned to.
type Employee struct {
	ID               int64        `json:"id"`
	ExternalID       string       `json:"employee_id"`
	Name             string       `json:"name"`
	Role             string       `json:"role,omitempty"`
	Timezone         string       `json:"timezone,omitempty"`
	CapacityHours    int          `json:"capacity_hours_per_week"`
	CurrentLoadHours int          `json:"current_load_hours"`
	Skills           []Skill      `json:"skills"`
	Languages        []string     `json:"languages"`
	Integrations     Integrations `json:"integrations"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NormalizeSkillName lower-cases and trims a skill name.
func NormalizeSkillName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeSkillNames lower-cases, trims and deduplicates names. Blank names
// are dropped and the result is sorted.
func NormalizeSkillNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeSkillName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SkillSet returns the employee's normalized skill names mapped to their level.
// When a name appears twice the higher level wins.
func (e *Employee) SkillSet() map[string]int {
	set := make(map[string]int, len(e.Skills))
	for _, s := range e.Skills {
		name := NormalizeSkillName(s.Name)
		if name == "" {
			continue
		}
		if lvl, ok := set[name]; !ok || s.Level > lvl {
			set[name] = s.Level
		}
	}
	return set
}

// HasTrackerAccount reports whether the employee can be assigned remote issues.
func (e *Employee) HasTrackerAccount() bool {
	return e != nil && e.Integrations.TrackerAccountID != ""
}

// ApplyDefaults fills the creation-time defaults.
func (e *Employee) ApplyDefaults() {
	if e.CapacityHours == 0 {
		e.CapacityHours = DefaultCapacityHours
	}
	if e.Skills == nil {
		e.Skills = []Skill{}
	}
	if e.Languages == nil {
		e.Languages = []string{}
	}
}

// Validate checks the employee before it reaches the store.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.ExternalID) == "" {
		return domain.MissingField("employee_id")
	}
	if !externalIDPattern.MatchString(e.ExternalID) {
		return domain.Invalid("employee_id", "expected format e14, e42, etc.")
	}
	if strings.TrimSpace(e.Name) == "" {
		return domain.MissingField("name")
	}
	if e.CapacityHours < 0 {
		return domain.Invalid("capacity_hours_per_week", "must not be negative")
	}
	if e.CurrentLoadHours < 0 {
		return domain.Invalid("current_load_hours", "must not be negative")
	}
	return ValidateSkills(e.Skills)
}

// ValidateSkills checks names are present and levels are within 1..5.
func ValidateSkills(skills []Skill) error {
	for _, s := range skills {
		if strings.TrimSpace(s.Name) == "" {
			return domain.Invalid("skills", "skill name cannot be empty")
		}
		if s.Level < MinSkillLevel || s.Level > MaxSkillLevel {
			return domain.Invalid("skills", "level for "+s.Name+" must be between 1 and 5")
		}
	}
	return nil
}

// SkillsFromNames turns plain names into skills at the default level.
func SkillsFromNames(names []string) []Skill {
	skills := make([]Skill, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		skills = append(skills, Skill{Name: n, Level: DefaultSkillLevel})
	}
	return skills
}
