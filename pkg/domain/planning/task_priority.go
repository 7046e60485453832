package planning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TaskPriority is the urgency of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// priorityOrder defines the ordering of priorities (higher order = higher priority)
var priorityOrder = map[TaskPriority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
}

// AllTaskPriorities returns all valid task priorities.
func AllTaskPriorities() []TaskPriority {
	return []TaskPriority{
		PriorityHigh,
		PriorityMedium,
		PriorityLow,
	}
}

// IsValid returns true if the priority is a valid task priority.
func (p TaskPriority) IsValid() bool {
	_, ok := priorityOrder[p]
	return ok
}

// String returns the string representation of the priority.
func (p TaskPriority) String() string {
	return string(p)
}

// Order returns the numeric order of the priority (higher = more important).
func (p TaskPriority) Order() int {
	return priorityOrder[p]
}

// IsHigherThan returns true if this priority is higher than the other.
func (p TaskPriority) IsHigherThan(other TaskPriority) bool {
	return p.Order() > other.Order()
}

// IsUrgent reports whether unassigned tasks of this priority need attention first.
func (p TaskPriority) IsUrgent() bool {
	switch strings.ToLower(string(p)) {
	case "high", "critical":
		return true
	default:
		return false
	}
}

// TrackerName returns the issue tracker's display name for the priority.
// Unknown or empty priorities map to Medium.
func (p TaskPriority) TrackerName() string {
	switch TaskPriority(strings.ToLower(string(p))) {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	default:
		return "Medium"
	}
}

// ParseTaskPriority parses a case-insensitive string into a TaskPriority.
// An empty string yields the default priority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTaskPriority(), nil
	}
	priority := TaskPriority(s)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid task priority: %s", s)
	}
	return priority, nil
}

// DefaultTaskPriority returns the default priority for new tasks.
func DefaultTaskPriority() TaskPriority {
	return PriorityMedium
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (p *TaskPriority) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	priority, err := ParseTaskPriority(str)
	if err != nil {
		return err
	}
	*p = priority
	return nil
}
