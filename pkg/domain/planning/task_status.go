package planning

import "strings"

// Conventional task status names. The status column is free-form, so values
// pulled back from the tracker may fall outside this set.
const (
	StatusProposed   = "proposed"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ConventionalStatuses returns the statuses the tool itself writes.
func ConventionalStatuses() []string {
	return []string{StatusProposed, StatusAssigned, StatusInProgress, StatusCompleted}
}

// NormalizeStatus maps a tracker status name to the local form: lower case,
// spaces replaced by underscores. Nothing else is changed.
func NormalizeStatus(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// CleanStatus normalizes a status typed by a caller, dropping surrounding
// whitespace first.
func CleanStatus(name string) string {
	return NormalizeStatus(strings.TrimSpace(name))
}

// IsConventionalStatus reports whether s is one of the tool's own statuses.
func IsConventionalStatus(s string) bool {
	for _, c := range ConventionalStatuses() {
		if s == c {
			return true
		}
	}
	return false
}
