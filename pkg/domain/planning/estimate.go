package planning

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// estimatePattern matches estimate strings like "4h", "2d", "1w", "30m"
var estimatePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(m|h|d|w)$`)

// isoDurationPattern matches ISO 8601 durations like "P2D", "PT4H", "P1DT2H".
var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// Duration constants for shorthand estimates
const (
	MinutesPerHour = 60
	HoursPerDay    = 8 // Assume 8-hour work day
	DaysPerWeek    = 5 // Assume 5-day work week
)

// Estimate represents a time estimate for a task or project.
type Estimate struct {
	raw      string
	duration time.Duration
}

// ParseEstimate parses a string estimate into an Estimate value object.
// Supported formats: "30m", "4h", "2d", "1w" (work days and weeks) and
// ISO 8601 durations such as "P2D" or "PT4H" (calendar days and weeks).
func ParseEstimate(s string) (Estimate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Estimate{}, nil // Empty estimate is valid
	}
	if strings.HasPrefix(strings.ToUpper(s), "P") {
		d, err := ParseISODuration(s)
		if err != nil {
			return Estimate{}, err
		}
		return Estimate{raw: strings.ToUpper(s), duration: d}, nil
	}

	s = strings.ToLower(s)
	matches := estimatePattern.FindStringSubmatch(s)
	if matches == nil {
		return Estimate{}, fmt.Errorf("invalid estimate format: %s (expected: 30m, 4h, 2d, 1w or an ISO 8601 duration)", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return Estimate{}, fmt.Errorf("invalid estimate value: %s", matches[1])
	}

	var duration time.Duration
	switch matches[2] {
	case "m":
		duration = time.Duration(value * float64(time.Minute))
	case "h":
		duration = time.Duration(value * float64(time.Hour))
	case "d":
		duration = time.Duration(value * float64(HoursPerDay) * float64(time.Hour))
	case "w":
		duration = time.Duration(value * float64(DaysPerWeek) * float64(HoursPerDay) * float64(time.Hour))
	}

	return Estimate{raw: s, duration: duration}, nil
}

// ParseISODuration parses the week/day/time subset of ISO 8601 durations.
func ParseISODuration(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid ISO 8601 duration: %s", s)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("invalid ISO 8601 duration: %s", s)
		}
		total += time.Duration(n) * unit
	}
	return total, nil
}

// HoursToISODuration formats whole hours as "P{d}DT{h}H", "P{d}D" or "PT{h}H".
func HoursToISODuration(hours float64) string {
	days := int(hours) / 24
	rem := int(hours) % 24
	switch {
	case days > 0 && rem > 0:
		return fmt.Sprintf("P%dDT%dH", days, rem)
	case days > 0:
		return fmt.Sprintf("P%dD", days)
	default:
		return fmt.Sprintf("PT%dH", rem)
	}
}

// String returns the original string representation of the estimate.
func (e Estimate) String() string {
	return e.raw
}

// Duration returns the duration of the estimate.
func (e Estimate) Duration() time.Duration {
	return e.duration
}

// Hours returns the estimate in hours.
func (e Estimate) Hours() float64 {
	return e.duration.Hours()
}

// IsZero returns true if the estimate is empty.
func (e Estimate) IsZero() bool {
	return e.raw == ""
}

// Add adds two estimates together.
func (e Estimate) Add(other Estimate) Estimate {
	total := e.duration + other.duration
	// Format as hours if less than a day, else as days
	hours := total.Hours()
	if hours < float64(HoursPerDay) {
		return Estimate{raw: fmt.Sprintf("%.1fh", hours), duration: total}
	}
	days := hours / float64(HoursPerDay)
	return Estimate{raw: fmt.Sprintf("%.1fd", days), duration: total}
}
