package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// statusStyle colors task statuses and sync outcomes.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case planning.StatusCompleted, string(synclog.StatusSuccess):
		return successStyle
	case planning.StatusInProgress, planning.StatusAssigned, string(synclog.StatusPartial):
		return warnStyle
	case string(synclog.StatusError):
		return errorStyle
	default:
		return mutedStyle
	}
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, fmt.Sprintf("%q is not a positive integer", arg))
	}
	return id, nil
}
