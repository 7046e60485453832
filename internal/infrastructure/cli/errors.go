package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return NewCLIError(
			notFound.Error(),
			fmt.Sprintf("Check the %s id; list records with 'planllama employee list' or the API", notFound.Entity),
			err,
		)
	}

	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		return NewCLIError("invalid input", fmt.Sprintf("Fix the '%s' field and retry", invalid.Field), err)
	}

	var aErr *assist.Error
	if errors.As(err, &aErr) {
		return NewCLIError("task assistant failed", "Set assist.url in planllama.yaml or PLANLLAMA_ASSIST_URL", err)
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		return NewCLIError("record already exists", "Use a different id or update the existing record", err)
	case errors.Is(err, domain.ErrNotSynced):
		return NewCLIError("task is not synced with Jira", "Run 'planllama sync task <id>' first", err)
	case tracker.KindOf(err) == tracker.KindNotConfigured:
		return NewCLIError("jira is not configured", "Run 'planllama setup' or set JIRA_DOMAIN, JIRA_EMAIL, JIRA_API_TOKEN and JIRA_PROJECT_KEY", err)
	case tracker.KindOf(err) == tracker.KindTimeout, tracker.KindOf(err) == tracker.KindUnreachable:
		return NewCLIError("jira did not respond", "Check jira.domain and your network, then retry", err)
	}

	return err
}
