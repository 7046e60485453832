package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

// slackBody renders an entry as a Slack incoming-webhook message.
func slackBody(entry synclog.Entry) ([]byte, error) {
	text := formatSlackMessage(entry)
	payload := map[string]any{
		"text": text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal slack payload: %w", err)
	}
	return body, nil
}

func formatSlackMessage(entry synclog.Entry) string {
	subject := string(entry.Type) + " sync"
	switch {
	case entry.TaskID != nil:
		subject = fmt.Sprintf("%s for task %d", subject, *entry.TaskID)
	case entry.ProjectID != nil:
		subject = fmt.Sprintf("%s for project %d", subject, *entry.ProjectID)
	}

	switch entry.Status {
	case synclog.StatusSuccess:
		return fmt.Sprintf(":white_check_mark: %s succeeded", subject)
	case synclog.StatusPartial:
		return fmt.Sprintf(":warning: %s partially succeeded", subject)
	case synclog.StatusError:
		if entry.ErrorMessage != "" {
			return fmt.Sprintf(":x: %s failed: %s", subject, entry.ErrorMessage)
		}
		return fmt.Sprintf(":x: %s failed", subject)
	default:
		return fmt.Sprintf("PlanLLaMA sync event: %s", entry.EventName())
	}
}
