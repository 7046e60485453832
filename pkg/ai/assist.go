// Package ai implements assist.Client against an HTTP task-assist endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
)

// DefaultTimeout bounds one generative call.
const DefaultTimeout = 120 * time.Second

const proposalSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["assignments"],
  "properties": {
    "assignments": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["task_id", "assignee_name"],
        "properties": {
          "task_id": { "type": "integer" },
          "assignee_name": { "type": "string" },
          "rationale": { "type": "string" }
        }
      }
    }
  }
}`

var proposalSchemaLoader = gojsonschema.NewStringLoader(proposalSchemaJSON)

// AssistClient posts project snapshots to the assist endpoint.
type AssistClient struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var _ assist.Client = (*AssistClient)(nil)

// NewAssistClient creates a client that authenticates with a static bearer
// token. An empty token sends no Authorization header.
func NewAssistClient(endpoint, token string, logger *slog.Logger) *AssistClient {
	return NewAssistClientWithClient(endpoint, token, &http.Client{}, logger)
}

// NewAssistClientWithClient wraps a custom HTTP client (for testing).
func NewAssistClientWithClient(endpoint, token string, base *http.Client, logger *slog.Logger) *AssistClient {
	if logger == nil {
		logger = slog.Default()
	}
	if base == nil {
		base = &http.Client{}
	}
	client := base
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	}
	client.Timeout = DefaultTimeout
	return &AssistClient{
		endpoint:   endpoint,
		timeout:    DefaultTimeout,
		httpClient: client,
		logger:     logger,
	}
}

// WithTimeout returns a copy of the client with a different call timeout.
func (c *AssistClient) WithTimeout(d time.Duration) *AssistClient {
	cp := *c
	cp.timeout = d
	return &cp
}

// GenerateAssignments asks the endpoint for task assignments.
func (c *AssistClient) GenerateAssignments(ctx context.Context, snapshot assist.ProjectSnapshot) (*assist.Proposal, error) {
	const op = "generate assignments"
	if c.endpoint == "" {
		return nil, &assist.Error{Op: op, Err: errors.New("assist endpoint not configured (set PLANLLAMA_ASSIST_URL)")}
	}

	t := timeout.New[*assist.Proposal](timeout.Config{DefaultTimeout: c.timeout})
	proposal, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*assist.Proposal, error) {
		return c.generate(ctx, snapshot)
	})
	if err != nil {
		var aErr *assist.Error
		if errors.As(err, &aErr) {
			return nil, err
		}
		return nil, &assist.Error{Op: op, Err: err}
	}
	return proposal, nil
}

func (c *AssistClient) generate(ctx context.Context, snapshot assist.ProjectSnapshot) (*assist.Proposal, error) {
	const op = "generate assignments"
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, &assist.Error{Op: op, Err: fmt.Errorf("encode snapshot: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &assist.Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &assist.Error{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &assist.Error{Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &assist.Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("endpoint returned status: %s", resp.Status)}
	}

	proposal, err := ParseProposal(string(raw))
	if err != nil {
		c.logger.Debug("assist response rejected", "error", err, "body", truncate(string(raw), 500))
		return nil, &assist.Error{Op: op, Err: err}
	}
	return proposal, nil
}

// ParseProposal validates and decodes an assist response. Markdown fences and
// surrounding prose are tolerated.
func ParseProposal(text string) (*assist.Proposal, error) {
	clean := extractJSONPayload(text)
	if clean == "" {
		return nil, errors.New("empty response")
	}

	result, err := gojsonschema.Validate(proposalSchemaLoader, gojsonschema.NewStringLoader(clean))
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
	}

	var proposal assist.Proposal
	if err := json.Unmarshal([]byte(clean), &proposal); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &proposal, nil
}

func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end <= start {
		return clean
	}
	return strings.TrimSpace(clean[start : end+1])
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
