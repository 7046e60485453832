package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/analysis"
	"github.com/felixgeelhaar/planllama/pkg/domain/assignment"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

// Client is a typed Go client for the planllama MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a new SDK client wrapping the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:      client.New(transport, client.WithTimeout(o.timeout)),
		timeout:  o.timeout,
		retryCfg: o.retry,
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool with retry. Error results are not retried.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

// unmarshalText extracts Content[0].Text from a tool result and unmarshals it as JSON.
func unmarshalText[T any](result *client.ToolResult) (*T, error) {
	text, err := textResult(result)
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &v, nil
}

// textResult extracts Content[0].Text from a tool result.
func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

func callJSON[T any](ctx context.Context, c *Client, tool string, args map[string]any) (*T, error) {
	res, err := c.call(ctx, tool, args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[T](res)
}

// --- Assignment ---

// AutoAssign assigns unassigned tasks of a project. A nil limit assigns all.
func (c *Client) AutoAssign(ctx context.Context, projectID int64, limit *int) (*assignment.Result, error) {
	args := map[string]any{"project_id": projectID}
	if limit != nil {
		args["limit"] = *limit
	}
	return callJSON[assignment.Result](ctx, c, "planllama_auto_assign", args)
}

// RankCandidates returns the task's candidates, best first.
func (c *Client) RankCandidates(ctx context.Context, taskID int64) (*application.CandidateReport, error) {
	return callJSON[application.CandidateReport](ctx, c, "planllama_rank_candidates", map[string]any{"task_id": taskID})
}

// AnalyzeProject returns the staffing and skill coverage report.
func (c *Client) AnalyzeProject(ctx context.Context, projectID int64) (*analysis.Report, error) {
	return callJSON[analysis.Report](ctx, c, "planllama_analyze_project", map[string]any{"project_id": projectID})
}

// --- Jira sync ---

// SyncProject mirrors a project's epics and tasks into Jira.
func (c *Client) SyncProject(ctx context.Context, projectID int64, force bool) (*application.SyncResult, error) {
	return callJSON[application.SyncResult](ctx, c, "planllama_sync_project", map[string]any{"project_id": projectID, "force": force})
}

// SyncTask mirrors one task as a top-level issue.
func (c *Client) SyncTask(ctx context.Context, taskID int64, force bool) (*application.TaskSyncResult, error) {
	return callJSON[application.TaskSyncResult](ctx, c, "planllama_sync_task", map[string]any{"task_id": taskID, "force": force})
}

// RefreshStatus pulls the task's status from its Jira issue.
func (c *Client) RefreshStatus(ctx context.Context, taskID int64) (*application.StatusResult, error) {
	return callJSON[application.StatusResult](ctx, c, "planllama_refresh_status", map[string]any{"task_id": taskID})
}

// SyncLogs lists recent sync log entries. Zero uses the server default.
func (c *Client) SyncLogs(ctx context.Context, limit int) ([]synclog.Entry, error) {
	args := map[string]any{}
	if limit > 0 {
		args["limit"] = limit
	}
	logs, err := callJSON[[]synclog.Entry](ctx, c, "planllama_sync_logs", args)
	if err != nil {
		return nil, err
	}
	return *logs, nil
}
