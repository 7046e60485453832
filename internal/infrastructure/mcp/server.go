// Package mcp exposes planllama operations as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

type Server struct {
	mcpServer     *mcp.Server
	projectSvc    *application.ProjectService
	assignmentSvc *application.AssignmentService
	syncSvc       *application.SyncService
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// toolErr keeps caller mistakes and tracker failures readable and hides
// storage internals.
func toolErr(action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrNotSynced),
		tracker.KindOf(err) != "":
		return mcpErr(fmt.Sprintf("Failed to %s: %v", action, err))
	default:
		return mcpErr(fmt.Sprintf("Failed to %s. Check the server logs for details.", action))
	}
}

// NewServer registers the tools against already built services.
func NewServer(services *wiring.AppServices) (*Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}

	info := mcp.ServerInfo{
		Name:    "planllama",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("planllama MCP Server"),
			mcp.WithDescription("planllama assigns project tasks to employees and mirrors them into Jira."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to auto-assign tasks, rank candidates, sync projects to Jira, and read sync logs."),
		),
		projectSvc:    services.Projects,
		assignmentSvc: services.Assignment,
		syncSvc:       services.Sync,
	}

	s.registerTools()
	return s, nil
}

type ProjectArgs struct {
	ProjectID int64 `json:"project_id" jsonschema:"description=Numeric id of the project"`
}

type AutoAssignArgs struct {
	ProjectID int64 `json:"project_id" jsonschema:"description=Numeric id of the project"`
	Limit     *int  `json:"limit,omitempty" jsonschema:"description=Maximum number of tasks to assign"`
}

type TaskArgs struct {
	TaskID int64 `json:"task_id" jsonschema:"description=Numeric id of the task"`
}

type SyncProjectArgs struct {
	ProjectID int64 `json:"project_id" jsonschema:"description=Numeric id of the project"`
	Force     bool  `json:"force,omitempty" jsonschema:"description=Create new issues even for items synced before"`
}

type SyncTaskArgs struct {
	TaskID int64 `json:"task_id" jsonschema:"description=Numeric id of the task"`
	Force  bool  `json:"force,omitempty" jsonschema:"description=Create a new issue even if the task was synced before"`
}

type SyncLogsArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"description=Number of entries to return (default 50, max 500)"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("planllama_auto_assign").
		Description("Assign every unassigned task of a project to the best scoring team member").
		Handler(s.handleAutoAssign)

	s.mcpServer.Tool("planllama_rank_candidates").
		Description("Rank a task's candidate assignees with their score breakdown").
		Handler(s.handleRankCandidates)

	s.mcpServer.Tool("planllama_sync_project").
		Description("Mirror a project's epics and tasks into Jira").
		Handler(s.handleSyncProject)

	s.mcpServer.Tool("planllama_sync_task").
		Description("Mirror a single task into Jira as a top-level issue").
		Handler(s.handleSyncTask)

	s.mcpServer.Tool("planllama_refresh_status").
		Description("Overwrite a task's local status with its Jira status").
		Handler(s.handleRefreshStatus)

	s.mcpServer.Tool("planllama_analyze_project").
		Description("Summarize a project's staffing, skill coverage and risks").
		Handler(s.handleAnalyzeProject)

	s.mcpServer.Tool("planllama_sync_logs").
		Description("List recent Jira sync log entries, newest first").
		Handler(s.handleSyncLogs)
}

func (s *Server) handleAutoAssign(ctx context.Context, args AutoAssignArgs) (any, error) {
	res, err := s.assignmentSvc.AutoAssign(ctx, args.ProjectID, args.Limit)
	if err != nil {
		return nil, toolErr("auto-assign tasks", err)
	}
	return res, nil
}

func (s *Server) handleRankCandidates(ctx context.Context, args TaskArgs) (any, error) {
	report, err := s.assignmentSvc.RankCandidates(ctx, args.TaskID)
	if err != nil {
		return nil, toolErr("rank candidates", err)
	}
	return report, nil
}

func (s *Server) handleSyncProject(ctx context.Context, args SyncProjectArgs) (any, error) {
	res, err := s.syncSvc.SyncProject(ctx, args.ProjectID, application.SyncOptions{Force: args.Force})
	if err != nil {
		return nil, toolErr("sync project", err)
	}
	return res, nil
}

func (s *Server) handleSyncTask(ctx context.Context, args SyncTaskArgs) (any, error) {
	res, err := s.syncSvc.SyncTask(ctx, args.TaskID, application.SyncOptions{Force: args.Force})
	if err != nil {
		return nil, toolErr("sync task", err)
	}
	return res, nil
}

func (s *Server) handleRefreshStatus(ctx context.Context, args TaskArgs) (any, error) {
	res, err := s.syncSvc.RefreshStatusFromTracker(ctx, args.TaskID)
	if err != nil {
		return nil, toolErr("refresh status", err)
	}
	return res, nil
}

func (s *Server) handleAnalyzeProject(ctx context.Context, args ProjectArgs) (any, error) {
	report, err := s.projectSvc.AnalyzeProject(ctx, args.ProjectID)
	if err != nil {
		return nil, toolErr("analyze project", err)
	}
	return report, nil
}

func (s *Server) handleSyncLogs(ctx context.Context, args SyncLogsArgs) (any, error) {
	logs, err := s.syncSvc.ListLogs(ctx, args.Limit)
	if err != nil {
		return nil, toolErr("list sync logs", err)
	}
	return logs, nil
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
