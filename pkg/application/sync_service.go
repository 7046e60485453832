package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain"
	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

// SyncService mirrors projects and tasks into the issue tracker and pulls
// statuses back. Every attempt leaves a sync log entry.
type SyncService struct {
	store  records.Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	tracker  tracker.Client
	notifier Notifier
}

// Notifier is told about every sync log entry once it is committed.
// Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, entry synclog.Entry)
}

// Notifiers fans every entry out to each member in order.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, entry synclog.Entry) {
	for _, n := range ns {
		if n != nil {
			n.Notify(ctx, entry)
		}
	}
}

// NewSyncService wires the service. A nil client behaves as unconfigured.
func NewSyncService(store records.Store, client tracker.Client, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = tracker.Unconfigured{}
	}
	return &SyncService{store: store, tracker: client, logger: logger, now: time.Now}
}

// SetTracker swaps the tracker client, e.g. after credentials changed.
// Runs already in flight keep the client they started with.
func (s *SyncService) SetTracker(client tracker.Client) {
	if client == nil {
		client = tracker.Unconfigured{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker = client
}

// SetNotifier registers n for committed log entries. Nil disables notifications.
func (s *SyncService) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

func (s *SyncService) client() tracker.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker
}

func (s *SyncService) notify(ctx context.Context, entry *synclog.Entry) {
	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n != nil && entry != nil {
		n.Notify(context.WithoutCancel(ctx), *entry)
	}
}

// SyncOptions tunes a sync run.
type SyncOptions struct {
	// Force creates fresh issues even for tasks and epics that were synced before.
	Force bool
}

// EpicResult is one epic handled by a project sync.
type EpicResult struct {
	Name   string `json:"epic_name"`
	Key    string `json:"jira_issue_key"`
	Reused bool   `json:"reused"`
}

// TaskResult is one task mirrored by a project sync. ParentKey is nil for
// top-level issues.
type TaskResult struct {
	TaskID    int64   `json:"task_id"`
	Number    int     `json:"task_number"`
	Title     string  `json:"title"`
	Key       string  `json:"jira_issue_key"`
	ParentKey *string `json:"parent_key"`
}

// SkippedTask is a task left alone because it already has a remote issue.
type SkippedTask struct {
	TaskID int64  `json:"task_id"`
	Number int    `json:"task_number"`
	Key    string `json:"jira_issue_key"`
}

// ItemError is a per-item failure. Exactly one of Epic and TaskID is set.
type ItemError struct {
	Epic   string            `json:"epic_name,omitempty"`
	TaskID int64             `json:"task_id,omitempty"`
	Title  string            `json:"title,omitempty"`
	Kind   tracker.ErrorKind `json:"kind,omitempty"`
	Error  string            `json:"error"`
}

// SyncResult is the outcome of a project sync.
type SyncResult struct {
	ProjectID    int64          `json:"project_id"`
	ProjectTitle string         `json:"project_title"`
	Status       synclog.Status `json:"status"`
	LogID        int64          `json:"log_id"`
	Epics        []EpicResult   `json:"epics"`
	TasksSynced  []TaskResult   `json:"tasks_synced"`
	Skipped      []SkippedTask  `json:"skipped"`
	Errors       []ItemError    `json:"errors"`
}

// SyncProject mirrors the project's epics and tasks. Per-item failures are
// collected and the run concludes as success or partial. The returned error
// is reserved for failures of the run itself.
func (s *SyncService) SyncProject(ctx context.Context, projectID int64, opts SyncOptions) (*SyncResult, error) {
	client, err := s.requireTracker("sync project")
	if err != nil {
		return nil, err
	}
	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entry := synclog.Open(synclog.TypeProject, synclog.ToTracker, &p.ID, nil)
	if err := s.store.SyncLogs().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to open sync log: %w", err)
	}

	res := &SyncResult{
		ProjectID:    p.ID,
		ProjectTitle: p.Title,
		LogID:        entry.ID,
		Epics:        []EpicResult{},
		TasksSynced:  []TaskResult{},
		Skipped:      []SkippedTask{},
		Errors:       []ItemError{},
	}
	log := s.logger.With("project_id", p.ID, "log_id", entry.ID)

	parents := make(map[string]string)
	created := make(map[string]string)
	for _, name := range p.EpicNames() {
		if key, ok := p.EpicKey(name); ok && !opts.Force {
			parents[name] = key
			res.Epics = append(res.Epics, EpicResult{Name: name, Key: key, Reused: true})
			continue
		}
		ref, err := client.CreateIssue(ctx, tracker.IssueRequest{
			Summary:     "[Epic] " + name,
			IssueType:   tracker.IssueTypeTask,
			Description: fmt.Sprintf("Epic %s of project %s", name, p.Title),
		})
		if err != nil {
			log.Warn("epic sync failed", "epic", name, "error", err)
			res.Errors = append(res.Errors, ItemError{Epic: name, Kind: tracker.KindOf(err), Error: err.Error()})
			continue
		}
		parents[name] = ref.Key
		created[name] = ref.Key
		p.SetEpicKey(name, ref.Key)
		res.Epics = append(res.Epics, EpicResult{Name: name, Key: ref.Key})
	}

	var changed []*planning.Task
	// Only the remote link is written back. Other task and project fields
	// may have been edited while the tracker calls were running.
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if t.IsSynced() && !opts.Force {
			res.Skipped = append(res.Skipped, SkippedTask{TaskID: t.ID, Number: t.Number, Key: t.IssueKey})
			continue
		}

		req := issueRequestFor(t)
		var parent *string
		if key, ok := parents[t.EpicName]; ok && t.EpicName != "" {
			req.IssueType = tracker.IssueTypeSubtask
			req.ParentKey = key
			parent = &key
		}

		ref, err := client.CreateIssue(ctx, req)
		if err != nil {
			log.Warn("task sync failed", "task_id", t.ID, "error", err)
			res.Errors = append(res.Errors, ItemError{TaskID: t.ID, Title: t.Title, Kind: tracker.KindOf(err), Error: err.Error()})
			continue
		}
		t.MarkSynced(ref.Key, ref.ID, s.now().UTC())
		changed = append(changed, t)
		res.TasksSynced = append(res.TasksSynced, TaskResult{TaskID: t.ID, Number: t.Number, Title: t.Title, Key: ref.Key, ParentKey: parent})
	}

	syncedAt := s.now().UTC()
	p.MarkSynced(syncedAt)
	res.Status = synclog.OutcomeFor(len(res.Errors))

	// Issues already exist remotely, so the links are committed even when the
	// caller's context is gone.
	commitCtx := context.WithoutCancel(ctx)
	err = s.store.Transact(commitCtx, func(repos records.Repositories) error {
		for _, t := range changed {
			if err := repos.Tasks().MarkSynced(commitCtx, t.ID, t.IssueKey, t.IssueID, *t.SyncedAt); err != nil {
				return err
			}
		}
		if err := repos.Projects().RecordSync(commitCtx, p.ID, syncedAt, created); err != nil {
			return err
		}
		if err := entry.Conclude(res.Status, res, ""); err != nil {
			return err
		}
		return repos.SyncLogs().Conclude(commitCtx, entry)
	})
	if err != nil {
		s.failLog(commitCtx, entry, res, err)
		return nil, fmt.Errorf("failed to record project sync: %w", err)
	}
	s.notify(ctx, entry)

	log.Info("project sync finished",
		"status", res.Status,
		"synced", len(res.TasksSynced),
		"skipped", len(res.Skipped),
		"errors", len(res.Errors))
	return res, nil
}

// TaskSyncResult is the outcome of a single-task sync.
type TaskSyncResult struct {
	TaskID  int64  `json:"task_id"`
	LogID   int64  `json:"log_id"`
	Key     string `json:"jira_issue_key"`
	IssueID string `json:"jira_issue_id"`
	Skipped bool   `json:"skipped"`
}

// SyncTask mirrors one task as a top-level issue. A tracker failure is
// logged and returned.
func (s *SyncService) SyncTask(ctx context.Context, taskID int64, opts SyncOptions) (*TaskSyncResult, error) {
	client, err := s.requireTracker("sync task")
	if err != nil {
		return nil, err
	}
	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	pid := t.ProjectID

	if t.IsSynced() && !opts.Force {
		res := &TaskSyncResult{TaskID: t.ID, Key: t.IssueKey, IssueID: t.IssueID, Skipped: true}
		entry, err := synclog.New(synclog.TypeTask, synclog.ToTracker, synclog.StatusSuccess, &pid, &t.ID, res, "")
		if err != nil {
			return nil, err
		}
		if err := s.store.SyncLogs().Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to write sync log: %w", err)
		}
		s.notify(ctx, entry)
		res.LogID = entry.ID
		return res, nil
	}

	ref, err := client.CreateIssue(ctx, issueRequestFor(t))
	if err != nil {
		s.logFailure(ctx, synclog.TypeTask, synclog.ToTracker, &pid, &t.ID, err)
		return nil, err
	}

	res := &TaskSyncResult{TaskID: t.ID, Key: ref.Key, IssueID: ref.ID}
	var logged *synclog.Entry
	commitCtx := context.WithoutCancel(ctx)
	err = s.store.Transact(commitCtx, func(repos records.Repositories) error {
		if err := repos.Tasks().MarkSynced(commitCtx, t.ID, ref.Key, ref.ID, s.now().UTC()); err != nil {
			return err
		}
		entry, err := synclog.New(synclog.TypeTask, synclog.ToTracker, synclog.StatusSuccess, &pid, &t.ID, res, "")
		if err != nil {
			return err
		}
		if err := repos.SyncLogs().Append(commitCtx, entry); err != nil {
			return err
		}
		res.LogID, logged = entry.ID, entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record task sync: %w", err)
	}
	s.notify(ctx, logged)

	s.logger.Info("task synced", "task_id", t.ID, "key", ref.Key)
	return res, nil
}

// StatusResult is the outcome of a status pull-back.
type StatusResult struct {
	TaskID         int64  `json:"task_id"`
	LogID          int64  `json:"log_id"`
	Key            string `json:"jira_issue_key"`
	RemoteStatus   string `json:"jira_status"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status_name"`
}

// RefreshStatusFromTracker overwrites the local status with the remote one.
func (s *SyncService) RefreshStatusFromTracker(ctx context.Context, taskID int64) (*StatusResult, error) {
	client, err := s.requireTracker("refresh status")
	if err != nil {
		return nil, err
	}
	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.IssueKey == "" {
		return nil, fmt.Errorf("task %d: %w", t.ID, domain.ErrNotSynced)
	}
	pid := t.ProjectID

	issue, err := client.GetIssue(ctx, t.IssueKey)
	if err != nil {
		s.logFailure(ctx, synclog.TypeStatus, synclog.FromTracker, &pid, &t.ID, err)
		return nil, err
	}

	res := &StatusResult{
		TaskID:         t.ID,
		Key:            t.IssueKey,
		RemoteStatus:   issue.StatusName,
		PreviousStatus: t.Status,
		Status:         planning.NormalizeStatus(issue.StatusName),
	}
	var logged *synclog.Entry
	err = s.store.Transact(ctx, func(repos records.Repositories) error {
		if err := repos.Tasks().SetStatus(ctx, t.ID, res.Status); err != nil {
			return err
		}
		entry, err := synclog.New(synclog.TypeStatus, synclog.FromTracker, synclog.StatusSuccess, &pid, &t.ID, res, "")
		if err != nil {
			return err
		}
		if err := repos.SyncLogs().Append(ctx, entry); err != nil {
			return err
		}
		res.LogID, logged = entry.ID, entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record status refresh: %w", err)
	}
	s.notify(ctx, logged)
	return res, nil
}

// TransitionTask applies a workflow transition to the task's remote issue.
func (s *SyncService) TransitionTask(ctx context.Context, taskID int64, transitionID string) error {
	if transitionID == "" {
		return domain.MissingField("transition_id")
	}
	client, err := s.requireTracker("transition issue")
	if err != nil {
		return err
	}
	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return err
	}
	if t.IssueKey == "" {
		return fmt.Errorf("task %d: %w", t.ID, domain.ErrNotSynced)
	}
	pid := t.ProjectID

	if err := client.TransitionIssue(ctx, t.IssueKey, transitionID); err != nil {
		s.logFailure(ctx, synclog.TypeStatus, synclog.ToTracker, &pid, &t.ID, err)
		return err
	}

	details := map[string]string{"jira_issue_key": t.IssueKey, "transition_id": transitionID}
	entry, err := synclog.New(synclog.TypeStatus, synclog.ToTracker, synclog.StatusSuccess, &pid, &t.ID, details, "")
	if err != nil {
		return err
	}
	if err := s.store.SyncLogs().Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to write sync log: %w", err)
	}
	s.notify(ctx, entry)
	return nil
}

// ListLogs returns sync log entries newest first.
func (s *SyncService) ListLogs(ctx context.Context, limit int) ([]synclog.Entry, error) {
	return s.store.SyncLogs().List(ctx, records.ClampLogLimit(limit))
}

// requireTracker returns the client for one run, failing when none is configured.
func (s *SyncService) requireTracker(op string) (tracker.Client, error) {
	client := s.client()
	if _, ok := client.(tracker.Unconfigured); ok {
		return nil, &tracker.Error{Op: op, Kind: tracker.KindNotConfigured, Err: tracker.ErrNotConfigured}
	}
	return client, nil
}

// failLog concludes an open entry as error after the run could not be
// recorded. A failure here is only logged.
func (s *SyncService) failLog(ctx context.Context, entry *synclog.Entry, res *SyncResult, cause error) {
	fresh := *entry
	fresh.Status = synclog.StatusInProgress
	if err := fresh.Conclude(synclog.StatusError, res, cause.Error()); err != nil {
		s.logger.Warn("failed to conclude sync log", "log_id", entry.ID, "error", err)
		return
	}
	if err := s.store.SyncLogs().Conclude(ctx, &fresh); err != nil {
		s.logger.Warn("failed to conclude sync log", "log_id", entry.ID, "error", err)
		return
	}
	s.notify(ctx, &fresh)
}

// logFailure records a failed single-item attempt.
func (s *SyncService) logFailure(ctx context.Context, typ synclog.Type, dir synclog.Direction, projectID, taskID *int64, cause error) {
	details := map[string]any{"kind": tracker.KindOf(cause)}
	entry, err := synclog.New(typ, dir, synclog.StatusError, projectID, taskID, details, cause.Error())
	if err == nil {
		err = s.store.SyncLogs().Append(context.WithoutCancel(ctx), entry)
	}
	if err != nil {
		s.logger.Warn("failed to write sync log", "type", typ, "error", err)
		return
	}
	s.notify(ctx, entry)
}

func issueRequestFor(t *planning.Task) tracker.IssueRequest {
	req := tracker.IssueRequest{
		Summary:      t.Title,
		IssueType:    tracker.IssueTypeTask,
		Description:  t.Description,
		Labels:       t.Labels,
		PriorityName: t.Priority.TrackerName(),
	}
	if t.Assignment != nil && t.Assignment.TrackerAccountID != "" {
		req.AssigneeID = t.Assignment.TrackerAccountID
	}
	return req
}

// IsSingleItemFailure reports whether err is an external call failure that a
// single-item operation surfaces to its caller.
func IsSingleItemFailure(err error) bool {
	var tErr *tracker.Error
	return errors.As(err, &tErr) && tErr.Kind != tracker.KindNotConfigured
}
