package application_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/felixgeelhaar/planllama/pkg/application"
	"github.com/felixgeelhaar/planllama/pkg/domain/assist"
	"github.com/felixgeelhaar/planllama/pkg/domain/records"
	"github.com/felixgeelhaar/planllama/pkg/domain/team"
	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
	"github.com/felixgeelhaar/planllama/pkg/storage"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "planllama.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() }) //nolint:errcheck
	return store
}

type MockTracker struct {
	mu            sync.Mutex
	next          int
	Created       []tracker.IssueRequest
	FailSummaries map[string]error
	Statuses      map[string]string
	GetErr        error
	Transitions   []string
	TransitionErr error
	// OnCreate and OnGet run inside the call, before it returns.
	OnCreate func(req tracker.IssueRequest)
	OnGet    func(key string)
}

func (m *MockTracker) CreateIssue(_ context.Context, req tracker.IssueRequest) (tracker.IssueRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, req)
	if m.OnCreate != nil {
		m.OnCreate(req)
	}
	if err, ok := m.FailSummaries[req.Summary]; ok {
		return tracker.IssueRef{}, err
	}
	m.next++
	return tracker.IssueRef{ID: strconv.Itoa(10000 + m.next), Key: fmt.Sprintf("PLL-%d", m.next)}, nil
}

func (m *MockTracker) GetIssue(_ context.Context, key string) (*tracker.Issue, error) {
	if m.OnGet != nil {
		m.OnGet(key)
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	status, ok := m.Statuses[key]
	if !ok {
		return nil, &tracker.Error{Op: "get issue", Kind: tracker.KindRemote, StatusCode: 404}
	}
	return &tracker.Issue{Key: key, StatusName: status}, nil
}

func (m *MockTracker) TransitionIssue(_ context.Context, key, transitionID string) error {
	if m.TransitionErr != nil {
		return m.TransitionErr
	}
	m.Transitions = append(m.Transitions, key+":"+transitionID)
	return nil
}

// failingCommitStore delegates reads and single writes but fails every transaction.
type failingCommitStore struct {
	records.Store
	err error
}

func (f *failingCommitStore) Transact(context.Context, func(records.Repositories) error) error {
	return f.err
}

type MockAssist struct {
	Proposal *assist.Proposal
	Err      error
	Received assist.ProjectSnapshot
}

func (m *MockAssist) GenerateAssignments(_ context.Context, snap assist.ProjectSnapshot) (*assist.Proposal, error) {
	m.Received = snap
	return m.Proposal, m.Err
}

func remoteErr(msg string) error {
	return &tracker.Error{Op: "create issue", Kind: tracker.KindRemote, StatusCode: 400, Err: fmt.Errorf("%s", msg)}
}

func mustCreateEmployee(t *testing.T, svc *application.EmployeeService, e *team.Employee) *team.Employee {
	t.Helper()
	created, err := svc.CreateEmployee(context.Background(), e)
	if err != nil {
		t.Fatalf("CreateEmployee(%s) failed: %v", e.ExternalID, err)
	}
	return created
}

func mustCreateProject(t *testing.T, svc *application.ProjectService, in application.ProjectInput) int64 {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return p.ID
}
