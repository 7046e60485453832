// Package jira implements tracker.Client against the Jira Cloud REST API v3.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/felixgeelhaar/jirasdk"
	"github.com/felixgeelhaar/jirasdk/core/issue"
	"github.com/felixgeelhaar/jirasdk/transport"

	"github.com/felixgeelhaar/planllama/pkg/domain/tracker"
)

// DefaultTimeout bounds every tracker call.
const DefaultTimeout = 15 * time.Second

// Config holds the Jira connection settings.
type Config struct {
	Domain     string
	Email      string
	APIToken   string
	ProjectKey string
	Timeout    time.Duration
}

// Configured reports whether every credential is present.
func (c Config) Configured() bool {
	return c.Domain != "" && c.Email != "" && c.APIToken != "" && c.ProjectKey != ""
}

// Client talks to one Jira project.
type Client struct {
	api        *jirasdk.Client
	projectKey string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu         sync.Mutex
	issueTypes []issueType
}

var _ tracker.Client = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client. All credentials are required. The SDK never
// retries: callers record failures instead.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("jira configuration missing (domain, email, api_token and project_key required)")
	}
	domain := strings.TrimRight(cfg.Domain, "/")
	if !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	to := cfg.Timeout
	if to <= 0 {
		to = DefaultTimeout
	}
	c := &Client{
		projectKey: cfg.ProjectKey,
		timeout:    to,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	sdkOpts := []jirasdk.Option{
		jirasdk.WithBaseURL(domain),
		jirasdk.WithAPIToken(cfg.Email, cfg.APIToken),
		jirasdk.WithTimeout(to),
		jirasdk.WithMaxRetries(0),
		jirasdk.WithUserAgent("planllama"),
		jirasdk.WithMiddleware(logRequests(c.logger)),
		jirasdk.WithMiddleware(statusErrors),
	}
	if c.httpClient != nil {
		sdkOpts = append(sdkOpts, jirasdk.WithHTTPClient(c.httpClient))
	}
	api, err := jirasdk.NewClient(sdkOpts...)
	if err != nil {
		return nil, fmt.Errorf("jira client: %w", err)
	}
	c.api = api
	return c, nil
}

// ProjectKey returns the Jira project issues are created in.
func (c *Client) ProjectKey() string {
	return c.projectKey
}

type issueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subtask bool   `json:"subtask"`
}

// CreateIssue creates an issue and returns its id and key. The priority name
// is logged but not sent, since the priority field is not guaranteed to be on
// the create screen.
func (c *Client) CreateIssue(ctx context.Context, req tracker.IssueRequest) (tracker.IssueRef, error) {
	const op = "create issue"
	if strings.TrimSpace(req.Summary) == "" {
		return tracker.IssueRef{}, &tracker.Error{Op: op, Kind: tracker.KindRemote, Err: errors.New("summary is required")}
	}
	return withTimeout(ctx, c, op, func(ctx context.Context) (tracker.IssueRef, error) {
		typeName := req.IssueType
		if typeName == "" {
			typeName = tracker.IssueTypeTask
		}
		typeID, err := c.issueTypeID(ctx, typeName)
		if err != nil {
			return tracker.IssueRef{}, err
		}

		fields := &issue.IssueFields{
			Project:   &issue.Project{Key: c.projectKey},
			Summary:   req.Summary,
			IssueType: &issue.IssueType{ID: typeID},
			Labels:    req.Labels,
		}
		if strings.TrimSpace(req.Description) != "" {
			fields.SetDescription(Document(req.Description))
		}
		if req.AssigneeID != "" {
			fields.Assignee = &issue.User{AccountID: req.AssigneeID}
		}
		if req.ParentKey != "" {
			fields.Parent = &issue.IssueRef{Key: req.ParentKey}
		}

		created, err := c.api.Issue.Create(ctx, &issue.CreateInput{Fields: fields})
		if err != nil {
			return tracker.IssueRef{}, classify(op, err)
		}
		if created.Key == "" {
			return tracker.IssueRef{}, &tracker.Error{Op: op, Kind: tracker.KindInvalidResponse, Err: errors.New("response has no issue key")}
		}
		c.logger.Debug("jira issue created", "key", created.Key, "type", typeName, "priority", req.PriorityName)
		return tracker.IssueRef{ID: created.ID, Key: created.Key}, nil
	})
}

// GetIssue fetches an issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*tracker.Issue, error) {
	const op = "get issue"
	return withTimeout(ctx, c, op, func(ctx context.Context) (*tracker.Issue, error) {
		remote, err := c.api.Issue.Get(ctx, url.PathEscape(key), nil)
		if err != nil {
			return nil, classify(op, err)
		}
		out := &tracker.Issue{
			ID:         remote.ID,
			Key:        remote.Key,
			Summary:    remote.GetSummary(),
			StatusName: remote.GetStatusName(),
		}
		if custom := remote.SafeFields().Custom; len(custom) > 0 {
			out.Fields = make(map[string]any, len(custom))
			for id, f := range custom {
				out.Fields[id] = f.Value
			}
		}
		if out.StatusName == "" {
			return nil, &tracker.Error{Op: op, Kind: tracker.KindInvalidResponse, Err: errors.New("issue has no status")}
		}
		return out, nil
	})
}

// TransitionIssue applies a workflow transition.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	const op = "transition issue"
	_, err := withTimeout(ctx, c, op, func(ctx context.Context) (struct{}, error) {
		err := c.api.Issue.DoTransition(ctx, url.PathEscape(key), &issue.TransitionInput{
			Transition: &issue.Transition{ID: transitionID},
		})
		if err != nil {
			return struct{}{}, classify(op, err)
		}
		return struct{}{}, nil
	})
	return err
}

// issueTypeID resolves a type name case-insensitively through the cached
// createmeta listing.
func (c *Client) issueTypeID(ctx context.Context, name string) (string, error) {
	types, err := c.loadIssueTypes(ctx)
	if err != nil {
		return "", err
	}
	for _, it := range types {
		if strings.EqualFold(it.Name, name) {
			return it.ID, nil
		}
	}
	return "", &tracker.Error{
		Op:   "resolve issue type",
		Kind: tracker.KindUnknownIssueType,
		Err:  fmt.Errorf("issue type %q not found in project %s", name, c.projectKey),
	}
}

// loadIssueTypes reads the createmeta listing, which the SDK has no service
// for, through the SDK transport.
func (c *Client) loadIssueTypes(ctx context.Context) ([]issueType, error) {
	const op = "list issue types"
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.issueTypes) > 0 {
		return c.issueTypes, nil
	}

	path := "/rest/api/3/issue/createmeta/" + url.PathEscape(c.projectKey) + "/issuetypes"
	req, err := c.api.Transport.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &tracker.Error{Op: op, Kind: tracker.KindUnreachable, Err: err}
	}
	resp, err := c.api.Transport.Do(ctx, req)
	if err != nil {
		return nil, classify(op, err)
	}
	var out struct {
		IssueTypes []issueType `json:"issueTypes"`
	}
	if err := c.api.Transport.DecodeResponse(resp, &out); err != nil {
		return nil, classify(op, err)
	}
	c.issueTypes = out.IssueTypes
	return c.issueTypes, nil
}

// statusErrors turns every error status into a *transport.ErrorResponse so
// the status code and Jira's messages survive the SDK's own wrapping.
func statusErrors(next transport.RoundTripFunc) transport.RoundTripFunc {
	return func(ctx context.Context, req *http.Request) (*http.Response, error) {
		resp, err := next(ctx, req)
		if err != nil || resp.StatusCode < http.StatusBadRequest {
			return resp, err
		}
		var discard json.RawMessage
		return nil, transport.DecodeJSONResponse(resp, &discard)
	}
}

func logRequests(logger *slog.Logger) transport.Middleware {
	return func(next transport.RoundTripFunc) transport.RoundTripFunc {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			attrs := []any{"method", req.Method, "path", req.URL.Path, "duration", time.Since(start)}
			if err != nil {
				logger.DebugContext(ctx, "jira request failed", append(attrs, "error", err)...)
				return resp, err
			}
			logger.DebugContext(ctx, "jira request", append(attrs, "status", resp.StatusCode)...)
			return resp, nil
		}
	}
}

// classify maps an SDK error onto a tracker error kind.
func classify(op string, err error) error {
	var tErr *tracker.Error
	if errors.As(err, &tErr) {
		return err
	}
	var apiErr *transport.ErrorResponse
	if errors.As(err, &apiErr) {
		return &tracker.Error{Op: op, Kind: tracker.KindRemote, StatusCode: apiErr.StatusCode, Err: apiErr}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &tracker.Error{Op: op, Kind: tracker.KindInvalidResponse, Err: err}
	}
	return &tracker.Error{Op: op, Kind: transportKind(err), Err: err}
}

func transportKind(err error) tracker.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return tracker.KindTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return tracker.KindTimeout
	}
	return tracker.KindUnreachable
}

// withTimeout runs fn under the fortify timeout. A context error while the
// caller's context is still live means the timeout fired.
func withTimeout[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	t := timeout.New[T](timeout.Config{DefaultTimeout: c.timeout})
	res, err := t.Execute(ctx, c.timeout, fn)
	if err == nil {
		return res, nil
	}
	if ctx.Err() == nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		return res, &tracker.Error{Op: op, Kind: tracker.KindTimeout, Err: err}
	}
	var tErr *tracker.Error
	if errors.As(err, &tErr) {
		return res, err
	}
	kind := tracker.KindTimeout
	if errors.Is(ctx.Err(), context.Canceled) {
		kind = tracker.KindUnreachable
	}
	return res, &tracker.Error{Op: op, Kind: kind, Err: err}
}
