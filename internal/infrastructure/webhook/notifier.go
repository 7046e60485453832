// Package webhook delivers sync run notifications to outgoing webhooks.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Planllama-Signature"

// Body formats an endpoint can receive.
const (
	FormatJSON  = "json"
	FormatSlack = "slack"
)

// Endpoint is one webhook receiver. An empty Format means FormatJSON.
type Endpoint struct {
	Name       string
	URL        string
	Secret     string
	Format     string
	Events     []string
	MaxRetries int
	RetryDelay time.Duration
}

// Notifier sends outgoing webhook notifications for concluded sync log entries.
type Notifier struct {
	endpoints  []Endpoint
	client     *http.Client
	deadLetter *DeadLetterStore
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewNotifier creates a notifier. deadLetter may be nil.
func NewNotifier(endpoints []Endpoint, deadLetter *DeadLetterStore, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		endpoints: endpoints,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		deadLetter: deadLetter,
		logger:     logger,
	}
}

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      synclog.Entry `json:"data"`
}

// Notify delivers the entry to every matching endpoint in the background.
func (n *Notifier) Notify(ctx context.Context, entry synclog.Entry) {
	eventType := entry.EventName()
	body, err := json.Marshal(Payload{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      entry,
	})
	if err != nil {
		n.logger.Warn("failed to encode webhook payload", "log_id", entry.ID, "error", err)
		return
	}

	for _, ep := range n.endpoints {
		if !matchesFilter(ep, eventType) {
			continue
		}
		epBody := body
		if ep.Format == FormatSlack {
			if epBody, err = slackBody(entry); err != nil {
				n.logger.Warn("failed to encode slack payload", "log_id", entry.ID, "error", err)
				continue
			}
		}
		n.wg.Add(1)
		go func(ep Endpoint, body []byte) {
			defer n.wg.Done()
			n.deliver(context.WithoutCancel(ctx), ep, eventType, body)
		}(ep, epBody)
	}
}

// Wait blocks until in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func matchesFilter(ep Endpoint, eventType string) bool {
	if len(ep.Events) == 0 {
		return true
	}
	for _, pattern := range ep.Events {
		if ok, _ := path.Match(pattern, eventType); ok {
			return true
		}
	}
	return false
}

func (n *Notifier) deliver(ctx context.Context, ep Endpoint, eventType string, body []byte) {
	maxRetries := ep.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := ep.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	r := retry.New[struct{}](retry.Config{
		MaxAttempts:   maxRetries,
		InitialDelay:  retryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	_, err := r.Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, n.send(ctx, ep, body)
	})
	if err == nil {
		return
	}

	n.logger.Warn("webhook delivery failed", "webhook", ep.Name, "event", eventType, "error", err)
	if n.deadLetter == nil {
		return
	}
	dl := DeadLetter{
		Timestamp:   time.Now().UTC(),
		WebhookName: ep.Name,
		URL:         ep.URL,
		EventType:   eventType,
		Payload:     string(body),
		Error:       err.Error(),
		Attempts:    maxRetries,
	}
	if err := n.deadLetter.Append(dl); err != nil {
		n.logger.Warn("failed to write dead letter", "webhook", ep.Name, "error", err)
	}
}

func (n *Notifier) send(ctx context.Context, ep Endpoint, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "planllama-webhook/1.0")
	if ep.Secret != "" {
		req.Header.Set(SignatureHeader, sign(body, ep.Secret))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// sign computes HMAC-SHA256 of the payload using the secret.
func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
