package sse_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/planllama/internal/infrastructure/sse"
	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

func waitForClients(t *testing.T, b *sse.Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, b.Clients())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcaster_StreamsFilteredEntries(t *testing.T) {
	b := sse.NewBroadcaster(nil)
	server := httptest.NewServer(b)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"?types=task&status=error", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}
	if b.Clients() != 1 {
		t.Fatalf("expected one subscriber once headers arrived, got %d", b.Clients())
	}

	b.Notify(ctx, synclog.Entry{ID: 1, Type: synclog.TypeProject, Status: synclog.StatusError})
	b.Notify(ctx, synclog.Entry{ID: 2, Type: synclog.TypeTask, Status: synclog.StatusSuccess})
	b.Notify(ctx, synclog.Entry{ID: 3, Type: synclog.TypeTask, Status: synclog.StatusError, ErrorMessage: "boom"})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 3 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if lines[0] != "id: 3" {
		t.Errorf("expected first event to be log 3, got %q", lines[0])
	}
	if lines[1] != "event: sync.task.error" {
		t.Errorf("unexpected event line %q", lines[1])
	}
	if !strings.Contains(lines[2], `"error_message":"boom"`) {
		t.Errorf("unexpected data line %q", lines[2])
	}

	cancel()
	waitForClients(t, b, 0)
}

func TestBroadcaster_NotifyWithoutClients(t *testing.T) {
	b := sse.NewBroadcaster(nil)
	b.Notify(context.Background(), synclog.Entry{ID: 1})
	if b.Clients() != 0 {
		t.Errorf("expected no clients, got %d", b.Clients())
	}
}
