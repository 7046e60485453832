// Package sse streams committed sync log entries via Server-Sent Events.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain/synclog"
)

const clientBuffer = 64

// Broadcaster fans sync log entries out to connected SSE clients.
// It satisfies application.Notifier.
type Broadcaster struct {
	logger  *slog.Logger
	mu      sync.RWMutex
	clients map[chan synclog.Entry]struct{}
}

// NewBroadcaster creates a broadcaster with no clients.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		logger:  logger,
		clients: make(map[chan synclog.Entry]struct{}),
	}
}

// Notify hands the entry to every client without blocking.
func (b *Broadcaster) Notify(_ context.Context, entry synclog.Entry) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- entry:
		default:
			b.logger.Debug("dropping sync event for slow client", "log_id", entry.ID)
		}
	}
}

// Clients reports how many streams are open.
func (b *Broadcaster) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) subscribe() chan synclog.Entry {
	ch := make(chan synclog.Entry, clientBuffer)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broadcaster) unsubscribe(ch chan synclog.Entry) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
}

// ServeHTTP streams entries until the client goes away.
// ?types=project,task and ?status=error narrow the stream.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	types := splitFilter(r.URL.Query().Get("types"))
	statuses := splitFilter(r.URL.Query().Get("status"))

	// Subscribe before the headers go out so a client that sees them cannot
	// miss an entry.
	ch := b.subscribe()
	defer b.unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		b.logger.Warn("streaming unsupported", "error", err)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case entry := <-ch:
			if !allowed(types, string(entry.Type)) || !allowed(statuses, string(entry.Status)) {
				continue
			}
			if err := writeEvent(w, entry); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, entry synclog.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", entry.ID, entry.EventName(), data)
	return err
}

func splitFilter(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	filter := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			filter[part] = true
		}
	}
	return filter
}

func allowed(filter map[string]bool, value string) bool {
	return len(filter) == 0 || filter[value]
}
