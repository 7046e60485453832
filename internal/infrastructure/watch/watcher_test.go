package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func startWatcher(t *testing.T, path string, count *atomic.Int32) (context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := NewFileWatcher(path, 50*time.Millisecond, func(string) { count.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the watcher time to start
	time.Sleep(50 * time.Millisecond)
	return cancel, done
}

func TestFileWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planllama.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var count atomic.Int32
	cancel, done := startWatcher(t, path, &count)
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback, got %d", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planllama.yaml")

	var count atomic.Int32
	cancel, _ := startWatcher(t, path, &count)
	defer cancel()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("expected no callbacks, got %d", got)
	}

	// Creating the watched file counts as a change.
	if err := os.WriteFile(path, []byte("x: 1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 callback after create, got %d", got)
	}
}

func TestNewFileWatcher_MissingDirectory(t *testing.T) {
	if _, err := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "planllama.yaml"), 0, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
