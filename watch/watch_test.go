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

// startWatch runs Watch in the background and returns a channel with
// its result.
func startWatch(ctx context.Context, paths []string, cfg Config, run func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, paths, cfg, run)
	}()
	// Give the watcher a moment to register the directories.
	time.Sleep(50 * time.Millisecond)
	return done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestWatch_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	cfg := Config{Debounce: 20 * time.Millisecond}
	done := startWatch(ctx, []string{path}, cfg, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	if err := os.WriteFile(path, []byte(`{"a": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return runs.Load() > 0 })

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v, want nil on cancel", err)
	}
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	cfg := Config{Debounce: 100 * time.Millisecond}
	startWatch(ctx, []string{path}, cfg, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	// Rapid successive writes land inside one debounce window.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`{"i": 1}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return runs.Load() > 0 })
	time.Sleep(150 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 for a write burst", got)
	}
}

func TestWatch_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.json")
	other := filepath.Join(dir, "other.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	cfg := Config{Debounce: 20 * time.Millisecond}
	startWatch(ctx, []string{path}, cfg, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	if err := os.WriteFile(other, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, want 0 for a sibling file change", got)
	}
}

func TestWatch_RunErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.json")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs, failures atomic.Int32
	cfg := Config{
		Debounce: 20 * time.Millisecond,
		OnError:  func(error) { failures.Add(1) },
	}
	startWatch(ctx, []string{path}, cfg, func(context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("boom")
		}
		return nil
	})

	if err := os.WriteFile(path, []byte(`{"a": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return failures.Load() > 0 })

	if err := os.WriteFile(path, []byte(`{"a": 2}`), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return runs.Load() >= 2 })
}

func TestWatch_NoFiles(t *testing.T) {
	err := Watch(context.Background(), nil, Config{}, func(context.Context) error { return nil })
	if err == nil {
		t.Error("Watch() expected error for empty path list")
	}
}
