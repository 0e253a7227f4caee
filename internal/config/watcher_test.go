package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

type testConfig struct {
	Name  string `toml:"name"`
	Value int    `toml:"value"`
}

func loadTestConfig(path string) (testConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testConfig{}, err
	}
	var cfg testConfig
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatcher_BasicReload(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("name = \"initial\"\nvalue = 1\n")
	tmpFile.Close()

	received := make(chan testConfig, 1)
	watcher := NewWatcher(
		tmpFile.Name(),
		loadTestConfig,
		newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg testConfig) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Wait for watcher to initialize
	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(tmpFile.Name(), []byte("name = \"updated\"\nvalue = 42\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case cfg := <-received:
		if cfg.Name != "updated" || cfg.Value != 42 {
			t.Errorf("got %+v, want name=updated, value=42", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload")
	}
}

func TestWatcher_Unsubscribe(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.WriteString("value = 1\n")
	tmpFile.Close()

	var calls atomic.Int32
	watcher := NewWatcher(
		tmpFile.Name(),
		loadTestConfig,
		newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond),
	)
	unsub := watcher.OnReload(func(testConfig) {
		calls.Add(1)
	})
	unsub()

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(tmpFile.Name(), []byte("value = 2\n"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if calls.Load() != 0 {
		t.Errorf("unsubscribed handler was called %d times", calls.Load())
	}
}

func TestWatcher_ErrorHandler(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.WriteString("value = 1\n")
	tmpFile.Close()

	errCh := make(chan error, 1)
	watcher := NewWatcher(
		tmpFile.Name(),
		loadTestConfig,
		newTestLogger(),
		WithDebounce[testConfig](50*time.Millisecond),
		WithErrorHandler[testConfig](func(e error) { errCh <- e }),
	)

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)
	os.WriteFile(tmpFile.Name(), []byte("value = \"not an int\"\n"), 0o644)

	select {
	case <-errCh:
		// Expected
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestWatcher_RecursiveTree(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "guide")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	var loads atomic.Int32
	loader := func(path string) (string, error) {
		loads.Add(1)
		return path, nil
	}

	var eventPaths atomic.Value
	received := make(chan string, 4)
	watcher := NewWatcher(
		root,
		loader,
		newTestLogger(),
		WithDebounce[string](50*time.Millisecond),
		WithRecursive[string](),
		WithEventHook[string](func(ev fsnotify.Event) {
			eventPaths.Store(ev.Name)
		}),
	)
	watcher.OnReload(func(path string) {
		received <- path
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	changed := filepath.Join(sub, "usage.md")
	if err := os.WriteFile(changed, []byte("# Usage\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if got != root {
			t.Errorf("loader should receive the watched root, got %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reload from subdirectory change")
	}

	if p, _ := eventPaths.Load().(string); p != changed {
		t.Errorf("event hook saw %q, want %q", p, changed)
	}
}
