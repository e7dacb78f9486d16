package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeckhq/agentdeck/pkg/project"
)

func newScanner(t *testing.T) *project.Scanner {
	t.Helper()
	s, err := project.NewScanner()
	require.NoError(t, err)
	return s
}

func TestWatcherScansImmediately(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/x\n"), 0o644))

	profiles := make(chan *project.Profile, 1)
	w := New(newScanner(t), dir, func(_ context.Context, p *project.Profile) {
		select {
		case profiles <- p:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case p := <-profiles:
		assert.Equal(t, dir, p.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("initial scan never fired")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherRescansOnRelevantChange(t *testing.T) {
	dir := t.TempDir()

	profiles := make(chan *project.Profile, 4)
	w := New(newScanner(t), dir, func(_ context.Context, p *project.Profile) {
		profiles <- p
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Initial scan of the empty directory.
	select {
	case p := <-profiles:
		assert.Empty(t, p.Languages)
	case <-time.After(5 * time.Second):
		t.Fatal("initial scan never fired")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"dependencies": {"react": "1"}}`), 0o644))

	select {
	case p := <-profiles:
		assert.Contains(t, p.Frameworks, "react")
	case <-time.After(5 * time.Second):
		t.Fatal("re-scan never fired after manifest change")
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := New(newScanner(t), filepath.Join(t.TempDir(), "missing"), nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	w := New(newScanner(t), ".", nil)

	tests := []struct {
		path     string
		expected bool
	}{
		{"/p/go.mod", true},
		{"/p/package.json", true},
		{"/p/Dockerfile", true},
		{"/p/.github/workflows/ci.yml", true},
		{"/p/README.md", false},
		{"/p/src/index.ts", false},
		{"/p/other/ci.yml", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: fsnotify.Write}
			assert.Equal(t, tt.expected, w.relevant(event))
		})
	}
}
