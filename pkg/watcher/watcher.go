// Package watcher re-scans a project when files that carry profile
// signal change on disk, so suggestion surfaces stay fresh without
// polling.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/project"
)

// DefaultDebounce is how long the watcher waits after the last
// relevant event before re-scanning. Editors fire bursts of events for
// a single save; one scan per burst is enough.
const DefaultDebounce = 2 * time.Second

// relevantFiles are file names whose changes can alter the profile.
var relevantFiles = map[string]bool{
	"go.mod":             true,
	"package.json":       true,
	"pyproject.toml":     true,
	"requirements.txt":   true,
	"Cargo.toml":         true,
	"Gemfile":            true,
	"composer.json":      true,
	"pubspec.yaml":       true,
	"Dockerfile":         true,
	"docker-compose.yml": true,
	".gitlab-ci.yml":     true,
}

// ProfileFunc receives each fresh profile after a re-scan.
type ProfileFunc func(context.Context, *project.Profile)

// Watcher watches a project directory and re-scans on relevant changes.
type Watcher struct {
	scanner   *project.Scanner
	dir       string
	debounce  time.Duration
	onProfile ProfileFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce interval.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// New creates a watcher over dir that calls onProfile with each fresh
// scan result.
func New(scanner *project.Scanner, dir string, onProfile ProfileFunc, opts ...Option) *Watcher {
	w := &Watcher{
		scanner:   scanner,
		dir:       dir,
		debounce:  DefaultDebounce,
		onProfile: onProfile,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run scans once immediately, then blocks watching for changes until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create filesystem watcher")
	}
	defer fsw.Close()

	// Watch the project root and .github/workflows if present; marker
	// files all live at the top level.
	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", w.dir)
	}
	workflows := filepath.Join(w.dir, ".github", "workflows")
	if err := fsw.Add(workflows); err == nil {
		logger.G(ctx).WithField("dir", workflows).Debug("Watching workflows directory")
	}

	if err := w.rescan(ctx); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.G(ctx).WithFields(map[string]interface{}{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("Relevant change detected")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.rescan(ctx); err != nil {
				logger.G(ctx).WithError(err).Warn("Re-scan failed")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.G(ctx).WithError(err).Warn("Watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if relevantFiles[name] {
		return true
	}
	// CI workflow definitions.
	return strings.HasSuffix(name, ".yml") &&
		filepath.Base(filepath.Dir(event.Name)) == "workflows"
}

func (w *Watcher) rescan(ctx context.Context) error {
	profile, err := w.scanner.Scan(ctx, w.dir)
	if err != nil {
		return errors.Wrap(err, "scan failed")
	}
	if w.onProfile != nil {
		w.onProfile(ctx, profile)
	}
	return nil
}
