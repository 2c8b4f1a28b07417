// Package keywords loads keyword tables from YAML and keeps the
// interpreter in sync with the file on disk.
package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"voice-scene/internal/domain"
)

// Load reads a keyword table. Entries missing from the file keep their
// default value.
func Load(path string) (domain.Keywords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Keywords{}, fmt.Errorf("reading keyword file: %w", err)
	}

	var kw domain.Keywords
	if err := yaml.Unmarshal(data, &kw); err != nil {
		return domain.Keywords{}, fmt.Errorf("parsing keyword file: %w", err)
	}

	return kw.WithDefaults(domain.DefaultKeywords()), nil
}

// Setter receives a freshly loaded table.
type Setter interface {
	SetKeywords(kw domain.Keywords)
}

// Watcher reloads the keyword file whenever it changes. Editors often
// replace a file rather than write it in place, so the parent directory is
// watched and events are filtered by name.
type Watcher struct {
	path     string
	target   Setter
	logger   *slog.Logger
	debounce time.Duration
}

func NewWatcher(path string, target Setter, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		target:   target,
		logger:   logger,
		debounce: 200 * time.Millisecond,
	}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("watching keyword file", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("keyword watcher error", "error", err)

		case <-fire:
			fire = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	kw, err := Load(w.path)
	if err != nil {
		w.logger.Error("reloading keywords, keeping previous table", "error", err)
		return
	}
	w.target.SetKeywords(kw)
	w.logger.Info("keywords reloaded", "path", w.path)
}
