package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voice-scene/internal/domain"
)

var audioExtensions = map[string]bool{
	".wav":  true,
	".raw":  true,
	".pcm":  true,
	".flac": true,
}

// FileSource polls a directory. Audio files become audio utterances and
// .txt files become text utterances; each file is renamed with a
// .processed suffix once read.
type FileSource struct {
	dir       string
	interval  time.Duration
	logger    *slog.Logger
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:       dir,
		interval:  500 * time.Millisecond,
		logger:    logger,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) (domain.Utterance, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		u, ok, err := f.checkForNewFile()
		if err != nil {
			return domain.Utterance{}, err
		}
		if ok {
			return u, nil
		}

		select {
		case <-ctx.Done():
			return domain.Utterance{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *FileSource) checkForNewFile() (domain.Utterance, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return domain.Utterance{}, false, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		isText := ext == ".txt"
		if !isText && !audioExtensions[ext] {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Utterance{}, false, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		if err := os.Rename(path, path+".processed"); err != nil {
			f.logger.Warn("marking file processed", "path", path, "error", err)
		}

		if isText {
			return domain.NewTextUtterance(strings.TrimSpace(string(data))), true, nil
		}
		return domain.NewAudioUtterance(data), true, nil
	}

	return domain.Utterance{}, false, nil
}
