package governance

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PatternWatcher watches a content-filter pattern file for changes and
// reloads the filter's pattern set when the file is modified. Changes are
// debounced to avoid reload storms from editors that write in several
// steps.
//
// The pattern file is plain text: one pattern per line, blank lines and
// lines starting with '#' ignored.
type PatternWatcher struct {
	path     string
	filter   *ContentFilter
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopped bool
	stopCh  chan struct{}
}

// NewPatternWatcher creates a watcher for the given pattern file. The file
// is loaded once immediately so that a bad path fails at startup rather
// than on first change.
func NewPatternWatcher(path string, filter *ContentFilter, debounce time.Duration) (*PatternWatcher, error) {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	patterns, err := LoadPatternFile(path)
	if err != nil {
		return nil, err
	}
	filter.SetPatterns(patterns)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &PatternWatcher{
		path:     path,
		filter:   filter,
		watcher:  w,
		debounce: debounce,
		logger:   slog.Default().With("component", "governance.patterns"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Watch blocks, reloading the pattern file on change, until the context is
// cancelled or Stop is called. Reload failures are logged and the previous
// pattern set stays active.
func (pw *PatternWatcher) Watch(ctx context.Context) error {
	pw.mu.Lock()
	if pw.running {
		pw.mu.Unlock()
		return fmt.Errorf("pattern watcher already running")
	}
	pw.running = true
	pw.mu.Unlock()

	defer func() {
		pw.mu.Lock()
		pw.running = false
		pw.mu.Unlock()
	}()

	// Watch the directory rather than the file itself: editors and
	// atomic-rename writers replace the inode, which drops a file watch.
	if err := pw.watcher.Add(filepath.Dir(pw.path)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", pw.path, err)
	}

	pw.logger.Info("pattern watcher started",
		"path", pw.path,
		"patterns", len(pw.filter.Patterns()),
	)

	var timer *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			pw.logger.Info("pattern watcher stopped")
			return nil

		case <-pw.stopCh:
			pw.logger.Info("pattern watcher stopped")
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(pw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			// Debounce: restart the timer on every event burst.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(pw.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			pw.reload()

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			pw.logger.Error("pattern watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases the underlying fsnotify resources.
// Safe to call more than once.
func (pw *PatternWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.stopped {
		pw.stopped = true
		close(pw.stopCh)
	}
	return pw.watcher.Close()
}

// reload re-reads the pattern file and swaps the filter's pattern set.
func (pw *PatternWatcher) reload() {
	patterns, err := LoadPatternFile(pw.path)
	if err != nil {
		pw.logger.Error("pattern reload failed, keeping previous set",
			"path", pw.path,
			"error", err,
		)
		return
	}

	pw.filter.SetPatterns(patterns)
	pw.logger.Info("content-filter patterns reloaded",
		"path", pw.path,
		"patterns", len(patterns),
	)
}

// LoadPatternFile reads a pattern file: one pattern per line, blank lines
// and '#' comments ignored.
func LoadPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file %q: %w", path, err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pattern file %q: %w", path, err)
	}

	return patterns, nil
}
