// Package sourcewatcher reports changes to the CSV files behind a timeline
// source pattern so the timeline can be rebuilt.
package sourcewatcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Config configures the source watcher
type Config struct {
	// Pattern is the source file path or doublestar glob to watch
	Pattern string

	// Debounce is the quiet period after the last change before reporting
	Debounce time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// ChangeSet lists the source files that changed during one quiet period.
type ChangeSet struct {
	Paths []string
}

// Watcher watches the directories of a source pattern and emits a ChangeSet
// once changes to matching files settle.
type Watcher struct {
	config    Config
	pattern   string
	base      string
	recursive bool
	debounce  time.Duration
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	// Debouncing: collect changes before reporting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // path → most recent operation
	lastEvent time.Time

	// Holds at most one unconsumed change set; later changes are dropped
	// because the consumer rebuilds from the full source anyway.
	changes chan ChangeSet
}

// NewWatcher creates a new source watcher
func NewWatcher(config Config) (*Watcher, error) {
	if config.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}

	pattern := filepath.ToSlash(filepath.Clean(config.Pattern))
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", config.Pattern)
	}
	base, _ := doublestar.SplitPattern(pattern)

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debounce := config.Debounce
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:    config,
		pattern:   pattern,
		base:      filepath.FromSlash(base),
		recursive: strings.Contains(pattern, "**"),
		debounce:  debounce,
		watcher:   fsw,
		logger:    logger,
		pending:   make(map[string]fsnotify.Op),
		changes:   make(chan ChangeSet, 1),
	}, nil
}

// Changes returns the channel of settled change sets. It is closed when the
// watcher stops.
func (w *Watcher) Changes() <-chan ChangeSet {
	return w.changes
}

// Start begins watching. Watching stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if w.recursive {
		if err := w.addWatchesRecursive(w.base); err != nil {
			return err
		}
	} else if err := w.watcher.Add(w.base); err != nil {
		return fmt.Errorf("watch %s: %w", w.base, err)
	}

	go w.processEvents(ctx)

	w.logger.Info("Source watcher started",
		"pattern", w.config.Pattern,
		"base", w.base,
		"debounce", w.debounce)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// addWatchesRecursive adds watches to all directories
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Only watch directories
		if !info.IsDir() {
			return nil
		}

		// Skip hidden directories
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}

		return nil
	})
}

// processEvents handles fsnotify events with debouncing
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.changes)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// handleFSEvent records a change to a matching file
func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if w.recursive && event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return
		}
	}

	if event.Op == fsnotify.Chmod || !w.matches(path) {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] = event.Op
	w.lastEvent = time.Now()
	w.pendingMu.Unlock()

	w.logger.Debug("Source change detected",
		"path", path,
		"op", event.Op.String())
}

// matches reports whether path is covered by the watched pattern.
func (w *Watcher) matches(path string) bool {
	ok, err := doublestar.Match(w.pattern, filepath.ToSlash(filepath.Clean(path)))
	return err == nil && ok
}

// handleNewDirectory adds a watch to a newly created directory
func (w *Watcher) handleNewDirectory(path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
		return
	}
	w.logger.Debug("Added watch for new directory", "path", path)

	// Files created before the watch was added would otherwise be missed.
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !w.matches(p) {
			return nil
		}
		w.pendingMu.Lock()
		w.pending[p] = fsnotify.Create
		w.lastEvent = time.Now()
		w.pendingMu.Unlock()
		return nil
	})
}

// flushPending reports accumulated changes once the debounce period has
// passed without new events.
func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 || time.Since(w.lastEvent) < w.debounce {
		w.pendingMu.Unlock()
		return
	}

	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	sort.Strings(paths)

	select {
	case w.changes <- ChangeSet{Paths: paths}:
		w.logger.Debug("Source changes settled", "count", len(paths))
	default:
		w.logger.Debug("Rebuild already pending, coalescing changes", "count", len(paths))
	}
}
