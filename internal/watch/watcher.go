package watch

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op is the kind of file change.
type Op int

const (
	OpAdd Op = iota
	OpRemove
	OpModify
)

// String returns "add", "remove" or "modify".
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpRemove:
		return "remove"
	case OpModify:
		return "modify"
	default:
		return "unknown"
	}
}

// Event is a detected file change.
type Event struct {
	Path string
	Op   Op
}

// Config configures the watcher.
type Config struct {
	// Paths are the directories to watch. Missing directories are watched
	// for creation.
	Paths []string

	// Ignore patterns to skip (globs, names or path fragments).
	Ignore []string

	// Interval is the polling interval.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls directories for file changes.
type Watcher struct {
	config  Config
	onEvent func(Event)

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
	primed     bool
}

// New creates a new watcher.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 250 * time.Millisecond
	}
	if config.Ignore == nil {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnEvent sets the callback for file changes.
func (w *Watcher) OnEvent(fn func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onEvent = fn
}

// Start records the current state of the watched paths, then polls until ctx
// is done or Stop is called. Files present at start produce no events.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.Prime()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.dispatch(w.Poll())
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Prime records the current files without reporting them.
func (w *Watcher) Prime() {
	current := w.snapshot()

	w.mu.Lock()
	w.timestamps = current
	w.primed = true
	w.mu.Unlock()
}

// Poll compares the watched paths with the previous poll and returns the
// changes sorted by path. The first Poll of an unprimed watcher primes it and
// reports nothing.
func (w *Watcher) Poll() []Event {
	current := w.snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.primed {
		w.timestamps = current
		w.primed = true
		return nil
	}

	var events []Event
	for p, mod := range current {
		last, ok := w.timestamps[p]
		switch {
		case !ok:
			events = append(events, Event{Path: p, Op: OpAdd})
		case mod.After(last):
			events = append(events, Event{Path: p, Op: OpModify})
		}
	}
	for p := range w.timestamps {
		if _, ok := current[p]; !ok {
			events = append(events, Event{Path: p, Op: OpRemove})
		}
	}
	w.timestamps = current

	sort.Slice(events, func(i, j int) bool {
		if events[i].Path != events[j].Path {
			return events[i].Path < events[j].Path
		}
		return events[i].Op < events[j].Op
	})
	return events
}

func (w *Watcher) dispatch(events []Event) {
	w.mu.Lock()
	callback := w.onEvent
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, ev := range events {
		callback(ev)
	}
}

// snapshot walks every watched path and returns file modification times.
func (w *Watcher) snapshot() map[string]time.Time {
	files := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if p != root && w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files[p] = info.ModTime()
			return nil
		})
	}
	return files
}

// shouldIgnore checks if a path should be ignored.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(pattern, normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, pattern) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(path, segment string) bool {
	for _, part := range splitPathSegments(path) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(path, pattern string) bool {
	pathParts := splitPathSegments(path)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}

	return false
}

func splitPathSegments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
