// Package watch turns filesystem activity on rollout files into refresh
// nudges, so the TUI reacts to session activity faster than its periodic
// tick alone would allow.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// stateFileName is the global state file; title edits should refresh too.
const stateFileName = ".codex-global-state.json"

// Notifier watches directories holding rollout files and fires a debounced
// callback on writes. Tracking is re-pointed as the day rolls over, so the
// current sessions directory is always covered.
type Notifier struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	log      *zap.SugaredLogger

	mu        sync.Mutex
	lastNudge time.Time
	watched   map[string]bool
}

// New creates a Notifier. onChange runs on the watcher goroutine and must
// not block; a worker refresh nudge satisfies that.
func New(debounce time.Duration, onChange func(), log *zap.SugaredLogger) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Notifier{
		watcher:  watcher,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		watched:  make(map[string]bool),
	}, nil
}

// Track points the notifier at the given directories. Rollout writers
// append to existing files and create new ones next to them, so a directory
// watch catches both. Directories no longer wanted are dropped; ones that
// do not exist yet fail quietly and are retried on the next Track call.
func (n *Notifier) Track(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		want[dir] = true
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for dir := range want {
		if n.watched[dir] {
			continue
		}
		if err := n.watcher.Add(dir); err != nil {
			n.debugf("watch %s: %v", dir, err)
			continue
		}
		n.watched[dir] = true
	}
	for dir := range n.watched {
		if want[dir] {
			continue
		}
		if err := n.watcher.Remove(dir); err != nil {
			n.debugf("unwatch %s: %v", dir, err)
		}
		delete(n.watched, dir)
	}
}

// Run blocks until ctx is done, nudging on relevant writes.
func (n *Notifier) Run(ctx context.Context) {
	defer n.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !relevant(event.Name) {
				continue
			}
			n.nudge(event.Name)
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.debugf("watcher error: %v", err)
		}
	}
}

func relevant(name string) bool {
	return strings.HasSuffix(name, ".jsonl") || filepath.Base(name) == stateFileName
}

func (n *Notifier) nudge(name string) {
	n.mu.Lock()
	if time.Since(n.lastNudge) < n.debounce {
		n.mu.Unlock()
		return
	}
	n.lastNudge = time.Now()
	n.mu.Unlock()

	n.debugf("fs change: %s", filepath.Base(name))
	n.onChange()
}

func (n *Notifier) debugf(format string, args ...interface{}) {
	if n.log == nil {
		return
	}
	n.log.Debugf(format, args...)
}
