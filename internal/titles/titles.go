// Package titles resolves session titles from the Codex global state file.
package titles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Source identifies the global state file as a title origin in diagnostics.
const Source = "codex-global-state.json"

// Resolver reads thread titles out of <codex home>/.codex-global-state.json.
// The file is re-read only when its mtime changes.
type Resolver struct {
	mu        sync.Mutex
	path      string
	lastMtime time.Time
	haveMtime bool
	titles    map[string]string
}

type globalState struct {
	ThreadTitles *threadTitles `json:"thread-titles"`
}

type threadTitles struct {
	Titles map[string]string `json:"titles"`
}

func NewResolver(codexHome string) *Resolver {
	return &Resolver{
		path:   filepath.Join(codexHome, ".codex-global-state.json"),
		titles: make(map[string]string),
	}
}

// Get returns the title recorded for the session, or nil when the global
// state has none. A missing state file is not an error; unreadable or
// malformed state is.
func (r *Resolver) Get(sessionID string) (*string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refreshIfChanged(); err != nil {
		return nil, err
	}
	if title, ok := r.titles[sessionID]; ok {
		return &title, nil
	}
	return nil, nil
}

func (r *Resolver) refreshIfChanged() error {
	info, err := os.Stat(r.path)
	if err != nil {
		// If the state file disappears, drop the cache rather than serving
		// stale titles.
		r.lastMtime = time.Time{}
		r.haveMtime = false
		r.titles = make(map[string]string)
		return nil
	}

	mtime := info.ModTime()
	if r.haveMtime && mtime.Equal(r.lastMtime) {
		return nil
	}

	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", r.path, err)
	}

	var parsed globalState
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("parse codex global state: %w", err)
	}

	titles := make(map[string]string)
	if parsed.ThreadTitles != nil && parsed.ThreadTitles.Titles != nil {
		titles = parsed.ThreadTitles.Titles
	}
	r.titles = titles
	r.lastMtime = mtime
	r.haveMtime = true
	return nil
}
