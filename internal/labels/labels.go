// Package labels is the observer-owned session label store: an append-only
// JSONL file resolved to a latest-wins map in memory. The observed tool
// never sees this file.
package labels

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/aelaguiz/codex-ps/internal/domain"
)

const maxLineBytes = 1024 * 1024

// Entry is one appended record. A nil Label clears the key. The entry with
// the greatest WriteTime wins for a key regardless of file order; equal
// times fall back to file order.
type Entry struct {
	Host      string    `json:"host"`
	SessionID string    `json:"session_id"`
	Label     *string   `json:"label"`
	WriteTime time.Time `json:"write_time"`
}

type resolved struct {
	label     *string
	writeTime time.Time
}

// Store caches the resolved label map, invalidated by the file's mtime.
// The file itself is only ever appended to; history is never rewritten.
type Store struct {
	mu     sync.Mutex
	path   string
	clk    clock.Clock
	loaded bool
	mtime  time.Time
	byKey  map[string]resolved
}

func NewStore(path string, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.New()
	}
	return &Store{path: path, clk: clk, byKey: make(map[string]resolved)}
}

// DefaultPath places the store under the observer's own config directory.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codex-ps", "session_labels.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "codex-ps", "session_labels.jsonl"), nil
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Get returns the current label for (host, session id), if any. Lookup is a
// map read; the file is only replayed when its mtime changes.
func (s *Store) Get(host, sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()

	entry, ok := s.byKey[domain.SessionKey(host, sessionID)]
	if !ok || entry.label == nil {
		return "", false
	}
	return *entry.label, true
}

// All returns a copy of every key with a live (non-cleared) label.
func (s *Store) All() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()

	out := make(map[string]string)
	for key, entry := range s.byKey {
		if entry.label != nil {
			out[key] = *entry.label
		}
	}
	return out
}

// Set records a label for the key. The label is trimmed; an empty result
// clears instead. The write appends one entry and never touches history.
func (s *Store) Set(host, sessionID, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return s.Clear(host, sessionID)
	}
	return s.append(Entry{
		Host:      host,
		SessionID: sessionID,
		Label:     &label,
		WriteTime: s.clk.Now().UTC(),
	})
}

// Clear appends an explicit cleared entry that overrides earlier labels.
func (s *Store) Clear(host, sessionID string) error {
	return s.append(Entry{
		Host:      host,
		SessionID: sessionID,
		WriteTime: s.clk.Now().UTC(),
	})
}

func (s *Store) append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureFresh()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create label dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open label store: %w", err)
	}
	defer f.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode label entry: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append label entry: %w", err)
	}

	s.apply(entry)
	if info, err := os.Stat(s.path); err == nil {
		s.mtime = info.ModTime()
	} else {
		s.mtime = time.Time{}
	}
	return nil
}

// apply folds one entry into the resolved map under last-write-wins. An
// equal write time defers to the newer entry (file order on replay).
// Labels are normalized here so externally appended entries follow the same
// trimming rules as Set.
func (s *Store) apply(entry Entry) {
	if entry.Label != nil {
		trimmed := strings.TrimSpace(*entry.Label)
		if trimmed == "" {
			entry.Label = nil
		} else {
			entry.Label = &trimmed
		}
	}
	key := domain.SessionKey(entry.Host, entry.SessionID)
	if existing, ok := s.byKey[key]; ok && entry.WriteTime.Before(existing.writeTime) {
		return
	}
	s.byKey[key] = resolved{label: entry.Label, writeTime: entry.WriteTime}
}

// ensureFresh reloads the map when the backing file changed or vanished.
// A missing file is an empty store, not an error. Callers hold s.mu.
func (s *Store) ensureFresh() {
	info, err := os.Stat(s.path)
	if err != nil {
		s.byKey = make(map[string]resolved)
		s.mtime = time.Time{}
		s.loaded = true
		return
	}
	if s.loaded && info.ModTime().Equal(s.mtime) {
		return
	}
	s.reload(info.ModTime())
}

func (s *Store) reload(mtime time.Time) {
	s.byKey = make(map[string]resolved)
	s.loaded = true
	s.mtime = mtime

	f, err := os.Open(s.path)
	if err != nil {
		s.mtime = time.Time{}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Host == "" || entry.SessionID == "" {
			continue
		}
		s.apply(entry)
	}
}
