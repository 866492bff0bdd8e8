package rollout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// tailMaxBytes bounds the pending-call scan to the end of the file.
const tailMaxBytes = 512 * 1024

// RequestUserInputCall is the tool-call name a session issues when it is
// blocked on the user; the classifier treats it as definitive Waiting
// evidence regardless of rollout recency.
const RequestUserInputCall = "request_user_input"

// PendingCall is a function_call near the rollout tail with no matching
// function_call_output yet.
type PendingCall struct {
	Name   string
	CallID string
}

type responseLine struct {
	Type    string          `json:"type"`
	Payload responsePayload `json:"payload"`
}

type responsePayload struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	CallID string `json:"call_id"`
}

// ReadPendingCall scans at most the final tailMaxBytes of the rollout and
// returns the newest unresolved tool call, or nil when every call in the
// window has an output. Lines that fail to decode are skipped.
func ReadPendingCall(path string) (*PendingCall, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rollout: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat rollout: %w", err)
	}

	offset := int64(0)
	if info.Size() > tailMaxBytes {
		offset = info.Size() - tailMaxBytes
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek rollout tail: %w", err)
	}

	buf, err := io.ReadAll(io.LimitReader(f, tailMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read rollout tail: %w", err)
	}

	lines := bytes.Split(buf, []byte{'\n'})
	if offset > 0 && len(lines) > 0 {
		// The window almost certainly starts mid-line; drop the fragment.
		lines = lines[1:]
	}

	var pending []PendingCall
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var record responseLine
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		if record.Type != "response_item" {
			continue
		}
		switch record.Payload.Type {
		case "function_call":
			if record.Payload.CallID == "" {
				continue
			}
			pending = append(pending, PendingCall{
				Name:   record.Payload.Name,
				CallID: record.Payload.CallID,
			})
		case "function_call_output":
			for i := len(pending) - 1; i >= 0; i-- {
				if pending[i].CallID == record.Payload.CallID {
					pending = append(pending[:i], pending[i+1:]...)
					break
				}
			}
		}
	}

	if len(pending) == 0 {
		return nil, nil
	}
	call := pending[len(pending)-1]
	return &call, nil
}

// TailCache memoizes pending-call scans per rollout path, keyed by the
// file's mtime. A freshly changed mtime defers the parse by one pass so a
// half-written tail line is never decoded while the holder is still
// appending to it.
type TailCache struct {
	mu      sync.Mutex
	entries map[string]*tailEntry
}

type tailEntry struct {
	mtime     time.Time
	parsedFor time.Time
	pending   *PendingCall
}

func NewTailCache() *TailCache {
	return &TailCache{entries: make(map[string]*tailEntry)}
}

// Pending returns the pending call for path at the given mtime, parsing the
// tail only when the file has been stable since the previous pass.
func (c *TailCache) Pending(path string, mtime time.Time) *PendingCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[path]
	if !ok || !entry.mtime.Equal(mtime) {
		c.entries[path] = &tailEntry{mtime: mtime}
		return nil
	}
	if entry.parsedFor.Equal(mtime) {
		return entry.pending
	}

	call, err := ReadPendingCall(path)
	if err != nil {
		call = nil
	}
	entry.pending = call
	entry.parsedFor = mtime
	return call
}

// Prune drops cache entries for rollouts no longer held open.
func (c *TailCache) Prune(active map[string]struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path := range c.entries {
		if _, ok := active[path]; !ok {
			delete(c.entries, path)
		}
	}
}
