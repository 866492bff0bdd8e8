package rollout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// headMaxBytes bounds how much of a rollout file the meta reader will touch.
// Rollouts grow without limit while a session runs; only the first line
// matters here and it must never cost a full-file read.
const headMaxBytes = 256 * 1024

// SourceSubagent is the source tag assigned to sessions spawned by another
// session's thread_spawn request.
const SourceSubagent = "subagent_thread_spawn"

// Meta is the identity block recovered from a rollout's first record.
// Optional fields stay nil when the record does not carry them.
type Meta struct {
	ID         string
	Cwd        *string
	ForkedFrom *string
	Source     *string
	Parent     *string
	Depth      *int
	Branch     *string
	Commit     *string
}

type metaLine struct {
	Type    string      `json:"type"`
	Payload metaPayload `json:"payload"`
}

type metaPayload struct {
	ID           string          `json:"id"`
	Cwd          *string         `json:"cwd"`
	ForkedFromID *string         `json:"forked_from_id"`
	Source       json.RawMessage `json:"source"`
	Git          *metaGit        `json:"git"`
}

type metaGit struct {
	CommitHash *string `json:"commit_hash"`
	Branch     *string `json:"branch"`
}

// sourceObject matches the structured form of payload.source used for
// spawned subagent sessions.
type sourceObject struct {
	Subagent *struct {
		ThreadSpawn *struct {
			ParentThreadID string `json:"parent_thread_id"`
			Depth          int    `json:"depth"`
		} `json:"thread_spawn"`
	} `json:"subagent"`
}

// ReadMeta reads at most headMaxBytes of the file, extracts the first line,
// and decodes it as a session_meta record. Any failure is returned to the
// caller, which degrades the row to per-field unknown instead of aborting
// the collection pass.
func ReadMeta(path string) (*Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rollout: %w", err)
	}
	defer f.Close()

	buf := make([]byte, headMaxBytes)
	n, err := f.Read(buf)
	if n == 0 {
		if err != nil {
			return nil, fmt.Errorf("read rollout head: %w", err)
		}
		return nil, fmt.Errorf("rollout is empty")
	}
	buf = buf[:n]

	line := buf
	if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
		line = buf[:idx]
	}

	var record metaLine
	if err := json.Unmarshal(line, &record); err != nil {
		return nil, fmt.Errorf("parse session_meta: %w", err)
	}
	if record.Type != "session_meta" {
		return nil, fmt.Errorf("first record is %q, want session_meta", record.Type)
	}

	meta := &Meta{
		ID:         record.Payload.ID,
		Cwd:        record.Payload.Cwd,
		ForkedFrom: record.Payload.ForkedFromID,
	}
	if git := record.Payload.Git; git != nil {
		meta.Branch = git.Branch
		meta.Commit = git.CommitHash
	}
	parseSource(record.Payload.Source, meta)
	return meta, nil
}

// parseSource handles the two shapes of payload.source: a plain string tag,
// or an object describing a subagent spawn.
func parseSource(raw json.RawMessage, meta *Meta) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}

	var tag string
	if err := json.Unmarshal(raw, &tag); err == nil {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			meta.Source = &tag
		}
		return
	}

	var obj sourceObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return
	}
	if obj.Subagent == nil || obj.Subagent.ThreadSpawn == nil {
		return
	}
	src := SourceSubagent
	meta.Source = &src
	parent := strings.ToLower(strings.TrimSpace(obj.Subagent.ThreadSpawn.ParentThreadID))
	if parent != "" {
		meta.Parent = &parent
	}
	depth := obj.Subagent.ThreadSpawn.Depth
	meta.Depth = &depth
}
