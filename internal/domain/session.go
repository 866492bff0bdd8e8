package domain

import "strings"

// Status is the tri-state activity classification for a session.
type Status string

const (
	StatusWorking Status = "working"
	StatusWaiting Status = "waiting"
	StatusUnknown Status = "unknown"
)

// Score ranks statuses by activity (working > unknown > waiting) so a group
// of sessions can be summarized by its most active member.
func (s Status) Score() int {
	switch s {
	case StatusWorking:
		return 2
	case StatusUnknown:
		return 1
	default:
		return 0
	}
}

// Display returns the short uppercase form used in tables and the TUI.
func (s Status) Display() string {
	switch s {
	case StatusWorking:
		return "WORK"
	case StatusWaiting:
		return "IDLE"
	default:
		return "UNK"
	}
}

// Lineage describes how a session came to exist. A nil Parent means the
// session is a root; a non-nil Parent points at the spawning session.
type Lineage struct {
	Source     *string `json:"source"`      // e.g. "cli", "subagent_thread_spawn"
	Parent     *string `json:"parent"`      // parent session id, nil for roots
	Depth      *int    `json:"depth"`       // spawn depth, nil for roots
	ForkedFrom *string `json:"forked_from"` // session this one was forked from
}

// IsSubagent reports whether the session was spawned by another session.
func (l Lineage) IsSubagent() bool { return l.Parent != nil }

// RowDebug carries diagnostic evidence for one row. Populated only in
// diagnostic mode; serialized as null otherwise.
type RowDebug struct {
	StatusReason   string  `json:"status_reason"`
	CommandSample  *string `json:"command_sample"`
	CwdSource      *string `json:"cwd_source"`
	MetaError      *string `json:"meta_error"`
	MetaIDMismatch *string `json:"meta_id_mismatch"`
	RepoProbeError *string `json:"repo_probe_error"`
	PendingCall    *string `json:"pending_call"`
	TitleSource    *string `json:"title_source"`
}

// SessionRow is one observed session on one host during one collection pass.
// Optional fields are pointers and serialize as explicit null so consumers
// can distinguish "unknown" from "empty"; none of them use omitempty.
type SessionRow struct {
	Host              string    `json:"host"`
	SessionID         string    `json:"session_id"`
	PIDs              []int     `json:"pids"`
	TTY               *string   `json:"tty"`
	Title             *string   `json:"title"`
	Label             *string   `json:"label"`
	Cwd               *string   `json:"cwd"`
	RepoRoot          *string   `json:"repo_root"`
	Branch            *string   `json:"branch"`
	Commit            *string   `json:"commit"`
	Lineage           Lineage   `json:"lineage"`
	Status            Status    `json:"status"`
	LastActivityUnixS *int64    `json:"last_activity_unix_s"`
	AgeS              *int64    `json:"age_s"`
	LogPath           string    `json:"log_path"`
	Tmux              *string   `json:"tmux"`
	Debug             *RowDebug `json:"debug"`
}

// Key returns the label-store key for this row.
func (r *SessionRow) Key() string { return SessionKey(r.Host, r.SessionID) }

// SessionKey builds the (host, session id) key used by the label store.
// NUL never appears in host labels or session ids, so the join is unambiguous.
func SessionKey(host, sessionID string) string {
	return host + "\x00" + sessionID
}

// SplitSessionKey is the inverse of SessionKey.
func SplitSessionKey(key string) (host, sessionID string, ok bool) {
	host, sessionID, ok = strings.Cut(key, "\x00")
	return host, sessionID, ok
}
