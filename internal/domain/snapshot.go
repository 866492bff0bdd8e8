package domain

import "sort"

// Snapshot is the complete result of one collection pass across all
// requested hosts. It is immutable once produced; consumers replace their
// previous snapshot wholesale.
type Snapshot struct {
	GeneratedAtUnixS int64             `json:"generated_at_unix_s"`
	Host             string            `json:"host"` // requested host selection, comma-joined
	Sessions         []SessionRow      `json:"sessions"`
	HostErrors       map[string]string `json:"host_errors"`
	Warnings         []string          `json:"warnings"`
}

// Normalize replaces nil collections with empty ones so serialization always
// emits arrays/objects, never null. Field omission is a contract violation
// for machine-readable consumers.
func (s *Snapshot) Normalize() {
	if s.Sessions == nil {
		s.Sessions = []SessionRow{}
	}
	if s.HostErrors == nil {
		s.HostErrors = map[string]string{}
	}
	if s.Warnings == nil {
		s.Warnings = []string{}
	}
	for i := range s.Sessions {
		if s.Sessions[i].PIDs == nil {
			s.Sessions[i].PIDs = []int{}
		}
	}
}

// SortSessions orders rows for output: most recent activity first, then
// host, then session id. Rows with no known activity sort last.
func (s *Snapshot) SortSessions() {
	sort.SliceStable(s.Sessions, func(i, j int) bool {
		a, b := &s.Sessions[i], &s.Sessions[j]
		al, bl := int64(-1), int64(-1)
		if a.LastActivityUnixS != nil {
			al = *a.LastActivityUnixS
		}
		if b.LastActivityUnixS != nil {
			bl = *b.LastActivityUnixS
		}
		if al != bl {
			return al > bl
		}
		if a.Host != b.Host {
			return a.Host < b.Host
		}
		return a.SessionID < b.SessionID
	})
}
