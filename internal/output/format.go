// Package output renders snapshots for humans and machines: a grouped text
// table, a JSON document, and the formatting helpers the TUI shares.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/lineage"
)

// FormatAge renders seconds-since-activity in the shortest readable unit.
// Unknown activity renders as "?".
func FormatAge(ageS *int64) string {
	if ageS == nil {
		return "?"
	}
	delta := *ageS
	switch {
	case delta < 60:
		return fmt.Sprintf("%ds", delta)
	case delta < 3600:
		return fmt.Sprintf("%dm", delta/60)
	default:
		return fmt.Sprintf("%dh", delta/3600)
	}
}

// ShortSessionID compresses a session id to its first 8 and last 5
// characters. Anything already at most 14 characters passes through.
func ShortSessionID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 14 {
		return id
	}
	return id[:8] + "…" + id[len(id)-5:]
}

// ShortenHomePath replaces a leading $HOME with "~".
func ShortenHomePath(path string) string {
	p := strings.TrimSpace(path)
	home := os.Getenv("HOME")
	if home == "" {
		return p
	}
	if p == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(p, home); ok && strings.HasPrefix(rest, string(filepath.Separator)) {
		return "~" + rest
	}
	return p
}

// FormatPIDs summarizes the holder pids: the first one, with a "+" marker
// when there are more.
func FormatPIDs(pids []int) string {
	switch len(pids) {
	case 0:
		return "unknown"
	case 1:
		return strconv.Itoa(pids[0])
	default:
		return strconv.Itoa(pids[0]) + "+"
	}
}

// FormatSubagents renders a group's subagent count; diagnostic mode adds the
// per-state tally, e.g. "3 (1W/1U/1WT)".
func FormatSubagents(g *lineage.Group, debug bool) string {
	if g.Subagents == 0 {
		return "0"
	}
	if !debug {
		return strconv.Itoa(g.Subagents)
	}
	var parts []string
	if n := g.Tally[domain.StatusWorking]; n > 0 {
		parts = append(parts, fmt.Sprintf("%dW", n))
	}
	if n := g.Tally[domain.StatusUnknown]; n > 0 {
		parts = append(parts, fmt.Sprintf("%dU", n))
	}
	if n := g.Tally[domain.StatusWaiting]; n > 0 {
		parts = append(parts, fmt.Sprintf("%dWT", n))
	}
	if len(parts) == 0 {
		return strconv.Itoa(g.Subagents)
	}
	return fmt.Sprintf("%d (%s)", g.Subagents, strings.Join(parts, "/"))
}

func orUnknown(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "unknown"
	}
	return *s
}
