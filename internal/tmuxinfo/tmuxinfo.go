// Package tmuxinfo maps terminal devices to tmux panes so session rows can
// say where a session is visible. Resolution is best-effort: no tmux binary,
// no running server, or any other failure yields an empty mapping.
package tmuxinfo

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = time.Second

// listFormat emits one "tty<TAB>session:window.pane" line per pane.
const listFormat = "#{pane_tty}\t#{session_name}:#{window_index}.#{pane_index}"

// Resolver discovers tmux panes with a single list-panes sweep per pass.
type Resolver struct {
	// Bin is the tmux binary to invoke. Defaults to "tmux".
	Bin string
	// Timeout bounds the sweep.
	Timeout time.Duration
}

func New() *Resolver {
	return &Resolver{Bin: "tmux", Timeout: defaultTimeout}
}

// PanesByTTY returns pane targets (session:window.pane) keyed by pane tty.
func (r *Resolver) PanesByTTY(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, r.Bin, "list-panes", "-a", "-F", listFormat).Output()
	if err != nil {
		return map[string]string{}
	}

	panes := make(map[string]string)
	for _, line := range strings.Split(string(out), "\n") {
		tty, pane, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok || tty == "" || pane == "" {
			continue
		}
		panes[tty] = pane
	}
	return panes
}
