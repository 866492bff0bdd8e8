// Package tui renders the live session view: the grouped table fed by worker
// snapshots, cursor selection, a rename modal and a short status flash. The
// model never collects anything itself; it nudges the worker and renders
// whatever arrives, keeping the last good snapshot across pass errors.
package tui

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/lineage"
	"github.com/aelaguiz/codex-ps/internal/worker"
)

const (
	minRefresh = 100 * time.Millisecond
	flashTTL   = 4 * time.Second
)

type eventMsg worker.Event

type tickMsg time.Time

// Model is the bubbletea model behind `codex-ps watch`.
type Model struct {
	worker  *worker.Worker
	hosts   []string
	refresh time.Duration
	debug   bool
	keys    KeyMap
	theme   theme
	clock   clock.Clock

	width  int
	height int

	snapshot *domain.Snapshot
	groups   []lineage.Group
	lastErr  string
	lastWarn string

	// selected tracks the highlighted group by session key, not index, so
	// the cursor stays on the same session when rows reorder between
	// snapshots.
	selected string

	showWhy bool

	renaming   bool
	renameHost string
	renameID   string
	rename     textinput.Model

	flashMsg string
	flashAt  time.Time
}

// New builds the model for one watch run. The worker must already be
// running; the model only sends it commands and drains its events. The WHY
// column starts visible in diagnostic mode and toggles with `?` either way.
func New(w *worker.Worker, hosts []string, refresh time.Duration, debug bool) Model {
	if refresh < minRefresh {
		refresh = minRefresh
	}

	input := textinput.New()
	input.Prompt = "> "

	return Model{
		worker:  w,
		hosts:   hosts,
		refresh: refresh,
		debug:   debug,
		keys:    DefaultKeyMap,
		theme:   newTheme(),
		clock:   clock.New(),
		showWhy: debug,
		rename:  input,
	}
}

// Init starts the event pump and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.worker.Events()),
		tickEvery(m.refresh),
	)
}

// waitForEvent delivers the next worker event. Re-issued after every
// eventMsg so the pump stays alive for the whole run.
func waitForEvent(events <-chan worker.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func tickEvery(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
