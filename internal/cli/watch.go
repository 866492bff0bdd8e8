package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/aelaguiz/codex-ps/internal/collector"
	"github.com/aelaguiz/codex-ps/internal/tui"
	"github.com/aelaguiz/codex-ps/internal/watch"
	"github.com/aelaguiz/codex-ps/internal/worker"
)

// WatchCmd launches the interactive session view.
type WatchCmd struct {
	RefreshMS int `name:"refresh-ms" help:"Refresh interval in milliseconds." default:"${config_refresh_ms}"`
}

// Run executes the watch command
func (c *WatchCmd) Run(globals *Globals) error {
	// Bare `codex-ps --json` lands here through the default command; treat
	// it as a one-shot pass so scripts get a snapshot, not a TUI.
	if globals.JSON {
		return collectOnce(globals, nil)
	}
	if err := validateFlags(globals); err != nil {
		return err
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return outputErrorCommon(globals, "NOT_A_TTY", "watch needs an interactive terminal",
			"use codex-ps ps (or --json) for one-shot output")
	}

	home, err := globals.ResolveHome()
	if err != nil {
		return outputErrorCommon(globals, "HOME_UNAVAILABLE", err.Error(),
			"set --codex-home or $CODEX_HOME")
	}

	store, err := newLabelStore(globals)
	if err != nil {
		return outputErrorCommon(globals, "LABELS_UNAVAILABLE", err.Error())
	}

	if c.RefreshMS > 0 {
		globals.Config.RefreshMS = c.RefreshMS
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// The worker always collects diagnostic fields so the `?` key has
	// reasons to reveal; --debug only controls whether the WHY column
	// starts visible.
	coll := collector.New(home, globals.Config, store, globals.Logger(), clock.New())
	w := worker.New(coll, store, globals.Hosts, true, globals.Logger())
	go w.Run(ctx)

	if globals.Config.Watch.FSEvents {
		notifier, err := watch.New(globals.Config.Watch.Debounce(), w.Refresh, globals.Logger())
		if err != nil {
			globals.Debugf("fs events unavailable: %v", err)
		} else {
			go notifier.Run(ctx)
			go trackWatchDirs(ctx, notifier, home, store.Path())
		}
	}

	model := tui.New(w, globals.Hosts, globals.Config.RefreshInterval(), globals.Debug)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Handle context cancellation
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// trackWatchDirs keeps the notifier pointed at today's sessions directory,
// the codex home (for the global state file) and the label store directory.
// Re-evaluated every minute so the date rollover picks up the new day.
func trackWatchDirs(ctx context.Context, n *watch.Notifier, home, labelsPath string) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		day := time.Now().Format("2006/01/02")
		n.Track([]string{
			filepath.Join(home, "sessions", day),
			home,
			filepath.Dir(labelsPath),
		})
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
