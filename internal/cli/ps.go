package cli

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/aelaguiz/codex-ps/internal/collector"
	"github.com/aelaguiz/codex-ps/internal/filter"
	"github.com/aelaguiz/codex-ps/internal/labels"
	"github.com/aelaguiz/codex-ps/internal/output"
)

// PsCmd runs one collection pass and prints the result.
type PsCmd struct {
	Where []string `short:"w" help:"Row filter field<op>value; repeatable, all must match. Fields: host, id, status, label, title, cwd, repo_root, branch, source, tty, tmux, pid, age."`
}

// Run executes the ps command
func (c *PsCmd) Run(globals *Globals) error {
	if err := validateFlags(globals); err != nil {
		return err
	}

	where, err := filter.NewWhereFilter(c.Where)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_WHERE", err.Error(),
			"format is field<op>value, e.g. status=working or age>=60")
	}

	return collectOnce(globals, where)
}

// collectOnce is one pass end to end: resolve home, collect, filter, print.
// The default command's --json path shares it, so `codex-ps --json` and
// `codex-ps ps --json` behave identically.
func collectOnce(globals *Globals, where *filter.WhereFilter) error {
	home, err := globals.ResolveHome()
	if err != nil {
		return outputErrorCommon(globals, "HOME_UNAVAILABLE", err.Error(),
			"set --codex-home or $CODEX_HOME")
	}

	store, err := newLabelStore(globals)
	if err != nil {
		return outputErrorCommon(globals, "LABELS_UNAVAILABLE", err.Error())
	}

	coll := collector.New(home, globals.Config, store, globals.Logger(), clock.New())
	snap, err := coll.Collect(context.Background(), globals.Hosts, globals.Debug)
	if err != nil {
		return outputErrorCommon(globals, "COLLECT_FAILED", err.Error(),
			"run codex-ps doctor")
	}

	snap.Sessions = where.Apply(snap.Sessions)

	if globals.JSON {
		return output.WriteJSON(globals.Stdout, snap)
	}
	return output.RenderTable(globals.Stdout, snap, globals.Debug)
}

// newLabelStore opens the label store at the configured path, falling back
// to the default location under the observer's config directory.
func newLabelStore(globals *Globals) (*labels.Store, error) {
	path := globals.Config.Labels.Path
	if path == "" {
		var err error
		path, err = labels.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return labels.NewStore(path, clock.New()), nil
}
