// Package collector assembles one self-consistent snapshot of live Codex
// sessions across hosts. A Collector lives for the whole process and is
// driven by a single goroutine; the caches it carries (rollout tails, repo
// roots, titles) make repeated passes cheap.
package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/aelaguiz/codex-ps/internal/config"
	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/gitinfo"
	"github.com/aelaguiz/codex-ps/internal/labels"
	"github.com/aelaguiz/codex-ps/internal/remote"
	"github.com/aelaguiz/codex-ps/internal/rollout"
	"github.com/aelaguiz/codex-ps/internal/scan"
	"github.com/aelaguiz/codex-ps/internal/status"
	"github.com/aelaguiz/codex-ps/internal/titles"
	"github.com/aelaguiz/codex-ps/internal/tmuxinfo"
)

const commandSampleMax = 120

// Collector produces snapshots on demand.
type Collector struct {
	home        string
	scanner     *scan.Scanner
	scanTimeout time.Duration
	titles      *titles.Resolver
	gits        *gitinfo.Cache
	tmux        *tmuxinfo.Resolver
	tails       *rollout.TailCache
	classifier  *status.Classifier
	remotes     *remote.Collector
	labels      *labels.Store
	clk         clock.Clock
	log         *zap.SugaredLogger
}

// New wires a collector for the given codex home. store may be nil, which
// disables the label overlay; log may be nil, which disables debug logging.
func New(home string, cfg *config.Config, store *labels.Store, log *zap.SugaredLogger, clk clock.Clock) *Collector {
	if cfg == nil {
		cfg = config.Default()
	}
	if clk == nil {
		clk = clock.New()
	}

	remotes := remote.New()
	if cfg.Remote.SSHBin != "" {
		remotes.SSHBin = cfg.Remote.SSHBin
	}
	if cfg.Remote.Bin != "" {
		remotes.Bin = cfg.Remote.Bin
	}
	if cfg.Remote.TimeoutMS > 0 {
		remotes.Timeout = cfg.Remote.Timeout()
	}
	if cfg.Remote.ConnectTimeoutS > 0 {
		remotes.ConnectTimeoutS = cfg.Remote.ConnectTimeoutS
	}

	return &Collector{
		home:        home,
		scanner:     scan.New(home),
		scanTimeout: cfg.Scan.Timeout(),
		titles:      titles.NewResolver(home),
		gits:        gitinfo.New(clk),
		tmux:        tmuxinfo.New(),
		tails:       rollout.NewTailCache(),
		classifier:  status.New(clk, cfg.Status.WorkingMaxAge(), cfg.Status.WaitingMinAge()),
		remotes:     remotes,
		labels:      store,
		clk:         clk,
		log:         log,
	}
}

// Remote exposes the remote sub-collector for CLI flag overrides.
func (c *Collector) Remote() *remote.Collector { return c.remotes }

// Home returns the resolved codex home this collector scans.
func (c *Collector) Home() string { return c.home }

// Collect produces one snapshot for the requested hosts. Per-host failures
// land in host_errors and never abort the pass; the returned snapshot is
// always normalized and sorted. The only fatal case is a missing lsof
// binary, which leaves local discovery impossible entirely.
func (c *Collector) Collect(ctx context.Context, hosts []string, debug bool) (*domain.Snapshot, error) {
	if len(hosts) == 0 {
		hosts = []string{"local"}
	}

	snap := &domain.Snapshot{
		Host:       strings.Join(hosts, ","),
		HostErrors: map[string]string{},
	}

	if lo.Contains(hosts, "local") {
		rows, warnings, err := c.collectLocal(ctx, debug)
		switch {
		case errors.Is(err, scan.ErrUnavailable):
			return nil, err
		case err != nil:
			c.debugf("local collection failed: %v", err)
			snap.HostErrors["local"] = err.Error()
		default:
			snap.Sessions = append(snap.Sessions, rows...)
			snap.Warnings = append(snap.Warnings, warnings...)
		}
	}

	remoteHosts := lo.Filter(hosts, func(h string, _ int) bool { return h != "local" })
	for _, res := range c.remotes.FetchAll(ctx, remoteHosts, debug) {
		if res.Err != nil {
			c.debugf("remote %s failed: %v", res.Host, res.Err)
			snap.HostErrors[res.Host] = res.Err.Error()
			continue
		}
		snap.Sessions = append(snap.Sessions, res.Snapshot.Sessions...)
		for host, msg := range res.Snapshot.HostErrors {
			snap.HostErrors[host] = msg
		}
		snap.Warnings = append(snap.Warnings, res.Snapshot.Warnings...)
	}

	c.overlayLabels(snap)

	snap.GeneratedAtUnixS = c.clk.Now().Unix()
	snap.SortSessions()
	snap.Normalize()
	return snap, nil
}

// overlayLabels resolves labels against the live store after all hosts have
// merged, so remote rows pick up locally kept labels by their rewritten
// (host, session id) key.
func (c *Collector) overlayLabels(snap *domain.Snapshot) {
	if c.labels == nil {
		return
	}
	for i := range snap.Sessions {
		row := &snap.Sessions[i]
		if label, ok := c.labels.Get(row.Host, row.SessionID); ok {
			row.Label = &label
		}
	}
}

// builder accumulates per-session evidence across holder processes. One
// process may hold several rollouts (parent plus spawned subagents), and one
// rollout may be held by several processes.
type builder struct {
	sessionID string
	pids      []int
	tty       string
	cwd       string
	exe       string
	logPath   string
}

func (c *Collector) collectLocal(ctx context.Context, debug bool) ([]domain.SessionRow, []string, error) {
	scanCtx, cancel := context.WithTimeout(ctx, c.scanTimeout)
	defer cancel()

	procs, err := c.scanner.Scan(scanCtx)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	var order []string
	builders := make(map[string]*builder)

	for _, p := range procs {
		for _, ref := range p.Rollouts {
			if ref.SessionID == "" {
				if debug {
					warnings = append(warnings, "unparseable rollout filename: "+ref.Path)
				}
				continue
			}

			b, ok := builders[ref.SessionID]
			if !ok {
				b = &builder{sessionID: ref.SessionID}
				builders[ref.SessionID] = b
				order = append(order, ref.SessionID)
			}

			if !lo.Contains(b.pids, p.PID) {
				b.pids = append(b.pids, p.PID)
			}
			// The newest mention wins in case a rollout moved between dirs.
			b.logPath = ref.Path
			if b.cwd == "" {
				b.cwd = p.Cwd
			}
			if b.tty == "" {
				b.tty = p.TTY
			}
			if b.exe == "" {
				b.exe = p.Exe
			}
		}
	}

	c.debugf("scan: %d holder processes, %d sessions", len(procs), len(order))

	panes := map[string]string{}
	if len(order) > 0 {
		panes = c.tmux.PanesByTTY(ctx)
	}

	active := make(map[string]struct{}, len(order))
	rows := make([]domain.SessionRow, 0, len(order))
	for _, id := range order {
		b := builders[id]
		rows = append(rows, c.buildRow(ctx, b, panes, debug))
		active[b.logPath] = struct{}{}
	}
	c.tails.Prune(active)

	return rows, warnings, nil
}

func (c *Collector) buildRow(ctx context.Context, b *builder, panes map[string]string, debug bool) domain.SessionRow {
	row := domain.SessionRow{
		Host:      "local",
		SessionID: b.sessionID,
		PIDs:      b.pids,
		LogPath:   b.logPath,
		Status:    domain.StatusUnknown,
	}
	dbg := domain.RowDebug{}

	if b.exe != "" {
		dbg.CommandSample = lo.ToPtr(domain.TruncateMiddle(b.exe, commandSampleMax))
	}
	if b.tty != "" {
		row.TTY = &b.tty
		if pane, ok := panes[b.tty]; ok {
			row.Tmux = &pane
		}
	}

	// Working directory: the OS truth from lsof wins over what the session
	// recorded at startup.
	if b.cwd != "" {
		row.Cwd = &b.cwd
		dbg.CwdSource = lo.ToPtr("lsof")
	}

	meta, err := rollout.ReadMeta(b.logPath)
	if err != nil {
		dbg.MetaError = lo.ToPtr(err.Error())
	}
	if meta != nil {
		if row.Cwd == nil && meta.Cwd != nil {
			row.Cwd = meta.Cwd
			dbg.CwdSource = lo.ToPtr("session_meta")
		}
		if meta.ID != "" && meta.ID != row.SessionID {
			dbg.MetaIDMismatch = lo.ToPtr(fmt.Sprintf("meta.id=%s != filename.id=%s", meta.ID, row.SessionID))
		}
		row.Branch = meta.Branch
		row.Commit = meta.Commit
		row.Lineage = domain.Lineage{
			Source:     meta.Source,
			Parent:     meta.Parent,
			Depth:      meta.Depth,
			ForkedFrom: meta.ForkedFrom,
		}
	}

	if title, err := c.titles.Get(row.SessionID); err == nil && title != nil {
		row.Title = title
		dbg.TitleSource = lo.ToPtr(titles.Source)
	} else if row.Cwd != nil {
		if base := filepath.Base(*row.Cwd); base != "" && base != "." && base != string(filepath.Separator) {
			row.Title = &base
			dbg.TitleSource = lo.ToPtr("cwd_basename")
		}
	}

	if row.Cwd != nil {
		root, err := c.gits.RepoRoot(ctx, *row.Cwd)
		row.RepoRoot = root
		if err != nil {
			dbg.RepoProbeError = lo.ToPtr(err.Error())
		}
	}

	var mtime *time.Time
	if info, err := os.Stat(b.logPath); err == nil {
		m := info.ModTime()
		mtime = &m
		row.LastActivityUnixS = lo.ToPtr(m.Unix())
	}

	var pending *rollout.PendingCall
	if mtime != nil {
		pending = c.tails.Pending(b.logPath, *mtime)
	}
	if pending != nil {
		dbg.PendingCall = lo.ToPtr(fmt.Sprintf("%s (call_id=%s)", pending.Name, pending.CallID))
	}

	res := c.classifier.Classify(mtime, pending)
	row.Status = res.Status
	row.AgeS = res.AgeS
	dbg.StatusReason = res.Reason

	if debug {
		row.Debug = &dbg
	}
	return row
}

func (c *Collector) debugf(format string, args ...interface{}) {
	if c.log == nil {
		return
	}
	c.log.Debugf(format, args...)
}
