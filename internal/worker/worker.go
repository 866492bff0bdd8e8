// Package worker runs collection on a dedicated goroutine so presentation
// code never blocks on lsof, ssh or the filesystem. Commands go in, whole
// snapshots come out; a slow consumer only ever misses intermediate
// snapshots, never the latest one.
package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/labels"
)

const commandBuffer = 64

// Snapshotter produces one snapshot per call. A returned error means the
// pass produced nothing at all; per-host trouble rides inside the snapshot.
type Snapshotter interface {
	Collect(ctx context.Context, hosts []string, debug bool) (*domain.Snapshot, error)
}

// Event is one worker result. Exactly one field is set: a fresh snapshot,
// or the error that prevented one. Consumers keep rendering their last good
// snapshot when Err arrives.
type Event struct {
	Snapshot *domain.Snapshot
	Err      error
}

type command interface{ isCommand() }

type refreshCmd struct{}

type setLabelCmd struct {
	host, sessionID, label string
}

type clearLabelCmd struct {
	host, sessionID string
}

func (refreshCmd) isCommand()    {}
func (setLabelCmd) isCommand()   {}
func (clearLabelCmd) isCommand() {}

// Worker owns one Snapshotter and serializes all access to it.
type Worker struct {
	snapshotter Snapshotter
	store       *labels.Store
	hosts       []string
	debug       bool
	log         *zap.SugaredLogger

	cmds   chan command
	events chan Event

	// pendingWarnings carries label-write failures into the next snapshot.
	// Only the Run goroutine touches it.
	pendingWarnings []string
}

func New(snapshotter Snapshotter, store *labels.Store, hosts []string, debug bool, log *zap.SugaredLogger) *Worker {
	return &Worker{
		snapshotter: snapshotter,
		store:       store,
		hosts:       hosts,
		debug:       debug,
		log:         log,
		cmds:        make(chan command, commandBuffer),
		events:      make(chan Event, 1),
	}
}

// Events delivers snapshots and pass errors. The channel holds at most one
// entry; when the consumer lags, newer events replace unread ones.
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Refresh nudges the worker to collect again. Multiple nudges queued before
// the worker gets to them coalesce into a single pass, so callers can fire
// on every tick and filesystem event without extra cost.
func (w *Worker) Refresh() {
	select {
	case w.cmds <- refreshCmd{}:
	default:
		// Queue full means a refresh is already pending.
	}
}

// SetLabel persists a label and triggers a refresh so the next snapshot
// reflects it.
func (w *Worker) SetLabel(host, sessionID, label string) {
	w.cmds <- setLabelCmd{host: host, sessionID: sessionID, label: label}
}

// ClearLabel removes a label and triggers a refresh.
func (w *Worker) ClearLabel(host, sessionID string) {
	w.cmds <- clearLabelCmd{host: host, sessionID: sessionID}
}

// Run collects once immediately, then serves commands until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	w.collectAndEmit(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-w.cmds:
			refresh := w.apply(cmd)
			refresh = w.drain() || refresh
			if refresh {
				w.collectAndEmit(ctx)
			}
		}
	}
}

// drain consumes every queued command without blocking, so a burst of
// refresh nudges costs one collection pass.
func (w *Worker) drain() bool {
	refresh := false
	for {
		select {
		case cmd := <-w.cmds:
			if w.apply(cmd) {
				refresh = true
			}
		default:
			return refresh
		}
	}
}

func (w *Worker) apply(cmd command) bool {
	switch c := cmd.(type) {
	case refreshCmd:
		return true
	case setLabelCmd:
		if err := w.store.Set(c.host, c.sessionID, c.label); err != nil {
			w.warnf("label write failed: %v", err)
		}
		return true
	case clearLabelCmd:
		if err := w.store.Clear(c.host, c.sessionID); err != nil {
			w.warnf("label write failed: %v", err)
		}
		return true
	}
	return false
}

func (w *Worker) collectAndEmit(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	snap, err := w.snapshotter.Collect(ctx, w.hosts, w.debug)
	if err != nil {
		w.emit(Event{Err: err})
		return
	}
	if snap == nil {
		return
	}
	if len(w.pendingWarnings) > 0 {
		snap.Warnings = append(snap.Warnings, w.pendingWarnings...)
		w.pendingWarnings = nil
	}
	w.emit(Event{Snapshot: snap})
}

func (w *Worker) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		// Replace the unread event with the newer one.
		select {
		case <-w.events:
		default:
		}
		select {
		case w.events <- ev:
		default:
		}
	}
}

func (w *Worker) warnf(format string, args ...interface{}) {
	w.pendingWarnings = append(w.pendingWarnings, fmt.Sprintf(format, args...))
	if w.log != nil {
		w.log.Warnf(format, args...)
	}
}
