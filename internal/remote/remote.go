// Package remote collects snapshots from other hosts by running codex-ps
// over ssh. The remote binary does all parsing and classification locally
// and prints one JSON snapshot, so every host applies identical logic.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/aelaguiz/codex-ps/internal/domain"
)

const (
	defaultTimeout         = 6 * time.Second
	defaultConnectTimeoutS = 3

	// stderrSampleMax bounds how much remote stderr ends up in host_errors.
	stderrSampleMax = 200
)

// Collector fetches snapshots from remote hosts.
type Collector struct {
	// SSHBin is the ssh binary to invoke. Defaults to "ssh".
	SSHBin string
	// Bin is the codex-ps binary name on the remote host.
	Bin string
	// ConnectTimeoutS is passed to ssh as -o ConnectTimeout.
	ConnectTimeoutS int
	// Timeout bounds one full remote invocation, connection included.
	Timeout time.Duration
}

func New() *Collector {
	return &Collector{
		SSHBin:          "ssh",
		Bin:             "codex-ps",
		ConnectTimeoutS: defaultConnectTimeoutS,
		Timeout:         defaultTimeout,
	}
}

// Result is the outcome of one host fetch.
type Result struct {
	Host     string
	Snapshot *domain.Snapshot
	Err      error
}

// Fetch runs the remote binary on one host and returns its snapshot with
// host names rewritten to the ssh host. The remote always reports itself as
// "local"; rewriting here keeps (host, session id) keys unambiguous in the
// merged view.
func (c *Collector) Fetch(ctx context.Context, host string, debug bool) (*domain.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	args := []string{
		"-o", "BatchMode=yes",
		"-o", fmt.Sprintf("ConnectTimeout=%d", c.ConnectTimeoutS),
		host,
		c.Bin, "--json", "--host", "local",
	}
	if debug {
		args = append(args, "--debug")
	}

	cmd := exec.CommandContext(ctx, c.SSHBin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ssh %s %s --json: timed out after %s", host, c.Bin, c.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			sample := domain.TruncateMiddle(strings.TrimSpace(stderr.String()), stderrSampleMax)
			return nil, fmt.Errorf("ssh %s failed (status %d): %s", host, exitErr.ExitCode(), sample)
		}
		return nil, fmt.Errorf("ssh %s %s --json: %w", host, c.Bin, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(stdout.Bytes(), &snap); err != nil {
		return nil, fmt.Errorf("parse remote snapshot from host=%s: %w", host, err)
	}

	rewriteHost(&snap, host)
	return &snap, nil
}

// FetchAll fans out to every host in parallel. Results come back in input
// order; each failed host carries its error instead of a snapshot.
func (c *Collector) FetchAll(ctx context.Context, hosts []string, debug bool) []Result {
	results := make([]Result, len(hosts))
	var wg sync.WaitGroup
	for i, host := range hosts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := c.Fetch(ctx, host, debug)
			results[i] = Result{Host: host, Snapshot: snap, Err: err}
		}()
	}
	wg.Wait()
	return results
}

func rewriteHost(snap *domain.Snapshot, host string) {
	snap.Host = host
	for i := range snap.Sessions {
		snap.Sessions[i].Host = host
	}
	if len(snap.HostErrors) > 0 {
		rewritten := make(map[string]string, len(snap.HostErrors))
		for key, msg := range snap.HostErrors {
			if key == "local" {
				key = host
			}
			rewritten[key] = msg
		}
		snap.HostErrors = rewritten
	}
	for i, w := range snap.Warnings {
		snap.Warnings[i] = host + ": " + w
	}
}
