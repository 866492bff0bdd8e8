// Package gitinfo resolves the repository root for session working
// directories. Probes are bounded and cached so a slow or absent git never
// stalls a collection pass.
package gitinfo

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	defaultTTL          = 5 * time.Second
	defaultProbeTimeout = 250 * time.Millisecond
)

type entry struct {
	at   time.Time
	root *string
}

// Cache memoizes repo-root probes per working directory. Negative results
// are cached too, so a directory outside any repository is probed at most
// once per TTL window.
type Cache struct {
	// Bin is the git binary to invoke. Defaults to "git".
	Bin string
	// Timeout bounds a single probe.
	Timeout time.Duration
	// TTL is how long a probe result stays fresh.
	TTL time.Duration

	mu      sync.Mutex
	clk     clock.Clock
	entries map[string]entry
}

// New creates a Cache with default probe bounds. Pass a clock.Mock in tests
// to control TTL expiry.
func New(clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{
		Bin:     "git",
		Timeout: defaultProbeTimeout,
		TTL:     defaultTTL,
		clk:     clk,
		entries: make(map[string]entry),
	}
}

// RepoRoot returns the repository toplevel for cwd, or nil when cwd is not
// inside a repository. A non-nil error describes a fresh probe failure;
// cache hits never return an error, even for cached negatives.
func (c *Cache) RepoRoot(ctx context.Context, cwd string) (*string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	if e, ok := c.entries[cwd]; ok && now.Sub(e.at) <= c.TTL {
		return e.root, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.Bin, "-C", cwd, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		c.entries[cwd] = entry{at: now}
		if ctx.Err() != nil {
			return nil, errors.New("git rev-parse timed out")
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.New("git rev-parse failed")
		}
		return nil, fmt.Errorf("git rev-parse: %w", err)
	}

	root := strings.TrimSpace(string(out))
	if root == "" {
		c.entries[cwd] = entry{at: now}
		return nil, errors.New("git rev-parse returned empty")
	}

	c.entries[cwd] = entry{at: now, root: &root}
	return &root, nil
}
