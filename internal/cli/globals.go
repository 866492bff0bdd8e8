package cli

import (
	"io"
	"os"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/aelaguiz/codex-ps/internal/config"
)

// Globals carries resolved global flags and shared plumbing into every
// command. Stdout/Stderr are fields so tests can capture output.
type Globals struct {
	Hosts   []string
	JSON    bool
	Debug   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config

	homeOverride string
	log          *zap.SugaredLogger
}

// NewGlobalsWithConfig merges parsed flags over the loaded config. Flags win
// where both carry a value.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	if c.SSHBin != "" {
		cfg.Remote.SSHBin = c.SSHBin
	}
	if c.RemoteBin != "" {
		cfg.Remote.Bin = c.RemoteBin
	}
	if c.RemoteTimeout > 0 {
		cfg.Remote.TimeoutMS = c.RemoteTimeout
	}

	home, _ := lo.Coalesce(c.CodexHome, cfg.Home)

	return &Globals{
		Hosts:        config.ParseHosts(c.Host, cfg.Hosts),
		JSON:         c.JSON,
		Debug:        c.Debug,
		Verbose:      c.Verbose,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Config:       cfg,
		homeOverride: home,
		log:          newDebugLogger(c.Verbose),
	}
}

// ResolveHome resolves the Codex home directory for this invocation.
func (g *Globals) ResolveHome() (string, error) {
	return config.ResolveCodexHome(g.homeOverride)
}

// Logger returns the verbose debug logger; nil when --verbose is off.
// Every consumer treats a nil logger as a no-op.
func (g *Globals) Logger() *zap.SugaredLogger { return g.log }

// Debugf logs through the verbose logger, or does nothing without one.
func (g *Globals) Debugf(format string, args ...interface{}) {
	if g == nil || g.log == nil {
		return
	}
	g.log.Debugf(format, args...)
}
