package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aelaguiz/codex-ps/internal/config"
)

// ConfigCmd groups configuration inspection commands.
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" help:"Show the effective configuration."`
	Path     ConfigPathCmd     `cmd:"" help:"Show which config file is in use."`
	Generate ConfigGenerateCmd `cmd:"" help:"Print a sample config file."`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config

	if globals.JSON {
		out := map[string]interface{}{
			"type":       "config",
			"home":       cfg.Home,
			"hosts":      cfg.Hosts,
			"refresh_ms": cfg.RefreshMS,
			"status": map[string]interface{}{
				"working_max_age_s": cfg.Status.WorkingMaxAgeS,
				"waiting_min_age_s": cfg.Status.WaitingMinAgeS,
			},
			"scan": map[string]interface{}{
				"timeout_ms": cfg.Scan.TimeoutMS,
			},
			"remote": map[string]interface{}{
				"ssh_bin":           cfg.Remote.SSHBin,
				"bin":               cfg.Remote.Bin,
				"timeout_ms":        cfg.Remote.TimeoutMS,
				"connect_timeout_s": cfg.Remote.ConnectTimeoutS,
			},
			"labels": map[string]interface{}{
				"path": cfg.Labels.Path,
			},
			"watch": map[string]interface{}{
				"fs_events":   cfg.Watch.FSEvents,
				"debounce_ms": cfg.Watch.DebounceMS,
			},
		}
		enc := json.NewEncoder(globals.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	orDefault := func(s string) string {
		if s == "" {
			return "(default)"
		}
		return s
	}

	hosts := "none"
	if len(cfg.Hosts) > 0 {
		hosts = strings.Join(cfg.Hosts, ", ")
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  home: %s\n", orDefault(cfg.Home))
	fmt.Fprintf(globals.Stdout, "  hosts: %s\n", hosts)
	fmt.Fprintf(globals.Stdout, "  refresh_ms: %d\n", cfg.RefreshMS)
	fmt.Fprintln(globals.Stdout, "Status:")
	fmt.Fprintf(globals.Stdout, "  working_max_age_s: %d\n", cfg.Status.WorkingMaxAgeS)
	fmt.Fprintf(globals.Stdout, "  waiting_min_age_s: %d\n", cfg.Status.WaitingMinAgeS)
	fmt.Fprintln(globals.Stdout, "Scan:")
	fmt.Fprintf(globals.Stdout, "  timeout_ms: %d\n", cfg.Scan.TimeoutMS)
	fmt.Fprintln(globals.Stdout, "Remote:")
	fmt.Fprintf(globals.Stdout, "  ssh_bin: %s\n", cfg.Remote.SSHBin)
	fmt.Fprintf(globals.Stdout, "  bin: %s\n", cfg.Remote.Bin)
	fmt.Fprintf(globals.Stdout, "  timeout_ms: %d\n", cfg.Remote.TimeoutMS)
	fmt.Fprintf(globals.Stdout, "  connect_timeout_s: %d\n", cfg.Remote.ConnectTimeoutS)
	fmt.Fprintln(globals.Stdout, "Labels:")
	fmt.Fprintf(globals.Stdout, "  path: %s\n", orDefault(cfg.Labels.Path))
	fmt.Fprintln(globals.Stdout, "Watch:")
	fmt.Fprintf(globals.Stdout, "  fs_events: %t\n", cfg.Watch.FSEvents)
	fmt.Fprintf(globals.Stdout, "  debounce_ms: %d\n", cfg.Watch.DebounceMS)

	return nil
}

// ConfigPathCmd shows the config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(map[string]interface{}{
			"type": "config_path",
			"path": path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "Searched: /etc/codex-ps/, $XDG_CONFIG_HOME/codex-ps/, ~/.codex-ps.yaml, ./.codex-ps.yaml")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample configuration file
type ConfigGenerateCmd struct{}

const sampleConfig = `# codex-ps configuration file
# Place at ~/.codex-ps.yaml or $XDG_CONFIG_HOME/codex-ps/codex-ps.yaml

# Codex home holding sessions/ and the global state file.
# Defaults to $CODEX_HOME, then ~/.codex.
#home: /Users/me/.codex

# Remote hosts implied by --host all. Plain ssh destinations.
#hosts:
#  - devbox
#  - user@gpu1

# TUI refresh cadence.
refresh_ms: 1000

status:
  # A session counts as working when its rollout changed this recently.
  working_max_age_s: 15
  # And as waiting once it has been quiet this long.
  waiting_min_age_s: 60

scan:
  timeout_ms: 10000

remote:
  ssh_bin: ssh
  bin: codex-ps
  timeout_ms: 6000
  connect_timeout_s: 3

labels:
  # Label store location; defaults to ~/.config/codex-ps/session_labels.jsonl
  #path: /Users/me/.config/codex-ps/session_labels.jsonl

watch:
  # Refresh on filesystem events between ticks.
  fs_events: true
  debounce_ms: 250
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
