// Package cli defines the codex-ps command tree. Each command is a kong
// struct with a Run(globals) method; globals carry resolved flags, config
// and captured output streams so commands stay testable.
package cli

// Version is set via ldflags at build time
var Version = "dev"

// Commit is set via ldflags at build time
var Commit = "unknown"

// CLI is the root command tree. Global flags apply to every command and
// take their defaults from the loaded config through kong vars.
type CLI struct {
	Host          string `help:"Hosts to collect from: local, all, or a comma separated list." default:"${config_host}"`
	JSON          bool   `help:"Emit JSON instead of text."`
	Debug         bool   `help:"Populate per-row diagnostic fields (status reasons, probe errors)."`
	Verbose       bool   `short:"v" help:"Verbose debug logging (JSON, stderr)."`
	ConfigFile    string `name:"config" help:"Explicit config file path." type:"path"`
	CodexHome     string `name:"codex-home" help:"Codex home override (default $CODEX_HOME or ~/.codex)." type:"path"`
	SSHBin        string `name:"ssh-bin" help:"ssh binary used for remote hosts." default:"${config_ssh_bin}"`
	RemoteBin     string `name:"remote-bin" help:"codex-ps binary name on remote hosts." default:"${config_remote_bin}"`
	RemoteTimeout int    `name:"remote-timeout" help:"Per-host remote collection timeout in milliseconds." default:"${config_remote_timeout_ms}"`

	Watch      WatchCmd      `cmd:"" default:"withargs" help:"Live session view (default)."`
	Ps         PsCmd         `cmd:"" help:"One collection pass, table or JSON."`
	Label      LabelCmd      `cmd:"" help:"Set, clear and list session labels."`
	Doctor     DoctorCmd     `cmd:"" help:"Check the environment for problems."`
	Config     ConfigCmd     `cmd:"" help:"Show, locate or generate configuration."`
	Schema     SchemaCmd     `cmd:"" help:"JSON Schema for machine-readable output."`
	Version    VersionCmd    `cmd:"" help:"Show version information."`
	Update     UpdateCmd     `cmd:"" help:"Show how to upgrade codex-ps."`
	Completion CompletionCmd `cmd:"" help:"Generate shell completions."`
}
