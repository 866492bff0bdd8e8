package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/aelaguiz/codex-ps/internal/cli"
	"github.com/aelaguiz/codex-ps/internal/config"
)

func main() {
	// kong needs the config-derived defaults before parsing, so an explicit
	// --config is found with a minimal pre-scan of the raw arguments.
	cfg := loadConfig(configFlag(os.Args[1:]))

	var c cli.CLI

	// Apply config defaults before parsing. CLI flags override these.
	vars := kong.Vars{
		"config_host":              "local",
		"config_refresh_ms":        strconv.Itoa(cfg.RefreshMS),
		"config_ssh_bin":           cfg.Remote.SSHBin,
		"config_remote_bin":        cfg.Remote.Bin,
		"config_remote_timeout_ms": strconv.Itoa(cfg.Remote.TimeoutMS),
	}

	ctx := kong.Parse(&c,
		kong.Name("codex-ps"),
		kong.Description("codex-ps: live view of running Codex CLI sessions\n\nScripts and agents: run 'codex-ps ps --json' for one machine-readable snapshot"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		// Commands print their own structured errors before returning.
		os.Exit(1)
	}
}

// configFlag extracts an explicit --config path before kong parses.
func configFlag(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
	}
	return ""
}

// loadConfig resolves the effective configuration. An explicit path that
// fails to load is fatal; a broken discovered config only warns and falls
// back to defaults.
func loadConfig(path string) *config.Config {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load config %s: %v\n", path, err)
			os.Exit(1)
		}
		return cfg
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}
	return cfg
}
