package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// ResolveCodexHome resolves the Codex home directory. Precedence: explicit
// override (flag or config), then $CODEX_HOME, then ~/.codex. The directory
// is not required to exist; callers that need to read it report that
// themselves.
func ResolveCodexHome(override string) (string, error) {
	if override != "" {
		return expandPath(override)
	}

	if env := os.Getenv("CODEX_HOME"); env != "" {
		return expandPath(env)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}

	return filepath.Join(home, ".codex"), nil
}

// ParseHosts turns the --host selection into an ordered host list.
// "local" is the default, "all" expands to local plus the configured
// remotes, and anything else is a comma separated list. Duplicates are
// dropped, first occurrence wins.
func ParseHosts(selection string, configured []string) []string {
	selection = strings.TrimSpace(selection)

	switch selection {
	case "", "local":
		return []string{"local"}
	case "all":
		hosts := append([]string{"local"}, configured...)
		return lo.Uniq(normalizeHosts(hosts))
	}

	return lo.Uniq(normalizeHosts(strings.Split(selection, ",")))
}

func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		out = append(out, h)
	}
	return out
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand %q: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %q: %w", path, err)
	}
	return abs, nil
}
