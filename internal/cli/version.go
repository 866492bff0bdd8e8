package cli

import (
	"encoding/json"
	"fmt"
)

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(map[string]interface{}{
			"type":    "version",
			"version": Version,
			"commit":  Commit,
		})
	}
	fmt.Fprintf(globals.Stdout, "codex-ps version %s (%s)\n", Version, Commit)
	return nil
}
