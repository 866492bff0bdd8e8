package cli

import (
	"encoding/json"
	"fmt"
)

// UpdateCmd shows how to upgrade codex-ps
type UpdateCmd struct{}

// UpdateOutput represents the JSON output for update instructions
type UpdateOutput struct {
	Type        string `json:"type"`
	Version     string `json:"current_version"`
	Commit      string `json:"commit"`
	Homebrew    string `json:"homebrew"`
	GoInstall   string `json:"go_install"`
	ReleasesURL string `json:"releases_url"`
}

const (
	homebrewCmd  = "brew update && brew upgrade codex-ps"
	goInstallCmd = "go install github.com/aelaguiz/codex-ps/cmd/codex-ps@latest"
	releasesURL  = "https://github.com/aelaguiz/codex-ps/releases"
)

// Run executes the update command
func (c *UpdateCmd) Run(globals *Globals) error {
	if globals.JSON {
		out := UpdateOutput{
			Type:        "update",
			Version:     Version,
			Commit:      Commit,
			Homebrew:    homebrewCmd,
			GoInstall:   goInstallCmd,
			ReleasesURL: releasesURL,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(out)
	}

	fmt.Fprintln(globals.Stdout, "codex-ps update instructions")
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintf(globals.Stdout, "Current version: %s (%s)\n", Version, Commit)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "To upgrade via Homebrew:")
	fmt.Fprintf(globals.Stdout, "  %s\n", homebrewCmd)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "To upgrade via Go:")
	fmt.Fprintf(globals.Stdout, "  %s\n", goInstallCmd)
	fmt.Fprintln(globals.Stdout)
	fmt.Fprintln(globals.Stdout, "For release notes, see:")
	fmt.Fprintf(globals.Stdout, "  %s\n", releasesURL)

	return nil
}
