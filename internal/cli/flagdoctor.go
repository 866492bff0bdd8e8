package cli

import (
	"fmt"
	"strings"
)

// validateFlags centralizes host-selection sanity checks so every collection
// command rejects the same inputs the same way. Hosts go straight into ssh
// argv, so a leading dash would be read as an ssh option.
func validateFlags(globals *Globals) error {
	if globals == nil {
		return nil
	}
	for _, host := range globals.Hosts {
		if host == "local" {
			continue
		}
		if strings.HasPrefix(host, "-") {
			return outputErrorCommon(globals, "INVALID_HOST",
				fmt.Sprintf("host %q would be read as an ssh option", host),
				"hosts are plain ssh destinations like user@box")
		}
		if strings.ContainsAny(host, " \t") {
			return outputErrorCommon(globals, "INVALID_HOST",
				fmt.Sprintf("host %q contains whitespace", host),
				"separate multiple hosts with commas")
		}
	}
	return nil
}
