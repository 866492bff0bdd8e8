package cli

import (
	"encoding/json"
	"errors"
	"fmt"
)

// errorOutput is the machine-readable failure shape; it matches the error
// definition in the schema command.
type errorOutput struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// outputErrorCommon normalizes error emission across commands, respecting
// json vs text output so scripted callers always get machine-readable
// failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	h := ""
	if len(hint) > 0 {
		h = hint[0]
	}
	if globals != nil && globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		_ = enc.Encode(errorOutput{Type: "error", Code: code, Message: message, Hint: h})
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s", code, message)
		if h != "" {
			fmt.Fprintf(globals.Stderr, " (hint: %s)", h)
		}
		fmt.Fprintln(globals.Stderr)
	}
	return errors.New(message)
}
