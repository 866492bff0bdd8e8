package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/aelaguiz/codex-ps/internal/domain"
)

// WriteJSON emits the snapshot as one indented JSON document plus a trailing
// newline. A broken pipe is not an error; downstream tools like head close
// stdout early all the time.
func WriteJSON(w io.Writer, snap *domain.Snapshot) error {
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}
	out = append(out, '\n')
	if _, err := w.Write(out); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return nil
		}
		return err
	}
	return nil
}
