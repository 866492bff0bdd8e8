// Package scan discovers holder processes of the observed tool and the
// rollout files each one keeps open, using a single lsof pass.
package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnavailable marks the process-enumeration facility as missing entirely,
// as opposed to a scan that ran and failed.
var ErrUnavailable = errors.New("lsof not available")

// guiExeMarker identifies the desktop-app variant of the tool. Its helper
// processes hold rollouts open too but are not CLI sessions.
const guiExeMarker = "/Applications/Codex.app/"

var sessionIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Proc is one holder process and everything lsof told us about it.
type Proc struct {
	PID      int
	Cwd      string
	Exe      string
	TTY      string
	Rollouts []RolloutRef
}

// RolloutRef is an open rollout file attributed to a holder process.
// SessionID is empty when the filename does not embed a parseable id.
type RolloutRef struct {
	Path      string
	SessionID string
}

// Scanner enumerates holder processes via lsof.
type Scanner struct {
	Bin     string // lsof binary, resolved via PATH
	Command string // process command-name filter passed to -c
	Home    string // sessions home; only rollouts under it count
}

func New(home string) *Scanner {
	return &Scanner{Bin: "lsof", Command: "codex", Home: home}
}

// Scan runs one lsof pass bounded by ctx. lsof exits 1 when nothing matched
// the command filter; that is an empty result, not an error. A missing lsof
// binary is reported as ErrUnavailable.
func (s *Scanner) Scan(ctx context.Context) ([]Proc, error) {
	cmd := exec.CommandContext(ctx, s.Bin, "-n", "-P", "-c", s.Command, "-F", "pfn")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lsof timed out: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return []Proc{}, nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("lsof failed: %s", msg)
	}

	return parseLsofOutput(stdout.Bytes(), s.Home), nil
}

// parseLsofOutput decodes -F pfn field records: `p<pid>` opens a process,
// then `f<fd>`/`n<name>` pairs describe its open files. Numeric fds may carry
// a trailing access-mode character (`0u`, `2w`).
func parseLsofOutput(out []byte, home string) []Proc {
	home = filepath.Clean(home)
	var procs []Proc
	var cur *Proc
	fd := ""

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Exe == "" || !strings.Contains(cur.Exe, guiExeMarker) {
			procs = append(procs, *cur)
		}
		cur = nil
	}

	for _, raw := range bytes.Split(out, []byte{'\n'}) {
		line := strings.TrimRight(string(raw), "\r")
		if line == "" {
			continue
		}
		tag, rest := line[0], line[1:]
		switch tag {
		case 'p':
			flush()
			pid, err := strconv.Atoi(rest)
			if err != nil {
				continue
			}
			cur = &Proc{PID: pid}
			fd = ""
		case 'f':
			fd = rest
		case 'n':
			if cur == nil {
				continue
			}
			recordFile(cur, fd, rest, home)
		}
	}
	flush()
	return procs
}

func recordFile(proc *Proc, fd, name, home string) {
	switch {
	case fd == "cwd":
		proc.Cwd = name
	case fd == "txt":
		if proc.Exe == "" {
			proc.Exe = name
		}
	case isStdioFd(fd):
		if proc.TTY == "" && isTTYPath(name) {
			proc.TTY = name
		}
	}

	if isRolloutUnder(name, home) {
		id, _ := SessionIDFromPath(name)
		proc.Rollouts = append(proc.Rollouts, RolloutRef{Path: name, SessionID: id})
	}
}

// isStdioFd matches fds 0..2, tolerating the access-mode suffix lsof appends.
func isStdioFd(fd string) bool {
	if fd == "" {
		return false
	}
	digits := strings.TrimRightFunc(fd, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	return err == nil && n >= 0 && n <= 2
}

func isTTYPath(name string) bool {
	return strings.HasPrefix(name, "/dev/ttys") || strings.HasPrefix(name, "/dev/pts/")
}

func isRolloutUnder(name, home string) bool {
	if home == "" || !strings.HasPrefix(name, home+string(filepath.Separator)) {
		return false
	}
	base := filepath.Base(name)
	return strings.HasPrefix(base, "rollout-") && strings.HasSuffix(base, ".jsonl")
}

// SessionIDFromPath extracts the session id embedded in a rollout filename:
// the last 36 characters of the stem, lowercased, which must form a UUID.
func SessionIDFromPath(path string) (string, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if len(stem) < 36 {
		return "", false
	}
	id := strings.ToLower(stem[len(stem)-36:])
	if !sessionIDRe.MatchString(id) {
		return "", false
	}
	return id, true
}
