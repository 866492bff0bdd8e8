package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aelaguiz/codex-ps/internal/config"
)

// DoctorCmd checks the environment codex-ps depends on and reports what
// would break a collection pass before the user runs one.
type DoctorCmd struct{}

type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // ok, warning, error
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type doctorReport struct {
	Type       string        `json:"type"`
	Timestamp  string        `json:"timestamp"`
	Checks     []checkResult `json:"checks"`
	AllPassed  bool          `json:"all_passed"`
	ErrorCount int           `json:"error_count"`
	WarnCount  int           `json:"warn_count"`
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	checks := []checkResult{
		c.checkHome(globals),
		c.checkLsof(),
	}
	if len(globals.Config.Hosts) > 0 {
		checks = append(checks, c.checkSSH(globals))
	}
	checks = append(checks,
		c.checkLabelStore(globals),
		c.checkTmux(),
		c.checkConfigFile(),
	)

	report := doctorReport{
		Type:      "doctor",
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}
	for _, chk := range checks {
		switch chk.Status {
		case "error":
			report.ErrorCount++
		case "warning":
			report.WarnCount++
		}
	}
	report.AllPassed = report.ErrorCount == 0 && report.WarnCount == 0

	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		c.printReport(globals, report)
	}

	if report.ErrorCount > 0 {
		return fmt.Errorf("doctor found %d problem(s)", report.ErrorCount)
	}
	return nil
}

func (c *DoctorCmd) printReport(globals *Globals, report doctorReport) {
	fmt.Fprintln(globals.Stdout, "codex-ps doctor")
	fmt.Fprintln(globals.Stdout)
	for _, chk := range report.Checks {
		marker := "✓"
		switch chk.Status {
		case "warning":
			marker = "!"
		case "error":
			marker = "✗"
		}
		fmt.Fprintf(globals.Stdout, "  %s %s: %s\n", marker, chk.Name, chk.Message)
		if chk.Details != "" {
			fmt.Fprintf(globals.Stdout, "      %s\n", chk.Details)
		}
	}
	fmt.Fprintln(globals.Stdout)
	if report.AllPassed {
		fmt.Fprintln(globals.Stdout, "All checks passed.")
	} else {
		fmt.Fprintf(globals.Stdout, "%d error(s), %d warning(s)\n", report.ErrorCount, report.WarnCount)
	}
}

func (c *DoctorCmd) checkHome(globals *Globals) checkResult {
	home, err := globals.ResolveHome()
	if err != nil {
		return checkResult{Name: "Codex home", Status: "error", Message: err.Error()}
	}
	if _, err := os.ReadDir(home); err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				Name:    "Codex home",
				Status:  "warning",
				Message: fmt.Sprintf("%s does not exist yet", home),
				Details: "no sessions recorded on this machine so far",
			}
		}
		return checkResult{Name: "Codex home", Status: "error", Message: fmt.Sprintf("cannot read %s: %v", home, err)}
	}
	return checkResult{Name: "Codex home", Status: "ok", Message: home}
}

func (c *DoctorCmd) checkLsof() checkResult {
	path, err := exec.LookPath("lsof")
	if err != nil {
		return checkResult{
			Name:    "lsof",
			Status:  "error",
			Message: "lsof not found on PATH",
			Details: "local process discovery is impossible without it",
		}
	}
	return checkResult{Name: "lsof", Status: "ok", Message: path}
}

func (c *DoctorCmd) checkSSH(globals *Globals) checkResult {
	bin := globals.Config.Remote.SSHBin
	if bin == "" {
		bin = "ssh"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return checkResult{
			Name:    "ssh",
			Status:  "error",
			Message: fmt.Sprintf("%s not found on PATH", bin),
			Details: fmt.Sprintf("%d remote host(s) configured", len(globals.Config.Hosts)),
		}
	}
	return checkResult{Name: "ssh", Status: "ok", Message: path}
}

func (c *DoctorCmd) checkLabelStore(globals *Globals) checkResult {
	store, err := newLabelStore(globals)
	if err != nil {
		return checkResult{Name: "Label store", Status: "error", Message: err.Error()}
	}
	dir := filepath.Dir(store.Path())
	if _, err := os.Stat(dir); err != nil {
		return checkResult{
			Name:    "Label store",
			Status:  "warning",
			Message: fmt.Sprintf("%s does not exist yet", dir),
			Details: "created on first label write",
		}
	}
	if !c.checkWritePermission(dir) {
		return checkResult{Name: "Label store", Status: "error", Message: fmt.Sprintf("%s is not writable", dir)}
	}
	return checkResult{Name: "Label store", Status: "ok", Message: store.Path()}
}

func (c *DoctorCmd) checkTmux() checkResult {
	path, err := exec.LookPath("tmux")
	if err != nil {
		return checkResult{
			Name:    "tmux",
			Status:  "warning",
			Message: "tmux not found on PATH",
			Details: "pane mapping will be empty; everything else works",
		}
	}
	return checkResult{Name: "tmux", Status: "ok", Message: path}
}

func (c *DoctorCmd) checkConfigFile() checkResult {
	if path := config.ConfigFile(); path != "" {
		return checkResult{Name: "Config file", Status: "ok", Message: path}
	}
	return checkResult{Name: "Config file", Status: "ok", Message: "none found, using defaults"}
}

// checkWritePermission reports whether the directory accepts new files.
func (c *DoctorCmd) checkWritePermission(dir string) bool {
	f, err := os.CreateTemp(dir, ".codex-ps-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
