package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/lineage"
)

// Column truncation budgets, shared with the TUI so both views read alike.
const (
	hostMax   = 12
	labelMax  = 22
	titleMax  = 18
	pwdMax    = 44
	reasonMax = 60
)

// Headers returns the table column headers; diagnostic mode adds WHY.
func Headers(debug bool) []string {
	headers := []string{"HOST", "PID", "TID", "SUB", "STATE", "AGE", "NAME", "TITLE", "BRANCH", "PWD"}
	if debug {
		headers = append(headers, "WHY")
	}
	return headers
}

// RowCells formats one display group into table cells, truncated to the
// shared column budgets. Ages are relative to nowUnixS so the table renders
// against the snapshot time and the TUI against the wall clock.
func RowCells(g *lineage.Group, nowUnixS int64, debug bool) []string {
	root := &g.Root

	name := "(unset)"
	if root.Label != nil && strings.TrimSpace(*root.Label) != "" {
		name = strings.TrimSpace(*root.Label)
	}

	pwd := "unknown"
	if root.Cwd != nil {
		pwd = ShortenHomePath(*root.Cwd)
	}

	var agePtr *int64
	if g.LastActivityUnixS != nil {
		age := nowUnixS - *g.LastActivityUnixS
		if age < 0 {
			age = 0
		}
		agePtr = &age
	}

	cells := []string{
		domain.TruncateMiddle(root.Host, hostMax),
		FormatPIDs(root.PIDs),
		ShortSessionID(root.SessionID),
		FormatSubagents(g, debug),
		g.Status.Display(),
		FormatAge(agePtr),
		domain.TruncateMiddle(name, labelMax),
		domain.TruncateMiddle(orUnknown(root.Title), titleMax),
		orUnknown(root.Branch),
		domain.TruncateMiddle(pwd, pwdMax),
	}
	if debug {
		reason := ""
		if root.Debug != nil {
			reason = root.Debug.StatusReason
		}
		cells = append(cells, domain.TruncateMiddle(reason, reasonMax))
	}
	return cells
}

// RenderTable writes the grouped session table followed by any host errors
// and warnings. Rows are display groups: one line per root session with its
// subagents folded into the SUB column.
func RenderTable(w io.Writer, snap *domain.Snapshot, debug bool) error {
	groups := lineage.GroupRows(snap.Sessions)

	table := tablewriter.NewTable(w)
	table.Header(Headers(debug))

	for i := range groups {
		table.Append(RowCells(&groups[i], snap.GeneratedAtUnixS, debug))
	}

	if err := table.Render(); err != nil {
		return err
	}

	if len(snap.HostErrors) > 0 {
		hosts := make([]string, 0, len(snap.HostErrors))
		for host := range snap.HostErrors {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		fmt.Fprintln(w)
		for _, host := range hosts {
			fmt.Fprintf(w, "host %s: %s\n", host, snap.HostErrors[host])
		}
	}

	for _, warning := range snap.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}

	return nil
}
