package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/output"
)

// LabelCmd groups the label store operations.
type LabelCmd struct {
	Set   LabelSetCmd   `cmd:"" help:"Assign a label to a session."`
	Clear LabelClearCmd `cmd:"" help:"Remove a session's label."`
	Ls    LabelLsCmd    `cmd:"" help:"List stored labels."`
}

// labelOutput reports one completed label operation.
type labelOutput struct {
	Type      string  `json:"type"`
	Host      string  `json:"host"`
	SessionID string  `json:"session_id"`
	Label     *string `json:"label"`
}

// labelEntry is one stored label in a listing.
type labelEntry struct {
	Host      string `json:"host"`
	SessionID string `json:"session_id"`
	Label     string `json:"label"`
}

type labelListOutput struct {
	Type   string       `json:"type"`
	Labels []labelEntry `json:"labels"`
}

// LabelSetCmd assigns a label directly, without going through the TUI.
type LabelSetCmd struct {
	ForHost   string   `help:"Host the session lives on." default:"local"`
	SessionID string   `arg:"" name:"session-id" help:"Full session id (uuid)."`
	Label     []string `arg:"" help:"Label text; multiple words are joined."`
}

// Run executes the label set command
func (c *LabelSetCmd) Run(globals *Globals) error {
	label := strings.TrimSpace(strings.Join(c.Label, " "))
	if label == "" {
		return outputErrorCommon(globals, "EMPTY_LABEL", "label text is empty",
			"use label clear to remove a label")
	}

	store, err := newLabelStore(globals)
	if err != nil {
		return outputErrorCommon(globals, "LABELS_UNAVAILABLE", err.Error())
	}
	if err := store.Set(c.ForHost, c.SessionID, label); err != nil {
		return outputErrorCommon(globals, "LABEL_WRITE_FAILED", err.Error())
	}

	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(labelOutput{Type: "label", Host: c.ForHost, SessionID: c.SessionID, Label: &label})
	}
	fmt.Fprintf(globals.Stdout, "Labeled %s as %q\n", output.ShortSessionID(c.SessionID), label)
	return nil
}

// LabelClearCmd removes a session's label.
type LabelClearCmd struct {
	ForHost   string `help:"Host the session lives on." default:"local"`
	SessionID string `arg:"" name:"session-id" help:"Full session id (uuid)."`
}

// Run executes the label clear command
func (c *LabelClearCmd) Run(globals *Globals) error {
	store, err := newLabelStore(globals)
	if err != nil {
		return outputErrorCommon(globals, "LABELS_UNAVAILABLE", err.Error())
	}
	if err := store.Clear(c.ForHost, c.SessionID); err != nil {
		return outputErrorCommon(globals, "LABEL_WRITE_FAILED", err.Error())
	}

	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(labelOutput{Type: "label", Host: c.ForHost, SessionID: c.SessionID, Label: nil})
	}
	fmt.Fprintf(globals.Stdout, "Cleared label for %s\n", output.ShortSessionID(c.SessionID))
	return nil
}

// LabelLsCmd lists every stored label, including ones whose sessions are
// not currently running.
type LabelLsCmd struct{}

// Run executes the label ls command
func (c *LabelLsCmd) Run(globals *Globals) error {
	store, err := newLabelStore(globals)
	if err != nil {
		return outputErrorCommon(globals, "LABELS_UNAVAILABLE", err.Error())
	}

	all := store.All()
	entries := make([]labelEntry, 0, len(all))
	for key, label := range all {
		host, sessionID, ok := domain.SplitSessionKey(key)
		if !ok {
			continue
		}
		entries = append(entries, labelEntry{Host: host, SessionID: sessionID, Label: label})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Host != entries[j].Host {
			return entries[i].Host < entries[j].Host
		}
		return entries[i].SessionID < entries[j].SessionID
	})

	if globals.JSON {
		enc := json.NewEncoder(globals.Stdout)
		return enc.Encode(labelListOutput{Type: "labels", Labels: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintln(globals.Stdout, "No labels stored.")
		return nil
	}

	table := tablewriter.NewTable(globals.Stdout)
	table.Header([]string{"HOST", "SESSION", "LABEL"})
	for _, e := range entries {
		table.Append([]string{e.Host, e.SessionID, e.Label})
	}
	return table.Render()
}
