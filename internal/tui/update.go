package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aelaguiz/codex-ps/internal/lineage"
	"github.com/aelaguiz/codex-ps/internal/output"
)

// Update handles messages and updates the model accordingly.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rename.Width = modalWidth(m.width) - 6
		return m, nil

	case eventMsg:
		m.applyEvent(msg)
		return m, waitForEvent(m.worker.Events())

	case tickMsg:
		// No refreshes while the modal is open, so rows don't shift under
		// the rename target.
		if !m.renaming {
			m.worker.Refresh()
		}
		return m, tickEvery(m.refresh)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) applyEvent(ev eventMsg) {
	if ev.Err != nil {
		m.lastErr = ev.Err.Error()
		return
	}
	if ev.Snapshot == nil {
		return
	}
	m.lastErr = ""
	m.snapshot = ev.Snapshot
	m.groups = lineage.GroupRows(ev.Snapshot.Sessions)
	m.reconcileSelection()
	m.surfaceLabelWarning(ev.Snapshot.Warnings)
}

// surfaceLabelWarning flashes label-store trouble once per distinct warning,
// diagnostic mode only. The header error count covers everything else.
func (m *Model) surfaceLabelWarning(warnings []string) {
	if !m.debug {
		return
	}
	for _, w := range warnings {
		if strings.HasPrefix(w, "label") && w != m.lastWarn {
			m.lastWarn = w
			m.flash("WARN: " + w)
			return
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.renaming {
		switch {
		case key.Matches(msg, m.keys.Save):
			m.commitRename()
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			m.renaming = false
			m.rename.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.rename, cmd = m.rename.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.worker.Refresh()
	case key.Matches(msg, m.keys.Up):
		m.selectPrev()
	case key.Matches(msg, m.keys.Down):
		m.selectNext()
	case key.Matches(msg, m.keys.Rename):
		return m, m.startRename()
	case key.Matches(msg, m.keys.Clear):
		m.clearLabel()
	case key.Matches(msg, m.keys.Reasons):
		m.showWhy = !m.showWhy
	}
	return m, nil
}

// reconcileSelection keeps the cursor on the same session across snapshots.
// A vanished selection falls back to the first row; an empty table clears it.
func (m *Model) reconcileSelection() {
	if len(m.groups) == 0 {
		m.selected = ""
		return
	}
	if m.selected != "" {
		for i := range m.groups {
			if m.groups[i].Root.Key() == m.selected {
				return
			}
		}
	}
	m.selected = m.groups[0].Root.Key()
}

func (m *Model) selectedIndex() int {
	if m.selected == "" {
		return -1
	}
	for i := range m.groups {
		if m.groups[i].Root.Key() == m.selected {
			return i
		}
	}
	return -1
}

func (m *Model) selectPrev() {
	idx := m.selectedIndex()
	if idx < 0 {
		m.reconcileSelection()
		return
	}
	if idx > 0 {
		idx--
	}
	m.selected = m.groups[idx].Root.Key()
}

func (m *Model) selectNext() {
	idx := m.selectedIndex()
	if idx < 0 {
		m.reconcileSelection()
		return
	}
	if idx < len(m.groups)-1 {
		idx++
	}
	m.selected = m.groups[idx].Root.Key()
}

// startRename opens the modal prefilled with the current label so a small
// edit doesn't mean retyping the whole name.
func (m *Model) startRename() tea.Cmd {
	m.reconcileSelection()
	idx := m.selectedIndex()
	if idx < 0 {
		return nil
	}
	root := &m.groups[idx].Root

	existing := ""
	if root.Label != nil {
		existing = *root.Label
	}

	m.renaming = true
	m.renameHost = root.Host
	m.renameID = root.SessionID
	m.rename.Width = modalWidth(m.width) - 6
	m.rename.SetValue(existing)
	m.rename.CursorEnd()
	m.rename.Focus()
	return textinput.Blink
}

// commitRename saves the trimmed buffer; an emptied buffer clears the label
// instead, so the modal doubles as the delete path.
func (m *Model) commitRename() {
	m.renaming = false
	m.rename.Blur()

	host, id := m.renameHost, m.renameID
	value := strings.TrimSpace(m.rename.Value())
	if value == "" {
		m.worker.ClearLabel(host, id)
		m.flash(fmt.Sprintf("Cleared name for (%s) %s", host, output.ShortSessionID(id)))
		return
	}
	m.worker.SetLabel(host, id, value)
	m.flash(fmt.Sprintf("Saved name for (%s) %s", host, output.ShortSessionID(id)))
}

func (m *Model) clearLabel() {
	m.reconcileSelection()
	idx := m.selectedIndex()
	if idx < 0 {
		return
	}
	root := &m.groups[idx].Root
	m.worker.ClearLabel(root.Host, root.SessionID)
	m.flash(fmt.Sprintf("Cleared name for (%s) %s", root.Host, output.ShortSessionID(root.SessionID)))
}

func (m *Model) flash(msg string) {
	m.flashMsg = msg
	m.flashAt = m.clock.Now()
}
