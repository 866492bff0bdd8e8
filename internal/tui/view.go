package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aelaguiz/codex-ps/internal/domain"
	"github.com/aelaguiz/codex-ps/internal/output"
)

// stateColumn is the index of STATE in output.RowCells, the one cell that
// gets its own color.
const stateColumn = 4

type theme struct {
	bold     lipgloss.Style
	err      lipgloss.Style
	muted    lipgloss.Style
	flash    lipgloss.Style
	selected lipgloss.Style
	modal    lipgloss.Style
	state    map[domain.Status]lipgloss.Style
}

func newTheme() theme {
	return theme{
		bold:     lipgloss.NewStyle().Bold(true),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		flash:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		selected: lipgloss.NewStyle().Reverse(true),
		modal:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		state: map[domain.Status]lipgloss.Style{
			domain.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
			domain.StatusWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			domain.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// View renders two header lines plus the session table, or the rename modal
// centered in the table area while a rename is open.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteByte('\n')
	b.WriteString(m.helpLine())
	b.WriteByte('\n')

	if m.renaming {
		modal := m.modalView()
		if m.width > 0 && m.height > 2 {
			modal = lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, modal)
		}
		b.WriteString(modal)
		return b.String()
	}

	b.WriteString(m.tableView())
	return b.String()
}

func (m Model) headerLine() string {
	displayRows := len(m.groups)
	rawThreads := 0
	hostSel := strings.Join(m.hosts, ",")
	hostErrs := 0
	if m.snapshot != nil {
		rawThreads = len(m.snapshot.Sessions)
		hostSel = m.snapshot.Host
		hostErrs = len(m.snapshot.HostErrors)
	}

	var b strings.Builder
	b.WriteString(m.theme.bold.Render("codex-ps  "))
	fmt.Fprintf(&b, "hosts: %s  ", hostSel)
	fmt.Fprintf(&b, "sessions: %d  ", displayRows)
	if rawThreads != displayRows {
		fmt.Fprintf(&b, "threads: %d  ", rawThreads)
	}
	if hostErrs > 0 {
		b.WriteString(m.theme.err.Render(fmt.Sprintf("errors: %d  ", hostErrs)))
	}
	fmt.Fprintf(&b, "refresh: %dms  ", m.refresh.Milliseconds())

	switch {
	case m.lastErr != "":
		budget := m.width - 30
		if budget < 20 {
			budget = 20
		}
		b.WriteString(m.theme.err.Render(domain.TruncateMiddle(m.lastErr, budget)))
	case m.snapshot != nil:
		age := m.clock.Now().Unix() - m.snapshot.GeneratedAtUnixS
		if age < 0 {
			age = 0
		}
		b.WriteString(m.theme.muted.Render(fmt.Sprintf("updated: %ds ago", age)))
	}
	return b.String()
}

func (m Model) helpLine() string {
	var b strings.Builder
	b.WriteString(m.theme.bold.Render("Keys: "))
	if m.renaming {
		b.WriteString("Enter save  Esc cancel  Backspace delete")
	} else {
		parts := make([]string, 0, 6)
		for _, binding := range m.keys.ShortHelp() {
			h := binding.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
		b.WriteString(strings.Join(parts, "  "))
	}

	if m.flashMsg != "" && m.clock.Since(m.flashAt) <= flashTTL {
		b.WriteString("   ")
		b.WriteString(m.theme.flash.Render("Status: " + m.flashMsg))
	}
	return b.String()
}

func (m Model) tableView() string {
	headers := output.Headers(m.showWhy)
	now := m.clock.Now().Unix()

	rows := make([][]string, len(m.groups))
	for i := range m.groups {
		rows[i] = output.RowCells(&m.groups[i], now, m.showWhy)
	}
	widths := columnWidths(headers, rows)

	var b strings.Builder
	b.WriteString(m.theme.bold.Render("Active Codex Sessions"))
	b.WriteByte('\n')
	b.WriteString("  ")
	b.WriteString(m.theme.bold.Render(joinCells(headers, widths)))
	b.WriteByte('\n')

	selected := m.selectedIndex()
	for i, cells := range rows {
		if i == selected {
			b.WriteString(m.theme.selected.Render("> " + joinCells(cells, widths)))
		} else {
			padded := make([]string, len(cells))
			for c, cell := range cells {
				padded[c] = pad(cell, widths[c])
			}
			padded[stateColumn] = m.theme.state[m.groups[i].Status].Render(padded[stateColumn])
			b.WriteString("  " + strings.Join(padded, " "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m Model) modalView() string {
	tid := output.ShortSessionID(m.renameID)
	title := fmt.Sprintf("Name session (%s) %s", m.renameHost, tid)

	width := modalWidth(m.width)
	content := strings.Join([]string{
		m.theme.bold.Render(domain.TruncateMiddle(title, width-2)),
		"",
		m.rename.View(),
		"",
		m.theme.muted.Render("Enter = Save    Esc = Cancel"),
	}, "\n")
	return m.theme.modal.Width(width).Render(content)
}

// modalWidth sizes the rename modal: as wide as 76 columns when the
// terminal allows, never narrower than 36.
func modalWidth(termWidth int) int {
	w := 76
	if termWidth > 0 && termWidth-4 < w {
		w = termWidth - 4
	}
	if w < 36 {
		w = 36
	}
	return w
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, cells := range rows {
		for i, cell := range cells {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	return widths
}

func pad(cell string, width int) string {
	if gap := width - lipgloss.Width(cell); gap > 0 {
		return cell + strings.Repeat(" ", gap)
	}
	return cell
}

func joinCells(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = pad(cell, widths[i])
	}
	return strings.Join(padded, " ")
}
