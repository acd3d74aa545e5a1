package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/mmv/internal/mmqcli"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading…"
	}

	if m.modal.kind != modalNone {
		return m.modal.place(m.width, m.height)
	}

	sidebar := m.renderSidebar()
	main := m.renderMain()

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(), m.renderHelp())
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	b.WriteString(SidebarTitleStyle.Render("Collections"))
	b.WriteString("\n")

	if len(m.collections) == 0 {
		b.WriteString(HelpStyle.Render("none yet — press 'a'"))
	}

	for i, c := range m.collections {
		line := fmt.Sprintf("%s (%d)", c.Name, c.DocCount)
		line = truncate(line, m.sidebarW-4)

		style := ItemStyle
		if m.current != nil && c.Name == m.current.Name {
			style = ItemActiveStyle
		}
		if i == m.sidebarIndex && m.focused == FocusSidebar {
			style = ItemSelectedStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return SidebarStyle.
		Width(m.sidebarW).
		Height(m.height - 4).
		Render(b.String())
}

func (m Model) renderMain() string {
	var content string
	switch m.pane {
	case paneDetail:
		content = m.renderDetail()
	case paneSearch:
		content = m.renderSearch()
	case paneViewer:
		content = m.renderViewer()
	}

	w, h := m.mainSize()
	return PanelStyle.Width(w).Height(h).Render(content)
}

func (m Model) renderDetail() string {
	var b strings.Builder

	if m.current == nil {
		b.WriteString(HelpStyle.Render("Select a collection"))
		if len(m.recentDocs) > 0 {
			b.WriteString("\n\n")
			b.WriteString(PanelTitleStyle.Render("Recently opened"))
			b.WriteString("\n")
			for _, d := range m.recentDocs {
				b.WriteString(ItemStyle.Render(fmt.Sprintf("%s/%s", d.Collection, d.Path)))
				b.WriteString("\n")
			}
		}
		return b.String()
	}

	b.WriteString(PanelTitleStyle.Render(m.current.Name))
	b.WriteString("\n")
	b.WriteString(FieldNameStyle.Render("Path: "))
	b.WriteString(m.current.Path)
	b.WriteString("\n")
	b.WriteString(FieldNameStyle.Render("Mask: "))
	b.WriteString(m.current.Mask)
	b.WriteString("\n")
	if !m.current.UpdatedAt.IsZero() {
		b.WriteString(FieldNameStyle.Render("Updated: "))
		b.WriteString(m.current.UpdatedAt.Format("2006-01-02 15:04"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.documents) == 0 {
		b.WriteString(HelpStyle.Render("No documents indexed"))
		return b.String()
	}

	_, h := m.mainSize()
	start, end := listWindow(m.docIndex, len(m.documents), h-7)

	for i := start; i < end; i++ {
		d := m.documents[i]
		line := truncate(d.Path, m.mainWidth()-4)
		if i == m.docIndex && m.focused == FocusMain {
			b.WriteString(ItemSelectedStyle.Render(line))
		} else {
			b.WriteString(ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderSearch() string {
	var b strings.Builder

	b.WriteString(PanelTitleStyle.Render("Search"))
	b.WriteString("  ")
	b.WriteString(StatusModeStyle.Render(modeLabel(m.searchMode)))
	b.WriteString(HelpStyle.Render("  ctrl+t: mode"))
	b.WriteString("\n")

	inputStyle := InputStyle
	if m.searchInput.Focused() {
		inputStyle = InputFocusedStyle
	}
	b.WriteString(inputStyle.Render(m.searchInput.View()))
	b.WriteString("\n")

	if len(m.results) == 0 {
		if len(m.recent) > 0 {
			b.WriteString(HelpStyle.Render("Recent searches:"))
			b.WriteString("\n")
			for _, e := range m.recent {
				b.WriteString(ItemStyle.Render(fmt.Sprintf("%s (%s, %d hits)", e.Query, e.Mode, e.ResultCount)))
				b.WriteString("\n")
			}
		}
		return b.String()
	}

	// A result takes up to two lines (head + snippet).
	_, h := m.mainSize()
	start, end := listWindow(m.resultIndex, len(m.results), (h-5)/2)

	for i := start; i < end; i++ {
		r := m.results[i]
		head := fmt.Sprintf("[%d] ", r.Rank) + ScoreStyle.Render(fmt.Sprintf("%.4f", r.Score)) +
			fmt.Sprintf("  %s/%s", r.Collection, r.Path)
		if i == m.resultIndex && m.resultsFocus {
			head = ItemSelectedStyle.Render(fmt.Sprintf("[%d] %.4f  %s/%s", r.Rank, r.Score, r.Collection, r.Path))
		}
		b.WriteString(head)
		b.WriteString("\n")
		if r.Snippet != "" {
			b.WriteString(SnippetStyle.Render("    " + truncate(r.Snippet, m.mainWidth()-8)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m Model) renderViewer() string {
	if m.viewerDoc == nil {
		return HelpStyle.Render("No document open")
	}

	title := PanelTitleStyle.Render(m.viewerDoc.Title)
	meta := HelpStyle.Render(fmt.Sprintf("%s/%s", m.viewerDoc.Collection, m.viewerDoc.Path))
	head := title + "  " + meta
	if m.previewOn {
		head += "  " + StatusInfoStyle.Render("● preview")
	}

	return head + "\n" + m.viewport.View()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if m.current != nil {
		parts = append(parts, StatusModeStyle.Render(m.current.Name))
	}

	switch {
	case m.busy != "":
		parts = append(parts, StatusBusyStyle.Render(m.busy))
	case m.err != nil:
		parts = append(parts, StatusErrorStyle.Render(truncate(m.err.Error(), m.width-20)))
	case m.info != "":
		parts = append(parts, StatusInfoStyle.Render(m.info))
	}

	line := strings.Join(parts, " ")
	return StatusBarStyle.Width(m.width).Render(line)
}

func (m Model) renderHelp() string {
	var keys string
	switch {
	case m.focused == FocusSidebar:
		keys = "↑/↓ move • enter select • a add • R rename • d delete • u reindex • E embed • / search • s status • tab • q quit"
	case m.pane == paneSearch:
		keys = "enter search • ctrl+t mode • ↓ results • esc back • tab • q quit"
	case m.pane == paneViewer:
		keys = "↑/↓ scroll • p preview • e edit • esc back • tab • q quit"
	default:
		keys = "↑/↓ move • enter open • / search • tab • r refresh • q quit"
	}
	return HelpStyle.Render(keys)
}

func modeLabel(mode mmqcli.SearchMode) string {
	switch mode {
	case mmqcli.ModeVector:
		return "VECTOR"
	case mmqcli.ModeHybrid:
		return "HYBRID"
	default:
		return "FTS"
	}
}

// listWindow returns the [start, end) range of a total-item list that keeps
// index inside a window of the given size.
func listWindow(index, total, visible int) (start, end int) {
	if visible < 1 {
		visible = 1
	}
	if index >= visible {
		start = index - visible + 1
	}
	end = start + visible
	if end > total {
		end = total
	}
	return start, end
}

// truncate shortens s to at most n cells, appending an ellipsis.
func truncate(s string, n int) string {
	if n <= 1 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
