package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyike/mmv/internal/config"
	"github.com/dyike/mmv/internal/mmqcli"
)

func testModel(t *testing.T) Model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewModel(context.Background(), nil, nil, config.Default(), logger)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func sampleCollections() []mmqcli.Collection {
	return []mmqcli.Collection{
		{Name: "notes", Path: "/tmp/notes", Mask: "**/*.md", DocCount: 3},
		{Name: "wiki", Path: "/tmp/wiki", Mask: "**/*.md", DocCount: 12},
	}
}

func TestCollectionsLoadedSelectsFirst(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(CollectionsLoadedMsg{Collections: sampleCollections()})
	m = updated.(Model)

	if len(m.collections) != 2 {
		t.Fatalf("collections = %d, want 2", len(m.collections))
	}
	if cmd == nil {
		t.Fatal("expected a selection command")
	}
	msg := cmd()
	sel, ok := msg.(CollectionSelectedMsg)
	if !ok {
		t.Fatalf("cmd produced %T, want CollectionSelectedMsg", msg)
	}
	if sel.Collection.Name != "notes" {
		t.Errorf("selected %q, want notes", sel.Collection.Name)
	}
}

func TestTabCyclesPanes(t *testing.T) {
	m := testModel(t)
	if m.focused != FocusSidebar {
		t.Fatal("initial focus should be the sidebar")
	}

	type stop struct {
		focused FocusedPane
		pane    mainPane
	}
	want := []stop{
		{FocusMain, paneDetail},
		{FocusMain, paneSearch},
		{FocusMain, paneViewer},
		{FocusSidebar, paneViewer}, // pane untouched when sidebar takes focus
	}
	for i, w := range want {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = updated.(Model)
		if m.focused != w.focused || (w.focused == FocusMain && m.pane != w.pane) {
			t.Fatalf("tab %d: focused=%d pane=%d, want focused=%d pane=%d",
				i+1, m.focused, m.pane, w.focused, w.pane)
		}
		if w.focused == FocusMain && w.pane == paneSearch && !m.searchInput.Focused() {
			t.Error("landing on the search pane should focus its input")
		}
	}
}

func TestShiftTabReversesCycle(t *testing.T) {
	m := testModel(t)

	// One step back from the sidebar wraps to the viewer.
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.focused != FocusMain || m.pane != paneViewer {
		t.Fatalf("shift+tab from sidebar: focused=%d pane=%d, want viewer", m.focused, m.pane)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.pane != paneSearch {
		t.Fatalf("shift+tab from viewer: pane=%d, want search", m.pane)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.pane != paneDetail {
		t.Fatalf("shift+tab from search: pane=%d, want detail", m.pane)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = updated.(Model)
	if m.focused != FocusSidebar {
		t.Fatalf("shift+tab from detail should return to the sidebar")
	}
}

func TestSidebarNavigationBounds(t *testing.T) {
	m := testModel(t)
	m.collections = sampleCollections()

	updated, _ := m.Update(keyRune('k'))
	m = updated.(Model)
	if m.sidebarIndex != 0 {
		t.Error("moving up at the top should stay at 0")
	}

	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	if m.sidebarIndex != 1 {
		t.Errorf("sidebarIndex = %d, want 1 (clamped)", m.sidebarIndex)
	}
}

func TestSlashOpensSearch(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(keyRune('/'))
	m = updated.(Model)

	if m.pane != paneSearch {
		t.Error("'/' should switch to the search pane")
	}
	if m.focused != FocusMain {
		t.Error("'/' should focus the main panel")
	}
	if !m.searchInput.Focused() {
		t.Error("'/' should focus the search input")
	}
}

func TestAddModalValidation(t *testing.T) {
	m := testModel(t)

	updated, _ := m.Update(keyRune('a'))
	m = updated.(Model)
	if m.modal.kind != modalAdd {
		t.Fatal("'a' should open the add dialog")
	}

	// Submitting with an empty name must not close the dialog.
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd != nil {
		t.Error("invalid form should not produce a command")
	}
	if m.modal.kind != modalAdd {
		t.Error("invalid form should keep the dialog open")
	}
	if m.modal.errMsg == "" {
		t.Error("invalid form should set an error message")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.modal.kind != modalNone {
		t.Error("esc should close the dialog")
	}
}

func TestDeleteModalSubmit(t *testing.T) {
	m := testModel(t)
	m.collections = sampleCollections()
	m.sidebarIndex = 1

	updated, _ := m.Update(keyRune('d'))
	m = updated.(Model)
	if m.modal.kind != modalDelete {
		t.Fatal("'d' should open the delete dialog")
	}
	if m.modal.target != "wiki" {
		t.Errorf("delete target = %q, want wiki", m.modal.target)
	}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.modal.kind != modalNone {
		t.Error("submit should close the dialog")
	}
	if cmd == nil {
		t.Error("submit should produce the removal command")
	}
	if m.busy == "" {
		t.Error("submit should set the busy indicator")
	}
}

func TestSearchDoneFocusesResults(t *testing.T) {
	m := testModel(t)
	m.pane = paneSearch
	m.focused = FocusMain
	m.searchInput.Focus()

	results := []mmqcli.SearchResult{
		{Rank: 1, Score: 0.87, Collection: "notes", Path: "a.md", Snippet: "alpha"},
		{Rank: 2, Score: 0.42, Collection: "notes", Path: "b.md"},
	}
	updated, _ := m.Update(SearchDoneMsg{Query: "alpha", Mode: mmqcli.ModeFTS, Results: results})
	m = updated.(Model)

	if !m.resultsFocus {
		t.Error("results should receive focus after a search")
	}
	if m.searchInput.Focused() {
		t.Error("search input should blur when results arrive")
	}
	if m.resultIndex != 0 {
		t.Error("result cursor should reset")
	}
}

func TestSearchModeCycles(t *testing.T) {
	m := testModel(t)
	m.pane = paneSearch
	m.focused = FocusMain

	seen := map[mmqcli.SearchMode]bool{m.searchMode: true}
	for i := 0; i < 2; i++ {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
		m = updated.(Model)
		seen[m.searchMode] = true
	}
	if len(seen) != 3 {
		t.Errorf("ctrl+t cycled through %d modes, want 3", len(seen))
	}
}

func TestErrorMsgClearsBusy(t *testing.T) {
	m := testModel(t)
	m.busy = "searching"

	updated, _ := m.Update(ErrorMsg{Err: mmqcli.ErrNotFound})
	m = updated.(Model)

	if m.busy != "" {
		t.Error("an error should clear the busy indicator")
	}
	if m.err == nil {
		t.Error("the error should be kept for the status bar")
	}
}

func TestMutationReloadsCollections(t *testing.T) {
	m := testModel(t)

	updated, cmd := m.Update(MutationDoneMsg{Info: "created 'notes'"})
	m = updated.(Model)

	if m.info != "created 'notes'" {
		t.Errorf("info = %q", m.info)
	}
	if cmd == nil {
		t.Error("a finished mutation should trigger a collection reload")
	}
}

func TestQuitInSearchInputNeedsCtrlC(t *testing.T) {
	m := testModel(t)
	m.pane = paneSearch
	m.focused = FocusMain
	m.searchInput.Focus()

	updated, cmd := m.Update(keyRune('q'))
	m = updated.(Model)
	if cmd != nil {
		if _, quitting := cmd().(tea.QuitMsg); quitting {
			t.Fatal("'q' while typing must not quit")
		}
	}
	if m.searchInput.Value() != "q" {
		t.Errorf("search input = %q, want %q", m.searchInput.Value(), "q")
	}
}

func TestPreviewToggle(t *testing.T) {
	m := testModel(t)
	m.collections = sampleCollections()
	m.current = &m.collections[0]
	m.focused = FocusMain
	m.pane = paneViewer
	m.viewerDoc = &mmqcli.DocumentDetail{DocID: "d1", Collection: "notes", Path: "a.md", Title: "A"}

	var opened string
	m.openBrowserFn = func(u string) { opened = u }

	updated, cmd := m.Update(keyRune('p'))
	m = updated.(Model)
	if !m.previewOn {
		t.Fatal("'p' should start the preview")
	}
	if cmd == nil {
		t.Error("starting the preview should produce commands")
	}
	if opened == "" {
		t.Error("browser hook not invoked")
	}

	updated, _ = m.Update(PreviewStartedMsg{URL: "http://127.0.0.1:8383/"})
	m = updated.(Model)
	if !strings.Contains(m.info, "http://127.0.0.1:8383/") {
		t.Errorf("info = %q, want preview URL", m.info)
	}

	updated, _ = m.Update(keyRune('p'))
	m = updated.(Model)
	if m.previewOn {
		t.Error("second 'p' should stop the preview")
	}
}

func TestListWindow(t *testing.T) {
	cases := []struct {
		index, total, visible, start, end int
	}{
		{0, 10, 4, 0, 4},   // top of a long list
		{3, 10, 4, 0, 4},   // last fully visible row
		{4, 10, 4, 1, 5},   // scrolled by one
		{9, 10, 4, 6, 10},  // bottom
		{0, 2, 4, 0, 2},    // list shorter than the window
		{5, 10, 0, 5, 6},   // degenerate height still shows the cursor
	}
	for _, tc := range cases {
		start, end := listWindow(tc.index, tc.total, tc.visible)
		if start != tc.start || end != tc.end {
			t.Errorf("listWindow(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tc.index, tc.total, tc.visible, start, end, tc.start, tc.end)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("hello world", 6); got != "hello…" {
		t.Errorf("truncate long = %q", got)
	}
}
