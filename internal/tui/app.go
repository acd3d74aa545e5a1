// Package tui implements the interactive terminal front-end: a sidebar of
// collections, a detail/search/viewer main panel, and modal management
// dialogs, all driven by one bubbletea model.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dyike/mmv/internal/config"
	"github.com/dyike/mmv/internal/history"
	"github.com/dyike/mmv/internal/mmqcli"
	"github.com/dyike/mmv/internal/preview"
)

// FocusedPane represents which pane has focus.
type FocusedPane int

const (
	FocusSidebar FocusedPane = iota
	FocusMain
)

// mainPane selects what the main panel shows.
type mainPane int

const (
	paneDetail mainPane = iota
	paneSearch
	paneViewer
)

const stateLastCollection = "last_collection"

// Model is the top-level TUI state.
type Model struct {
	// Components
	viewport    viewport.Model
	searchInput textinput.Model

	// Layout
	width   int
	height  int
	ready   bool
	focused FocusedPane
	pane    mainPane

	// Sidebar data
	collections  []mmqcli.Collection
	sidebarIndex int
	current      *mmqcli.Collection

	// Detail data
	documents []mmqcli.DocumentEntry
	docIndex  int

	// Search data
	searchMode   mmqcli.SearchMode
	results      []mmqcli.SearchResult
	resultIndex  int
	resultsFocus bool
	recent       []history.SearchEntry
	recentDocs   []history.RecentDocument

	// Viewer data
	viewerDoc      *mmqcli.DocumentDetail
	viewerRendered string

	// Modal
	modal form

	// Preview
	previewSrv    *preview.Server
	previewCancel context.CancelFunc
	previewOn     bool
	previewAddr   string
	openBrowserFn func(string)

	// Status
	busy string
	info string
	err  error

	// Dependencies
	ctx         context.Context
	client      *mmqcli.Client
	hist        *history.Store
	logger      *slog.Logger
	cfg         *config.Config
	sidebarW    int
	searchLimit int
	historyMax  int
}

// NewModel creates the TUI model.
func NewModel(ctx context.Context, client *mmqcli.Client, hist *history.Store, cfg *config.Config, logger *slog.Logger) Model {
	in := textinput.New()
	in.Placeholder = "Search query…"
	in.CharLimit = 0

	return Model{
		searchInput:   in,
		focused:       FocusSidebar,
		pane:          paneDetail,
		searchMode:    mmqcli.ModeFTS,
		ctx:           ctx,
		client:        client,
		hist:          hist,
		logger:        logger,
		cfg:           cfg,
		sidebarW:      cfg.TUI.SidebarWidth,
		searchLimit:   cfg.TUI.SearchLimit,
		historyMax:    cfg.History.MaxEntries,
		previewAddr:   cfg.Preview.Address(),
		openBrowserFn: openBrowser,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.loadCollections,
		m.loadRecentSearches,
		m.loadRecentDocuments,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		mainW, mainH := m.mainSize()
		m.viewport = viewport.New(mainW, mainH)
		if m.viewerRendered != "" {
			m.viewport.SetContent(m.viewerRendered)
		}
		m.searchInput.Width = mainW - 6

	case CollectionsLoadedMsg:
		m.busy = ""
		m.err = nil
		m.collections = msg.Collections
		if m.sidebarIndex >= len(m.collections) {
			m.sidebarIndex = max(0, len(m.collections)-1)
		}
		// Restore the previously selected collection, else the first.
		if m.current == nil && len(m.collections) > 0 {
			last, _ := m.hist.GetState(stateLastCollection)
			idx := 0
			for i, c := range m.collections {
				if c.Name == last {
					idx = i
					break
				}
			}
			m.sidebarIndex = idx
			return m, m.selectCollection(m.collections[idx])
		}
		// Keep the current selection pointing at fresh data.
		if m.current != nil {
			for i, c := range m.collections {
				if c.Name == m.current.Name {
					cur := c
					m.current = &cur
					m.sidebarIndex = i
					return m, nil
				}
			}
			// Current collection disappeared (renamed or removed).
			m.current = nil
			m.documents = nil
			if len(m.collections) > 0 {
				m.sidebarIndex = 0
				return m, m.selectCollection(m.collections[0])
			}
		}

	case CollectionSelectedMsg:
		col := msg.Collection
		m.current = &col
		m.documents = nil
		m.docIndex = 0
		m.busy = "loading documents"
		_ = m.hist.SetState(stateLastCollection, col.Name)
		return m, m.loadDocuments(col.Name)

	case DocumentsLoadedMsg:
		m.busy = ""
		if m.current != nil && msg.Collection == m.current.Name {
			m.documents = msg.Documents
			if m.docIndex >= len(m.documents) {
				m.docIndex = max(0, len(m.documents)-1)
			}
		}

	case DocumentOpenedMsg:
		m.busy = ""
		m.viewerDoc = msg.Doc
		m.viewerRendered = msg.Rendered
		m.pane = paneViewer
		m.focused = FocusMain
		m.viewport.SetContent(m.viewerRendered)
		m.viewport.GotoTop()
		if m.previewOn && m.previewSrv != nil {
			if path, ok := m.viewerDiskPath(); ok {
				if err := m.previewSrv.SetDocument(path, msg.Doc.Title); err != nil {
					m.err = err
				}
			}
		}
		return m, m.loadRecentDocuments

	case SearchDoneMsg:
		m.busy = ""
		m.err = nil
		m.results = msg.Results
		m.resultIndex = 0
		m.resultsFocus = len(m.results) > 0
		if m.resultsFocus {
			m.searchInput.Blur()
		}
		m.info = fmt.Sprintf("%d result(s) for %q", len(msg.Results), msg.Query)
		return m, m.loadRecentSearches

	case RecentSearchesMsg:
		m.recent = msg.Entries

	case RecentDocumentsMsg:
		m.recentDocs = msg.Entries

	case StatusLoadedMsg:
		m.busy = ""
		m.err = nil
		m.info = fmt.Sprintf("index: %d document(s) in %d collection(s), %d pending embedding",
			msg.Status.TotalDocuments, len(msg.Status.Collections), msg.Status.NeedsEmbedding)

	case MutationDoneMsg:
		m.busy = ""
		m.info = msg.Info
		m.err = nil
		return m, m.loadCollections

	case PreviewStartedMsg:
		m.info = "preview at " + msg.URL

	case PreviewStoppedMsg:
		m.previewOn = false

	case EditorFinishedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		// Reload the document; the preview watcher picks up the file
		// change on its own.
		if m.viewerDoc != nil {
			m.busy = "reloading"
			return m, m.openDocument(m.viewerDoc.DocID, m.mainWidth())
		}

	case ErrorMsg:
		m.busy = ""
		m.err = msg.Err
		if m.logger != nil {
			m.logger.Error("tui: operation failed", slog.String("error", msg.Err.Error()))
		}
	}

	return m, nil
}

// handleKeyMsg routes keyboard input: modal first, then global keys, then
// the focused pane.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.kind != modalNone {
		return m.handleModalKey(msg)
	}

	typing := m.pane == paneSearch && m.focused == FocusMain && m.searchInput.Focused()

	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "q":
		if !typing {
			return m.quit()
		}
	case "tab":
		return m.cyclePane(1)
	case "shift+tab":
		return m.cyclePane(-1)
	case "/":
		if !typing {
			m.pane = paneSearch
			m.focused = FocusMain
			m.resultsFocus = false
			m.searchInput.Focus()
			return m, m.loadRecentSearches
		}
	case "r":
		if !typing {
			m.busy = "refreshing"
			return m, m.loadCollections
		}
	case "s":
		if !typing {
			m.busy = "loading status"
			return m, m.loadStatus
		}
	}

	if m.focused == FocusSidebar {
		return m.handleSidebarKey(msg)
	}

	switch m.pane {
	case paneDetail:
		return m.handleDetailKey(msg)
	case paneSearch:
		return m.handleSearchKey(msg)
	case paneViewer:
		return m.handleViewerKey(msg)
	}
	return m, nil
}

// cyclePane steps focus through Sidebar, Detail, Search, Viewer; delta -1
// reverses.
func (m Model) cyclePane(delta int) (tea.Model, tea.Cmd) {
	pos := 0
	if m.focused == FocusMain {
		pos = int(m.pane) + 1
	}
	pos = (pos + delta + 4) % 4

	m.searchInput.Blur()
	if pos == 0 {
		m.focused = FocusSidebar
		return m, nil
	}

	m.focused = FocusMain
	m.pane = mainPane(pos - 1)
	if m.pane == paneSearch && !m.resultsFocus {
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.previewCancel != nil {
		m.previewCancel()
	}
	return m, tea.Quit
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
	case "down", "j":
		if m.sidebarIndex < len(m.collections)-1 {
			m.sidebarIndex++
		}
	case "enter":
		if m.sidebarIndex < len(m.collections) {
			m.pane = paneDetail
			return m, m.selectCollection(m.collections[m.sidebarIndex])
		}
	case "a":
		m.modal = newAddForm()
		return m, textinput.Blink
	case "R":
		if m.sidebarIndex < len(m.collections) {
			m.modal = newRenameForm(m.collections[m.sidebarIndex].Name)
			return m, textinput.Blink
		}
	case "d":
		if m.sidebarIndex < len(m.collections) {
			m.modal = newDeleteForm(m.collections[m.sidebarIndex].Name)
		}
	case "u":
		if m.sidebarIndex < len(m.collections) {
			name := m.collections[m.sidebarIndex].Name
			m.busy = "reindexing " + name
			return m, m.reindexCollection(name)
		}
	case "E":
		if m.sidebarIndex < len(m.collections) {
			name := m.collections[m.sidebarIndex].Name
			m.busy = "embedding " + name
			return m, m.embedCollection(name)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.docIndex > 0 {
			m.docIndex--
		}
	case "down", "j":
		if m.docIndex < len(m.documents)-1 {
			m.docIndex++
		}
	case "enter":
		if m.docIndex < len(m.documents) {
			m.busy = "opening document"
			return m, m.openDocument(m.documents[m.docIndex].DocID, m.mainWidth())
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+t":
		m.searchMode = nextMode(m.searchMode)
		return m, nil
	case "esc":
		if m.resultsFocus {
			m.resultsFocus = false
			m.searchInput.Focus()
			return m, textinput.Blink
		}
		m.pane = paneDetail
		m.searchInput.Blur()
		return m, nil
	}

	if m.resultsFocus {
		switch msg.String() {
		case "up", "k":
			if m.resultIndex > 0 {
				m.resultIndex--
			}
		case "down", "j":
			if m.resultIndex < len(m.results)-1 {
				m.resultIndex++
			}
		case "enter":
			if m.resultIndex < len(m.results) {
				r := m.results[m.resultIndex]
				m.busy = "opening document"
				return m, m.openSearchResult(r)
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "enter":
		query := strings.TrimSpace(m.searchInput.Value())
		if query == "" {
			return m, nil
		}
		collection := ""
		if m.current != nil {
			collection = m.current.Name
		}
		m.busy = "searching"
		return m, m.doSearch(query, m.searchMode, collection)
	case "down":
		if len(m.results) > 0 {
			m.resultsFocus = true
			m.searchInput.Blur()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pane = paneDetail
		return m, nil
	case "p":
		return m.togglePreview()
	case "e":
		if path, ok := m.viewerDiskPath(); ok {
			return m, openEditor(path)
		}
		m.err = fmt.Errorf("cannot resolve document path on disk")
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = form{}
		return m, nil
	case "tab":
		m.modal.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.modal.cycleFocus(-1)
		return m, nil
	case "enter":
		return m.submitModal()
	case "ctrl+c":
		return m.quit()
	}

	cmd := m.modal.update(msg)
	return m, cmd
}

// submitModal validates and runs the modal's mutation.
func (m Model) submitModal() (tea.Model, tea.Cmd) {
	f := m.modal

	switch f.kind {
	case modalAdd:
		if !m.modal.validate() {
			return m, nil
		}
		name, path, mask := f.value(0), f.value(1), f.value(2)
		m.modal = form{}
		m.busy = "creating " + name
		return m, m.createCollection(name, path, mask)

	case modalRename:
		if !m.modal.validate() {
			return m, nil
		}
		newName := f.value(0)
		m.modal = form{}
		m.busy = "renaming"
		return m, m.renameCollection(f.target, newName)

	case modalDelete:
		target := f.target
		m.modal = form{}
		m.busy = "removing " + target
		return m, m.removeCollection(target)
	}

	m.modal = form{}
	return m, nil
}

// selectCollection emits a selection message.
func (m Model) selectCollection(col mmqcli.Collection) tea.Cmd {
	return func() tea.Msg {
		return CollectionSelectedMsg{Collection: col}
	}
}

// openSearchResult resolves a search hit to a document and opens it. The
// hit carries collection+path, not a doc id, so the listing is consulted.
func (m Model) openSearchResult(r mmqcli.SearchResult) tea.Cmd {
	return func() tea.Msg {
		docs, err := m.client.ListDocuments(m.ctx, r.Collection)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		for _, d := range docs {
			if d.Path == r.Path {
				return m.openDocument(d.DocID, m.mainWidth())()
			}
		}
		return ErrorMsg{Err: fmt.Errorf("document %s/%s: %w", r.Collection, r.Path, mmqcli.ErrNotFound)}
	}
}

// togglePreview starts or stops the live preview server for the open
// document.
func (m Model) togglePreview() (tea.Model, tea.Cmd) {
	if m.previewOn {
		if m.previewCancel != nil {
			m.previewCancel()
			m.previewCancel = nil
		}
		m.previewOn = false
		m.info = "preview stopped"
		return m, nil
	}

	path, ok := m.viewerDiskPath()
	if !ok {
		m.err = fmt.Errorf("cannot resolve document path on disk")
		return m, nil
	}

	srv := preview.New(m.previewAddr, m.cfg.Preview.Debounce.Std(), m.logger)
	if err := srv.SetDocument(path, m.viewerDoc.Title); err != nil {
		m.err = err
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.previewSrv = srv
	m.previewCancel = cancel
	m.previewOn = true

	if m.cfg.Preview.OpenBrowser && m.openBrowserFn != nil {
		m.openBrowserFn(srv.URL())
	}

	started := func() tea.Msg {
		return PreviewStartedMsg{URL: srv.URL()}
	}
	run := func() tea.Msg {
		if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
			return ErrorMsg{Err: err}
		}
		return PreviewStoppedMsg{}
	}
	return m, tea.Batch(started, run)
}

// viewerDiskPath resolves the open document's absolute path via its
// collection's root directory.
func (m Model) viewerDiskPath() (string, bool) {
	if m.viewerDoc == nil {
		return "", false
	}
	for _, c := range m.collections {
		if c.Name == m.viewerDoc.Collection {
			return documentDiskPath(c.Path, m.viewerDoc.Path), true
		}
	}
	return "", false
}

func nextMode(mode mmqcli.SearchMode) mmqcli.SearchMode {
	switch mode {
	case mmqcli.ModeFTS:
		return mmqcli.ModeVector
	case mmqcli.ModeVector:
		return mmqcli.ModeHybrid
	default:
		return mmqcli.ModeFTS
	}
}

func (m Model) mainWidth() int {
	return m.width - m.sidebarW - 4
}

func (m Model) mainSize() (int, int) {
	return m.mainWidth(), m.height - 5
}
