package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/dyike/mmv/internal/mmqcli"
)

// loadCollections fetches the collection listing.
func (m Model) loadCollections() tea.Msg {
	cols, err := m.client.ListCollections(m.ctx)
	if err != nil {
		return ErrorMsg{Err: err}
	}
	return CollectionsLoadedMsg{Collections: cols}
}

// loadDocuments fetches the document listing for one collection.
func (m Model) loadDocuments(collection string) tea.Cmd {
	return func() tea.Msg {
		docs, err := m.client.ListDocuments(m.ctx, collection)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return DocumentsLoadedMsg{Collection: collection, Documents: docs}
	}
}

// openDocument fetches a document and renders it for the viewport. The
// render happens off the event loop, akin to an async preview render.
func (m Model) openDocument(docID string, width int) tea.Cmd {
	return func() tea.Msg {
		doc, err := m.client.GetDocument(m.ctx, docID)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		_ = m.hist.TouchDocument(doc.DocID, doc.Collection, doc.Path, doc.Title)

		rendered := renderForTerminal(doc.Content, width)
		return DocumentOpenedMsg{Doc: doc, Rendered: rendered}
	}
}

// renderForTerminal renders markdown with glamour, falling back to the raw
// text when rendering fails.
func renderForTerminal(content string, width int) string {
	safeWidth := width - 4
	if safeWidth < 10 {
		safeWidth = 80
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(safeWidth),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

// doSearch runs a search and records it in history.
func (m Model) doSearch(query string, mode mmqcli.SearchMode, collection string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.client.Search(m.ctx, query, mmqcli.SearchOptions{
			Mode:       mode,
			Limit:      m.searchLimit,
			Collection: collection,
		})
		if err != nil {
			return ErrorMsg{Err: err}
		}

		_ = m.hist.AddSearch(query, string(mode), collection, len(results))
		_ = m.hist.Prune(m.historyMax)

		return SearchDoneMsg{Query: query, Mode: mode, Results: results}
	}
}

// loadRecentSearches fetches stored search history.
func (m Model) loadRecentSearches() tea.Msg {
	entries, err := m.hist.RecentSearches(10)
	if err != nil {
		return ErrorMsg{Err: err}
	}
	return RecentSearchesMsg{Entries: entries}
}

// loadRecentDocuments fetches stored recently opened documents.
func (m Model) loadRecentDocuments() tea.Msg {
	entries, err := m.hist.RecentDocuments(10)
	if err != nil {
		return ErrorMsg{Err: err}
	}
	return RecentDocumentsMsg{Entries: entries}
}

// loadStatus fetches the tool's index status.
func (m Model) loadStatus() tea.Msg {
	st, err := m.client.Status(m.ctx)
	if err != nil {
		return ErrorMsg{Err: err}
	}
	return StatusLoadedMsg{Status: st}
}

// createCollection registers a collection with the tool.
func (m Model) createCollection(name, path, mask string) tea.Cmd {
	return func() tea.Msg {
		indexed, err := m.client.CreateCollection(m.ctx, name, path, mask, true)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		info := fmt.Sprintf("created '%s'", name)
		if indexed >= 0 {
			info = fmt.Sprintf("created '%s' (%d documents)", name, indexed)
		}
		return MutationDoneMsg{Info: info}
	}
}

// renameCollection renames a collection.
func (m Model) renameCollection(oldName, newName string) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.RenameCollection(m.ctx, oldName, newName); err != nil {
			return ErrorMsg{Err: err}
		}
		return MutationDoneMsg{Info: fmt.Sprintf("renamed '%s' to '%s'", oldName, newName)}
	}
}

// removeCollection removes a collection.
func (m Model) removeCollection(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.client.RemoveCollection(m.ctx, name); err != nil {
			return ErrorMsg{Err: err}
		}
		return MutationDoneMsg{Info: fmt.Sprintf("removed '%s'", name)}
	}
}

// reindexCollection asks the tool to reindex a collection.
func (m Model) reindexCollection(name string) tea.Cmd {
	return func() tea.Msg {
		indexed, err := m.client.UpdateIndex(m.ctx, name)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		info := "index updated"
		if indexed >= 0 {
			info = fmt.Sprintf("indexed %d documents", indexed)
		}
		return MutationDoneMsg{Info: info}
	}
}

// embedCollection asks the tool to generate embeddings for a collection so
// vector search has something to rank.
func (m Model) embedCollection(name string) tea.Cmd {
	return func() tea.Msg {
		embedded, err := m.client.Embed(m.ctx, name)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		info := "embeddings updated"
		if embedded >= 0 {
			info = fmt.Sprintf("embedded %d documents", embedded)
		}
		return MutationDoneMsg{Info: info}
	}
}

// openEditor opens $EDITOR on the document's file and reports back when it
// exits.
func openEditor(path string) tea.Cmd {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}
	c := exec.Command(editor, path)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return EditorFinishedMsg{Err: err}
	})
}

// openBrowser opens url with the platform opener. Failures are silent; the
// URL stays visible in the status bar.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

// documentDiskPath resolves a document's absolute on-disk location from its
// collection root and relative path.
func documentDiskPath(collectionRoot, relPath string) string {
	return filepath.Join(collectionRoot, relPath)
}
