package tui

import (
	"github.com/dyike/mmv/internal/history"
	"github.com/dyike/mmv/internal/mmqcli"
)

// CollectionsLoadedMsg carries a fresh collection listing.
type CollectionsLoadedMsg struct {
	Collections []mmqcli.Collection
}

// CollectionSelectedMsg indicates a collection was selected in the sidebar.
type CollectionSelectedMsg struct {
	Collection mmqcli.Collection
}

// DocumentsLoadedMsg carries the document listing of a collection.
type DocumentsLoadedMsg struct {
	Collection string
	Documents  []mmqcli.DocumentEntry
}

// DocumentOpenedMsg carries a fetched document plus its terminal rendering.
type DocumentOpenedMsg struct {
	Doc      *mmqcli.DocumentDetail
	Rendered string
}

// SearchDoneMsg carries search results for a query.
type SearchDoneMsg struct {
	Query   string
	Mode    mmqcli.SearchMode
	Results []mmqcli.SearchResult
}

// RecentSearchesMsg carries the stored search history.
type RecentSearchesMsg struct {
	Entries []history.SearchEntry
}

// RecentDocumentsMsg carries the stored recently opened documents.
type RecentDocumentsMsg struct {
	Entries []history.RecentDocument
}

// MutationDoneMsg indicates a collection mutation finished; Info is shown
// in the status bar.
type MutationDoneMsg struct {
	Info string
}

// StatusLoadedMsg carries the tool's index status.
type StatusLoadedMsg struct {
	Status mmqcli.Status
}

// PreviewStartedMsg indicates the preview server is up.
type PreviewStartedMsg struct {
	URL string
}

// PreviewStoppedMsg indicates the preview server exited.
type PreviewStoppedMsg struct{}

// EditorFinishedMsg indicates the external editor exited.
type EditorFinishedMsg struct {
	Err error
}

// ErrorMsg represents an error surfaced in the status bar.
type ErrorMsg struct {
	Err error
}
