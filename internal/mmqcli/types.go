package mmqcli

import "time"

// Collection describes one indexed collection as reported by the tool.
type Collection struct {
	Name      string
	Path      string
	Mask      string
	DocCount  int
	UpdatedAt time.Time
}

// SearchResult is one ranked hit from search/vsearch/query.
type SearchResult struct {
	Rank       int
	Score      float64
	Collection string
	Path       string
	Title      string
	Snippet    string
}

// DocumentEntry is one row of a document listing.
type DocumentEntry struct {
	DocID      string
	Collection string
	Path       string
	Title      string
	ModifiedAt time.Time
}

// DocumentDetail is a full document: the listing header plus content.
type DocumentDetail struct {
	DocID      string
	Collection string
	Path       string
	Title      string
	ModifiedAt time.Time
	Content    string
}

// Status summarizes the tool's index state.
type Status struct {
	DBPath         string
	CacheDir       string
	TotalDocuments int
	NeedsEmbedding int
	Collections    []string
}

// SearchMode selects which search subcommand is invoked.
type SearchMode string

const (
	ModeFTS    SearchMode = "fts"
	ModeVector SearchMode = "vector"
	ModeHybrid SearchMode = "hybrid"
)

// SearchOptions controls a search invocation.
type SearchOptions struct {
	Mode       SearchMode
	Limit      int
	MinScore   float64
	Collection string
}
