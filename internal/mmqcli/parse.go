package mmqcli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The tool prints records as a non-indented header line followed by
// two-space-indented "Key: value" lines, records separated by blank lines.
// Parsing is line-anchored; anything between records that matches nothing
// is skipped.
var (
	collectionRe = regexp.MustCompile(`^Collection: (.+)$`)
	fieldRe      = regexp.MustCompile(`^  ([A-Za-z ]+): (.*)$`)
	resultRe     = regexp.MustCompile(`^\[(\d+)\] Score: ([0-9.]+) \| (.+)$`)
	resultAttrRe = regexp.MustCompile(`^    ([A-Za-z]+): (.*)$`)
	docEntryRe   = regexp.MustCompile(`^(\S+) (\S+/.+)$`)
	foundRe      = regexp.MustCompile(`^Found (\d+) result`)
	createdRe    = regexp.MustCompile(`^Created collection '(.+)' at (.+) \(mask: (.+)\)$`)
	renamedRe    = regexp.MustCompile(`^Renamed collection '(.+)' to '(.+)'$`)
	// Not line-start anchored: the tool prints its "Continue? (y/N): "
	// prompt without a newline, so the confirmation can share its line.
	removedRe = regexp.MustCompile(`Removed collection '(.+)'$`)
	indexedRe    = regexp.MustCompile(`^Indexed (\d+) documents$`)
	embeddedRe   = regexp.MustCompile(`^Embedded (\d+) document`)
	statusListRe = regexp.MustCompile(`^  - (.+)$`)
)

// parseTime is lenient: a timestamp that fails to parse leaves the zero
// time rather than dropping the whole record.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// splitCollectionPath splits "collection/rel/path.md" at the first slash.
func splitCollectionPath(s string) (collection, path string, ok bool) {
	i := strings.Index(s, "/")
	if i <= 0 || i == len(s)-1 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// ParseCollections parses `mmq collection list` text output. The second
// return value counts records dropped for missing required fields.
func ParseCollections(out string) ([]Collection, int) {
	var (
		cols    []Collection
		cur     *Collection
		skipped int
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Name == "" || cur.Path == "" {
			skipped++
		} else {
			cols = append(cols, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(out, "\n") {
		if m := collectionRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Collection{Name: strings.TrimSpace(m[1])}
			continue
		}
		if cur == nil {
			continue
		}
		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[2])
		switch m[1] {
		case "Path":
			cur.Path = val
		case "Mask":
			cur.Mask = val
		case "Documents":
			cur.DocCount, _ = strconv.Atoi(val)
		case "Updated":
			cur.UpdatedAt = parseTime(val)
		}
	}
	flush()
	return cols, skipped
}

// ParseSearchResults parses search/vsearch/query text output. The leading
// "Found N result(s)" header and "No results found" are both handled.
func ParseSearchResults(out string) ([]SearchResult, int) {
	var (
		results []SearchResult
		cur     *SearchResult
		skipped int
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.Path == "" {
			skipped++
		} else {
			results = append(results, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(out, "\n") {
		if m := resultRe.FindStringSubmatch(line); m != nil {
			flush()
			rank, _ := strconv.Atoi(m[1])
			score, _ := strconv.ParseFloat(m[2], 64)
			cur = &SearchResult{Rank: rank, Score: score}
			if col, path, ok := splitCollectionPath(strings.TrimSpace(m[3])); ok {
				cur.Collection = col
				cur.Path = path
			}
			continue
		}
		if cur == nil {
			continue
		}
		m := resultAttrRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "Title":
			cur.Title = strings.TrimSpace(m[2])
		case "Snippet":
			cur.Snippet = strings.TrimSpace(m[2])
		}
	}
	flush()
	return results, skipped
}

// ParseDocumentList parses `mmq ls` text output.
func ParseDocumentList(out string) ([]DocumentEntry, int) {
	var (
		docs    []DocumentEntry
		cur     *DocumentEntry
		skipped int
	)

	flush := func() {
		if cur == nil {
			return
		}
		if cur.DocID == "" || cur.Path == "" {
			skipped++
		} else {
			docs = append(docs, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(out, "\n") {
		if m := docEntryRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &DocumentEntry{DocID: m[1]}
			if col, path, ok := splitCollectionPath(m[2]); ok {
				cur.Collection = col
				cur.Path = path
			}
			continue
		}
		if cur == nil {
			continue
		}
		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[2])
		switch m[1] {
		case "Title":
			cur.Title = val
		case "Modified":
			cur.ModifiedAt = parseTime(val)
		}
	}
	flush()
	return docs, skipped
}

// ParseDocumentDetail parses `mmq get <docid>` text output: a header block
// of "Key: value" lines, a blank line, then raw content to EOF.
func ParseDocumentDetail(out string) (*DocumentDetail, error) {
	lines := strings.Split(out, "\n")
	doc := &DocumentDetail{}

	i := 0
	for ; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			break
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		switch key {
		case "DocID":
			doc.DocID = strings.TrimSpace(val)
		case "Collection":
			doc.Collection = strings.TrimSpace(val)
		case "Path":
			doc.Path = strings.TrimSpace(val)
		case "Title":
			doc.Title = strings.TrimSpace(val)
		case "Modified":
			doc.ModifiedAt = parseTime(val)
		}
	}

	if doc.DocID == "" {
		return nil, fmt.Errorf("document detail: missing DocID header")
	}

	doc.Content = strings.Join(lines[i:], "\n")
	return doc, nil
}

// ParseStatus parses `mmq status` text output.
func ParseStatus(out string) (Status, error) {
	var (
		st     Status
		inList bool
		seen   bool
	)

	for _, line := range strings.Split(out, "\n") {
		if inList {
			if m := statusListRe.FindStringSubmatch(line); m != nil {
				st.Collections = append(st.Collections, m[1])
				continue
			}
		}
		if strings.TrimSpace(line) == "Collections:" {
			inList = true
			continue
		}
		key, val, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		switch key {
		case "Database":
			st.DBPath = val
			seen = true
		case "Cache Dir":
			st.CacheDir = val
		case "Total Documents":
			st.TotalDocuments, _ = strconv.Atoi(val)
		case "Needs Embedding":
			st.NeedsEmbedding, _ = strconv.Atoi(val)
		}
	}

	if !seen {
		return Status{}, fmt.Errorf("status: missing Database header")
	}
	return st, nil
}

// ParseResultCount extracts N from a "Found N result(s)" header, or 0 when
// the tool printed "No results found".
func ParseResultCount(out string) int {
	for _, line := range strings.Split(out, "\n") {
		if m := foundRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return 0
}

// ParseIndexedCount extracts the document count from an "Indexed N
// documents" confirmation, returning -1 when absent.
func ParseIndexedCount(out string) int {
	for _, line := range strings.Split(out, "\n") {
		if m := indexedRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
		if m := embeddedRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n
		}
	}
	return -1
}

// confirmCreated verifies a "Created collection ..." confirmation line.
func confirmCreated(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		if m := createdRe.FindStringSubmatch(line); m != nil && m[1] == name {
			return true
		}
	}
	return false
}

// confirmRenamed verifies a "Renamed collection ..." confirmation line.
func confirmRenamed(out, oldName, newName string) bool {
	for _, line := range strings.Split(out, "\n") {
		if m := renamedRe.FindStringSubmatch(line); m != nil && m[1] == oldName && m[2] == newName {
			return true
		}
	}
	return false
}

// confirmRemoved verifies a "Removed collection ..." confirmation line.
func confirmRemoved(out, name string) bool {
	for _, line := range strings.Split(out, "\n") {
		if m := removedRe.FindStringSubmatch(line); m != nil && m[1] == name {
			return true
		}
	}
	return false
}
