package history

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "mmv.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchHistory(t *testing.T) {
	s := openTestStore(t)

	queries := []string{"alpha", "beta", "gamma"}
	for _, q := range queries {
		if err := s.AddSearch(q, "fts", "docs", 3); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.RecentSearches(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Query != "gamma" || entries[2].Query != "alpha" {
		t.Errorf("order = %q %q %q", entries[0].Query, entries[1].Query, entries[2].Query)
	}
	if entries[0].Mode != "fts" || entries[0].Collection != "docs" || entries[0].ResultCount != 3 {
		t.Errorf("entry = %+v", entries[0])
	}
	if entries[0].ID == "" {
		t.Error("entry ID is empty")
	}
}

func TestRecentDocumentsUpsert(t *testing.T) {
	s := openTestStore(t)

	if err := s.TouchDocument("d1", "docs", "a.md", "A"); err != nil {
		t.Fatal(err)
	}
	if err := s.TouchDocument("d2", "docs", "b.md", "B"); err != nil {
		t.Fatal(err)
	}
	// Re-opening d1 updates rather than duplicates.
	if err := s.TouchDocument("d1", "docs", "a.md", "A renamed"); err != nil {
		t.Fatal(err)
	}

	docs, err := s.RecentDocuments(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("len(docs) = %d, want 2", len(docs))
	}
	for _, d := range docs {
		if d.DocID == "d1" && d.Title != "A renamed" {
			t.Errorf("d1 title = %q, want updated", d.Title)
		}
	}
}

func TestUIState(t *testing.T) {
	s := openTestStore(t)

	if v, err := s.GetState("last_collection"); err != nil || v != "" {
		t.Errorf("unset state = %q, %v", v, err)
	}
	if err := s.SetState("last_collection", "docs"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetState("last_collection", "notes"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetState("last_collection")
	if err != nil {
		t.Fatal(err)
	}
	if v != "notes" {
		t.Errorf("state = %q, want notes", v)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 10; i++ {
		if err := s.AddSearch("q", "fts", "", i); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Prune(4); err != nil {
		t.Fatal(err)
	}
	entries, err := s.RecentSearches(100)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("len(entries) = %d, want 4", len(entries))
	}
	// The survivors are the newest ones.
	if entries[0].ResultCount != 9 {
		t.Errorf("newest survivor = %+v", entries[0])
	}
}

func TestNilStoreIsNoop(t *testing.T) {
	var s *Store

	if err := s.AddSearch("q", "fts", "", 0); err != nil {
		t.Error(err)
	}
	if entries, err := s.RecentSearches(5); err != nil || entries != nil {
		t.Errorf("entries = %v, err = %v", entries, err)
	}
	if err := s.SetState("k", "v"); err != nil {
		t.Error(err)
	}
	if v, err := s.GetState("k"); err != nil || v != "" {
		t.Errorf("v = %q, err = %v", v, err)
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}
