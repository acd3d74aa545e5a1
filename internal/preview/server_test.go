package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New("127.0.0.1:0", 50*time.Millisecond, testLogger())
	ts := httptest.NewServer(s.router())
	t.Cleanup(ts.Close)
	return s, ts
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestIndexServesShell(t *testing.T) {
	_, ts := testServer(t)

	status, body := getBody(t, ts.URL+"/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "/version") || !strings.Contains(body, "/doc") {
		t.Error("shell page missing polling script")
	}
}

func TestDocRendersMarkdown(t *testing.T) {
	s, ts := testServer(t)

	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("# Hello\n\nSome *emphasis* here.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDocument(path, "note.md"); err != nil {
		t.Fatal(err)
	}

	status, body := getBody(t, ts.URL+"/doc")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "<em>emphasis</em>") {
		t.Errorf("rendered body = %q", body)
	}
}

func TestDocWithoutSelection(t *testing.T) {
	_, ts := testServer(t)

	status, body := getBody(t, ts.URL+"/doc")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "No document selected") {
		t.Errorf("body = %q", body)
	}
}

func TestDocMissingFile(t *testing.T) {
	s, ts := testServer(t)

	if err := s.SetDocument(filepath.Join(t.TempDir(), "gone.md"), "gone.md"); err != nil {
		t.Fatal(err)
	}
	status, _ := getBody(t, ts.URL+"/doc")
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}

// The TUI event loop switches documents while Run owns the watcher on its
// own goroutine; this must stay safe under the race detector.
func TestSetDocumentDuringRun(t *testing.T) {
	dir := t.TempDir()
	s := New("127.0.0.1:0", 50*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 50; i++ {
		path := filepath.Join(dir, fmt.Sprintf("doc%d.md", i%3))
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := s.SetDocument(path, "doc"); err != nil {
			t.Fatal(err)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop on cancel")
	}

	if v := s.Version(); v < 50 {
		t.Errorf("version = %d, want >= 50", v)
	}
}

func TestVersionBumpsOnSetDocument(t *testing.T) {
	s, ts := testServer(t)

	readVersion := func() int64 {
		t.Helper()
		_, body := getBody(t, ts.URL+"/version")
		var v struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			t.Fatal(err)
		}
		return v.Version
	}

	before := readVersion()

	path := filepath.Join(t.TempDir(), "a.md")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDocument(path, "a.md"); err != nil {
		t.Fatal(err)
	}

	if after := readVersion(); after <= before {
		t.Errorf("version %d -> %d, want increase", before, after)
	}
}
