package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MMQ.Executable != "mmq" {
		t.Errorf("executable = %q, want default", cfg.MMQ.Executable)
	}
	if cfg.Preview.Port != 8383 {
		t.Errorf("port = %d, want 8383", cfg.Preview.Port)
	}

	// Defaults must have been written back as a template.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config not written: %v", err)
	}
}

func TestLoad_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
mmq:
  executable: /usr/local/bin/mmq
  timeout: 5s
preview:
  port: 9000
  debounce: 150ms
tui:
  sidebar_width: 40
  search_limit: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MMQ.Executable != "/usr/local/bin/mmq" {
		t.Errorf("executable = %q", cfg.MMQ.Executable)
	}
	if cfg.MMQ.Timeout.Std() != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", cfg.MMQ.Timeout.Std())
	}
	if cfg.Preview.Debounce.Std() != 150*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Preview.Debounce.Std())
	}
	if cfg.TUI.SidebarWidth != 40 || cfg.TUI.SearchLimit != 20 {
		t.Errorf("tui = %+v", cfg.TUI)
	}
	// Sections absent from the file keep defaults.
	if cfg.History.MaxEntries != 200 {
		t.Errorf("history.max_entries = %d, want default 200", cfg.History.MaxEntries)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("MMV_TEST_BIN", "/opt/mmq")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mmq:\n  executable: ${MMV_TEST_BIN}\n  timeout: 10s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MMQ.Executable != "/opt/mmq" {
		t.Errorf("executable = %q, want env-expanded value", cfg.MMQ.Executable)
	}
}

func TestLoad_InvalidPortRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("preview:\n  port: 123456\n  debounce: 200ms\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for out-of-range port")
	}
}

func TestLoad_BadDurationRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mmq:\n  timeout: soon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("err = %v, want invalid duration", err)
	}
}

func TestValidate_SidebarTooNarrow(t *testing.T) {
	cfg := Default()
	cfg.TUI.SidebarWidth = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for narrow sidebar")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got, err := ExpandPath("~/x/y.db")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x/y.db") {
		t.Errorf("expanded = %q", got)
	}
	plain, _ := ExpandPath("/abs/path")
	if plain != "/abs/path" {
		t.Errorf("plain = %q", plain)
	}
}
