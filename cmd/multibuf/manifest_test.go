package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/multibuf/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "one\ntwo\nthree\n")
	path := writeFile(t, dir, "m.toml",
		"[[excerpt]]\nfile = \"a.txt\"\nstart_line = 0\nend_line = 2\ncontext = 1\n")

	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("loadManifest failed: %v", err)
	}
	if len(m.Excerpts) != 1 {
		t.Fatalf("expected 1 excerpt, got %d", len(m.Excerpts))
	}
	e := m.Excerpts[0]
	if e.File != filepath.Join(dir, "a.txt") {
		t.Errorf("expected resolved path, got %q", e.File)
	}
	if e.StartLine != 0 || e.EndLine != 2 || e.Context != 1 {
		t.Errorf("unexpected excerpt %+v", e)
	}
}

func TestLoadManifestRejectsEmptyRange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.toml",
		"[[excerpt]]\nfile = \"a.txt\"\nstart_line = 3\nend_line = 3\n")

	if _, err := loadManifest(path); err == nil {
		t.Error("expected error for empty line range")
	}
}

func TestComposeAndRender(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a0\na1\na2\na3\n")
	writeFile(t, dir, "b.txt", "b0\nb1\n")
	path := writeFile(t, dir, "m.toml", strings.Join([]string{
		"[[excerpt]]",
		`file = "a.txt"`,
		"start_line = 1",
		"end_line = 3",
		"",
		"[[excerpt]]",
		`file = "b.txt"`,
		"start_line = 0",
		"end_line = 1",
	}, "\n"))

	m, err := loadManifest(path)
	if err != nil {
		t.Fatalf("loadManifest failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := compose(m, config.Default(), logger)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if got := ws.aggregate.Snapshot().Text(); got != "a1\na2\nb0\n" {
		t.Errorf("expected aggregate %q, got %q", "a1\na2\nb0\n", got)
	}

	var out strings.Builder
	render(&out, ws)
	want := strings.Join([]string{
		filepath.Join(dir, "a.txt") + ":2: a1",
		filepath.Join(dir, "a.txt") + ":3: a2",
		"--",
		filepath.Join(dir, "b.txt") + ":1: b0",
		"",
	}, "\n")
	if out.String() != want {
		t.Errorf("expected render output %q, got %q", want, out.String())
	}
}
