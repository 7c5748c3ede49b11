package tools

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg,
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZip(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	arc := filepath.Join(dir, "bundle.zip")
	writeZip(t, arc, map[string]string{
		"readme.md":    "# hi",
		"sub/note.txt": "note",
	})

	res, err := ts.extractArchive(context.Background(), map[string]any{"archive_path": arc})
	if err != nil {
		t.Fatal(err)
	}
	// destination 省略時はアーカイブ名の stem ディレクトリ
	dest := filepath.Join(dir, "bundle")
	if res.Data["destination"] != dest {
		t.Errorf("destination = %q, want %q", res.Data["destination"], dest)
	}
	data, err := os.ReadFile(filepath.Join(dest, "sub", "note.txt"))
	if err != nil || string(data) != "note" {
		t.Errorf("extracted file content = %q, err = %v", data, err)
	}
	if res.Data["total_files"] != 2 {
		t.Errorf("total_files = %v", res.Data["total_files"])
	}
}

func TestExtractTarGz(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	arc := filepath.Join(dir, "bundle.tar.gz")
	writeTarGz(t, arc, map[string]string{"data.txt": "payload"})

	dest := filepath.Join(dir, "out")
	res, err := ts.extractArchive(context.Background(), map[string]any{
		"archive_path": arc, "destination": dest,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["destination"] != dest {
		t.Errorf("destination = %q", res.Data["destination"])
	}
	data, err := os.ReadFile(filepath.Join(dest, "data.txt"))
	if err != nil || string(data) != "payload" {
		t.Errorf("extracted content = %q, err = %v", data, err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	ts := newTestToolset(t)
	arc := filepath.Join(t.TempDir(), "file.rar")
	if err := os.WriteFile(arc, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ts.extractArchive(context.Background(), map[string]any{"archive_path": arc})
	if err == nil || !strings.Contains(err.Error(), "unsupported archive format") {
		t.Errorf("error = %v", err)
	}
}

func TestExtractZipSlip(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	arc := filepath.Join(dir, "evil.zip")
	writeZip(t, arc, map[string]string{"../escape.txt": "bad"})

	_, err := ts.extractArchive(context.Background(), map[string]any{"archive_path": arc})
	if err == nil || !strings.Contains(err.Error(), "illegal path") {
		t.Errorf("error = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "..", "escape.txt")); statErr == nil {
		t.Error("zip slip escaped the destination")
	}
}
