package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0x6b61/tesaki/internal/resolve"
)

// newTestResolver は HOME を一時ディレクトリに差し替えた Resolver を返す。
func newTestResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, "Downloads"), 0o755); err != nil {
		t.Fatal(err)
	}
	return resolve.New(resolve.Config{
		Threshold:      0.6,
		HighConfidence: 0.85,
		MaxResults:     20,
		Extensions:     []string{".md", ".txt"},
	}, nil, nil)
}

func newTestToolset(t *testing.T) *Toolset {
	t.Helper()
	return NewToolset(newTestResolver(t), 1000)
}

func TestWriteAndReadFile(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")

	res, err := ts.writeFile(context.Background(), map[string]any{
		"path":    path,
		"content": "hello\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["existed_before"] != false {
		t.Error("existed_before should be false for new file")
	}

	res, err = ts.readFile(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["content"] != "hello\n" {
		t.Errorf("content = %q", res.Data["content"])
	}
	if res.Data["truncated"] != false {
		t.Error("short file should not be truncated")
	}
}

func TestWriteFileAppend(t *testing.T) {
	ts := newTestToolset(t)
	path := filepath.Join(t.TempDir(), "log.txt")

	for _, chunk := range []string{"one\n", "two\n"} {
		if _, err := ts.writeFile(context.Background(), map[string]any{
			"path": path, "content": chunk, "mode": "append",
		}); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("appended content = %q", data)
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	ts := newTestToolset(t)
	path := filepath.Join(t.TempDir(), "a", "b", "c.txt")
	if _, err := ts.writeFile(context.Background(), map[string]any{
		"path": path, "content": "x",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestWriteFileAliasPath(t *testing.T) {
	ts := newTestToolset(t)
	res, err := ts.writeFile(context.Background(), map[string]any{
		"path": "downloads/jokes.txt", "content": "why did the gopher cross the road",
	})
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "Downloads", "jokes.txt")
	if res.Data["path"] != want {
		t.Errorf("alias path resolved to %q, want %q", res.Data["path"], want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("file not written under Downloads: %v", err)
	}
}

func TestReadFileTruncation(t *testing.T) {
	ts := newTestToolset(t)
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ts.readFile(context.Background(), map[string]any{
		"path": path, "max_bytes": 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["truncated"] != true {
		t.Error("expected truncated=true")
	}
	if got := res.Data["content"].(string); len(got) != 10 {
		t.Errorf("content length = %d, want 10", len(got))
	}
}

func TestReadFileNonPositiveMaxBytes(t *testing.T) {
	ts := newTestToolset(t)
	path := filepath.Join(t.TempDir(), "small.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	// 負やゼロの max_bytes はデフォルト値として扱う（スライス範囲外を防ぐ）
	for _, mb := range []float64{-1, 0} {
		res, err := ts.readFile(context.Background(), map[string]any{
			"path": path, "max_bytes": mb,
		})
		if err != nil {
			t.Fatalf("max_bytes=%v: %v", mb, err)
		}
		if res.Data["content"] != "hello" {
			t.Errorf("max_bytes=%v: content = %q", mb, res.Data["content"])
		}
		if res.Data["truncated"] != false {
			t.Errorf("max_bytes=%v: truncated = %v", mb, res.Data["truncated"])
		}
	}
}

func TestReadFileNotFound(t *testing.T) {
	ts := newTestToolset(t)
	_, err := ts.readFile(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "missing.txt"),
	})
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Errorf("expected file not found error, got %v", err)
	}
}

func TestCopyFileNoClobber(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	dst := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ts.copyFile(context.Background(), map[string]any{
		"source": src, "destination": dst,
	}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "data" {
		t.Fatalf("copy content = %q, err = %v", data, err)
	}

	// 2回目は既存宛先なので拒否
	_, err = ts.copyFile(context.Background(), map[string]any{
		"source": src, "destination": dst,
	})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already-exists error, got %v", err)
	}
}

func TestCopyFileIntoDirectory(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	sub := filepath.Join(dir, "sub")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := ts.copyFile(context.Background(), map[string]any{
		"source": src, "destination": sub,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["destination"] != filepath.Join(sub, "a.txt") {
		t.Errorf("destination = %q", res.Data["destination"])
	}
}

func TestMoveFileRenameDetection(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ts.moveFile(context.Background(), map[string]any{
		"source": src, "destination": filepath.Join(dir, "new.txt"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["operation"] != "renamed" {
		t.Errorf("operation = %q, want renamed (same directory)", res.Data["operation"])
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}

	sub := filepath.Join(dir, "sub")
	res, err = ts.moveFile(context.Background(), map[string]any{
		"source": filepath.Join(dir, "new.txt"), "destination": filepath.Join(sub, "new.txt"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["operation"] != "moved" {
		t.Errorf("operation = %q, want moved (different directory)", res.Data["operation"])
	}
}

func TestMoveFileSourceIsDirectory(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	_, err := ts.moveFile(context.Background(), map[string]any{
		"source": dir, "destination": filepath.Join(dir, "x"),
	})
	if err == nil || !strings.Contains(err.Error(), "directory") {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestListDirectory(t *testing.T) {
	ts := newTestToolset(t)
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.py", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "zdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := ts.listDirectory(context.Background(), map[string]any{"path": dir})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["count"] != 3 {
		t.Errorf("count = %v, want 3 (hidden excluded)", res.Data["count"])
	}
	listing := res.Data["listing"].(string)
	if strings.Contains(listing, ".hidden") {
		t.Error("hidden file listed without show_hidden")
	}
	// ディレクトリが先頭
	if !strings.HasPrefix(listing, "dir") {
		t.Errorf("directories should sort first:\n%s", listing)
	}

	res, err = ts.listDirectory(context.Background(), map[string]any{
		"path": dir, "show_hidden": true, "pattern": "*.py",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["count"] != 1 {
		t.Errorf("pattern filter count = %v, want 1", res.Data["count"])
	}
}

func TestListDirectoryNotFound(t *testing.T) {
	ts := newTestToolset(t)
	_, err := ts.listDirectory(context.Background(), map[string]any{
		"path": filepath.Join(t.TempDir(), "nope"),
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestGetFileInfo(t *testing.T) {
	ts := newTestToolset(t)
	path := filepath.Join(t.TempDir(), "script.py")
	if err := os.WriteFile(path, []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ts.getFileInfo(context.Background(), map[string]any{"path": path})
	if err != nil {
		t.Fatal(err)
	}
	if res.Data["type"] != "Python script" {
		t.Errorf("type = %q", res.Data["type"])
	}
	if res.Data["is_directory"] != false {
		t.Error("is_directory should be false")
	}
	if res.Data["permissions"] != "644" {
		t.Errorf("permissions = %q", res.Data["permissions"])
	}
}
