package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const defaultReadMaxBytes = 5000

// readFile はテキストファイルを先頭 max_bytes だけ読む。
func (t *Toolset) readFile(ctx context.Context, args map[string]any) (*Result, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	maxBytes := optIntArg(args, "max_bytes", defaultReadMaxBytes)
	if maxBytes <= 0 {
		maxBytes = defaultReadMaxBytes
	}

	p := t.Resolver.NormalizePath(path)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("tools: read_file: file not found: %s", path)
		}
		return nil, fmt.Errorf("tools: read_file: %w", err)
	}

	snippet := data
	truncated := false
	if len(data) > maxBytes {
		snippet = data[:maxBytes]
		truncated = true
	}
	// 不正な UTF-8 は置換文字に潰してテキストとして返す
	content := strings.ToValidUTF8(string(snippet), "�")

	return &Result{
		Message: fmt.Sprintf("read %d bytes from %s", len(snippet), p),
		Data: map[string]any{
			"path":      p,
			"truncated": truncated,
			"content":   content,
		},
	}, nil
}

// writeFile はテキストを書き込む。mode は overwrite（デフォルト）か append。
// 親ディレクトリは自動作成する。
func (t *Toolset) writeFile(ctx context.Context, args map[string]any) (*Result, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}
	mode := optStringArg(args, "mode", "overwrite")
	if mode != "append" {
		mode = "overwrite"
	}

	p := t.Resolver.NormalizePath(path)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("tools: write_file: could not create parent directory: %w", err)
	}

	existedBefore := false
	var bytesBefore int64
	if info, err := os.Stat(p); err == nil {
		existedBefore = true
		bytesBefore = info.Size()
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if mode == "append" {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(p, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tools: write_file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return nil, fmt.Errorf("tools: write_file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("tools: write_file: %w", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("tools: write_file: %w", err)
	}

	return &Result{
		Message: fmt.Sprintf("wrote %s (%s)", p, mode),
		Data: map[string]any{
			"path":           p,
			"mode":           mode,
			"existed_before": existedBefore,
			"bytes_before":   bytesBefore,
			"bytes_after":    info.Size(),
		},
	}, nil
}

// copyFile はファイルを複製する。既存の宛先は上書きしない。
func (t *Toolset) copyFile(ctx context.Context, args map[string]any) (*Result, error) {
	src, dst, err := t.sourceDestArgs(args)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dst); err == nil {
		return nil, fmt.Errorf("tools: copy_file: destination already exists: %s (use move_file to overwrite)", dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("tools: copy_file: %w", err)
	}
	size, err := copyFileContents(src, dst)
	if err != nil {
		return nil, fmt.Errorf("tools: copy_file: %w", err)
	}
	return &Result{
		Message: "file copied successfully",
		Data: map[string]any{
			"source":      src,
			"destination": dst,
			"size":        size,
		},
	}, nil
}

// moveFile はファイルを移動またはリネームする。
func (t *Toolset) moveFile(ctx context.Context, args map[string]any) (*Result, error) {
	src, dst, err := t.sourceDestArgs(args)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("tools: move_file: %w", err)
	}

	if err := os.Rename(src, dst); err != nil {
		// クロスデバイスの rename は失敗するのでコピー＋削除にフォールバック
		if _, copyErr := copyFileContents(src, dst); copyErr != nil {
			return nil, fmt.Errorf("tools: move_file: %w", copyErr)
		}
		if rmErr := os.Remove(src); rmErr != nil {
			return nil, fmt.Errorf("tools: move_file: copied but could not remove source: %w", rmErr)
		}
	}

	operation := "moved"
	if filepath.Dir(src) == filepath.Dir(dst) {
		operation = "renamed"
	}
	return &Result{
		Message: "file moved successfully",
		Data: map[string]any{
			"source":      src,
			"destination": dst,
			"operation":   operation,
		},
	}, nil
}

// sourceDestArgs は copy/move 共通の source/destination 解決。
// 宛先が既存ディレクトリなら元ファイル名を引き継ぐ。
func (t *Toolset) sourceDestArgs(args map[string]any) (src, dst string, err error) {
	source, err := stringArg(args, "source")
	if err != nil {
		return "", "", err
	}
	destination, err := stringArg(args, "destination")
	if err != nil {
		return "", "", err
	}

	src = t.Resolver.NormalizePath(source)
	dst = t.Resolver.NormalizePath(destination)

	info, err := os.Stat(src)
	if err != nil {
		return "", "", fmt.Errorf("tools: source file not found: %s", source)
	}
	if info.IsDir() {
		return "", "", fmt.Errorf("tools: source is a directory, not a file: %s", source)
	}
	if dinfo, err := os.Stat(dst); err == nil && dinfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(src))
	}
	return src, dst, nil
}

func copyFileContents(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// listDirectory はディレクトリの内容を一覧する。
// ディレクトリ優先、名前の小文字順でソート。
func (t *Toolset) listDirectory(ctx context.Context, args map[string]any) (*Result, error) {
	path := optStringArg(args, "path", ".")
	showHidden := optBoolArg(args, "show_hidden", false)
	pattern := optStringArg(args, "pattern", "")

	p := t.Resolver.NormalizePath(path)
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("tools: list_directory: directory not found: %s", path)
		}
		return nil, fmt.Errorf("tools: list_directory: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	var lines []string
	count := 0
	for _, e := range entries {
		name := e.Name()
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if pattern != "" {
			matched, err := filepath.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("tools: list_directory: bad pattern %q: %w", pattern, err)
			}
			if !matched {
				continue
			}
		}
		info, err := e.Info()
		if err != nil {
			continue // 読めないエントリはスキップ
		}
		count++
		if e.IsDir() {
			lines = append(lines, fmt.Sprintf("dir   %10s  %s  %s/",
				"-", info.ModTime().Format("2006-01-02 15:04"), name))
		} else {
			lines = append(lines, fmt.Sprintf("file  %10d  %s  %s",
				info.Size(), info.ModTime().Format("2006-01-02 15:04"), name))
		}
	}

	return &Result{
		Message: fmt.Sprintf("%d entries in %s", count, p),
		Data: map[string]any{
			"path":    p,
			"count":   count,
			"listing": strings.Join(lines, "\n"),
		},
	}, nil
}

// fileTypeNames は拡張子から人間向けのファイル種別名を引く表。
var fileTypeNames = map[string]string{
	".py":   "Python script",
	".js":   "JavaScript file",
	".go":   "Go source file",
	".txt":  "Text file",
	".md":   "Markdown file",
	".json": "JSON file",
	".pdf":  "PDF document",
	".zip":  "ZIP archive",
	".tar":  "TAR archive",
	".gz":   "GZIP archive",
}

// getFileInfo はファイルの詳細メタデータを返す。
func (t *Toolset) getFileInfo(ctx context.Context, args map[string]any) (*Result, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	p := t.Resolver.NormalizePath(path)
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("tools: get_file_info: file not found: %s", path)
	}

	fileType := "directory"
	if !info.IsDir() {
		ext := strings.ToLower(filepath.Ext(p))
		if name, ok := fileTypeNames[ext]; ok {
			fileType = name
		} else if ext != "" {
			fileType = strings.ToUpper(ext[1:]) + " file"
		} else {
			fileType = "Unknown"
		}
	}

	return &Result{
		Message: fmt.Sprintf("%s: %s", filepath.Base(p), fileType),
		Data: map[string]any{
			"path":         p,
			"name":         filepath.Base(p),
			"type":         fileType,
			"is_directory": info.IsDir(),
			"size":         fmt.Sprintf("%d bytes", info.Size()),
			"modified":     info.ModTime().Format(time.DateTime),
			"permissions":  fmt.Sprintf("%03o", info.Mode().Perm()),
		},
	}, nil
}
