package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/0x6b61/tesaki/internal/resolve"
)

// findItem はファジー検索でファイル・ディレクトリを探す。発見専用で何も変更しない。
func (t *Toolset) findItem(ctx context.Context, args map[string]any) (*Result, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	maxResults := optIntArg(args, "max_results", 0)

	candidates, err := t.Resolver.Resolve(name, resolve.Options{MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("tools: find_item: %w", err)
	}

	var lines []string
	for _, c := range candidates {
		kind := "file"
		if c.IsDir {
			kind = "dir"
		}
		lines = append(lines, fmt.Sprintf("%.2f  %-4s  %s", c.Score, kind, c.Path))
	}

	msg := fmt.Sprintf("found %d match(es) for %q", len(candidates), name)
	if len(candidates) == 0 {
		msg = fmt.Sprintf("no matches for %q", name)
	}
	return &Result{
		Message: msg,
		Data: map[string]any{
			"query":      name,
			"count":      len(candidates),
			"candidates": candidates,
			"results":    strings.Join(lines, "\n"),
		},
	}, nil
}

// textExtensions は summarize_file が読んでよいテキスト系拡張子。
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".py": true, ".js": true, ".jsx": true,
	".ts": true, ".tsx": true, ".json": true, ".xml": true, ".html": true,
	".css": true, ".scss": true, ".yaml": true, ".yml": true, ".toml": true,
	".ini": true, ".cfg": true, ".conf": true, ".sh": true, ".bash": true,
	".zsh": true, ".fish": true, ".java": true, ".c": true, ".cpp": true,
	".h": true, ".hpp": true, ".rs": true, ".go": true, ".rb": true,
	".php": true, ".swift": true, ".kt": true, ".r": true, ".sql": true,
	".log": true, ".csv": true, ".rst": true, ".tex": true,
}

const defaultSummarizeMaxBytes = 10000

// summarizeFile はファジー検索と読み取りを1ツールで行う。
// 複数マッチ時は最高スコアの候補を自動採用する。
// 中身の要約文はモデル側が応答として生成する（ここでは本文を返すだけ）。
func (t *Toolset) summarizeFile(ctx context.Context, args map[string]any) (*Result, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}
	maxBytes := optIntArg(args, "max_bytes", defaultSummarizeMaxBytes)
	if maxBytes <= 0 {
		maxBytes = defaultSummarizeMaxBytes
	}

	candidates, err := t.Resolver.Resolve(name, resolve.Options{MaxResults: 5})
	if err != nil {
		return nil, fmt.Errorf("tools: summarize_file: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("tools: summarize_file: no files found matching %q, try a different search term", name)
	}

	var files []resolve.MatchCandidate
	for _, c := range candidates {
		if !c.IsDir {
			files = append(files, c)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("tools: summarize_file: found %d match(es), but all were directories", len(candidates))
	}

	best := files[0]
	ext := strings.ToLower(filepath.Ext(best.Path))
	if ext == ".pdf" {
		return nil, fmt.Errorf("tools: summarize_file: PDF files are not supported: %s", best.Path)
	}
	if ext != "" && !textExtensions[ext] {
		return nil, fmt.Errorf("tools: summarize_file: file type %q may not be a text file: %s", ext, best.Path)
	}

	data, err := os.ReadFile(best.Path)
	if err != nil {
		return nil, fmt.Errorf("tools: summarize_file: %w", err)
	}
	snippet := data
	truncated := false
	if len(data) > maxBytes {
		snippet = data[:maxBytes]
		truncated = true
	}
	content := strings.ToValidUTF8(string(snippet), "�")

	return &Result{
		Message: fmt.Sprintf("read %s for summarization (score %.2f)", best.Path, best.Score),
		Data: map[string]any{
			"query":            name,
			"file_path":        best.Path,
			"file_size":        best.Size,
			"match_score":      best.Score,
			"truncated":        truncated,
			"multiple_matches": len(files) > 1,
			"match_count":      len(files),
			"content_preview":  content,
		},
	}, nil
}

// searchContent はディレクトリツリー内のファイル本文をテキスト検索する。
// grep 相当。10MB 超のファイルはスキップし、走査ファイル数は予算で打ち切る。
func (t *Toolset) searchContent(ctx context.Context, args map[string]any) (*Result, error) {
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	root := optStringArg(args, "path", ".")
	filePattern := optStringArg(args, "file_pattern", "")
	maxResults := optIntArg(args, "max_results", 20)
	caseSensitive := optBoolArg(args, "case_sensitive", false)

	p := t.Resolver.NormalizePath(root)
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("tools: search_content: directory not found: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tools: search_content: path is not a directory: %s", root)
	}

	needle := query
	if !caseSensitive {
		needle = strings.ToLower(query)
	}

	type match struct {
		file string
		line int
		text string
	}
	var matches []match
	scanned := 0

	walkErr := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // 読めないものはスキップ
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if filePattern != "" {
			if ok, _ := filepath.Match(filePattern, d.Name()); !ok {
				return nil
			}
		}
		fi, err := d.Info()
		if err != nil || fi.Size() > 10_000_000 {
			return nil
		}
		scanned++
		if scanned > t.MaxEntries {
			return fs.SkipAll
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		rel, relErr := filepath.Rel(p, path)
		if relErr != nil {
			rel = path
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			check := line
			if !caseSensitive {
				check = strings.ToLower(line)
			}
			if strings.Contains(check, needle) {
				matches = append(matches, match{file: rel, line: lineNum, text: strings.TrimRight(line, " \t")})
				if len(matches) >= maxResults {
					return fs.SkipAll
				}
			}
		}
		return nil
	})
	if walkErr != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("tools: search_content: %w", walkErr)
	}

	var lines []string
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s:%d: %s", m.file, m.line, m.text))
	}

	return &Result{
		Message: fmt.Sprintf("%d match(es) for %q under %s", len(matches), query, p),
		Data: map[string]any{
			"query":        query,
			"search_path":  p,
			"result_count": len(matches),
			"truncated":    len(matches) >= maxResults,
			"results":      strings.Join(lines, "\n"),
		},
	}, nil
}
