package tools

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// compareFiles は2ファイルの unified diff を生成する。
func (t *Toolset) compareFiles(ctx context.Context, args map[string]any) (*Result, error) {
	file1, err := stringArg(args, "file1")
	if err != nil {
		return nil, err
	}
	file2, err := stringArg(args, "file2")
	if err != nil {
		return nil, err
	}
	contextLines := optIntArg(args, "context_lines", 3)

	f1 := t.Resolver.NormalizePath(file1)
	f2 := t.Resolver.NormalizePath(file2)

	lines1, err := readTextLines(f1, file1, "first")
	if err != nil {
		return nil, err
	}
	lines2, err := readTextLines(f2, file2, "second")
	if err != nil {
		return nil, err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        lines1,
		B:        lines2,
		FromFile: f1,
		ToFile:   f2,
		Context:  contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("tools: compare_files: %w", err)
	}

	if diff == "" {
		return &Result{
			Message: "files are identical",
			Data: map[string]any{
				"file1":     f1,
				"file2":     f2,
				"identical": true,
			},
		}, nil
	}

	changes := 0
	for _, l := range strings.Split(diff, "\n") {
		if strings.HasPrefix(l, "+") || strings.HasPrefix(l, "-") {
			changes++
		}
	}

	return &Result{
		Message: fmt.Sprintf("%d changed line(s)", changes),
		Data: map[string]any{
			"file1":     f1,
			"file2":     f2,
			"identical": false,
			"changes":   changes,
			"diff":      diff,
		},
	}, nil
}

// readTextLines はテキストファイルを行単位（改行込み）で読む。
// バイナリらしきファイルは比較対象にしない。
func readTextLines(path, display, which string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tools: compare_files: %s file not found: %s", which, display)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("tools: compare_files: cannot read %s as text (binary file?)", display)
	}
	return difflib.SplitLines(string(data)), nil
}
