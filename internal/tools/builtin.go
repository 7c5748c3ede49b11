package tools

import (
	"fmt"

	"github.com/0x6b61/tesaki/internal/resolve"
)

// Toolset は組み込みツールが共有する依存をまとめる。
type Toolset struct {
	Resolver *resolve.Resolver
	// MaxEntries は search_content が走査するファイル数の予算。
	MaxEntries int
}

// NewToolset は Toolset を構築する。
func NewToolset(res *resolve.Resolver, maxEntries int) *Toolset {
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &Toolset{Resolver: res, MaxEntries: maxEntries}
}

// RegisterBuiltins は組み込みツール一式を Registry に登録する。
// ここでの登録順がそのまま {{TOOLS}} の番号順になる。
func RegisterBuiltins(r *Registry, t *Toolset) error {
	specs := []*ToolSpec{
		{
			Name:        "run_shell",
			Description: "Run a shell command and capture stdout/stderr.",
			Params: []Param{
				{Name: "command", Type: ParamString, Required: true, Description: "the shell command to run"},
			},
			Handler:    t.runShell,
			Mutating:   true,
			CommandArg: "command",
			Preview: func(args map[string]any) string {
				return fmt.Sprintf("$ %s", optStringArg(args, "command", ""))
			},
		},
		{
			Name:        "read_file",
			Description: "Read a text file from disk (for inspection).",
			Params: []Param{
				{Name: "path", Type: ParamString, Required: true, Description: "absolute or relative file path"},
				{Name: "max_bytes", Type: ParamInt, Required: false, Description: "maximum number of bytes to read (default 5000)"},
			},
			Handler: t.readFile,
		},
		{
			Name:        "write_file",
			Description: "Create or modify a text file on disk. Intended for small to medium text files (configs, scripts, code). Path can use folder shortcuts like 'downloads/file.txt', 'documents/notes.md', '~/myfile.txt'. Parent directories are created automatically.",
			Params: []Param{
				{Name: "path", Type: ParamString, Required: true, Description: "file path, shortcuts like 'downloads/file.txt' allowed"},
				{Name: "content", Type: ParamString, Required: true, Description: "full new content to write"},
				{Name: "mode", Type: ParamString, Required: false, Description: "either 'overwrite' or 'append' (default 'overwrite')"},
			},
			Handler:  t.writeFile,
			Mutating: true,
			Preview: func(args map[string]any) string {
				return fmt.Sprintf("write %s (%s, %d bytes)",
					optStringArg(args, "path", "?"),
					optStringArg(args, "mode", "overwrite"),
					len(optStringArg(args, "content", "")))
			},
		},
		{
			Name:        "find_item",
			Description: "Search for files or directories by name in sensible locations (current directory plus Downloads, Documents, Desktop). Fuzzy matching handles typos and missing extensions. Discovery only, modifies nothing.",
			Params: []Param{
				{Name: "name", Type: ParamString, Required: true, Description: "filename or fragment to search for (e.g. 'readme', 'config.py')"},
				{Name: "max_results", Type: ParamInt, Required: false, Description: "maximum number of matches to return (default 20)"},
			},
			Handler: t.findItem,
		},
		{
			Name:        "summarize_file",
			Description: "Find a file by name and read its contents for summarization. This single tool both finds AND reads, do NOT use find_item first. Use whenever the user asks to summarize, explain, or describe a file.",
			Params: []Param{
				{Name: "name", Type: ParamString, Required: true, Description: "filename or fragment to search for"},
				{Name: "max_bytes", Type: ParamInt, Required: false, Description: "maximum bytes to read from file (default 10000)"},
			},
			Handler: t.summarizeFile,
		},
		{
			Name:        "list_directory",
			Description: "List contents of a directory with file/folder details: names, types, sizes, modification times.",
			Params: []Param{
				{Name: "path", Type: ParamString, Required: false, Description: "directory path (default is current directory)"},
				{Name: "show_hidden", Type: ParamBool, Required: false, Description: "show hidden files (default false)"},
				{Name: "pattern", Type: ParamString, Required: false, Description: "filter by pattern (e.g. '*.py', '*.txt')"},
			},
			Handler: t.listDirectory,
		},
		{
			Name:        "search_content",
			Description: "Search for text within files in a directory tree. Like grep: finds files containing specific text, with filename, line number and matching line.",
			Params: []Param{
				{Name: "query", Type: ParamString, Required: true, Description: "text to search for"},
				{Name: "path", Type: ParamString, Required: false, Description: "directory to search (default current directory)"},
				{Name: "file_pattern", Type: ParamString, Required: false, Description: "limit to file types (e.g. '*.py', '*.txt')"},
				{Name: "max_results", Type: ParamInt, Required: false, Description: "maximum results to return (default 20)"},
				{Name: "case_sensitive", Type: ParamBool, Required: false, Description: "case-sensitive search (default false)"},
			},
			Handler: t.searchContent,
		},
		{
			Name:        "get_file_info",
			Description: "Get detailed metadata about a specific file: size, dates, permissions, type.",
			Params: []Param{
				{Name: "path", Type: ParamString, Required: true, Description: "path to the file"},
			},
			Handler: t.getFileInfo,
		},
		{
			Name:        "copy_file",
			Description: "Copy a file from source to destination. If destination is a directory, keeps the source filename. Will not overwrite existing files.",
			Params: []Param{
				{Name: "source", Type: ParamString, Required: true, Description: "path to source file"},
				{Name: "destination", Type: ParamString, Required: true, Description: "path to destination (file or directory)"},
			},
			Handler:  t.copyFile,
			Mutating: true,
			Preview: func(args map[string]any) string {
				return fmt.Sprintf("copy %s -> %s",
					optStringArg(args, "source", "?"), optStringArg(args, "destination", "?"))
			},
		},
		{
			Name:        "move_file",
			Description: "Move or rename a file from source to destination. Can rename within the same directory.",
			Params: []Param{
				{Name: "source", Type: ParamString, Required: true, Description: "path to source file"},
				{Name: "destination", Type: ParamString, Required: true, Description: "path to destination (file or directory)"},
			},
			Handler:  t.moveFile,
			Mutating: true,
			Preview: func(args map[string]any) string {
				return fmt.Sprintf("move %s -> %s",
					optStringArg(args, "source", "?"), optStringArg(args, "destination", "?"))
			},
		},
		{
			Name:        "compare_files",
			Description: "Compare two files and show their differences in unified diff format.",
			Params: []Param{
				{Name: "file1", Type: ParamString, Required: true, Description: "path to first file"},
				{Name: "file2", Type: ParamString, Required: true, Description: "path to second file"},
				{Name: "context_lines", Type: ParamInt, Required: false, Description: "lines of context to show (default 3)"},
			},
			Handler: t.compareFiles,
		},
		{
			Name:        "extract_archive",
			Description: "Extract compressed archive files. Supports .zip, .tar, .tar.gz, .tgz formats. Creates the destination directory if needed.",
			Params: []Param{
				{Name: "archive_path", Type: ParamString, Required: true, Description: "path to archive file"},
				{Name: "destination", Type: ParamString, Required: false, Description: "where to extract (default is same directory)"},
			},
			Handler:  t.extractArchive,
			Mutating: true,
			Preview: func(args map[string]any) string {
				return fmt.Sprintf("extract %s", optStringArg(args, "archive_path", "?"))
			},
		},
	}

	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			return err
		}
	}
	return nil
}
