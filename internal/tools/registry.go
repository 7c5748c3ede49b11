// Package tools provides the built-in tool registry and implementations.
package tools

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

var (
	// ErrDuplicateTool は同名ツールの二重登録。
	ErrDuplicateTool = errors.New("tools: duplicate tool")
	// ErrUnknownTool は未登録ツール名の参照。
	ErrUnknownTool = errors.New("tools: unknown tool")
)

// ParamType はツール引数の JSON 型。
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "integer"
	ParamNumber ParamType = "number"
	ParamBool   ParamType = "boolean"
)

// Param はツール引数1個のスキーマ。宣言順が {{TOOLS}} の表示順になる。
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// Handler はツール本体。args は planner で型検証済みの引数。
// ドメインエラー（ファイルなし等）も error で返し、Executor が失敗として扱う。
type Handler func(ctx context.Context, args map[string]any) (*Result, error)

// ToolSpec は登録ツール1個の定義。
type ToolSpec struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler

	// Mutating はファイルシステム等を変更するツール。実行前に確認が必要。
	Mutating bool

	// CommandArg が非空なら、その引数の値をシェルコマンドとして
	// safety.Policy の deny-list 検査にかける。
	CommandArg string

	// Preview は dry-run 時の1行説明を返す。nil なら汎用表示。
	Preview func(args map[string]any) string
}

// Registry はロード済みツール定義を登録順で管理する。
type Registry struct {
	order []string
	specs map[string]*ToolSpec
}

// NewRegistry は空の Registry を返す。
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*ToolSpec)}
}

// Register は spec を登録する。同名の再登録は ErrDuplicateTool。
func (r *Registry) Register(spec *ToolSpec) error {
	if spec.Name == "" {
		return errors.New("tools: tool spec missing name")
	}
	if _, exists := r.specs[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, spec.Name)
	}
	r.specs[spec.Name] = spec
	r.order = append(r.order, spec.Name)
	return nil
}

// Get は name に対応する ToolSpec を返す。未登録なら ErrUnknownTool。
func (r *Registry) Get(name string) (*ToolSpec, error) {
	spec, ok := r.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return spec, nil
}

// Len は登録済みツール数を返す。
func (r *Registry) Len() int { return len(r.order) }

// DescribeAll は登録順で全 ToolSpec を yield する。
// 遅延シーケンスなので途中 break 可能、何度でも走査できる。
func (r *Registry) DescribeAll() iter.Seq[*ToolSpec] {
	return func(yield func(*ToolSpec) bool) {
		for _, name := range r.order {
			if !yield(r.specs[name]) {
				return
			}
		}
	}
}

// Summary は ACTION プロンプトの {{TOOLS}} に注入するツール一覧テキストを生成する。
//
// 形式（モデルが読む）:
//
//	1. "run_shell"
//	   - description: Run a shell command and capture stdout/stderr.
//	   - args schema:
//	     {
//	       "command": "string, the shell command to run"
//	     }
func (r *Registry) Summary() string {
	var sb strings.Builder
	i := 0
	for spec := range r.DescribeAll() {
		i++
		fmt.Fprintf(&sb, "%d. %q\n", i, spec.Name)
		fmt.Fprintf(&sb, "   - description: %s\n", spec.Description)
		sb.WriteString("   - args schema:\n     {\n")
		for j, p := range spec.Params {
			opt := ""
			if !p.Required {
				opt = "optional "
			}
			comma := ","
			if j == len(spec.Params)-1 {
				comma = ""
			}
			fmt.Fprintf(&sb, "       %q: %q%s\n", p.Name,
				fmt.Sprintf("%s%s, %s", opt, p.Type, p.Description), comma)
		}
		sb.WriteString("     }\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
