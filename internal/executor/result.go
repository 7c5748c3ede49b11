package executor

import (
	"fmt"

	"github.com/0x6b61/tesaki/internal/tools"
	"github.com/0x6b61/tesaki/pkg/schema"
)

// Status は Action 実行の最終状態。
type Status string

const (
	// StatusSucceeded はハンドラが正常終了した。
	StatusSucceeded Status = "succeeded"
	// StatusFailed はポリシー違反またはハンドラエラー。
	StatusFailed Status = "failed"
	// StatusSkipped はユーザーが確認で拒否した。
	StatusSkipped Status = "skipped"
	// StatusPreviewed は dry-run でハンドラを呼ばずにプレビューだけ生成した。
	StatusPreviewed Status = "previewed"
)

// ExecutionResult は Action 1個の実行結果。
// Plan の Action 数と同数・同順で返る（失敗やスキップでも欠けない）。
type ExecutionResult struct {
	Action schema.Action
	Status Status
	Output string
	// Result はハンドラが返した構造化ペイロード（成功時のみ非 nil）。
	// find_item の確信マッチ後処理などが参照する。
	Result *tools.Result
	Err    error
}

// PolicyViolationError は deny-list に一致したシェルコマンド。
// このエラーが付く Action のハンドラは一度も呼ばれていない。
type PolicyViolationError struct {
	Command string
	Pattern string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("executor: command blocked by safety policy (matched %q): %s", e.Pattern, e.Command)
}

// ToolExecutionError はハンドラが返したエラーのラッパー。
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("executor: tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
