// Package executor は検証済み Plan を逐次実行する。
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/0x6b61/tesaki/internal/safety"
	"github.com/0x6b61/tesaki/internal/tools"
	"github.com/0x6b61/tesaki/pkg/schema"
)

// ConfirmFunc は実行前確認の中断点。対話プロンプト・スクリプト・テストの
// いずれでも同じ Executor ロジックが使えるよう、関数として注入する。
// false を返した Action は Skipped になる。
type ConfirmFunc func(action schema.Action, preview string) (bool, error)

// Options は Run の動作モード。
type Options struct {
	// DryRun はハンドラを一切呼ばず、各 Action のプレビューだけ生成する。
	DryRun bool
	// AutoApprove は Mutating ツールの確認を省略する（--yes フラグ）。
	AutoApprove bool
	// Confirm は Mutating ツールの実行前確認。nil の場合は全て拒否する
	// （非対話環境で黙って書き込まない）。
	Confirm ConfirmFunc
}

// Executor は Plan の Action を順に処理する。
//
// Action ごとの状態遷移:
//
//	pending → (policy violation → failed)
//	        → (dry-run → previewed)
//	        → confirm → (declined → skipped)
//	                  → running → succeeded / failed
//
// ある Action の失敗は後続の Action に影響しない（部分失敗の隔離）。
type Executor struct {
	reg    *tools.Registry
	policy *safety.Policy
	opts   Options
}

// New は Executor を構築する。
func New(reg *tools.Registry, policy *safety.Policy, opts Options) *Executor {
	return &Executor{reg: reg, policy: policy, opts: opts}
}

// Run は plan の全 Action を順に実行し、同数・同順の結果を返す。
// 未登録ツールを含む Plan は1つも実行せずエラーを返す（planner 検証の二重化）。
func (e *Executor) Run(ctx context.Context, plan *schema.Plan) ([]ExecutionResult, error) {
	for _, action := range plan.Actions {
		if _, err := e.reg.Get(action.Tool); err != nil {
			return nil, fmt.Errorf("executor: refusing to run plan: %w", err)
		}
	}

	results := make([]ExecutionResult, 0, len(plan.Actions))
	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("executor: %w", err)
		}
		results = append(results, e.runOne(ctx, action))
	}
	return results, nil
}

func (e *Executor) runOne(ctx context.Context, action schema.Action) ExecutionResult {
	spec, _ := e.reg.Get(action.Tool) // Run で検証済み
	result := ExecutionResult{Action: action}

	// ポリシー検査はハンドラ呼び出しより前。dry-run でも適用する。
	if spec.CommandArg != "" {
		command, _ := action.Args[spec.CommandArg].(string)
		if pattern, found := e.policy.Match(command); found {
			result.Status = StatusFailed
			result.Err = &PolicyViolationError{Command: command, Pattern: pattern}
			return result
		}
	}

	if e.opts.DryRun {
		result.Status = StatusPreviewed
		result.Output = preview(spec, action)
		return result
	}

	if spec.Mutating && !e.opts.AutoApprove {
		confirmed, err := e.confirm(action, preview(spec, action))
		if err != nil {
			result.Status = StatusFailed
			result.Err = fmt.Errorf("executor: confirmation failed: %w", err)
			return result
		}
		if !confirmed {
			result.Status = StatusSkipped
			result.Output = "skipped by user"
			return result
		}
	}

	res, err := spec.Handler(ctx, action.Args)
	if err != nil {
		result.Status = StatusFailed
		result.Err = &ToolExecutionError{Tool: action.Tool, Err: err}
		return result
	}
	result.Status = StatusSucceeded
	result.Result = res
	if res != nil {
		result.Output = res.Render()
	}
	return result
}

func (e *Executor) confirm(action schema.Action, pv string) (bool, error) {
	if e.opts.Confirm == nil {
		return false, nil
	}
	return e.opts.Confirm(action, pv)
}

// preview は Action の1行説明を返す。ToolSpec.Preview があればそれを使う。
func preview(spec *tools.ToolSpec, action schema.Action) string {
	if spec.Preview != nil {
		return spec.Preview(action.Args)
	}
	var args []string
	for _, p := range spec.Params {
		if v, ok := action.Args[p.Name]; ok {
			args = append(args, fmt.Sprintf("%s=%v", p.Name, v))
		}
	}
	return fmt.Sprintf("%s(%s)", spec.Name, strings.Join(args, ", "))
}
