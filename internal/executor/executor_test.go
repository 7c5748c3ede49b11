package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/0x6b61/tesaki/internal/safety"
	"github.com/0x6b61/tesaki/internal/tools"
	"github.com/0x6b61/tesaki/pkg/schema"
)

// spyHandler は呼び出し回数を数えるハンドラ。
type spyHandler struct {
	calls int
	fail  bool
}

func (s *spyHandler) handle(ctx context.Context, args map[string]any) (*tools.Result, error) {
	s.calls++
	if s.fail {
		return nil, errors.New("boom")
	}
	return tools.Resultf("done"), nil
}

func testPolicy() *safety.Policy {
	return safety.NewPolicy([]string{"rm -rf /", "mkfs", ":(){ :|:& };:"})
}

func autoYes(action schema.Action, preview string) (bool, error) { return true, nil }

func TestRunEmptyPlan(t *testing.T) {
	e := New(tools.NewRegistry(), testPolicy(), Options{})
	results, err := e.Run(context.Background(), &schema.Plan{Plan: "nothing to do"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestRunRejectsUnknownToolBeforeExecuting(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{Name: "known", Handler: spy.handle}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{AutoApprove: true})

	plan := &schema.Plan{Actions: []schema.Action{
		{Tool: "known", Args: map[string]any{}},
		{Tool: "mystery", Args: map[string]any{}},
	}}
	_, err := e.Run(context.Background(), plan)
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
	// 前方の正しい Action も実行されていないこと（部分実行の禁止）
	if spy.calls != 0 {
		t.Errorf("handler called %d times, want 0", spy.calls)
	}
}

func TestPolicyBlocksDangerousCommand(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{
		Name:       "run_shell",
		Params:     []tools.Param{{Name: "command", Type: tools.ParamString, Required: true}},
		Handler:    spy.handle,
		Mutating:   true,
		CommandArg: "command",
	}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{AutoApprove: true})

	plan := &schema.Plan{Actions: []schema.Action{
		{Tool: "run_shell", Args: map[string]any{"command": "rm -rf / --no-preserve-root"}},
	}}
	results, err := e.Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusFailed {
		t.Errorf("status = %q, want failed", results[0].Status)
	}
	var policyErr *PolicyViolationError
	if !errors.As(results[0].Err, &policyErr) {
		t.Fatalf("expected PolicyViolationError, got %v", results[0].Err)
	}
	if policyErr.Pattern != "rm -rf /" {
		t.Errorf("pattern = %q", policyErr.Pattern)
	}
	if spy.calls != 0 {
		t.Errorf("blocked handler was invoked %d times", spy.calls)
	}
}

func TestPolicyAppliesInDryRun(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{
		Name:       "run_shell",
		Params:     []tools.Param{{Name: "command", Type: tools.ParamString, Required: true}},
		Handler:    spy.handle,
		Mutating:   true,
		CommandArg: "command",
	}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{DryRun: true})

	plan := &schema.Plan{Actions: []schema.Action{
		{Tool: "run_shell", Args: map[string]any{"command": "mkfs.ext4 /dev/sda1"}},
	}}
	results, err := e.Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusFailed {
		t.Errorf("dry-run should still surface policy violations, got %q", results[0].Status)
	}
}

func TestDryRunInvokesNoHandlers(t *testing.T) {
	reg := tools.NewRegistry()
	mutating := &spyHandler{}
	readonly := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{
		Name:     "write_file",
		Params:   []tools.Param{{Name: "path", Type: tools.ParamString, Required: true}},
		Handler:  mutating.handle,
		Mutating: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&tools.ToolSpec{
		Name:    "read_file",
		Params:  []tools.Param{{Name: "path", Type: tools.ParamString, Required: true}},
		Handler: readonly.handle,
	}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{DryRun: true})

	plan := &schema.Plan{Actions: []schema.Action{
		{Tool: "write_file", Args: map[string]any{"path": "a.txt"}},
		{Tool: "read_file", Args: map[string]any{"path": "a.txt"}},
	}}
	results, err := e.Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Status != StatusPreviewed {
			t.Errorf("result %d status = %q, want previewed", i, r.Status)
		}
		if r.Err != nil {
			t.Errorf("result %d err = %v", i, r.Err)
		}
		if r.Output == "" {
			t.Errorf("result %d has no preview output", i)
		}
	}
	if mutating.calls != 0 || readonly.calls != 0 {
		t.Errorf("handlers invoked in dry-run: mutating=%d readonly=%d", mutating.calls, readonly.calls)
	}
}

func TestPartialFailureIsolation(t *testing.T) {
	reg := tools.NewRegistry()
	first := &spyHandler{}
	second := &spyHandler{fail: true}
	third := &spyHandler{}
	for name, spy := range map[string]*spyHandler{"one": first, "two": second, "three": third} {
		if err := reg.Register(&tools.ToolSpec{Name: name, Handler: spy.handle}); err != nil {
			t.Fatal(err)
		}
	}
	e := New(reg, testPolicy(), Options{AutoApprove: true})

	plan := &schema.Plan{Actions: []schema.Action{
		{Tool: "one", Args: map[string]any{}},
		{Tool: "two", Args: map[string]any{}},
		{Tool: "three", Args: map[string]any{}},
	}}
	results, err := e.Run(context.Background(), plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	want := []Status{StatusSucceeded, StatusFailed, StatusSucceeded}
	for i, w := range want {
		if results[i].Status != w {
			t.Errorf("result %d status = %q, want %q", i, results[i].Status, w)
		}
	}
	var toolErr *ToolExecutionError
	if !errors.As(results[1].Err, &toolErr) {
		t.Fatalf("expected ToolExecutionError, got %v", results[1].Err)
	}
	if toolErr.Tool != "two" {
		t.Errorf("failing tool = %q", toolErr.Tool)
	}
	if third.calls != 1 {
		t.Errorf("action 3 ran %d times, want 1", third.calls)
	}
}

func TestConfirmDeclinedSkips(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{
		Name:     "write_file",
		Handler:  spy.handle,
		Mutating: true,
	}); err != nil {
		t.Fatal(err)
	}

	declined := 0
	e := New(reg, testPolicy(), Options{
		Confirm: func(action schema.Action, preview string) (bool, error) {
			declined++
			return false, nil
		},
	})

	results, err := e.Run(context.Background(), &schema.Plan{Actions: []schema.Action{
		{Tool: "write_file", Args: map[string]any{}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSkipped {
		t.Errorf("status = %q, want skipped", results[0].Status)
	}
	if declined != 1 {
		t.Errorf("confirm called %d times", declined)
	}
	if spy.calls != 0 {
		t.Error("declined handler must not run")
	}
}

func TestConfirmNilDeclinesMutating(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{Name: "write_file", Handler: spy.handle, Mutating: true}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{}) // Confirm なし・AutoApprove なし

	results, err := e.Run(context.Background(), &schema.Plan{Actions: []schema.Action{
		{Tool: "write_file", Args: map[string]any{}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSkipped {
		t.Errorf("status = %q, want skipped when no confirmer is wired", results[0].Status)
	}
	if spy.calls != 0 {
		t.Error("handler must not run without confirmation")
	}
}

func TestNonMutatingRunsWithoutConfirm(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{Name: "read_file", Handler: spy.handle}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{}) // 確認なしでも読み取り系は走る

	results, err := e.Run(context.Background(), &schema.Plan{Actions: []schema.Action{
		{Tool: "read_file", Args: map[string]any{}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSucceeded {
		t.Errorf("status = %q", results[0].Status)
	}
	if spy.calls != 1 {
		t.Errorf("handler calls = %d", spy.calls)
	}
}

func TestSafeCommandPassesPolicy(t *testing.T) {
	reg := tools.NewRegistry()
	spy := &spyHandler{}
	if err := reg.Register(&tools.ToolSpec{
		Name:       "run_shell",
		Handler:    spy.handle,
		Mutating:   true,
		CommandArg: "command",
	}); err != nil {
		t.Fatal(err)
	}
	e := New(reg, testPolicy(), Options{Confirm: autoYes})

	results, err := e.Run(context.Background(), &schema.Plan{Actions: []schema.Action{
		{Tool: "run_shell", Args: map[string]any{"command": "ls -la"}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Status != StatusSucceeded {
		t.Errorf("status = %q, err = %v", results[0].Status, results[0].Err)
	}
	if spy.calls != 1 {
		t.Errorf("handler calls = %d", spy.calls)
	}
}
