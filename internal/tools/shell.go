package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// runShell はシェルコマンドを実行して stdout/stderr と終了コードを返す。
// deny-list 検査は Executor 側で済んでいる前提（ここでは再検査しない）。
func (t *Toolset) runShell(ctx context.Context, args map[string]any) (*Result, error) {
	command, err := stringArg(args, "command")
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	code := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			// 起動自体の失敗（sh が見つからない等）
			return nil, fmt.Errorf("tools: run_shell: %w", runErr)
		}
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("tools: run_shell: %w", ctx.Err())
	}

	return &Result{
		Message: fmt.Sprintf("command finished with exit code %d", code),
		Data: map[string]any{
			"returncode": code,
			"stdout":     TruncateOutput(stdout.String(), DefaultTruncateConfig),
			"stderr":     TruncateOutput(stderr.String(), DefaultTruncateConfig),
		},
	}, nil
}
