package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/0x6b61/tesaki/internal/executor"
	"github.com/0x6b61/tesaki/pkg/schema"
)

// DefaultWidth はターミナル幅が取れない場合の表示幅。
const DefaultWidth = 100

// RenderPlan は Plan の説明文と Action テーブルを整形する。
func RenderPlan(plan *schema.Plan, width int, dryRun bool) string {
	if width <= 0 {
		width = DefaultWidth
	}

	desc := plan.Plan
	if desc == "" {
		desc = "No plan description."
	}

	var sb strings.Builder
	sb.WriteString(planPanelStyle.Width(width - 2).Render(titleStyle.Render("Plan") + "\n" + desc))
	sb.WriteByte('\n')

	if len(plan.Actions) == 0 {
		sb.WriteString(skippedStyle.Render("No actions proposed."))
		sb.WriteByte('\n')
		return sb.String()
	}

	sb.WriteString(renderActionTable(plan.Actions, width))
	if dryRun {
		sb.WriteString(skippedStyle.Render("(DRY RUN) No actions will be executed."))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// renderActionTable は # / Tool / Args の3列テーブルを組む。
// Args 列は表示幅で切り詰める（全角を含むため runewidth で数える）。
func renderActionTable(actions []schema.Action, width int) string {
	const numWidth = 3
	const toolWidth = 18
	argsWidth := width - numWidth - toolWidth - 6
	if argsWidth < 20 {
		argsWidth = 20
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %s", numWidth, "#", toolWidth, "Tool", "Args")))
	sb.WriteByte('\n')
	for i, action := range actions {
		args := formatArgs(action.Args)
		sb.WriteString(fmt.Sprintf("%-*d %-*s %s\n",
			numWidth, i+1,
			toolWidth, runewidth.Truncate(action.Tool, toolWidth, "…"),
			runewidth.Truncate(args, argsWidth, "…")))
	}
	return sb.String()
}

// formatArgs は引数 map を安定した1行表現にする。
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	var parts []string
	for _, k := range sortedKeys(args) {
		v := fmt.Sprintf("%v", args[k])
		v = strings.ReplaceAll(v, "\n", "\\n")
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RenderResults は ExecutionResult の列を順に整形する。
func RenderResults(results []executor.ExecutionResult, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var sb strings.Builder
	for i, r := range results {
		sb.WriteString(renderResult(i+1, r, width))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func renderResult(n int, r executor.ExecutionResult, width int) string {
	header := fmt.Sprintf("Action %d: %s — %s", n, r.Action.Tool, statusLabel(r.Status))

	switch r.Status {
	case executor.StatusFailed:
		body := header
		if r.Err != nil {
			body += "\n" + r.Err.Error()
		}
		return errorPanelStyle.Width(width - 2).Render(body)
	case executor.StatusSkipped:
		return resultPanelStyle.Width(width - 2).Render(header)
	case executor.StatusPreviewed:
		return resultPanelStyle.Width(width - 2).Render(header + "\n" + previewedStyle.Render(r.Output))
	default:
		body := header
		if r.Output != "" {
			body += "\n" + r.Output
		}
		return resultPanelStyle.Width(width - 2).Render(body)
	}
}

func statusLabel(s executor.Status) string {
	switch s {
	case executor.StatusSucceeded:
		return succeededStyle.Render("succeeded")
	case executor.StatusFailed:
		return failedStyle.Render("failed")
	case executor.StatusSkipped:
		return skippedStyle.Render("skipped")
	case executor.StatusPreviewed:
		return previewedStyle.Render("previewed")
	}
	return string(s)
}

// RenderError はエラーを赤枠パネルで整形する。
func RenderError(err error, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return errorPanelStyle.Width(width - 2).Render(err.Error())
}

// RenderHint は補足メッセージを薄色で整形する。
func RenderHint(text string) string {
	return hintStyle.Render(text)
}

// RenderMarkdown は glamour で Markdown をターミナル用にレンダリングする。
// ダークスタイルを明示指定する。WithAutoStyle() は非 TTY 環境（テスト・CI）で
// plain にフォールバックするため使用しない。
// glamour の dark スタイルは左右マージンを追加するため、width を縮小して渡す。
func RenderMarkdown(text string, width int) (string, error) {
	// glamour dark スタイルのマージン分を差し引く（左2+右2=4）
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
