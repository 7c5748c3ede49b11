package tools

import (
	"fmt"
	"strings"
)

// TruncateConfig はシェル出力の切り捨て設定を保持する。
type TruncateConfig struct {
	HeadLines int // 先頭から残す行数
	TailLines int // 末尾から残す行数
}

// DefaultTruncateConfig は run_shell 出力向けのデフォルト設定。
var DefaultTruncateConfig = TruncateConfig{
	HeadLines: 50,
	TailLines: 30,
}

// TruncateOutput は先頭 head 行 + 末尾 tail 行を残し中間を省略する。
// 合計行数が head+tail 以下なら全文をそのまま返す。
func TruncateOutput(s string, cfg TruncateConfig) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	total := len(lines)
	if cfg.HeadLines+cfg.TailLines >= total {
		return s
	}

	omitted := total - cfg.HeadLines - cfg.TailLines
	var sb strings.Builder
	for _, l := range lines[:cfg.HeadLines] {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("\n--- %d行省略 ---\n\n", omitted))
	for _, l := range lines[total-cfg.TailLines:] {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}
