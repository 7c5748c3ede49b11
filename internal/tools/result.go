package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Result はツール実行の成功結果。
//
// データは2層に分かれる:
//   - Message : ユーザー向けの1行サマリー。
//   - Data    : 構造化ペイロード。表示と後続処理の両方で使う。
type Result struct {
	Message string
	Data    map[string]any
}

// Resultf は Message だけを持つ Result を返す。
func Resultf(format string, args ...any) *Result {
	return &Result{Message: fmt.Sprintf(format, args...)}
}

// Render は Result を表示用テキストに整形する。
// Data の "content" / "diff" / "stdout" など複数行の値は本文として続け、
// その他のキーは key: value の行にする。
func (r *Result) Render() string {
	var sb strings.Builder
	if r.Message != "" {
		sb.WriteString(r.Message)
	}
	if len(r.Data) == 0 {
		return sb.String()
	}

	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var body []string
	for _, k := range keys {
		v := r.Data[k]
		if s, ok := v.(string); ok && strings.Contains(s, "\n") {
			body = append(body, s)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %v", k, v)
	}
	for _, b := range body {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(b)
	}
	return sb.String()
}
