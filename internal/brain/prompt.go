package brain

import (
	"os"
	"strings"
)

// fallbackChat / fallbackAction はプロンプトファイルが無い・壊れている場合の最低限のプロンプト。
const (
	fallbackChat = "You are a helpful offline terminal assistant. Answer succinctly and safely."

	fallbackAction = "You are a terminal control agent. Respond ONLY with JSON using " +
		`schema: {"plan": string, "actions": [{"tool": "...", "args": {...}}]}.` + "\n" +
		"Valid tools:\n{{TOOLS}}\n" +
		"No extra text outside JSON."
)

// toolsPlaceholder は ACTION セクション内でツール一覧に置換されるプレースホルダ。
const toolsPlaceholder = "{{TOOLS}}"

// Sections はプロンプトファイルの ## CHAT / ## ACTION セクション。
type Sections struct {
	Chat   string
	Action string
}

// LoadPromptSections は patterns/prompt.md を読み、見出しでセクション分割する。
//
// ファイル形式:
//
//	## CHAT
//	... 自由対話モードのシステムプロンプト ...
//
//	## ACTION
//	... アクションモードのシステムプロンプト（{{TOOLS}} プレースホルダ入り）...
//
// ファイルが無い、またはセクションが欠けている場合はフォールバックで補う。
func LoadPromptSections(path string) *Sections {
	s := &Sections{}
	data, err := os.ReadFile(path)
	if err != nil {
		s.Chat = fallbackChat
		s.Action = fallbackAction
		return s
	}

	var current *strings.Builder
	chat := &strings.Builder{}
	action := &strings.Builder{}
	for _, line := range strings.Split(string(data), "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "## ") {
			switch strings.ToUpper(strings.TrimSpace(stripped[3:])) {
			case "CHAT":
				current = chat
				continue
			case "ACTION":
				current = action
				continue
			}
		}
		if current != nil {
			current.WriteString(line)
			current.WriteByte('\n')
		}
	}

	s.Chat = strings.TrimSpace(chat.String())
	s.Action = strings.TrimSpace(action.String())
	if s.Chat == "" {
		s.Chat = fallbackChat
	}
	if s.Action == "" {
		s.Action = fallbackAction
	}
	return s
}

// RenderAction は ACTION セクションの {{TOOLS}} をツール一覧で置換する。
func (s *Sections) RenderAction(toolsSummary string) string {
	return strings.ReplaceAll(s.Action, toolsPlaceholder, toolsSummary)
}
