package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel は y/n 確認プロンプトの bubbletea モデル。
type confirmModel struct {
	prompt     string
	defaultYes bool
	answer     bool
	answered   bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.answer = true
		m.answered = true
		return m, tea.Quit
	case "n", "N":
		m.answer = false
		m.answered = true
		return m, tea.Quit
	case "enter":
		m.answer = m.defaultYes
		m.answered = true
		return m, tea.Quit
	case "ctrl+c", "esc", "q":
		m.answer = false
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	hint := "[y/N]"
	if m.defaultYes {
		hint = "[Y/n]"
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(m.prompt))
	sb.WriteString(" ")
	sb.WriteString(hintStyle.Render(hint))
	sb.WriteString(" ")
	return sb.String()
}

// Confirm は y/n の確認プロンプトを表示する。
// Enter はデフォルト値、Esc / Ctrl+C は拒否として扱う。
func Confirm(prompt string, defaultYes bool) (bool, error) {
	p := tea.NewProgram(confirmModel{prompt: prompt, defaultYes: defaultYes})
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("ui: confirm prompt: %w", err)
	}
	m, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.answer, nil
}
