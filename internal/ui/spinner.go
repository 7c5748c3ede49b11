package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// taskDoneMsg はバックグラウンド処理の完了通知。
type taskDoneMsg struct {
	result string
	err    error
}

// spinnerModel はモデル応答待ちのスピナー表示。
type spinnerModel struct {
	sp      spinner.Model
	message string
	result  string
	err     error
	done    bool
}

func newSpinnerModel(message string) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)
	return spinnerModel{sp: sp, message: message}
}

func (m spinnerModel) Init() tea.Cmd { return m.sp.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.result = msg.result
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("ui: interrupted")
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.sp, cmd = m.sp.Update(msg)
	return m, cmd
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.sp.View(), hintStyle.Render(m.message))
}

// WithSpinner は fn の実行中スピナーを表示し、fn の結果をそのまま返す。
// モデル応答待ちのように数秒かかる処理を包むために使う。
func WithSpinner(message string, fn func() (string, error)) (string, error) {
	p := tea.NewProgram(newSpinnerModel(message))
	go func() {
		result, err := fn()
		p.Send(taskDoneMsg{result: result, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("ui: spinner: %w", err)
	}
	m, ok := final.(spinnerModel)
	if !ok {
		return "", fmt.Errorf("ui: spinner: unexpected model type")
	}
	return m.result, m.err
}
