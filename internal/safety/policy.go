// Package safety はシェルコマンドの実行前チェックを提供する。
package safety

import "strings"

// Policy はシェルコマンド文字列の危険パターン（deny-list）を保持する。
// 部分文字列の包含判定のみを行う鈍い仕組みであり、意味解析ではない。
// 過剰ブロックも過少ブロックも起こり得る（既知の制限）。
type Policy struct {
	patterns []string
}

// NewPolicy は patterns から Policy を返す。
// 空文字列のパターンは全コマンドに一致してしまうためスキップする。
func NewPolicy(patterns []string) *Policy {
	p := &Policy{}
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		p.patterns = append(p.patterns, pat)
	}
	return p
}

// IsDangerous は command が deny-list のいずれかを含むか検査する。
// 大文字小文字を区別した部分文字列一致。副作用なし。
func (p *Policy) IsDangerous(command string) bool {
	_, found := p.Match(command)
	return found
}

// Match は最初に一致した deny-list パターンを返す（エラーメッセージ用）。
func (p *Policy) Match(command string) (pattern string, found bool) {
	for _, pat := range p.patterns {
		if strings.Contains(command, pat) {
			return pat, true
		}
	}
	return "", false
}
