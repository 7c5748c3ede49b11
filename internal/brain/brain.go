// Package brain はローカル LLM（Ollama デーモン）との対話を抽象化する。
package brain

import (
	"context"
	"os"
	"time"
)

// Brain は LLM との対話インターフェース。
type Brain interface {
	// Chat は自由対話モード。ユーザーの質問に対するテキスト応答を返す。
	Chat(ctx context.Context, query string) (string, error)

	// Act はアクションモード。ツール一覧を注入したシステムプロンプトで
	// Plan JSON の生テキストを返す。パースは planner の責務。
	Act(ctx context.Context, query, toolsSummary string) (string, error)
}

// Config は Brain の接続設定を保持する。
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LoadConfig は defaults をベースに環境変数で上書きした Config を返す。
//
// 環境変数:
//   - OLLAMA_BASE_URL : Ollama デーモンのベース URL
//   - TESAKI_MODEL    : 使用するモデル名
func LoadConfig(defaults Config) Config {
	cfg := defaults
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("TESAKI_MODEL"); v != "" {
		cfg.Model = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return cfg
}
