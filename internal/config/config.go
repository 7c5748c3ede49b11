package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// OllamaConfig は Model Client（Ollama デーモン）への接続設定
type OllamaConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout"`
}

// ResolverConfig はファジーマッチ解決の動作設定
type ResolverConfig struct {
	// Threshold 未満のスコアの候補は破棄される。
	Threshold float64 `yaml:"threshold"`
	// HighConfidence 以上のトップ候補は「確信マッチ」として扱われる。
	HighConfidence float64 `yaml:"high_confidence"`
	MaxResults     int     `yaml:"max_results"`
	// Extensions は拡張子なしクエリに補って試す拡張子リスト。
	Extensions []string `yaml:"extensions"`
	// MaxEntries は再帰検索時に走査するエントリ数の上限（暗黙クローラ化防止）。
	MaxEntries int `yaml:"max_entries"`
}

// AppConfig は config/config.yaml の統合設定構造。
// プロセス起動時に一度だけ構築し、各コンポーネントのコンストラクタへ渡す。
// グローバル可変状態は持たない。
type AppConfig struct {
	Ollama    OllamaConfig      `yaml:"ollama"`
	Blacklist []string          `yaml:"blacklist"`
	Aliases   map[string]string `yaml:"aliases"`
	Resolver  ResolverConfig    `yaml:"resolver"`
}

// DefaultBlacklist はシェルコマンドの危険部分文字列のデフォルト。
// 意図的に鈍い deny-list であり、意味解析は行わない（過剰・過少ブロック両方あり得る）。
var DefaultBlacklist = []string{
	"rm -rf /",
	"mkfs",
	":(){ :|:& };:",
}

// applyDefaults はゼロ値のフィールドにデフォルト値を適用する
func (c *AppConfig) applyDefaults() {
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.2"
	}
	if c.Ollama.TimeoutSec == 0 {
		c.Ollama.TimeoutSec = 60
	}
	if c.Blacklist == nil {
		c.Blacklist = append([]string(nil), DefaultBlacklist...)
	}
	if c.Resolver.Threshold == 0 {
		c.Resolver.Threshold = 0.6
	}
	if c.Resolver.HighConfidence == 0 {
		c.Resolver.HighConfidence = 0.85
	}
	if c.Resolver.MaxResults == 0 {
		c.Resolver.MaxResults = 20
	}
	if c.Resolver.Extensions == nil {
		c.Resolver.Extensions = []string{".md", ".txt", ".go", ".py", ".json", ".yaml"}
	}
	if c.Resolver.MaxEntries == 0 {
		c.Resolver.MaxEntries = 10000
	}
}

// Load は config/config.yaml を読み込む。
// ${VAR} 環境変数を展開する。
// ファイルが存在しない場合はデフォルトの AppConfig を返す。
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := &AppConfig{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	// 環境変数を展開（ollama.base_url や aliases の ${VAR}）
	cfg.Ollama.BaseURL = expandEnvString(cfg.Ollama.BaseURL)
	cfg.Ollama.Model = expandEnvString(cfg.Ollama.Model)
	for k, v := range cfg.Aliases {
		cfg.Aliases[k] = expandEnvString(v)
	}

	// デフォルト値の適用
	cfg.applyDefaults()

	return &cfg, nil
}

// expandEnvString は文字列内の ${VAR} をホスト環境変数で展開する
func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
