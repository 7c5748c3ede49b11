package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0x6b61/tesaki/internal/brain"
	"github.com/0x6b61/tesaki/internal/config"
	"github.com/0x6b61/tesaki/internal/executor"
	"github.com/0x6b61/tesaki/internal/planner"
	"github.com/0x6b61/tesaki/internal/resolve"
	"github.com/0x6b61/tesaki/internal/safety"
	"github.com/0x6b61/tesaki/internal/tools"
	"github.com/0x6b61/tesaki/internal/ui"
	"github.com/0x6b61/tesaki/pkg/schema"
)

const (
	defaultConfigPath = "config/config.yaml"
	defaultPromptPath = "patterns/prompt.md"
)

func main() {
	// .env はあれば読む（なくてもよい）
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", defaultConfigPath, "設定ファイルのパス")
		model      = flag.String("model", "", "モデル名（省略時は設定ファイルの値）")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	mode := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(*configPath, *model)
	if err != nil {
		fmt.Fprintln(os.Stderr, "初期化エラー:", err)
		os.Exit(1)
	}

	switch mode {
	case "ask":
		query := strings.Join(args[1:], " ")
		if err := app.runAsk(ctx, query); err != nil {
			fmt.Fprintln(os.Stderr, ui.RenderError(err, ui.DefaultWidth))
			os.Exit(1)
		}
	case "do":
		doFlags := flag.NewFlagSet("do", flag.ExitOnError)
		dryRun := doFlags.Bool("dry-run", false, "アクションを実行せずプレビューのみ表示する")
		yes := doFlags.Bool("yes", false, "実行前確認をすべて省略する")
		if err := doFlags.Parse(args[1:]); err != nil {
			os.Exit(2)
		}
		query := strings.Join(doFlags.Args(), " ")
		if strings.TrimSpace(query) == "" {
			usage()
			os.Exit(2)
		}
		if err := app.runDo(ctx, query, *dryRun, *yes); err != nil {
			fmt.Fprintln(os.Stderr, ui.RenderError(err, ui.DefaultWidth))
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "不明なサブコマンド: %q\n\n", mode)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `tesaki — 自然言語ターミナルアシスタント（ローカル LLM / Ollama）

Usage:
  tesaki [flags] ask  <質問...>
  tesaki [flags] do   [--dry-run] [--yes] <依頼...>

Flags:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  OLLAMA_BASE_URL   Ollama サーバー URL (default: http://localhost:11434)
  TESAKI_MODEL      モデル名 (default: llama3.2)

Examples:
  tesaki ask "Go の context の使い方を教えて"
  tesaki do "Downloads にジョークを3つ書いた jokes.txt を作って"
  tesaki do --dry-run "readme を探して要約して"
  tesaki do --yes "report.txt を documents にコピーして"
`)
}

// app は1回の CLI 実行で使うコンポーネント一式。
// 設定はここで一度だけ構築し、各コンストラクタへ明示的に渡す。
type app struct {
	cfg      *config.AppConfig
	resolver *resolve.Resolver
	policy   *safety.Policy
	registry *tools.Registry
	planner  *planner.Planner
	client   *brain.Client
}

func newApp(configPath, modelOverride string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	resolver := resolve.New(resolve.Config{
		Threshold:      cfg.Resolver.Threshold,
		HighConfidence: cfg.Resolver.HighConfidence,
		MaxResults:     cfg.Resolver.MaxResults,
		Extensions:     cfg.Resolver.Extensions,
		MaxEntries:     cfg.Resolver.MaxEntries,
	}, cfg.Aliases, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	})

	policy := safety.NewPolicy(cfg.Blacklist)

	registry := tools.NewRegistry()
	toolset := tools.NewToolset(resolver, cfg.Resolver.MaxEntries)
	if err := tools.RegisterBuiltins(registry, toolset); err != nil {
		return nil, err
	}

	brainCfg := brain.LoadConfig(brain.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Model:   cfg.Ollama.Model,
		Timeout: time.Duration(cfg.Ollama.TimeoutSec) * time.Second,
	})
	if modelOverride != "" {
		brainCfg.Model = modelOverride
	}
	client := brain.NewClient(brainCfg, brain.LoadPromptSections(defaultPromptPath))

	return &app{
		cfg:      cfg,
		resolver: resolver,
		policy:   policy,
		registry: registry,
		planner:  planner.New(registry),
		client:   client,
	}, nil
}

// runAsk は自由対話モード。応答を Markdown としてレンダリングして表示する。
func (a *app) runAsk(ctx context.Context, query string) error {
	reply, err := ui.WithSpinner("考え中...", func() (string, error) {
		return a.client.Chat(ctx, query)
	})
	if err != nil {
		return err
	}

	rendered, err := ui.RenderMarkdown(reply, ui.DefaultWidth)
	if err != nil {
		// レンダリング失敗時はプレーンテキストで出す
		fmt.Println(reply)
		return nil
	}
	fmt.Print(rendered)
	return nil
}

// runDo はアクションモード。Plan を生成・検証・表示し、確認のうえ実行する。
func (a *app) runDo(ctx context.Context, query string, dryRun, yes bool) error {
	raw, err := ui.WithSpinner("計画中...", func() (string, error) {
		return a.client.Act(ctx, query, a.registry.Summary())
	})
	if err != nil {
		return err
	}

	plan, err := a.planner.ParseAndValidate(raw)
	if err != nil {
		var parseErr *planner.ParseError
		if errors.As(err, &parseErr) {
			// 生出力を先に見せてから main のエラー経路で終了する
			fmt.Fprintln(os.Stderr, ui.RenderHint("モデルの生出力:"))
			fmt.Fprintln(os.Stderr, parseErr.Raw)
		}
		return err
	}

	fmt.Print(ui.RenderPlan(plan, ui.DefaultWidth, dryRun))

	if len(plan.Actions) == 0 {
		return nil
	}

	// Plan 全体の事前確認（dry-run と --yes では省略）
	if !dryRun && !yes {
		proceed, err := ui.Confirm("Proceed with these actions?", false)
		if err != nil {
			return err
		}
		if !proceed {
			fmt.Println(ui.RenderHint("Cancelled."))
			return nil
		}
	}

	exec := executor.New(a.registry, a.policy, executor.Options{
		DryRun:      dryRun,
		AutoApprove: yes,
		Confirm: func(action schema.Action, preview string) (bool, error) {
			return ui.Confirm(fmt.Sprintf("Run %s? %s", action.Tool, preview), false)
		},
	})

	results, err := exec.Run(ctx, plan)
	if err != nil {
		return err
	}
	fmt.Print(ui.RenderResults(results, ui.DefaultWidth))

	if !dryRun {
		a.postProcess(ctx, results)
	}
	return nil
}

// postProcess は実行結果に対する追加の対話ステップ。
//   - find_item: 確信マッチが1件なら読み取りを提案する
//   - summarize_file: 取得した本文をモデルに要約させる
func (a *app) postProcess(ctx context.Context, results []executor.ExecutionResult) {
	for _, r := range results {
		if r.Status != executor.StatusSucceeded || r.Result == nil {
			continue
		}
		switch r.Action.Tool {
		case "find_item":
			a.offerRead(ctx, r.Result)
		case "summarize_file":
			a.summarize(ctx, r.Result)
		}
	}
}

// offerRead は find_item の結果に確信マッチが1件だけあるとき読み取りを提案する。
// スコア 0.9 以上ならデフォルト Yes。
func (a *app) offerRead(ctx context.Context, res *tools.Result) {
	candidates, ok := res.Data["candidates"].([]resolve.MatchCandidate)
	if !ok {
		return
	}
	var files []resolve.MatchCandidate
	for _, c := range candidates {
		if !c.IsDir {
			files = append(files, c)
		}
	}

	var best *resolve.MatchCandidate
	var confident []resolve.MatchCandidate
	for _, f := range files {
		if f.Score >= a.resolver.HighConfidence() {
			confident = append(confident, f)
		}
	}
	switch {
	case len(confident) == 1:
		best = &confident[0]
	case len(files) == 1 && files[0].Score >= 0.7:
		best = &files[0]
	default:
		return
	}

	proceed, err := ui.Confirm(
		fmt.Sprintf("Would you like to read %s?", best.Path), best.Score >= 0.9)
	if err != nil || !proceed {
		return
	}

	spec, err := a.registry.Get("read_file")
	if err != nil {
		return
	}
	readRes, err := spec.Handler(ctx, map[string]any{"path": best.Path})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err, ui.DefaultWidth))
		return
	}
	fmt.Println(readRes.Render())
}

// summarize は summarize_file が読んだ本文をモデルに渡して要約させる。
func (a *app) summarize(ctx context.Context, res *tools.Result) {
	content, _ := res.Data["content_preview"].(string)
	if content == "" {
		return
	}
	filePath, _ := res.Data["file_path"].(string)

	prompt := fmt.Sprintf("Please provide a concise summary of this file (%s):\n\n%s", filePath, content)
	summary, err := ui.WithSpinner("要約中...", func() (string, error) {
		return a.client.Chat(ctx, prompt)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err, ui.DefaultWidth))
		return
	}
	rendered, err := ui.RenderMarkdown(summary, ui.DefaultWidth)
	if err != nil {
		fmt.Println(summary)
		return
	}
	fmt.Print(rendered)
}
