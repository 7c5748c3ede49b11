// Package resolve はフォルダエイリアスの正規化とファジーファイル名検索を提供する。
package resolve

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MatchCandidate はファジー検索の1候補。
// 単一の Resolve 呼び出し内で生成・消費され、永続化されない。
type MatchCandidate struct {
	Path   string  // 解決済みファイルシステムパス
	Score  float64 // 類似度 [0,1]
	IsDir  bool
	Size   int64 // ディレクトリの場合は 0
	Exists bool
}

// Config は Resolver の閾値・探索予算を保持する。
type Config struct {
	// Threshold 未満の候補は破棄される。
	Threshold float64
	// HighConfidence 以上のトップ候補は曖昧さ解消なしで使ってよい。
	HighConfidence float64
	MaxResults     int
	// Extensions は拡張子なしクエリに補って試す拡張子。
	Extensions []string
	// MaxEntries は再帰探索時のエントリ数予算。超過した root は打ち切る。
	MaxEntries int
}

// Options は Resolve 呼び出しごとの指定。ゼロ値は Config のデフォルトに従う。
type Options struct {
	// Recursive は root 以下を再帰的に走査する（デフォルトは非再帰）。
	Recursive  bool
	MaxResults int
	Threshold  float64
}

// Resolver は固定の search root 集合に対する近似ファイル名検索器。
// 同一のファイルシステム状態に対しては冪等（同じ入力 → 同じ順序の同じ候補列）。
type Resolver struct {
	cfg     Config
	aliases map[string]string
	warnf   func(format string, args ...any)
}

// DefaultAliases は home 配下の既知フォルダへのエイリアス表を返す。
func DefaultAliases() map[string]string {
	home, err := os.UserHomeDir()
	if err != nil {
		return map[string]string{}
	}
	return map[string]string{
		"downloads": filepath.Join(home, "Downloads"),
		"download":  filepath.Join(home, "Downloads"),
		"documents": filepath.Join(home, "Documents"),
		"document":  filepath.Join(home, "Documents"),
		"desktop":   filepath.Join(home, "Desktop"),
		"home":      home,
	}
}

// New は Resolver を構築する。
// aliases は DefaultAliases をベースに extra で上書き・追加したもの。
// warnf が nil の場合、読めない root の警告は破棄される。
func New(cfg Config, extra map[string]string, warnf func(format string, args ...any)) *Resolver {
	aliases := DefaultAliases()
	for k, v := range extra {
		aliases[strings.ToLower(k)] = v
	}
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 20
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 10000
	}
	return &Resolver{cfg: cfg, aliases: aliases, warnf: warnf}
}

// HighConfidence は設定済みの確信閾値を返す。
func (r *Resolver) HighConfidence() float64 { return r.cfg.HighConfidence }

// Confident はトップ候補が確信マッチかを返す。
// 確信マッチの場合、呼び出し側は曖昧さ解消なしで候補を使ってよい。
func (r *Resolver) Confident(candidates []MatchCandidate) bool {
	return len(candidates) > 0 && candidates[0].Score >= r.cfg.HighConfidence
}

// Roots は検索対象の root 集合を返す: cwd + 存在する既知ユーザーディレクトリ。
// 重複は除去する（cwd が Downloads 内の場合等）。
func (r *Resolver) Roots() []string {
	var roots []string
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		for _, sub := range []string{"Downloads", "Documents", "Desktop"} {
			dir := filepath.Join(home, sub)
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				roots = append(roots, dir)
			}
		}
	}
	seen := make(map[string]bool, len(roots))
	var unique []string
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		unique = append(unique, abs)
	}
	return unique
}

// errBudgetExceeded は再帰走査のエントリ予算超過を示す内部センチネル。
var errBudgetExceeded = errors.New("entry budget exceeded")

// Resolve は query に対する候補をスコア降順で返す。
// 一致なしは空スライスでありエラーではない。読めないディレクトリは
// 警告を出してスキップし、残りの root の解決を続行する。
func (r *Resolver) Resolve(query string, opts Options) ([]MatchCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("resolve: empty query")
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = r.cfg.Threshold
	}
	maxResults := opts.MaxResults
	if maxResults == 0 {
		maxResults = r.cfg.MaxResults
	}

	var candidates []MatchCandidate
	add := func(path string, d fs.DirEntry) {
		score := r.score(query, d.Name())
		if score < threshold {
			return
		}
		c := MatchCandidate{Path: path, Score: score, IsDir: d.IsDir(), Exists: true}
		if info, err := d.Info(); err == nil && !d.IsDir() {
			c.Size = info.Size()
		}
		candidates = append(candidates, c)
	}

	for _, root := range r.Roots() {
		if opts.Recursive {
			r.walkRoot(root, add)
		} else {
			r.scanRoot(root, add)
		}
	}

	sortCandidates(candidates)
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// scanRoot は root 直下のみを走査する（非再帰、デフォルト）。
func (r *Resolver) scanRoot(root string, add func(string, fs.DirEntry)) {
	entries, err := os.ReadDir(root)
	if err != nil {
		r.warnf("resolve: skipping unreadable root %s: %v", root, err)
		return
	}
	for _, d := range entries {
		add(filepath.Join(root, d.Name()), d)
	}
}

// walkRoot は root 以下を再帰走査する。エントリ予算を超えたら打ち切る。
func (r *Resolver) walkRoot(root string, add func(string, fs.DirEntry)) {
	entries := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			r.warnf("resolve: skipping unreadable path %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		entries++
		if entries > r.cfg.MaxEntries {
			return errBudgetExceeded
		}
		add(path, d)
		return nil
	})
	if errors.Is(err, errBudgetExceeded) {
		r.warnf("resolve: entry budget (%d) exceeded under %s, results truncated", r.cfg.MaxEntries, root)
	}
}

// score は拡張子補完パスを含む最終スコアを返す。
// クエリに拡張子がない場合、設定済み拡張子を付けた変種も試し、
// 高い方のスコアを採用する。
func (r *Resolver) score(query, name string) float64 {
	best := similarity(query, name)
	if !hasExtension(query) {
		for _, ext := range r.cfg.Extensions {
			if s := similarity(query+ext, name); s > best {
				best = s
			}
		}
	}
	return best
}

// sortCandidates はスコア降順、同点は短いパス優先、さらに辞書順で並べる。
// 順序を完全に決定的にして Resolve の冪等性を保証する。
func sortCandidates(candidates []MatchCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.Path) != len(b.Path) {
			return len(a.Path) < len(b.Path)
		}
		return a.Path < b.Path
	})
}

// NormalizePath は LLM 由来のパスを実パスへ正規化する。
//
// 処理内容:
//   - バックスラッシュ区切りを / に変換（'.\foo\bar.txt' 対策）
//   - 先頭セグメントのエイリアス（downloads 等）を実ディレクトリに置換
//   - 中間セグメントのエイリアス（/path/to/downloads/file.txt 形式）も置換
//   - ~ を home に展開し、絶対パス化
func (r *Resolver) NormalizePath(path string) string {
	p := strings.TrimSpace(path)
	p = strings.ReplaceAll(p, `\`, "/")

	parts := splitNonEmpty(p)
	if len(parts) > 0 {
		if base, ok := r.aliases[strings.ToLower(parts[0])]; ok {
			return filepath.Join(append([]string{base}, parts[1:]...)...)
		}
		// 中間セグメントのエイリアス（先頭以外）
		for i := 1; i < len(parts); i++ {
			if base, ok := r.aliases[strings.ToLower(parts[i])]; ok {
				return filepath.Join(append([]string{base}, parts[i+1:]...)...)
			}
		}
	}

	if strings.HasPrefix(p, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + strings.TrimPrefix(p, "~")
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// splitNonEmpty は空セグメントを除いたパスセグメント列を返す。
// 絶対パスでも "/path/to/downloads/x" の中間エイリアスを拾えるよう、
// 先頭の "/" による空要素はここで落とす。
func splitNonEmpty(p string) []string {
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
