package resolve

import (
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
)

// similarity はクエリとファイル名の類似度を [0,1] で返す。
//
// ヒューリスティクスの優先順位（最初に当たったものを採用）:
//  1. 完全一致（大文字小文字無視） = 1.0
//  2. 前方一致 = 0.95、部分文字列 = 0.85
//  3. 拡張子を除いた stem との一致 = 0.9 / 0.8 / 0.7
//  4. 編集距離ベースの比率（stem 側は 1.05 倍ボーナス、上限 1.0）
func similarity(query, target string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	t := strings.ToLower(target)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 1.0
	}
	if strings.Contains(t, q) {
		if strings.HasPrefix(t, q) {
			return 0.95
		}
		return 0.85
	}
	stem := strings.TrimSuffix(t, filepath.Ext(t))
	if !hasExtension(q) && stem != t {
		if q == stem {
			return 0.9
		}
		if strings.Contains(stem, q) {
			if strings.HasPrefix(stem, q) {
				return 0.8
			}
			return 0.7
		}
	}
	ratio := levenshteinRatio(q, t)
	if stem != t {
		if r := levenshteinRatio(q, stem) * 1.05; r > ratio {
			ratio = r
		}
	}
	if ratio > 1.0 {
		ratio = 1.0
	}
	return ratio
}

// levenshteinRatio は 1 - dist/maxLen で正規化した類似度を返す。
func levenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(maxLen)
}

// hasExtension はクエリが拡張子らしき末尾（.x 形式）を持つかを返す。
func hasExtension(s string) bool {
	ext := filepath.Ext(s)
	return ext != "" && ext != "."
}
