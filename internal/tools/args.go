package tools

import "fmt"

// 引数アクセサ。JSON 由来の map[string]any から型付きの値を取り出す。
// 型検証は planner が済ませている前提だが、ここでも安全側に倒す。

// stringArg は必須文字列引数を取り出す。
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("tools: missing required arg %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("tools: arg %q must be a string", key)
	}
	return s, nil
}

// optStringArg は省略可能な文字列引数を取り出す。
func optStringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// optIntArg は省略可能な整数引数を取り出す。
// encoding/json は数値を float64 にデコードするため両方受ける。
func optIntArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

// optBoolArg は省略可能な真偽値引数を取り出す。
func optBoolArg(args map[string]any, key string, fallback bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}
