// Package planner はモデル出力テキストを検証済みの Plan に変換する。
package planner

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/0x6b61/tesaki/internal/tools"
	"github.com/0x6b61/tesaki/pkg/schema"
)

// jsonBlockRe は LLM がコードブロックで JSON を返した場合に抽出するパターン。
var jsonBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*({.*?})\\s*```")

// ParseError はモデル出力を Plan JSON として解釈できなかったことを表す。
// Raw に元テキストを保持し、呼び出し側が診断表示に使えるようにする。
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("planner: model output is not a valid plan: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownToolError は Plan が未登録ツールを参照したことを表す。
type UnknownToolError struct {
	Index int // 0始まりの Action 位置
	Tool  string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("planner: action %d references unknown tool %q", e.Index+1, e.Tool)
}

// ValidationError は Action の引数がツールスキーマに適合しないことを表す。
type ValidationError struct {
	Index  int
	Tool   string
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("planner: action %d (%s): arg %q %s", e.Index+1, e.Tool, e.Param, e.Reason)
}

// Planner はモデル出力のパースと Registry に対する検証を行う。
type Planner struct {
	reg *tools.Registry
}

// New は reg に対して検証する Planner を返す。
func New(reg *tools.Registry) *Planner {
	return &Planner{reg: reg}
}

// Parse は生テキストから Plan JSON を取り出す。
//
// モデルには「JSON のみで応答せよ」と指示しているが、実際には前置きの文章や
// コードフェンスで包まれて返ってくることがある。ここでは寛容側に倒し、
// 以下の順で抽出を試みる:
//  1. テキスト全体をそのまま JSON として解釈
//  2. コードフェンス内の {…} を抽出
//  3. 最初の { から最後の } までを抽出
// どれも失敗したら ParseError（Raw に元テキスト）。
func (p *Planner) Parse(raw string) (*schema.Plan, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("empty response")}
	}

	if plan, err := decodePlan([]byte(text)); err == nil {
		return plan, nil
	}

	if m := jsonBlockRe.FindStringSubmatch(text); len(m) > 1 {
		if plan, err := decodePlan([]byte(m[1])); err == nil {
			return plan, nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		plan, err := decodePlan([]byte(text[start : end+1]))
		if err == nil {
			return plan, nil
		}
		return nil, &ParseError{Raw: raw, Err: err}
	}

	return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
}

// decodePlan は JSON オブジェクトを Plan にデコードする。
// トップレベルの必須フィールド plan / actions の存在を要求する。
// json.Unmarshal は {} や null も schema.Plan のゼロ値として受理してしまうため、
// キー存在を先に確認してから構造体へデコードする。
func decodePlan(data []byte) (*schema.Plan, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if fields == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	for _, key := range []string{"plan", "actions"} {
		if _, ok := fields[key]; !ok {
			return nil, fmt.Errorf("missing required field %q", key)
		}
	}

	var plan schema.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("invalid plan object: %w", err)
	}
	return &plan, nil
}

// Validate は Plan 全体を Registry に対して検証する。
// 1つでも不正な Action があれば Plan 全体を拒否する（部分実行させない）。
// ツールスキーマにないキーは無視する（エラーにしない）。
func (p *Planner) Validate(plan *schema.Plan) error {
	for i, action := range plan.Actions {
		spec, err := p.reg.Get(action.Tool)
		if err != nil {
			return &UnknownToolError{Index: i, Tool: action.Tool}
		}
		for _, param := range spec.Params {
			v, present := action.Args[param.Name]
			if !present {
				if param.Required {
					return &ValidationError{Index: i, Tool: action.Tool, Param: param.Name, Reason: "is required"}
				}
				continue
			}
			if reason := checkType(v, param.Type); reason != "" {
				return &ValidationError{Index: i, Tool: action.Tool, Param: param.Name, Reason: reason}
			}
		}
	}
	return nil
}

// ParseAndValidate はパースと検証をまとめて行う。
func (p *Planner) ParseAndValidate(raw string) (*schema.Plan, error) {
	plan, err := p.Parse(raw)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// checkType は JSON デコード済みの値が宣言型に適合するか調べる。
// 適合しない場合は理由文字列を返す。
func checkType(v any, t tools.ParamType) string {
	switch t {
	case tools.ParamString:
		if _, ok := v.(string); !ok {
			return "must be a string"
		}
	case tools.ParamInt:
		switch n := v.(type) {
		case float64:
			if n != math.Trunc(n) {
				return "must be an integer, got a fraction"
			}
		case int:
		default:
			return "must be an integer"
		}
	case tools.ParamNumber:
		switch v.(type) {
		case float64, int:
		default:
			return "must be a number"
		}
	case tools.ParamBool:
		if _, ok := v.(bool); !ok {
			return "must be a boolean"
		}
	}
	return ""
}
