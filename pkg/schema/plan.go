// Package schema defines the shared JSON types exchanged between the CLI and the Brain (LLM).
package schema

// Action は Plan 内の1ツール呼び出し。
// Brain が生成した後は不変で、Executor がちょうど1回消費する。
type Action struct {
	// Tool は呼び出すツール名。Registry に登録済みの名前を指す。
	Tool string `json:"tool"`

	// Args はツールに渡す引数（JSON オブジェクト）。
	// 型の検証は planner が Registry のスキーマに対して行う。
	Args map[string]any `json:"args"`
}

// Plan は action モードで Brain が返す JSON ペイロード。
//
// Brain は常に以下の形式で応答する:
//
//	{
//	  "plan": "create jokes.txt in Downloads",
//	  "actions": [
//	    {"tool": "write_file", "args": {"path": "downloads/jokes.txt", "content": "..."}}
//	  ]
//	}
//
// actions が空の Plan も有効で、「実行すべきことがない」を意味する。
type Plan struct {
	// Plan は実行内容の自然言語説明。
	Plan string `json:"plan"`

	// Actions は実行順に並んだツール呼び出し列。
	Actions []Action `json:"actions"`
}
