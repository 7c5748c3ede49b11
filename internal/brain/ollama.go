package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client は Ollama のネイティブ chat API を使う Brain 実装。
//
// Ollama native API:
//
//	POST <base_url>/api/chat
//	{"model": "...", "messages": [...], "stream": false}
//	→ {"message": {"role": "assistant", "content": "..."}}
//
// https://github.com/ollama/ollama/blob/main/docs/api.md
type Client struct {
	baseURL string
	model   string
	http    *http.Client
	prompts *Sections
}

// NewClient は Config と プロンプトセクションから Client を構築する。
func NewClient(cfg Config, prompts *Sections) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: cfg.Timeout},
		prompts: prompts,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat は自由対話モードでクエリを送る。
func (c *Client) Chat(ctx context.Context, query string) (string, error) {
	return c.send(ctx, c.prompts.Chat, query)
}

// Act はアクションモードでクエリを送り、Plan JSON の生テキストを返す。
func (c *Client) Act(ctx context.Context, query, toolsSummary string) (string, error) {
	return c.send(ctx, c.prompts.RenderAction(toolsSummary), query)
}

func (c *Client) send(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("brain: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("brain: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("brain: ollama request failed (is the daemon running at %s?): %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("brain: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("brain: ollama returned status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("brain: decode response: %w", err)
	}
	return parsed.Message.Content, nil
}
