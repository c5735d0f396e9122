// Package enrich is the LLM collaborator: it curates memorable quotes and
// generates question candidates. Everything it produces is treated as
// untrusted until it passes question.Validate.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/henzelabs/chattrivia/internal/chatdb"
)

// Client wraps the OpenAI chat completion API.
type Client struct {
	api    *openai.Client
	apiKey string
	model  string
	logger *slog.Logger
}

func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		api:    openai.NewClient(apiKey),
		apiKey: apiKey,
		model:  model,
		logger: logger,
	}
}

// SetTestBaseURL points the client at a test server.
func (c *Client) SetTestBaseURL(url string) {
	cfg := openai.DefaultConfig(c.apiKey)
	cfg.BaseURL = url
	c.api = openai.NewClientWithConfig(cfg)
}

// CandidateQuote is a model-selected quote with its claimed speaker.
type CandidateQuote struct {
	Quote   string `json:"quote"`
	Speaker string `json:"speaker"`
	Reason  string `json:"reason"`
}

// SelectQuotes asks the model to pick the n most memorable quotes from the
// given messages. Callers fall back to local sampling on error.
func (c *Client) SelectQuotes(ctx context.Context, msgs []chatdb.Message, n int) ([]CandidateQuote, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	c.logger.Info("selecting quotes via model", "messages", len(msgs), "want", n)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.8,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: quoteSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(quoteUserPrompt, n, Transcript(msgs))},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("quote selection: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("quote selection: empty response")
	}

	raw := stripFences(resp.Choices[0].Message.Content)
	var quotes []CandidateQuote
	if err := json.Unmarshal([]byte(raw), &quotes); err != nil {
		c.logger.Error("failed to parse quote selection", "error", err, "raw", raw)
		return nil, fmt.Errorf("parse quote selection: %w", err)
	}

	c.logger.Info("quotes selected", "count", len(quotes))
	return quotes, nil
}

// Transcript renders messages as numbered "Speaker: text" lines for prompts.
func Transcript(msgs []chatdb.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, m.SpeakerName, m.Text)
	}
	return b.String()
}

// stripFences removes a markdown code fence around a JSON payload, which some
// models insist on adding.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
