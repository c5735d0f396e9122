package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/henzelabs/chattrivia/internal/question"
)

// CandidateQuestion is a question-shaped record as returned by the model.
// It only becomes a question.Question via Convert, which validates it.
type CandidateQuestion struct {
	Prompt      string            `json:"question"`
	Options     map[string]string `json:"options"` // keyed "A".."D"
	Correct     string            `json:"correct_answer"`
	Explanation string            `json:"explanation"`
	Category    string            `json:"category"`
	Difficulty  string            `json:"difficulty"`
}

// GenerateQuestions asks the model for n question candidates grounded in the
// transcript, using a tool call so the response is structured.
func (c *Client) GenerateQuestions(ctx context.Context, transcript string, n int) ([]CandidateQuestion, error) {
	c.logger.Info("generating questions via model", "want", n, "transcript_len", len(transcript))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: questionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(questionUserPrompt, n, transcript)},
		},
		Tools: []openai.Tool{
			{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        "submit_questions",
					Description: "Submit generated trivia questions",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"questions": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"question": map[string]any{"type": "string"},
										"options": map[string]any{
											"type": "object",
											"properties": map[string]any{
												"A": map[string]any{"type": "string"},
												"B": map[string]any{"type": "string"},
												"C": map[string]any{"type": "string"},
												"D": map[string]any{"type": "string"},
											},
											"required": []string{"A", "B", "C", "D"},
										},
										"correct_answer": map[string]any{"type": "string", "enum": []string{"A", "B", "C", "D"}},
										"explanation":    map[string]any{"type": "string"},
										"category":       map[string]any{"type": "string"},
										"difficulty":     map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
									},
									"required": []string{"question", "options", "correct_answer", "explanation"},
								},
							},
						},
						"required": []string{"questions"},
					},
				},
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: "submit_questions"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("question generation: empty response")
	}

	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, fmt.Errorf("question generation: no tool call in response")
	}
	if calls[0].Function.Name != "submit_questions" {
		return nil, fmt.Errorf("question generation: unexpected tool call %q", calls[0].Function.Name)
	}

	var args struct {
		Questions []CandidateQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(calls[0].Function.Arguments), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}

	c.logger.Info("question candidates received", "count", len(args.Questions))
	return args.Questions, nil
}

// Convert turns a model candidate into a validated question.Question. Missing
// category and difficulty get defaults; everything else must hold up under
// question.Validate or the candidate is rejected.
func Convert(cand CandidateQuestion) (question.Question, error) {
	q := question.Question{
		ID:           uuid.New(),
		Prompt:       cand.Prompt,
		CorrectLabel: cand.Correct,
		Explanation:  cand.Explanation,
		Category:     cand.Category,
		Difficulty:   cand.Difficulty,
		CreatedAt:    time.Now().UTC(),
	}
	if q.Category == "" {
		q.Category = "Group Chat"
	}
	if q.Difficulty == "" {
		q.Difficulty = question.DifficultyMedium
	}
	for i, label := range question.Labels {
		q.Options[i] = question.Option{Label: label, Text: cand.Options[label]}
	}

	if err := question.Validate(q); err != nil {
		return question.Question{}, err
	}
	return q, nil
}
