// Package trivia fetches general-knowledge questions from the Open Trivia
// Database so a game is not wall-to-wall inside jokes.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/henzelabs/chattrivia/internal/question"
)

const apiURL = "https://opentdb.com/api.php"

// Open Trivia DB category ids.
const (
	CategoryGeneral    = 9
	CategoryFilm       = 11
	CategoryMusic      = 12
	CategoryTelevision = 14
	CategoryScience    = 17
	CategorySports     = 21
	CategoryGeography  = 22
	CategoryHistory    = 23
)

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(logger *slog.Logger) *Client {
	return &Client{
		baseURL: apiURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// SetTestBaseURL points the client at a test server.
func (c *Client) SetTestBaseURL(url string) {
	c.baseURL = url
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// Fetch returns up to amount multiple-choice questions. category 0 means any
// category, difficulty "" means any difficulty. The rng shuffles each
// question's options so the correct answer is not always last. Records that
// do not survive validation (for example duplicate answer texts after HTML
// unescaping) are dropped with a warning.
func (c *Client) Fetch(ctx context.Context, amount, category int, difficulty string, rng *rand.Rand) ([]question.Question, error) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	params.Set("type", "multiple")
	if category > 0 {
		params.Set("category", strconv.Itoa(category))
	}
	if difficulty != "" {
		params.Set("difficulty", difficulty)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if apiResp.ResponseCode != 0 {
		return nil, fmt.Errorf("api response code %d", apiResp.ResponseCode)
	}

	var out []question.Question
	for _, aq := range apiResp.Results {
		q, err := convert(aq, rng)
		if err != nil {
			c.logger.Warn("dropping fetched question", "question", aq.Question, "error", err)
			continue
		}
		out = append(out, q)
	}

	c.logger.Info("general trivia fetched", "requested", amount, "produced", len(out))
	return out, nil
}

// convert shuffles the answers into labeled options, unescaping the HTML
// entities the API ships ("&quot;" and friends).
func convert(aq apiQuestion, rng *rand.Rand) (question.Question, error) {
	if len(aq.IncorrectAnswers) != 3 {
		return question.Question{}, fmt.Errorf("expected 3 incorrect answers, got %d", len(aq.IncorrectAnswers))
	}

	correct := html.UnescapeString(aq.CorrectAnswer)
	answers := []string{correct}
	for _, a := range aq.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	rng.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	category := html.UnescapeString(aq.Category)
	q := question.Question{
		ID:          uuid.New(),
		Prompt:      html.UnescapeString(aq.Question),
		Explanation: fmt.Sprintf("Category: %s", category),
		Category:    category,
		Difficulty:  aq.Difficulty,
		CreatedAt:   time.Now().UTC(),
	}
	for i, label := range question.Labels {
		q.Options[i] = question.Option{Label: label, Text: answers[i]}
		if answers[i] == correct {
			q.CorrectLabel = label
		}
	}

	if err := question.Validate(q); err != nil {
		return question.Question{}, err
	}
	return q, nil
}
