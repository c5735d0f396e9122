package trivia

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/henzelabs/chattrivia/internal/question"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func apiServer(t *testing.T, payload apiResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "multiple" {
			t.Errorf("type param = %q, want multiple", got)
		}
		json.NewEncoder(w).Encode(payload)
	}))
}

func TestFetch(t *testing.T) {
	server := apiServer(t, apiResponse{
		ResponseCode: 0,
		Results: []apiQuestion{
			{
				Category:         "Entertainment: Film",
				Difficulty:       "medium",
				Question:         "Who directed &quot;Jaws&quot;?",
				CorrectAnswer:    "Steven Spielberg",
				IncorrectAnswers: []string{"George Lucas", "Ridley Scott", "James Cameron"},
			},
		},
	})
	defer server.Close()

	c := NewClient(discardLogger())
	c.SetTestBaseURL(server.URL)

	qs, err := c.Fetch(context.Background(), 1, CategoryFilm, "medium", rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1", len(qs))
	}

	q := qs[0]
	if err := question.Validate(q); err != nil {
		t.Errorf("fetched question does not validate: %v", err)
	}
	if want := `Who directed "Jaws"?`; q.Prompt != want {
		t.Errorf("prompt = %q, want %q (HTML entities unescaped)", q.Prompt, want)
	}
	if q.CorrectText() != "Steven Spielberg" {
		t.Errorf("correct text = %q, want Steven Spielberg", q.CorrectText())
	}
	if q.Category != "Entertainment: Film" || q.Difficulty != "medium" {
		t.Errorf("category/difficulty = %q/%q", q.Category, q.Difficulty)
	}
}

func TestFetch_DropsMalformedRecords(t *testing.T) {
	server := apiServer(t, apiResponse{
		ResponseCode: 0,
		Results: []apiQuestion{
			{
				// True/false shaped record sneaking into a multiple batch.
				Category:         "General Knowledge",
				Difficulty:       "easy",
				Question:         "The sky is blue.",
				CorrectAnswer:    "True",
				IncorrectAnswers: []string{"False"},
			},
			{
				Category:         "General Knowledge",
				Difficulty:       "easy",
				Question:         "What is the largest planet in the solar system?",
				CorrectAnswer:    "Jupiter",
				IncorrectAnswers: []string{"Saturn", "Neptune", "Earth"},
			},
		},
	})
	defer server.Close()

	c := NewClient(discardLogger())
	c.SetTestBaseURL(server.URL)

	qs, err := c.Fetch(context.Background(), 2, 0, "", rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1 (malformed record dropped)", len(qs))
	}
	if qs[0].CorrectText() != "Jupiter" {
		t.Errorf("correct text = %q, want Jupiter", qs[0].CorrectText())
	}
}

func TestFetch_NonZeroResponseCode(t *testing.T) {
	server := apiServer(t, apiResponse{ResponseCode: 1})
	defer server.Close()

	c := NewClient(discardLogger())
	c.SetTestBaseURL(server.URL)

	if _, err := c.Fetch(context.Background(), 5, 0, "", rand.New(rand.NewSource(7))); err == nil {
		t.Fatal("expected error on response code 1, got nil")
	}
}

func TestFetch_ShuffleIsSeeded(t *testing.T) {
	payload := apiResponse{
		ResponseCode: 0,
		Results: []apiQuestion{
			{
				Category:         "Geography",
				Difficulty:       "easy",
				Question:         "What is the capital of Australia?",
				CorrectAnswer:    "Canberra",
				IncorrectAnswers: []string{"Sydney", "Melbourne", "Perth"},
			},
		},
	}

	fetch := func() question.Question {
		server := apiServer(t, payload)
		defer server.Close()
		c := NewClient(discardLogger())
		c.SetTestBaseURL(server.URL)
		qs, err := c.Fetch(context.Background(), 1, 0, "", rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		return qs[0]
	}

	a, b := fetch(), fetch()
	if a.CorrectLabel != b.CorrectLabel {
		t.Errorf("same seed produced labels %q and %q", a.CorrectLabel, b.CorrectLabel)
	}
	for i := range a.Options {
		if a.Options[i].Text != b.Options[i].Text {
			t.Errorf("option %d differs under same seed: %q vs %q", i, a.Options[i].Text, b.Options[i].Text)
		}
	}
}
