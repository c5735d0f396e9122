package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/henzelabs/chattrivia/internal/question"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trivia.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testQuestion(prompt string) question.Question {
	return question.Question{
		ID:     uuid.New(),
		Prompt: prompt,
		Options: [4]question.Option{
			{Label: "A", Text: "Alice"},
			{Label: "B", Text: "Ben"},
			{Label: "C", Text: "Cara"},
			{Label: "D", Text: "Dmitri"},
		},
		CorrectLabel: "B",
		Explanation:  "Ben said it.",
		Category:     "Who Said It?",
		Difficulty:   question.DifficultyMedium,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestSaveBatchAndReadBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	qs := []question.Question{testQuestion("q one?"), testQuestion("q two?")}
	batchID, err := s.SaveBatch(ctx, "who-said-it", qs)
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	got, err := s.Questions(ctx, batchID)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	// Insertion order preserved.
	if got[0].Prompt != "q one?" || got[1].Prompt != "q two?" {
		t.Errorf("prompts = %q, %q", got[0].Prompt, got[1].Prompt)
	}
	if got[0].ID != qs[0].ID {
		t.Errorf("id = %s, want %s", got[0].ID, qs[0].ID)
	}
	if got[0].CorrectLabel != "B" || got[0].Options[1].Text != "Ben" {
		t.Errorf("options round trip broken: %+v", got[0])
	}
	if err := question.Validate(got[0]); err != nil {
		t.Errorf("stored question no longer validates: %v", err)
	}
}

func TestListBatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveBatch(ctx, "who-said-it", []question.Question{testQuestion("a?")}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if _, err := s.SaveBatch(ctx, "stats", []question.Question{testQuestion("b?"), testQuestion("c?")}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	batches, err := s.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}

	total := 0
	for _, b := range batches {
		total += b.Questions
		if b.Mode != "who-said-it" && b.Mode != "stats" {
			t.Errorf("unexpected mode %q", b.Mode)
		}
	}
	if total != 3 {
		t.Errorf("total questions = %d, want 3", total)
	}
}

func TestGetQuestion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := testQuestion("findable?")
	if _, err := s.SaveBatch(ctx, "stats", []question.Question{q}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	got, err := s.GetQuestion(ctx, q.ID)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if got.Prompt != "findable?" {
		t.Errorf("prompt = %q", got.Prompt)
	}

	if _, err := s.GetQuestion(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing question: err = %v, want ErrNotFound", err)
	}
}

func TestGetBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	batchID, err := s.SaveBatch(ctx, "stats", []question.Question{testQuestion("a?"), testQuestion("b?")})
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	b, err := s.GetBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if b.Mode != "stats" || b.Questions != 2 {
		t.Errorf("batch = %+v, want mode stats with 2 questions", b)
	}

	if _, err := s.GetBatch(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing batch: err = %v, want ErrNotFound", err)
	}
}

func TestCountQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	if n != 0 {
		t.Errorf("empty store count = %d, want 0", n)
	}

	if _, err := s.SaveBatch(ctx, "stats", []question.Question{testQuestion("a?"), testQuestion("b?"), testQuestion("c?")}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	n, err = s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("CountQuestions: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestAllQuestions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveBatch(ctx, "stats", []question.Question{testQuestion("a?"), testQuestion("b?")}); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	qs, err := s.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("AllQuestions: %v", err)
	}
	if len(qs) != 2 {
		t.Errorf("got %d questions, want 2", len(qs))
	}
}
