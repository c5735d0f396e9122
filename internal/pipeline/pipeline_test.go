package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/henzelabs/chattrivia/internal/chatdb"
	"github.com/henzelabs/chattrivia/internal/enrich"
	"github.com/henzelabs/chattrivia/internal/question"
	"github.com/henzelabs/chattrivia/internal/quotes"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMessages() []chatdb.Message {
	speakers := []string{"Alice", "Ben", "Cara", "Dmitri", "Elle"}
	var msgs []chatdb.Message
	for i := 0; i < 25; i++ {
		s := speakers[i%len(speakers)]
		msgs = append(msgs, chatdb.Message{
			SpeakerID:   s,
			SpeakerName: s,
			Text:        fmt.Sprintf("this is qualifying message number %d from %s", i, s),
		})
	}
	return msgs
}

func testGenerator(enricher *enrich.Client) *Generator {
	return New(Config{
		Pool:          quotes.DefaultPoolConfig(),
		Roster:        question.NewRoster([]string{"Alice", "Ben", "Cara", "Dmitri", "Elle"}),
		MaxPerSpeaker: 2,
		Order:         quotes.OrderStable,
		RNG:           rand.New(rand.NewSource(17)),
		Enricher:      enricher,
		Logger:        discardLogger(),
	})
}

func TestWhoSaidIt_Local(t *testing.T) {
	g := testGenerator(nil)

	qs, err := g.WhoSaidIt(context.Background(), testMessages(), 6)
	if err != nil {
		t.Fatalf("WhoSaidIt: %v", err)
	}
	if len(qs) != 6 {
		t.Fatalf("got %d questions, want 6", len(qs))
	}

	perSpeaker := make(map[string]int)
	for _, q := range qs {
		if err := question.Validate(q); err != nil {
			t.Errorf("invalid question: %v", err)
		}
		if !strings.HasPrefix(q.Prompt, "Who said: ") {
			t.Errorf("prompt = %q", q.Prompt)
		}
		perSpeaker[q.CorrectText()]++
	}
	for speaker, n := range perSpeaker {
		if n > 2 {
			t.Errorf("speaker %s answers %d questions, cap is 2", speaker, n)
		}
	}
}

func TestWhoSaidIt_ShortPool(t *testing.T) {
	g := testGenerator(nil)

	msgs := []chatdb.Message{
		{SpeakerName: "Alice", Text: "only one qualifying message in this whole chat"},
	}
	qs, err := g.WhoSaidIt(context.Background(), msgs, 5)
	if err != nil {
		t.Fatalf("WhoSaidIt: %v", err)
	}
	if len(qs) != 1 {
		t.Errorf("got %d questions, want 1 (short result)", len(qs))
	}
}

func TestWhoSaidIt_SkipsOffRosterSpeakers(t *testing.T) {
	g := New(Config{
		Pool:   quotes.DefaultPoolConfig(),
		Roster: question.NewRoster([]string{"Alice", "Ben"}), // too small for distractors
		RNG:    rand.New(rand.NewSource(1)),
		Logger: discardLogger(),
	})

	qs, err := g.WhoSaidIt(context.Background(), testMessages(), 4)
	if err != nil {
		t.Fatalf("WhoSaidIt: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("got %d questions with a 2-name roster, want 0", len(qs))
	}
}

func TestWhoSaidIt_EnricherCurates(t *testing.T) {
	payload := `[{"quote": "bring your own dice next time", "speaker": "Ben", "reason": "classic Ben."}]`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": payload}},
			},
		})
	}))
	defer server.Close()

	enricher := enrich.NewClient("test-key", "test-model", discardLogger())
	enricher.SetTestBaseURL(server.URL)

	g := testGenerator(enricher)
	qs, err := g.WhoSaidIt(context.Background(), testMessages(), 3)
	if err != nil {
		t.Fatalf("WhoSaidIt: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1 curated", len(qs))
	}
	if qs[0].CorrectText() != "Ben" {
		t.Errorf("correct = %q, want Ben", qs[0].CorrectText())
	}
	if !strings.Contains(qs[0].Explanation, "classic Ben.") {
		t.Errorf("explanation = %q, want curation reason included", qs[0].Explanation)
	}
}

func TestWhoSaidIt_EnricherFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer server.Close()

	enricher := enrich.NewClient("test-key", "test-model", discardLogger())
	enricher.SetTestBaseURL(server.URL)

	g := testGenerator(enricher)
	qs, err := g.WhoSaidIt(context.Background(), testMessages(), 4)
	if err != nil {
		t.Fatalf("WhoSaidIt: %v", err)
	}
	if len(qs) != 4 {
		t.Errorf("got %d questions, want 4 from local fallback", len(qs))
	}
}

func TestWhichChat(t *testing.T) {
	g := testGenerator(nil)

	chatNames := []string{"Family Chaos", "Pool League", "Farkle Friends", "Trivia Night"}
	msgs := testMessages()
	for i := range msgs {
		msgs[i].Conversation = chatNames[i%len(chatNames)]
	}

	qs, err := g.WhichChat(msgs, 4)
	if err != nil {
		t.Fatalf("WhichChat: %v", err)
	}
	if len(qs) != 4 {
		t.Fatalf("got %d questions, want 4", len(qs))
	}
	for _, q := range qs {
		if err := question.Validate(q); err != nil {
			t.Errorf("invalid question: %v", err)
		}
		if !strings.HasPrefix(q.Prompt, "Which group chat was this message sent in: ") {
			t.Errorf("prompt = %q", q.Prompt)
		}
		correct := q.CorrectText()
		found := false
		for _, name := range chatNames {
			if correct == name {
				found = true
			}
		}
		if !found {
			t.Errorf("correct answer %q is not a chat name", correct)
		}
	}
}

func TestWhichChat_SkipsUnnamedConversations(t *testing.T) {
	g := testGenerator(nil)

	// Only two named chats: never enough distractors, and some quotes carry
	// no chat name at all.
	msgs := testMessages()
	for i := range msgs {
		if i%2 == 0 {
			msgs[i].Conversation = "Pool League"
		} else if i%3 == 0 {
			msgs[i].Conversation = "Trivia Night"
		}
	}

	qs, err := g.WhichChat(msgs, 5)
	if err != nil {
		t.Fatalf("WhichChat: %v", err)
	}
	if len(qs) != 0 {
		t.Errorf("got %d questions with 2 named chats, want 0", len(qs))
	}
}

func TestStatQuestions(t *testing.T) {
	g := testGenerator(nil)

	msgs := testMessages()
	msgs = append(msgs, chatdb.Message{SpeakerName: "Ben", Text: "fuck, forgot the dice again"})
	reactions := []chatdb.Reaction{{ReactorName: "Cara", Kind: 2000}}

	qs, err := g.StatQuestions(msgs, reactions)
	if err != nil {
		t.Fatalf("StatQuestions: %v", err)
	}
	if len(qs) == 0 {
		t.Fatal("no stat questions produced")
	}
	for _, q := range qs {
		if err := question.Validate(q); err != nil {
			t.Errorf("invalid stat question: %v", err)
		}
	}
}

func TestEnriched(t *testing.T) {
	args, _ := json.Marshal(map[string]any{
		"questions": []map[string]any{
			{
				"question":       "Who keeps losing at farkle?",
				"options":        map[string]string{"A": "Alice", "B": "Ben", "C": "Cara", "D": "Dmitri"},
				"correct_answer": "B",
				"explanation":    "Ben lost three weeks running.",
			},
			{
				// Duplicate options: must be dropped, not stored.
				"question":       "Broken question?",
				"options":        map[string]string{"A": "Alice", "B": "Alice", "C": "Cara", "D": "Dmitri"},
				"correct_answer": "A",
				"explanation":    "nope",
			},
		},
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{
						{"id": "c1", "type": "function", "function": map[string]any{
							"name": "submit_questions", "arguments": string(args),
						}},
					},
				}},
			},
		})
	}))
	defer server.Close()

	enricher := enrich.NewClient("test-key", "test-model", discardLogger())
	enricher.SetTestBaseURL(server.URL)

	g := testGenerator(enricher)
	qs, err := g.Enriched(context.Background(), testMessages(), 2)
	if err != nil {
		t.Fatalf("Enriched: %v", err)
	}
	if len(qs) != 1 {
		t.Fatalf("got %d questions, want 1 (invalid candidate dropped)", len(qs))
	}
	if qs[0].Prompt != "Who keeps losing at farkle?" {
		t.Errorf("prompt = %q", qs[0].Prompt)
	}
}

func TestEnriched_RequiresEnricher(t *testing.T) {
	g := testGenerator(nil)
	if _, err := g.Enriched(context.Background(), testMessages(), 2); err == nil {
		t.Fatal("expected error without enricher, got nil")
	}
}

func TestRosterFromMessages(t *testing.T) {
	msgs := []chatdb.Message{
		{SpeakerName: "Ben"}, {SpeakerName: "Alice"}, {SpeakerName: "Ben"},
	}
	r := RosterFromMessages(msgs)
	if r.Len() != 2 {
		t.Errorf("roster len = %d, want 2", r.Len())
	}
	if got := r.Names()[0]; got != "Ben" {
		t.Errorf("first name = %q, want Ben (first seen)", got)
	}
}
