package question

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrMalformedQuestion is returned when an assembled or externally supplied
// question violates the record invariants. This indicates a programming or
// configuration error and must not be swallowed.
var ErrMalformedQuestion = errors.New("malformed question")

// maxPromptQuoteLen caps how much of a quote is embedded in the prompt,
// measured in runes. Longer quotes are truncated with an ellipsis.
const maxPromptQuoteLen = 120

// truncateQuote cuts text to maxPromptQuoteLen runes. Truncating on a rune
// boundary keeps the prompt valid UTF-8 even mid-emoji.
func truncateQuote(text string) string {
	if utf8.RuneCountInString(text) <= maxPromptQuoteLen {
		return text
	}
	return string([]rune(text)[:maxPromptQuoteLen]) + "..."
}

// Explanation templates substitute these placeholders.
const (
	placeholderSpeaker = "{speaker}"
	placeholderCount   = "{count}"
	placeholderChat    = "{chat}"
)

// AssembleAttribution builds a "Who said it?" question from a quote, its
// resolved speaker, and a pre-built option set. The explanation template may
// reference {speaker}.
func AssembleAttribution(quoteText, speaker string, set OptionSet, category, difficulty, explanationTpl string) (Question, error) {
	q := Question{
		ID:           uuid.New(),
		Prompt:       fmt.Sprintf("Who said: %q?", truncateQuote(quoteText)),
		Options:      set.Options,
		CorrectLabel: set.CorrectLabel,
		Explanation:  strings.ReplaceAll(explanationTpl, placeholderSpeaker, speaker),
		Category:     category,
		Difficulty:   difficulty,
		CreatedAt:    time.Now().UTC(),
	}
	if err := Validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// AssembleConversation builds a "Which group chat?" question from a quote,
// the chat it was sent in, and a pre-built option set over chat names. The
// explanation template may reference {chat}.
func AssembleConversation(quoteText, conversation string, set OptionSet, category, difficulty, explanationTpl string) (Question, error) {
	q := Question{
		ID:           uuid.New(),
		Prompt:       fmt.Sprintf("Which group chat was this message sent in: %q?", truncateQuote(quoteText)),
		Options:      set.Options,
		CorrectLabel: set.CorrectLabel,
		Explanation:  strings.ReplaceAll(explanationTpl, placeholderChat, conversation),
		Category:     category,
		Difficulty:   difficulty,
		CreatedAt:    time.Now().UTC(),
	}
	if err := Validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// AssembleStat builds a statistic-based superlative question. The prompt is
// caller-supplied; the explanation template may reference {speaker} and
// {count}.
func AssembleStat(prompt string, set OptionSet, count int, category, difficulty, explanationTpl string) (Question, error) {
	explanation := strings.ReplaceAll(explanationTpl, placeholderSpeaker, set.correctText())
	explanation = strings.ReplaceAll(explanation, placeholderCount, fmt.Sprintf("%d", count))

	q := Question{
		ID:           uuid.New(),
		Prompt:       prompt,
		Options:      set.Options,
		CorrectLabel: set.CorrectLabel,
		Explanation:  explanation,
		Category:     category,
		Difficulty:   difficulty,
		CreatedAt:    time.Now().UTC(),
	}
	if err := Validate(q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s OptionSet) correctText() string {
	for _, opt := range s.Options {
		if opt.Label == s.CorrectLabel {
			return opt.Text
		}
	}
	return ""
}

// Validate checks the record invariants: non-empty prompt and explanation,
// four correctly labeled pairwise-distinct options, a correct label that
// resolves to one of them, and a known difficulty. Externally generated
// questions must pass here before they reach storage.
func Validate(q Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("%w: empty prompt", ErrMalformedQuestion)
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("%w: empty explanation", ErrMalformedQuestion)
	}

	seen := make(map[string]bool, 4)
	for i, opt := range q.Options {
		if opt.Label != Labels[i] {
			return fmt.Errorf("%w: option %d labeled %q, want %q", ErrMalformedQuestion, i, opt.Label, Labels[i])
		}
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("%w: option %s is empty", ErrMalformedQuestion, opt.Label)
		}
		if seen[opt.Text] {
			return fmt.Errorf("%w: duplicate option text %q", ErrMalformedQuestion, opt.Text)
		}
		seen[opt.Text] = true
	}

	if q.CorrectText() == "" {
		return fmt.Errorf("%w: correct label %q does not match any option", ErrMalformedQuestion, q.CorrectLabel)
	}

	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrMalformedQuestion, q.Difficulty)
	}

	return nil
}
