package question

import (
	"time"

	"github.com/google/uuid"
)

// Labels for the four multiple-choice positions, in order.
var Labels = [4]string{"A", "B", "C", "D"}

// Difficulty levels accepted on a Question.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Option is a single multiple-choice option at a labeled position.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question is a finished multiple-choice trivia question. It is immutable
// after assembly; every Question that leaves this package has passed Validate.
type Question struct {
	ID           uuid.UUID `json:"id"`
	Prompt       string    `json:"prompt"`
	Options      [4]Option `json:"options"`
	CorrectLabel string    `json:"correct_answer"`
	Explanation  string    `json:"explanation"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CorrectText returns the text of the option the correct label points at,
// or "" if the label is unknown.
func (q Question) CorrectText() string {
	for _, opt := range q.Options {
		if opt.Label == q.CorrectLabel {
			return opt.Text
		}
	}
	return ""
}

// OptionSet is the output of the distractor builder: four labeled options and
// the label holding the correct answer.
type OptionSet struct {
	Options      [4]Option
	CorrectLabel string
}
