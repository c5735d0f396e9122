package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/henzelabs/chattrivia/internal/question"
)

// statPrompt describes one superlative question template.
type statPrompt struct {
	prompt      string
	explanation string
	category    string
	difficulty  string
	metric      func(*SpeakerStats) int
}

var statPrompts = []statPrompt{
	{
		prompt:      "Who sent the most messages overall in these conversations?",
		explanation: "{speaker} sent {count} messages!",
		category:    "Statistics",
		difficulty:  question.DifficultyEasy,
		metric:      func(s *SpeakerStats) int { return s.Messages },
	},
	{
		prompt:      "Who uses the most emojis in their messages?",
		explanation: "{speaker} used {count} emojis!",
		category:    "Emojis",
		difficulty:  question.DifficultyEasy,
		metric:      func(s *SpeakerStats) int { return s.Emojis },
	},
	{
		prompt:      "Who has the filthiest mouth and curses the most?",
		explanation: "{speaker} dropped {count} curse words! Wash that mouth out!",
		category:    "Savage Stats",
		difficulty:  question.DifficultyEasy,
		metric:      func(s *SpeakerStats) int { return s.CurseWords },
	},
	{
		prompt:      "Who's the biggest insomniac, texting at ungodly hours?",
		explanation: "{speaker} sent {count} messages between midnight and 6 AM. Sleep is for the weak!",
		category:    "Savage Stats",
		difficulty:  question.DifficultyMedium,
		metric:      func(s *SpeakerStats) int { return s.LateNight },
	},
	{
		prompt:      "Who hands out the most tapback reactions?",
		explanation: "{speaker} reacted to {count} messages. Engagement royalty!",
		category:    "Habits",
		difficulty:  question.DifficultyMedium,
		metric:      func(s *SpeakerStats) int { return s.ReactionsGiven },
	},
}

// Questions turns each metric leader into a multiple-choice question. Metrics
// with no data and metrics whose roster cannot supply four options are
// skipped; only a malformed assembled question is fatal.
func (r *Report) Questions(roster question.Roster, rng *rand.Rand, logger *slog.Logger) ([]question.Question, error) {
	var out []question.Question
	for _, sp := range statPrompts {
		leader, count, ok := r.Leader(sp.metric)
		if !ok {
			continue
		}

		set, err := question.BuildOptions(leader, roster, rng)
		if err != nil {
			if errors.Is(err, question.ErrInsufficientCandidates) {
				logger.Warn("skipping stat question", "prompt", sp.prompt, "error", err)
				continue
			}
			return nil, fmt.Errorf("build options: %w", err)
		}

		q, err := question.AssembleStat(sp.prompt, set, count, sp.category, sp.difficulty, sp.explanation)
		if err != nil {
			return nil, fmt.Errorf("assemble stat question: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}
