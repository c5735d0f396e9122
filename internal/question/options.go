package question

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInsufficientCandidates is returned when the roster plus the correct
// answer cannot supply four distinct option texts. Recoverable: callers skip
// the question or widen the roster.
var ErrInsufficientCandidates = errors.New("insufficient distinct option candidates")

// BuildOptions assembles a four-option multiple-choice set for correct: three
// distractors drawn uniformly without replacement from the roster, shuffled
// together with the correct answer, labeled A–D positionally.
//
// If correct is not on the roster it participates for this call only; the
// roster is never mutated. The rng is caller-supplied so a seeded source
// yields reproducible output.
func BuildOptions(correct string, roster Roster, rng *rand.Rand) (OptionSet, error) {
	if correct == "" {
		return OptionSet{}, fmt.Errorf("%w: empty correct value", ErrInsufficientCandidates)
	}

	var candidates []string
	for _, name := range roster.names {
		if name != correct {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) < 3 {
		return OptionSet{}, fmt.Errorf("%w: need 3 distractors, roster offers %d", ErrInsufficientCandidates, len(candidates))
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	values := append([]string{correct}, candidates[:3]...)
	rng.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	var set OptionSet
	for i, v := range values {
		set.Options[i] = Option{Label: Labels[i], Text: v}
		if v == correct {
			set.CorrectLabel = Labels[i]
		}
	}
	return set, nil
}
