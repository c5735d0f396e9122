package quotes

import "math/rand"

// Order selects the iteration order for Sample.
type Order int

const (
	// OrderStable iterates the pool in input order.
	OrderStable Order = iota
	// OrderRandom iterates a uniformly shuffled copy of the pool,
	// materialized once at the start of the call.
	OrderRandom
)

// Sample greedily selects up to count quotes from the pool such that no
// speaker contributes more than maxPerSpeaker. A result shorter than count is
// not an error; callers that care must compare len(result) to count. The rng
// is only consulted for OrderRandom, so a seeded source makes the selection
// reproducible.
func Sample(pool []Quote, count, maxPerSpeaker int, order Order, rng *rand.Rand) []Quote {
	if count <= 0 || maxPerSpeaker <= 0 || len(pool) == 0 {
		return nil
	}

	candidates := pool
	if order == OrderRandom {
		candidates = make([]Quote, len(pool))
		copy(candidates, pool)
		rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
	}

	perSpeaker := make(map[string]int)
	var selected []Quote
	for _, q := range candidates {
		if len(selected) == count {
			break
		}
		if perSpeaker[q.SpeakerName] >= maxPerSpeaker {
			continue
		}
		perSpeaker[q.SpeakerName]++
		selected = append(selected, q)
	}
	return selected
}
