// Package quotes filters raw chat messages into a pool of quotes eligible
// for trivia questions, and samples from that pool under a per-speaker
// diversity cap.
package quotes

import (
	"strings"
	"unicode/utf8"

	"github.com/henzelabs/chattrivia/internal/chatdb"
)

// Quote is a message that passed eligibility filtering.
type Quote chatdb.Message

// PoolConfig controls quote eligibility. The per-speaker cap is deliberately
// not here — it belongs to the sampler.
type PoolConfig struct {
	MinLength         int
	MaxLength         int
	ExclusionPatterns []string // case-insensitive substrings; matches are dropped
	Keywords          []string // optional allow-list; when set, at least one must appear
}

// Tapback acknowledgments that show up as message text in older exports.
var defaultExclusions = []string{"loved", "laughed at", "liked", "emphasized", "questioned", "reacted"}

// DefaultPoolConfig returns the standard eligibility band.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinLength:         20,
		MaxLength:         150,
		ExclusionPatterns: defaultExclusions,
	}
}

// BuildPool filters msgs into eligible quotes. The filter is stable: output
// preserves input order. Exact duplicates of normalized text (lowercased,
// whitespace-trimmed) are dropped, first occurrence wins.
func BuildPool(msgs []chatdb.Message, cfg PoolConfig) []Quote {
	if cfg.MinLength == 0 && cfg.MaxLength == 0 {
		def := DefaultPoolConfig()
		cfg.MinLength, cfg.MaxLength = def.MinLength, def.MaxLength
	}

	seen := make(map[string]bool)
	var pool []Quote
	for _, m := range msgs {
		text := strings.TrimSpace(m.Text)
		// Length is measured in runes, not bytes, so emoji-heavy
		// messages land in the intended band.
		if n := utf8.RuneCountInString(text); n < cfg.MinLength || n > cfg.MaxLength {
			continue
		}

		lower := strings.ToLower(text)
		if matchesAny(lower, cfg.ExclusionPatterns) {
			continue
		}
		if len(cfg.Keywords) > 0 && !matchesAny(lower, cfg.Keywords) {
			continue
		}
		if seen[lower] {
			continue
		}
		seen[lower] = true

		q := Quote(m)
		q.Text = text
		pool = append(pool, q)
	}
	return pool
}

func matchesAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
