// Package identity maps raw sender identifiers (phone numbers, emails,
// platform handles) to canonical display names.
package identity

import (
	"strings"
	"sync"
)

// UnknownSender is returned for empty sender identifiers.
const UnknownSender = "Unknown Sender"

// Resolver maps raw sender ids to display names. The mapping table is
// caller-owned configuration copied at construction; Register adds entries at
// runtime under a lock. Resolve is a pure lookup and safe for concurrent use
// as long as Register calls are not interleaved with each other.
type Resolver struct {
	mu      sync.RWMutex
	mapping map[string]string
}

// NewResolver copies the given mapping into a new resolver. A nil mapping is
// allowed; every lookup then falls through to the raw id.
func NewResolver(mapping map[string]string) *Resolver {
	m := make(map[string]string, len(mapping))
	for k, v := range mapping {
		m[k] = v
	}
	return &Resolver{mapping: m}
}

// Register adds or replaces a mapping for the remainder of the run.
func (r *Resolver) Register(raw, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapping[raw] = name
}

// Resolve returns the display name for a raw sender id. Lookup order: exact
// match, normalized phone number, bare national number without the "+1"
// prefix. Unmatched ids come back unchanged; empty input resolves to
// UnknownSender. Total over any string.
func (r *Resolver) Resolve(raw string) string {
	if raw == "" {
		return UnknownSender
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.mapping[raw]; ok {
		return name
	}

	if name, ok := r.mapping[NormalizePhone(raw)]; ok {
		return name
	}

	if strings.HasPrefix(raw, "+1") && len(raw) > 2 {
		if name, ok := r.mapping[raw[2:]]; ok {
			return name
		}
	}

	return raw
}

// NormalizePhone strips formatting characters from a phone number, keeping
// only digits and a leading "+". Non-phone input (emails, handles) comes out
// as its digit content, which simply misses the table.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		} else if c == '+' && i == 0 {
			b.WriteRune(c)
		}
	}
	return b.String()
}
