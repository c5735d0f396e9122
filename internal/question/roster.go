package question

// Roster is the ordered set of canonical speaker names eligible to appear as
// multiple-choice options. It is read-only after construction.
type Roster struct {
	names []string
	seen  map[string]bool
}

// NewRoster builds a roster from the given names, dropping empty strings and
// exact duplicates while preserving first-seen order.
func NewRoster(names []string) Roster {
	r := Roster{seen: make(map[string]bool, len(names))}
	for _, name := range names {
		if name == "" || r.seen[name] {
			continue
		}
		r.seen[name] = true
		r.names = append(r.names, name)
	}
	return r
}

// Names returns a copy of the roster in order.
func (r Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Contains reports whether name is on the roster.
func (r Roster) Contains(name string) bool {
	return r.seen[name]
}

// Len returns the number of distinct names on the roster.
func (r Roster) Len() int {
	return len(r.names)
}
