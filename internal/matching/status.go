package matching

import "fmt"

// Status tracks a match through the application lifecycle.
//
// Valid status graph:
//
//	new ──► seen ──► applied
//	 │        │         │
//	 └────────┴─────────┴──► rejected
//
// rejected is terminal and excluded from default listings. Rescoring never
// touches the status; only user actions move it.
type Status string

const (
	StatusNew      Status = "new"
	StatusSeen     Status = "seen"
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusNew:     {StatusSeen, StatusRejected},
	StatusSeen:    {StatusApplied, StatusRejected},
	StatusApplied: {StatusRejected},
	// rejected has no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusNew, StatusSeen, StatusApplied, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by the
// state machine.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}
