package matching

import "testing"

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"new", "seen", "applied", "rejected"} {
		if _, err := ParseStatus(raw); err != nil {
			t.Fatalf("ParseStatus(%q): unexpected error: %v", raw, err)
		}
	}

	for _, raw := range []string{"", "New", "archived", "in_progress"} {
		if _, err := ParseStatus(raw); err == nil {
			t.Fatalf("ParseStatus(%q): expected error", raw)
		}
	}
}

func TestIsTransitionAllowed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"new to seen", StatusNew, StatusSeen, true},
		{"new to rejected", StatusNew, StatusRejected, true},
		{"new to applied skips seen", StatusNew, StatusApplied, false},
		{"seen to applied", StatusSeen, StatusApplied, true},
		{"seen to rejected", StatusSeen, StatusRejected, true},
		{"seen back to new", StatusSeen, StatusNew, false},
		{"applied to rejected", StatusApplied, StatusRejected, true},
		{"applied back to seen", StatusApplied, StatusSeen, false},
		{"rejected is terminal", StatusRejected, StatusNew, false},
		{"rejected stays rejected", StatusRejected, StatusSeen, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransitionAllowed(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("IsTransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	if !IsTerminal(StatusRejected) {
		t.Fatalf("rejected must be terminal")
	}
	for _, s := range []Status{StatusNew, StatusSeen, StatusApplied} {
		if IsTerminal(s) {
			t.Fatalf("%s must not be terminal", s)
		}
	}
}
