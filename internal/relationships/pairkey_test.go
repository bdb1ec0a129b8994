package relationships

import (
	"errors"
	"testing"
)

func TestPairKeySymmetry(t *testing.T) {
	cases := []struct {
		a, b string
		want string
	}{
		{"alice", "bob", "alice#bob"},
		{"bob", "alice", "alice#bob"},
		{"user-2", "user-10", "user-10#user-2"},
		{"a", "b", "a#b"},
	}

	for _, tc := range cases {
		got, err := PairKey(tc.a, tc.b)
		if err != nil {
			t.Fatalf("PairKey(%q, %q): %v", tc.a, tc.b, err)
		}
		if got != tc.want {
			t.Fatalf("PairKey(%q, %q) = %q, want %q", tc.a, tc.b, got, tc.want)
		}

		flipped, err := PairKey(tc.b, tc.a)
		if err != nil {
			t.Fatalf("PairKey(%q, %q): %v", tc.b, tc.a, err)
		}
		if flipped != got {
			t.Fatalf("expected identical keys, got %q and %q", got, flipped)
		}
	}
}

func TestPairKeyRejectsInvalidPairs(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"emptyFirst", "", "bob"},
		{"emptySecond", "alice", ""},
		{"bothEmpty", "", ""},
		{"selfPair", "alice", "alice"},
		{"separatorInFirst", "ali#ce", "bob"},
		{"separatorInSecond", "alice", "b#ob"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PairKey(tc.a, tc.b); !errors.Is(err, ErrInvalidPair) {
				t.Fatalf("expected ErrInvalidPair got %v", err)
			}
		})
	}
}
