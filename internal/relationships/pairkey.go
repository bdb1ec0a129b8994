package relationships

import (
	"fmt"
	"strings"
)

// pairSeparator joins the two ids of a pair key. User ids carrying this
// character are rejected so the key remains unambiguous.
const pairSeparator = "#"

// PairKey returns the canonical storage key for the unordered pair {a, b}.
// The lexicographically smaller id always comes first, so both participants
// derive the identical key without coordination.
func PairKey(a, b string) (string, error) {
	if err := validatePair(a, b); err != nil {
		return "", err
	}
	low, high := orderPair(a, b)
	return low + pairSeparator + high, nil
}

func validatePair(a, b string) error {
	if a == "" || b == "" {
		return fmt.Errorf("%w: user ids must not be empty", ErrInvalidPair)
	}
	if a == b {
		return fmt.Errorf("%w: a user cannot relate to themselves", ErrInvalidPair)
	}
	if strings.Contains(a, pairSeparator) || strings.Contains(b, pairSeparator) {
		return fmt.Errorf("%w: user id contains reserved separator %q", ErrInvalidPair, pairSeparator)
	}
	return nil
}

func orderPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}
