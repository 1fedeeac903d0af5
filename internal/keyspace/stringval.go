package keyspace

import (
	"strconv"
	"strings"
)

// ParseInt parses b as a signed 64-bit integer the way Redis does: no
// leading/trailing whitespace, no leading '+', strconv's usual base-10 rules
// otherwise. Returns ErrNotInteger on failure.
func ParseInt(b []byte) (int64, error) {
	if len(b) > 0 && b[0] == '+' {
		return 0, ErrNotInteger
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrNotInteger
	}
	return n, nil
}

// ParseFloat parses b as an IEEE-754 double. Returns ErrNotFloat on failure.
func ParseFloat(b []byte) (float64, error) {
	s := strings.TrimSpace(string(b))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrNotFloat
	}
	return f, nil
}

// FormatFloat renders a double the way Redis does for reply bodies:
// shortest round-trip decimal representation, integral values without a
// trailing ".0".
func FormatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
