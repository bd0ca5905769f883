package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseQuantity converts a caller-supplied quantity into a positive integer.
// Strings are read like a base-10 integer prefix ("3 pcs" is 3, "abc" is
// rejected). Floats are truncated. Anything that does not yield a value >= 1
// fails with a ValidationError.
func ParseQuantity(v any) (int, error) {
	var q int64
	ok := false

	switch x := v.(type) {
	case int:
		q, ok = int64(x), true
	case int8:
		q, ok = int64(x), true
	case int16:
		q, ok = int64(x), true
	case int32:
		q, ok = int64(x), true
	case int64:
		q, ok = x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			q, ok = int64(x), true
		}
	case uint32:
		q, ok = int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			q, ok = int64(x), true
		}
	case float32:
		q, ok = truncate(float64(x))
	case float64:
		q, ok = truncate(x)
	case string:
		q, ok = parseIntPrefix(x)
	}

	if !ok || q < 1 || q > math.MaxInt32 {
		return 0, NewValidationError("quantity", ReasonQuantityInvalid)
	}
	return int(q), nil
}

func truncate(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t > math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int64(t), true
}

func parseIntPrefix(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
