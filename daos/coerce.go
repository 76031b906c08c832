package daos

import (
	"errors"
	"strconv"
	"strings"
)

// Affinity is the storage class a declared column type resolves to.
type Affinity int

const (
	AffinityText Affinity = iota
	AffinityInteger
	AffinityReal
)

// AffinityOf classifies a declared column type by case-insensitive substring,
// checking INT first, then REAL/NUM/DOUBLE/FLOAT. Anything else is text-like.
func AffinityOf(declType string) Affinity {
	t := strings.ToUpper(declType)

	if strings.Contains(t, "INT") {
		return AffinityInteger
	}

	for _, s := range []string{"REAL", "NUM", "DOUBLE", "FLOAT"} {
		if strings.Contains(t, s) {
			return AffinityReal
		}
	}

	return AffinityText
}

// Coerce converts a submitted form string into the value stored for a
// column of the given declared type. Empty or unparsable input becomes nil
// rather than an error.
func Coerce(declType, raw string) any {
	if raw == "" {
		return nil
	}

	switch AffinityOf(declType) {
	case AffinityInteger:
		n, ok := ParseLeadingInt(raw)
		if !ok {
			return nil
		}
		return n
	case AffinityReal:
		f, ok := parseLeadingFloat(raw)
		if !ok {
			return nil
		}
		return f
	default:
		return raw
	}
}

// ParseLeadingInt reads an optionally signed base-10 integer from the start
// of s, ignoring leading whitespace and any trailing garbage ("42px" is 42).
// Integers outside the int64 range are reported as not parsed.
func ParseLeadingInt(s string) (int64, bool) {
	prefix := leadingInt(s)
	if prefix == "" {
		return 0, false
	}

	n, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// leadingInt returns the sign and digits at the start of s after leading
// whitespace, or "" when there are no digits.
func leadingInt(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	end = skipDigits(s, end)
	if end == digits {
		return ""
	}
	return s[:end]
}

// parseLeadingFloat reads the longest decimal float prefix of s: a sign,
// digits with an optional fraction, then an optional exponent. Values too
// large for float64 come back as ±Inf.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, " \t\r\n")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	intStart := end
	end = skipDigits(s, end)
	mantissa := end - intStart

	if end < len(s) && s[end] == '.' {
		fracStart := end + 1
		fracEnd := skipDigits(s, fracStart)
		if mantissa > 0 || fracEnd > fracStart {
			mantissa += fracEnd - fracStart
			end = fracEnd
		}
	}
	if mantissa == 0 {
		return 0, false
	}

	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if expEnd := skipDigits(s, exp); expEnd > exp {
			end = expEnd
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
