// Package duration parses the short durations moderators type: "600", "10m", "2h", "1d".
package duration

import (
	"math"
	"strconv"
	"strings"
	"time"
)

var units = map[string]int64{
	"s":   1,
	"sec": 1,
	"m":   60,
	"min": 60,
	"h":   3600,
	"hr":  3600,
	"d":   86400,
	"day": 86400,
}

var permanentTokens = map[string]struct{}{
	"perm":      {},
	"perma":     {},
	"forever":   {},
	"inf":       {},
	"infinite":  {},
	"permanent": {},
	"p":         {},
}

// Parse returns the number of seconds in text. Bare digits are seconds;
// otherwise a digit run must be followed by exactly one known unit.
// Composites ("1h30m"), signs, decimals and overflow are rejected.
func Parse(text string) (int64, bool) {
	v := strings.ToLower(strings.TrimSpace(text))
	if v == "" {
		return 0, false
	}

	i := 0
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}

	n, err := strconv.ParseInt(v[:i], 10, 64)
	if err != nil {
		return 0, false
	}

	factor := int64(1)
	if suffix := v[i:]; suffix != "" {
		f, ok := units[suffix]
		if !ok {
			return 0, false
		}
		factor = f
	}

	if n > math.MaxInt64/factor {
		return 0, false
	}
	seconds := n * factor
	// keep the result representable as a time.Duration
	if seconds > int64(math.MaxInt64/time.Second) {
		return 0, false
	}
	return seconds, true
}

// ParseDuration is Parse expressed as a time.Duration.
func ParseDuration(text string) (time.Duration, bool) {
	s, ok := Parse(text)
	if !ok {
		return 0, false
	}
	return time.Duration(s) * time.Second, true
}

// IsPermanent reports whether text asks for a ban without expiry.
func IsPermanent(text string) bool {
	_, ok := permanentTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Format renders seconds the way moderators write them, using the largest exact unit.
func Format(seconds int64) string {
	switch {
	case seconds > 0 && seconds%86400 == 0:
		return strconv.FormatInt(seconds/86400, 10) + "d"
	case seconds > 0 && seconds%3600 == 0:
		return strconv.FormatInt(seconds/3600, 10) + "h"
	case seconds > 0 && seconds%60 == 0:
		return strconv.FormatInt(seconds/60, 10) + "m"
	default:
		return strconv.FormatInt(seconds, 10) + "s"
	}
}
