package validate

import (
	"regexp"
	"strings"
)

var (
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCond   = regexp.MustCompile(`^(NEW|EXCELLENT|GOOD|FAIR|POOR)$`)
	reStatus = regexp.MustCompile(`^(AVAILABLE|RESERVED|SOLD|LISTED)$`)
	reCurr   = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ID validates a simple resource identifier (part/category/vehicle ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Condition validates allowed condition enums.
func Condition(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s != "" && reCond.MatchString(s)
}

func Status(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s != "" && reStatus.MatchString(s)
}

// Currency accepts ISO-4217 style three-letter codes.
func Currency(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCurr.MatchString(s)
}

// Name validates a displayable part name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}
