// Package normalize turns free-text survey answers into typed values.
//
// Every function is pure. Each one first checks for the "no answer"
// sentinels (skip, none, not sure, empty; case-insensitive) and returns
// nil or an empty list for them.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var sentinels = map[string]struct{}{
	"":         {},
	"skip":     {},
	"none":     {},
	"not sure": {},
}

var leadingIntPattern = regexp.MustCompile(`^\s*([+-]?\d+)`)

// IsSentinel reports whether text is an explicit "no answer".
func IsSentinel(text string) bool {
	_, ok := sentinels[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// IsUnknown is IsSentinel plus "unknown", used for follow-up questions.
func IsUnknown(text string) bool {
	return IsSentinel(text) || strings.EqualFold(strings.TrimSpace(text), "unknown")
}

// Text returns the trimmed answer, or nil for a sentinel.
func Text(text string) *string {
	if IsSentinel(text) {
		return nil
	}
	v := strings.TrimSpace(text)
	return &v
}

// Number parses a leading integer ("42 years" -> 42). Sentinels and
// non-numeric answers yield nil.
func Number(text string) *int {
	if IsSentinel(text) {
		return nil
	}
	return leadingInt(text)
}

// FollowUpText is Text for follow-up questions, where "unknown" also
// means no answer.
func FollowUpText(text string) *string {
	if IsUnknown(text) {
		return nil
	}
	v := strings.TrimSpace(text)
	return &v
}

// FollowUpNumber is Number for follow-up questions.
func FollowUpNumber(text string) *int {
	if IsUnknown(text) {
		return nil
	}
	return leadingInt(text)
}

func leadingInt(text string) *int {
	m := leadingIntPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
