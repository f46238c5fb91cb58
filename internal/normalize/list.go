package normalize

import (
	"regexp"
	"strings"
)

var (
	listSeparator   = regexp.MustCompile(`[,/\n]`)
	choiceSeparator = regexp.MustCompile(`[,\n]`)
)

// List splits on commas, slashes and newlines, trims, drops empties and
// de-duplicates keeping first-seen order.
func List(text string) []string {
	if IsSentinel(text) {
		return []string{}
	}
	out := []string{}
	seen := make(map[string]struct{})
	for _, part := range listSeparator.Split(text, -1) {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// choiceTokens splits a multi-select answer like List, except that a
// slash inside a token naming an option ("HIV/AIDS") is kept.
func choiceTokens(text string, options []string) []string {
	if IsSentinel(text) {
		return []string{}
	}
	var out []string
	for _, part := range choiceSeparator.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := matchOption(part, options); ok || !strings.Contains(part, "/") {
			out = append(out, part)
			continue
		}
		for _, sub := range strings.Split(part, "/") {
			if sub = strings.TrimSpace(sub); sub != "" {
				out = append(out, sub)
			}
		}
	}
	return dedupe(out)
}

func matchOption(token string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt, token) {
			return opt, true
		}
	}
	return "", false
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
