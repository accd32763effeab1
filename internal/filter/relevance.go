// Package filter implements the keyword relevance predicate for feed entries.
package filter

import (
	"strings"

	"rss_digest/internal/model"
)

// Rules holds the keyword sets an entry is matched against.
// Matching is a case-insensitive substring test.
type Rules struct {
	any         []string
	destination []string
	origin      []string
}

// NewRules builds Rules from the configured keyword sets. An empty
// destination or origin set places no constraint on entries.
func NewRules(anyKeywords, destination, origin []string) Rules {
	return Rules{
		any:         lowerAll(anyKeywords),
		destination: lowerAll(destination),
		origin:      lowerAll(origin),
	}
}

// Relevant reports whether the entry's title or summary mentions at least one
// "any" keyword and, when those sets are configured, one destination keyword
// and one origin keyword.
func (r Rules) Relevant(e model.Entry) bool {
	text := Normalize(e.Title) + "\n" + Normalize(e.Summary)

	if !containsAny(text, r.any) {
		return false
	}
	if len(r.destination) > 0 && !containsAny(text, r.destination) {
		return false
	}
	if len(r.origin) > 0 && !containsAny(text, r.origin) {
		return false
	}
	return true
}

// Normalize trims s, collapses whitespace runs into single spaces and
// lowercases the result.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = Normalize(k)
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}
