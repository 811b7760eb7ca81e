package subtitle

import "strings"

// Filter drops cues whose trimmed text is empty or exactly matches a known
// hallucinated phrase.
type Filter struct {
	phrases map[string]struct{}
}

// NewFilter builds a filter from the configured phrase blacklist.
func NewFilter(phrases []string) *Filter {
	set := make(map[string]struct{}, len(phrases))
	for _, phrase := range phrases {
		trimmed := strings.TrimSpace(phrase)
		if trimmed == "" {
			continue
		}
		set[trimmed] = struct{}{}
	}
	return &Filter{phrases: set}
}

// Drop reports whether a cue with the given trimmed text should be omitted
// from the subtitle output.
func (f *Filter) Drop(trimmed string) bool {
	if trimmed == "" {
		return true
	}
	if f == nil {
		return false
	}
	_, blacklisted := f.phrases[trimmed]
	return blacklisted
}
