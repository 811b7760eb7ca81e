package pathmap

import (
	"path/filepath"
	"regexp"
	"strings"

	"subforge/internal/config"
)

type rule struct {
	source  string
	target  string
	pattern *regexp.Regexp
}

// Mapper applies ordered path mapping rules.
type Mapper struct {
	rules []rule
}

// NewMapper compiles the configured mappings into a Mapper. Regex sources
// are validated at config load; a rule whose pattern fails to compile here
// is skipped rather than matched literally.
func NewMapper(mappings []config.PathMapping) *Mapper {
	rules := make([]rule, 0, len(mappings))
	for _, mapping := range mappings {
		r := rule{source: mapping.Source, target: mapping.Target}
		if mapping.Regex {
			pattern, err := regexp.Compile(mapping.Source)
			if err != nil {
				continue
			}
			r.pattern = pattern
		}
		rules = append(rules, r)
	}
	return &Mapper{rules: rules}
}

// Resolve rewrites path using the first applicable rule. A regex rule
// applies when substitution changes the path; a literal rule applies when
// the path starts with the rule's source prefix. When no rule applies the
// input is returned unchanged.
func (m *Mapper) Resolve(path string) string {
	if m == nil {
		return path
	}
	for _, r := range m.rules {
		if r.pattern != nil {
			updated := r.pattern.ReplaceAllString(path, r.target)
			if updated != path {
				return updated
			}
			continue
		}
		if strings.HasPrefix(path, r.source) {
			remainder := strings.TrimLeft(path[len(r.source):], "/\\")
			return filepath.Join(r.target, remainder)
		}
	}
	return path
}
