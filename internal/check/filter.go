package check

import (
	"fmt"
	"regexp"
)

// Filter drops problems with identifier ID whose location string matches
// any of Specifiers.
type Filter struct {
	ID         string
	Specifiers []*regexp.Regexp
}

// NewFilter compiles specifiers for id. No specifiers, or an empty one,
// matches every location.
func NewFilter(id string, specifiers ...string) (Filter, error) {
	if len(specifiers) == 0 {
		specifiers = []string{""}
	}
	f := Filter{ID: id}
	for _, s := range specifiers {
		if s == "" {
			s = ".*"
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return Filter{}, fmt.Errorf("filter %s: %w", id, err)
		}
		f.Specifiers = append(f.Specifiers, re)
	}
	return f, nil
}

// Matches reports whether the filter drops p.
func (f Filter) Matches(p Problem) bool {
	if f.ID != p.ID {
		return false
	}
	loc := p.Location.String()
	for _, re := range f.Specifiers {
		if re.MatchString(loc) {
			return true
		}
	}
	return false
}

// Apply splits problems into those that survive filters and those dropped.
func Apply(filters []Filter, problems []Problem) (kept, dropped []Problem) {
	for _, p := range problems {
		if matchesAny(filters, p) {
			dropped = append(dropped, p)
		} else {
			kept = append(kept, p)
		}
	}
	return kept, dropped
}

func matchesAny(filters []Filter, p Problem) bool {
	for _, f := range filters {
		if f.Matches(p) {
			return true
		}
	}
	return false
}
