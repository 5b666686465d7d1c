package model

import "fmt"

// InconsistencyError reports two descriptions of the same entity that
// disagree on an attribute, or a graph that breaks a structural invariant.
type InconsistencyError struct {
	Entity        string
	Attribute     string
	Authoritative string
	Supplement    string
	Reason        string
}

func (e *InconsistencyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s has inconsistent %s: %s", e.Entity, e.Attribute, e.Reason)
	}
	return fmt.Sprintf("%s has inconsistent definitions of %s: %q vs %q",
		e.Entity, e.Attribute, e.Authoritative, e.Supplement)
}
