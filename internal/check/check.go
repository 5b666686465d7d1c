// Package check runs structural checks over a reconciled topology and
// decides whether it passes.
//
// A Check declares the problem identifiers it may report (each with a fixed
// severity) and the extra parameters it needs. The Engine resolves the
// active checks, skips those whose parameters are missing, runs each in
// isolation, and drops problems matched by configured filters. Any
// surviving problem fails the run regardless of its severity.
package check

import (
	"fmt"
	"strings"

	"github.com/LeStarch/fplint/internal/model"
)

// Severity is the printed label of a problem. It does not affect pass/fail.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// MarshalText renders the severity label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Param describes one extra parameter a check needs before it can run.
type Param struct {
	Name     string
	Type     string // "path" or "string"
	Help     string
	Optional bool
}

// Params holds resolved parameter values by name.
type Params map[string]string

// Check is one structural rule over a topology.
type Check interface {
	// Name is the check's canonical name, used for exclusions.
	Name() string

	// Identifiers maps every identifier the check may report to its severity.
	Identifiers() map[string]Severity

	// Params lists the extra parameters the check needs.
	Params() []Param

	// Run inspects top and reports problems to r. top must not be mutated.
	// A returned error is a check-execution failure, not a problem.
	Run(r Reporter, top *model.Topology, params Params) error
}

// ---------------------------------------------------------------------------
// Problems
// ---------------------------------------------------------------------------

// Problem is one defect found by a check.
type Problem struct {
	Severity Severity `yaml:"severity"`
	ID       string   `yaml:"identifier"`
	Message  string   `yaml:"message"`
	Location Location `yaml:"location"`
}

// String renders the standard report line.
func (p Problem) String() string {
	return fmt.Sprintf("[%s] %s: %s found issue %s", p.Severity, p.ID, p.Location, p.Message)
}

// Reporter receives problems from a running check.
type Reporter interface {
	Report(id, message string, at Location)
}

// Result accumulates the problems of one check run. Reporting an identifier
// outside the severity map is recorded as an error instead of a problem.
type Result struct {
	severities map[string]Severity
	problems   []Problem
	err        error
}

// NewResult returns an empty result for a check with the given identifiers.
func NewResult(severities map[string]Severity) *Result {
	return &Result{severities: severities}
}

// Report implements Reporter.
func (r *Result) Report(id, message string, at Location) {
	sev, ok := r.severities[id]
	if !ok {
		if r.err == nil {
			r.err = fmt.Errorf("%s is not a declared identifier", id)
		}
		return
	}
	r.problems = append(r.problems, Problem{Severity: sev, ID: id, Message: message, Location: at})
}

// Problems returns the reported problems in report order.
func (r *Result) Problems() []Problem { return r.problems }

// Err returns the first undeclared-identifier error, if any.
func (r *Result) Err() error { return r.err }

// Prefixed forwards every report to Next with Prefix prepended to the
// identifier.
type Prefixed struct {
	Prefix string
	Next   Reporter
}

// Report implements Reporter.
func (p Prefixed) Report(id, message string, at Location) {
	p.Next.Report(p.Prefix+id, message, at)
}

// PrefixIdentifiers returns a copy of ids with every key prefixed.
func PrefixIdentifiers(prefix string, ids map[string]Severity) map[string]Severity {
	out := make(map[string]Severity, len(ids))
	for id, sev := range ids {
		out[prefix+id] = sev
	}
	return out
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// Location is a standard location: Topology[.Component[.Port:Index]].
type Location struct {
	Topology  string
	Component string
	Port      string
	Index     int
}

// String renders the location. The index is only shown with a port.
func (l Location) String() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{l.Topology, l.Component, l.Port} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	loc := strings.Join(parts, ".")
	if l.Port != "" {
		loc += fmt.Sprintf(":%d", l.Index)
	}
	return loc
}

// MarshalText renders the location string.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// AtComponent locates a component instance.
func AtComponent(top *model.Topology, comp string) Location {
	return Location{Topology: top.Name, Component: comp}
}

// AtPort locates a port instance.
func AtPort(top *model.Topology, p *model.PortInstance) Location {
	return Location{Topology: top.Name, Component: p.Component, Port: p.Name, Index: p.Index}
}

// AtTarget locates the far end of a connection.
func AtTarget(top *model.Topology, t *model.Target) Location {
	return Location{Topology: top.Name, Component: t.Component, Port: t.Port, Index: t.Index}
}
