package check

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/LeStarch/fplint/internal/model"
)

// RunOptions configure one engine run.
type RunOptions struct {
	Exclusions []string // check names not to run
	Filters    []Filter
	Params     Params
}

// CheckReport is the outcome of one check.
type CheckReport struct {
	Name       string    `yaml:"name"`
	Skipped    bool      `yaml:"skipped,omitempty"`
	SkipReason string    `yaml:"skip_reason,omitempty"`
	Err        error     `yaml:"-"`
	Problems   []Problem `yaml:"problems,omitempty"`
	Filtered   []Problem `yaml:"-"`
}

// Passed reports whether the check ran cleanly with no surviving problems.
// A skipped check passes.
func (c *CheckReport) Passed() bool {
	return c.Err == nil && len(c.Problems) == 0
}

// RunReport is the outcome of running every active check over a topology.
type RunReport struct {
	Topology string
	Checks   []*CheckReport
	Pass     bool
}

// Problems returns every surviving problem in check order.
func (r *RunReport) Problems() []Problem {
	var out []Problem
	for _, c := range r.Checks {
		out = append(out, c.Problems...)
	}
	return out
}

// Engine runs a fixed, ordered set of checks.
type Engine struct {
	Checks []Check
	Log    zerolog.Logger
}

// Run executes every check not excluded by name, in order. A failing or
// panicking check is recorded and the remaining checks still run.
func (e *Engine) Run(top *model.Topology, opts RunOptions) *RunReport {
	active := e.active(opts.Exclusions)
	e.Log.Info().Int("checks", len(active)).Str("topology", top.Name).Msg("found checks")

	report := &RunReport{Topology: top.Name, Pass: true}
	for _, c := range active {
		cr := &CheckReport{Name: c.Name()}
		report.Checks = append(report.Checks, cr)

		params, missing := resolveParams(c.Params(), opts.Params)
		if len(missing) > 0 {
			cr.Skipped = true
			cr.SkipReason = "missing parameters: " + strings.Join(missing, ", ")
			e.Log.Warn().Str("check", cr.Name).Strs("missing", missing).Msg("skipping check")
			continue
		}

		e.Log.Info().Str("check", cr.Name).Msg("running check")
		res := NewResult(c.Identifiers())
		err := runIsolated(c, res, top, params)
		if err == nil {
			err = res.Err()
		}
		if err != nil {
			cr.Err = fmt.Errorf("%s failed: %w", cr.Name, err)
			e.Log.Error().Err(err).Str("check", cr.Name).Msg("check failed")
		}
		cr.Problems, cr.Filtered = Apply(opts.Filters, res.Problems())
		if len(cr.Filtered) > 0 {
			e.Log.Debug().Str("check", cr.Name).Int("filtered", len(cr.Filtered)).Msg("filtered problems")
		}
		if !cr.Passed() {
			report.Pass = false
		}
	}
	return report
}

func (e *Engine) active(exclusions []string) []Check {
	var out []Check
	for _, c := range e.Checks {
		if !slices.Contains(exclusions, c.Name()) {
			out = append(out, c)
		}
	}
	return out
}

func runIsolated(c Check, r Reporter, top *model.Topology, params Params) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return c.Run(r, top, params)
}

// resolveParams picks the declared parameters out of supplied and names the
// required ones that have no value.
func resolveParams(declared []Param, supplied Params) (Params, []string) {
	out := Params{}
	var missing []string
	for _, p := range declared {
		v, ok := supplied[p.Name]
		if !ok || v == "" {
			if !p.Optional {
				missing = append(missing, p.Name)
			}
			continue
		}
		out[p.Name] = v
	}
	return out, missing
}

// ---------------------------------------------------------------------------
// Registry queries
// ---------------------------------------------------------------------------

// Names returns the names of checks in order.
func Names(checks []Check) []string {
	out := make([]string, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Name())
	}
	return out
}

// KnownIdentifiers returns the sorted union of every check's identifiers.
func KnownIdentifiers(checks []Check) []string {
	seen := map[string]bool{}
	for _, c := range checks {
		for id := range c.Identifiers() {
			seen[id] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// KnownParams returns every declared parameter once, first declaration
// wins, in check order.
func KnownParams(checks []Check) []Param {
	seen := map[string]bool{}
	var out []Param
	for _, c := range checks {
		for _, p := range c.Params() {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}
