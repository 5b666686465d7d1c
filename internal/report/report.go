// Package report renders engine results for people and for tools.
//
// Console writes the familiar one-line-per-problem listing. A Document
// collects the runs of one invocation, and Write saves it as YAML for CI
// consumers.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/LeStarch/fplint/internal/check"
)

// Status of one check in a Document.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Document is the machine-readable form of a lint invocation over one or
// more topologies.
type Document struct {
	Pass       bool            `yaml:"pass"`
	Summary    Summary         `yaml:"summary"`
	Topologies []TopologyEntry `yaml:"topologies"`
}

// Summary counts problems over the whole invocation.
type Summary struct {
	Topologies int `yaml:"topologies"`
	Checks     int `yaml:"checks"`
	Errors     int `yaml:"errors"`
	Warnings   int `yaml:"warnings"`
	Filtered   int `yaml:"filtered"`
}

// TopologyEntry is the outcome for one topology. Error is set when the
// topology could not be loaded and no check ran.
type TopologyEntry struct {
	Topology string       `yaml:"topology,omitempty"`
	Path     string       `yaml:"path,omitempty"`
	Pass     bool         `yaml:"pass"`
	Error    string       `yaml:"error,omitempty"`
	Checks   []CheckEntry `yaml:"checks,omitempty"`
}

// CheckEntry is the outcome of one check.
type CheckEntry struct {
	Name     string          `yaml:"name"`
	Status   string          `yaml:"status"`
	Reason   string          `yaml:"reason,omitempty"`
	Filtered int             `yaml:"filtered,omitempty"`
	Problems []check.Problem `yaml:"problems,omitempty"`
}

// New returns an empty, passing document.
func New() *Document {
	return &Document{Pass: true, Topologies: []TopologyEntry{}}
}

// Build summarizes the given runs. It does not touch the filesystem.
func Build(runs ...*check.RunReport) *Document {
	doc := New()
	for _, rr := range runs {
		doc.Add("", rr)
	}
	return doc
}

// Add records the run of the topology loaded from path.
func (d *Document) Add(path string, rr *check.RunReport) {
	entry := TopologyEntry{Topology: rr.Topology, Path: path, Pass: rr.Pass, Checks: []CheckEntry{}}
	for _, cr := range rr.Checks {
		ce := CheckEntry{
			Name:     cr.Name,
			Status:   status(cr),
			Filtered: len(cr.Filtered),
			Problems: cr.Problems,
		}
		switch {
		case cr.Skipped:
			ce.Reason = cr.SkipReason
		case cr.Err != nil:
			ce.Reason = cr.Err.Error()
		}
		entry.Checks = append(entry.Checks, ce)

		d.Summary.Checks++
		d.Summary.Filtered += len(cr.Filtered)
		for _, p := range cr.Problems {
			if p.Severity == check.Error {
				d.Summary.Errors++
			} else {
				d.Summary.Warnings++
			}
		}
	}
	d.Topologies = append(d.Topologies, entry)
	d.Summary.Topologies++
	d.Pass = d.Pass && rr.Pass
}

// AddFailure records a topology that could not be loaded.
func (d *Document) AddFailure(path string, err error) {
	d.Topologies = append(d.Topologies, TopologyEntry{Path: path, Error: err.Error()})
	d.Summary.Topologies++
	d.Pass = false
}

func status(cr *check.CheckReport) string {
	switch {
	case cr.Skipped:
		return StatusSkipped
	case cr.Err != nil:
		return StatusError
	case len(cr.Problems) > 0:
		return StatusFailed
	default:
		return StatusPassed
	}
}

// Marshal encodes doc as YAML.
func Marshal(doc *Document) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// Write saves doc as YAML at path, creating parent directories.
func Write(path string, doc *Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Console prints every surviving problem, every skipped or failed check,
// and a final verdict line.
func Console(w io.Writer, rr *check.RunReport) {
	filtered := 0
	for _, cr := range rr.Checks {
		for _, p := range cr.Problems {
			fmt.Fprintln(w, p)
		}
		switch {
		case cr.Skipped:
			fmt.Fprintf(w, "[SKIPPED] %s: %s\n", cr.Name, cr.SkipReason)
		case cr.Err != nil:
			fmt.Fprintf(w, "[FAILED] %v\n", cr.Err)
		}
		filtered += len(cr.Filtered)
	}
	verdict := "passed"
	if !rr.Pass {
		verdict = "failed"
	}
	fmt.Fprintf(w, "%s: %d problem(s), %d filtered, %s\n", rr.Topology, len(rr.Problems()), filtered, verdict)
}
