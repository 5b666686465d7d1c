// Package checks implements the structural checks fplint runs over a
// reconciled topology.
package checks

import (
	"fmt"
	"strings"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/model"
)

// PortCollision detects several outputs wired into the same element of an
// input port array. Ports with a cardinality of one are not arrays and may
// be targeted any number of times.
type PortCollision struct{}

func (PortCollision) Name() string { return "PortCollision" }

func (PortCollision) Identifiers() map[string]check.Severity {
	return map[string]check.Severity{
		"array-port-collision": check.Error,
	}
}

func (PortCollision) Params() []check.Param { return nil }

type slot struct {
	component, port string
	index           int
}

// Run reports one problem per colliding array element, located at the
// element and naming every output wired into it.
func (PortCollision) Run(r check.Reporter, top *model.Topology, _ check.Params) error {
	sources := map[slot][]string{}
	var order []slot
	for _, c := range top.Components {
		for _, p := range c.Ports {
			if p.Role != model.Output || !p.Wired() {
				continue
			}
			_, target, err := top.Resolve(p.Target)
			if err != nil {
				return err
			}
			if target == nil || target.MaxCount <= 1 {
				continue
			}
			key := slot{p.Target.Component, p.Target.Port, p.Target.Index}
			if _, seen := sources[key]; !seen {
				order = append(order, key)
			}
			sources[key] = append(sources[key], check.AtPort(top, p).String())
		}
	}
	for _, key := range order {
		if len(sources[key]) < 2 {
			continue
		}
		r.Report("array-port-collision",
			fmt.Sprintf("has colliding inputs from %s", strings.Join(sources[key], ", ")),
			check.Location{Topology: top.Name, Component: key.component, Port: key.port, Index: key.index})
	}
	return nil
}
