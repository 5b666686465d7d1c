package checks

import (
	"errors"
	"fmt"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/model"
)

// PortConnections verifies that every port is wired to an existing port of
// a compatible type and the opposite direction.
type PortConnections struct{}

func (PortConnections) Name() string { return "PortConnections" }

func (PortConnections) Identifiers() map[string]check.Severity {
	return map[string]check.Severity{
		"port-not-connected":                        check.Warning,
		"invalid-target-component-in-connection":    check.Error,
		"invalid-target-port-in-connection":         check.Error,
		"invalid-model-specification":               check.Error,
		"conflicting-port-types-in-connection":      check.Error,
		"conflicting-port-directions-in-connection": check.Error,
	}
}

func (PortConnections) Params() []check.Param { return nil }

func (pc PortConnections) Run(r check.Reporter, top *model.Topology, _ check.Params) error {
	for _, c := range top.Components {
		for _, p := range c.Ports {
			if err := pc.port(r, top, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// port checks a single port, reporting at most one problem.
func (PortConnections) port(r check.Reporter, top *model.Topology, p *model.PortInstance) error {
	at := check.AtPort(top, p)
	if !p.Wired() {
		r.Report("port-not-connected", "is not connected", at)
		return nil
	}

	tc, err := top.Component(p.Target.Component)
	if err != nil {
		var inc *model.InconsistencyError
		if errors.As(err, &inc) {
			r.Report("invalid-model-specification", inc.Error(), at)
			return nil
		}
		return err
	}
	if tc == nil {
		r.Report("invalid-target-component-in-connection",
			fmt.Sprintf("connected to non-existent component %s", p.Target.Component), at)
		return nil
	}
	tp := tc.Port(p.Target.Port, p.Target.Index)
	if tp == nil || (tc.Spec != nil && tc.Spec.Port(p.Target.Port) == nil) {
		r.Report("invalid-target-port-in-connection",
			fmt.Sprintf("connected to non-existent port %s", p.Target), at)
		return nil
	}
	if p.Target.Index >= tp.Count() {
		r.Report("invalid-target-port-in-connection",
			fmt.Sprintf("connected to non-existent port %s. Note: increase configured limits", p.Target), at)
		return nil
	}

	if !compatibleTypes(p.Type, tp.Type) {
		r.Report("conflicting-port-types-in-connection",
			fmt.Sprintf("is connected to port %s of wrong type %s", check.AtPort(top, tp), tp.Type), at)
	} else if p.Role == tp.Role {
		r.Report("conflicting-port-directions-in-connection",
			fmt.Sprintf("is connected to port %s of conflicting direction %s", check.AtPort(top, tp), tp.Role), at)
	}
	return nil
}

// compatibleTypes reports whether two port types may be connected.
func compatibleTypes(a, b string) bool {
	return model.IsSerial(a) || model.IsSerial(b) || model.SameType(a, b)
}
