package reconcile

// build.go - reconciliation of flat description records into the model.
//
// A component kind is the merge of its declared ports (authoritative) with
// the canonical definition of each port interface they use (supplement).
// A topology instance is the merge of the ports its wiring list implies
// (authoritative) with the expanded ports of its kind (supplement).

import (
	"fmt"

	"github.com/LeStarch/fplint/internal/fpxml"
	"github.com/LeStarch/fplint/internal/model"
)

// BuildComponentSpec reconciles a component definition with the port
// interfaces it imports. ports is keyed by interface name.
func BuildComponentSpec(comp *fpxml.ComponentFile, ports map[string]*fpxml.PortFile) (*model.ComponentSpec, error) {
	spec := &model.ComponentSpec{
		Kind:      comp.Name,
		Activity:  comp.Kind,
		Namespace: comp.Namespace,
		Modeler:   comp.Modeler,
		Source:    comp.Path,
		Commands:  append([]model.Command(nil), comp.Commands...),
	}
	for _, decl := range comp.Ports {
		declared := &model.PortSpec{
			Name:     decl.Name,
			Type:     decl.DataType,
			Role:     decl.Role,
			MaxCount: decl.MaxCount,
			Sync:     decl.Sync,
			Comment:  decl.Comment,
			Source:   comp.Path,
		}
		if !model.IsSerial(decl.DataType) {
			iface, ok := ports[model.BaseType(decl.DataType)]
			if !ok {
				return nil, fmt.Errorf("component %s port %s uses unknown port type %s", comp.Name, decl.Name, decl.DataType)
			}
			if err := model.MergePortSpec(declared, iface.Spec()); err != nil {
				return nil, fmt.Errorf("inconsistency between component %s and port specification: %w", comp.Name, err)
			}
		}
		if existing := spec.Port(decl.Name); existing != nil {
			if err := model.MergePortSpec(existing, declared); err != nil {
				return nil, fmt.Errorf("component %s: %w", comp.Name, err)
			}
			continue
		}
		spec.Ports = append(spec.Ports, declared)
	}
	return spec, nil
}

// BuildTopology reconciles a wiring list with the kinds it instantiates.
// specs is keyed by kind name.
func BuildTopology(top *fpxml.TopologyFile, specs map[string]*model.ComponentSpec) (*model.Topology, error) {
	t := &model.Topology{Name: top.Name, Source: top.Path}
	byName := map[string]*model.ComponentInstance{}
	for _, inst := range top.Instances {
		if _, dup := byName[inst.Name]; dup {
			return nil, &model.InconsistencyError{
				Entity:    top.Name,
				Attribute: "component " + inst.Name,
				Reason:    "multiple component instances share the name",
			}
		}
		c := &model.ComponentInstance{
			Name:      inst.Name,
			Kind:      inst.Type,
			Namespace: inst.Namespace,
			BaseID:    inst.BaseID,
		}
		byName[inst.Name] = c
		t.Components = append(t.Components, c)
	}

	for _, conn := range top.Connections {
		if err := wire(byName, conn); err != nil {
			return nil, fmt.Errorf("connection %s: %w", connLabel(conn), err)
		}
	}

	for _, c := range t.Components {
		spec, ok := specs[c.Kind]
		if !ok {
			spec, ok = specs[model.BaseType(c.Kind)]
		}
		if !ok {
			return nil, fmt.Errorf("component %s has unknown kind %s", c.Name, c.Kind)
		}
		if err := model.MergeComponent(c, spec.Instantiate()); err != nil {
			return nil, fmt.Errorf("inconsistency between topology and specification of %s.%s: %w", spec.Kind, c.Name, err)
		}
		for _, p := range c.Ports {
			p.Component = c.Name
		}
	}
	completeTargets(t)
	return t, nil
}

// wire records one connection on both endpoints. The source side is the
// authored port; the receiving side is synthesized as an input pointing
// back at it. Every connection gets its own receiving port so several
// sources landing on one slot stay distinguishable.
func wire(byName map[string]*model.ComponentInstance, conn fpxml.Connection) error {
	src, ok := byName[conn.Source.Component]
	if !ok {
		return fmt.Errorf("source component %s is not instantiated", conn.Source.Component)
	}
	dst, ok := byName[conn.Target.Component]
	if !ok {
		return fmt.Errorf("target component %s is not instantiated", conn.Target.Component)
	}

	out := &model.PortInstance{
		Component: src.Name,
		Name:      conn.Source.Port,
		Index:     conn.Source.Num,
		Type:      conn.Source.Type,
		Comment:   conn.Comment,
		Target: &model.Target{
			Component: dst.Name,
			Port:      conn.Target.Port,
			Index:     conn.Target.Num,
			Type:      conn.Target.Type,
			Role:      model.Input,
		},
	}
	if existing := src.Port(out.Name, out.Index); existing != nil {
		if err := model.MergePort(existing, out); err != nil {
			return err
		}
	} else {
		src.Ports = append(src.Ports, out)
	}

	dst.Ports = append(dst.Ports, &model.PortInstance{
		Component: dst.Name,
		Name:      conn.Target.Port,
		Index:     conn.Target.Num,
		Type:      conn.Target.Type,
		Role:      model.Input,
		Comment:   conn.Comment,
		Target: &model.Target{
			Component: src.Name,
			Port:      conn.Source.Port,
			Index:     conn.Source.Num,
			Type:      conn.Source.Type,
			Role:      model.Output,
		},
	})
	return nil
}

// completeTargets fills target types and roles the wiring list left blank
// from the ports they resolve to.
func completeTargets(t *model.Topology) {
	for _, c := range t.Components {
		for _, p := range c.Ports {
			if !p.Wired() || (p.Target.Type != "" && p.Target.Role != model.RoleUnset) {
				continue
			}
			_, far, err := t.Resolve(p.Target)
			if err != nil || far == nil {
				continue
			}
			if p.Target.Type == "" {
				p.Target.Type = far.Type
			}
			if p.Target.Role == model.RoleUnset {
				p.Target.Role = far.Role
			}
		}
	}
}

func connLabel(c fpxml.Connection) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Source.String() + " -> " + c.Target.String()
}
