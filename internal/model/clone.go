package model

import "slices"

// Clone returns an independent copy of the port instance.
func (p *PortInstance) Clone() *PortInstance {
	cp := *p
	cp.Args = slices.Clone(p.Args)
	if p.Target != nil {
		t := *p.Target
		cp.Target = &t
	}
	return &cp
}

// Clone returns a copy of the instance whose ports can be rewired without
// affecting the original. The kind spec is shared; it is read-only once
// reconciled.
func (c *ComponentInstance) Clone() *ComponentInstance {
	cp := *c
	cp.Ports = make([]*PortInstance, len(c.Ports))
	for i, p := range c.Ports {
		cp.Ports[i] = p.Clone()
	}
	return &cp
}

// Clone returns a deep copy of the topology.
func (t *Topology) Clone() *Topology {
	cp := *t
	cp.Components = make([]*ComponentInstance, len(t.Components))
	for i, c := range t.Components {
		cp.Components[i] = c.Clone()
	}
	return &cp
}
