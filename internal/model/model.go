// Package model holds the reconciled component-and-port graph of an F´
// topology: port templates, component kinds, component instances with their
// expanded port instances, and the topology that owns them.
//
// Conventions of the reconciled graph:
//
//   - Port arrays are expanded into one PortInstance per index.
//   - A port's Target always refers to the other end of its connection,
//     regardless of which side authored it.
//   - Unconnected ports have a nil Target.
//   - Receiving (input) ports of connections appear on their component even
//     though only the source side is authored in the topology file.
package model

import (
	"fmt"
	"strings"
)

// SerialType is the wildcard port type compatible with every other type.
const SerialType = "Serial"

// Role is the direction of a port.
type Role string

const (
	RoleUnset Role = ""
	Input     Role = "input"
	Output    Role = "output"
)

// Complement returns the role a valid connection partner must have.
func (r Role) Complement() Role {
	switch r {
	case Input:
		return Output
	case Output:
		return Input
	default:
		return RoleUnset
	}
}

// Arg is one argument of a port interface. Opaque to the checks.
type Arg struct {
	Name string
	Type string
}

// Command is one command declared by a component kind.
type Command struct {
	Mnemonic string
	Opcode   string
	Kind     string
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// PortSpec is the canonical template of a named port of a component kind.
type PortSpec struct {
	Name      string
	Type      string
	Namespace string
	Role      Role
	MaxCount  int // 0 means unset and is treated as 1
	Sync      string
	Comment   string
	Args      []Arg
	Return    string
	Source    string // originating description file, bookkeeping only
}

// Count returns the declared array cardinality, treating unset as 1.
func (p *PortSpec) Count() int {
	if p.MaxCount < 1 {
		return 1
	}
	return p.MaxCount
}

// ComponentSpec is the reusable definition of a component kind.
type ComponentSpec struct {
	Kind      string
	Activity  string // active, passive, queued
	Namespace string
	Modeler   string // bookkeeping only
	Source    string // bookkeeping only
	Ports     []*PortSpec
	Commands  []Command
}

// Port returns the template with the given name, or nil.
func (c *ComponentSpec) Port(name string) *PortSpec {
	for _, p := range c.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Expand materializes every port template into Count() independent port
// instances indexed 0..Count()-1, in template order.
func (c *ComponentSpec) Expand() []*PortInstance {
	var out []*PortInstance
	for _, spec := range c.Ports {
		for i := 0; i < spec.Count(); i++ {
			out = append(out, &PortInstance{
				Name:      spec.Name,
				Index:     i,
				Type:      spec.Type,
				Namespace: spec.Namespace,
				Role:      spec.Role,
				MaxCount:  spec.MaxCount,
				Sync:      spec.Sync,
				Comment:   spec.Comment,
				Args:      append([]Arg(nil), spec.Args...),
				Return:    spec.Return,
				Source:    spec.Source,
			})
		}
	}
	return out
}

// Instantiate returns an unnamed instance of the kind carrying its expanded
// ports. It is the supplement side when merging a topology's instance.
func (c *ComponentSpec) Instantiate() *ComponentInstance {
	inst := &ComponentInstance{
		Kind:      c.Kind,
		Namespace: c.Namespace,
		Spec:      c,
		Ports:     c.Expand(),
	}
	return inst
}

// ---------------------------------------------------------------------------
// Instances
// ---------------------------------------------------------------------------

// Target is the far end of a connection as seen from one port instance.
type Target struct {
	Component string
	Port      string
	Index     int
	Type      string
	Role      Role
}

func (t Target) String() string {
	return fmt.Sprintf("%s.%s:%d", t.Component, t.Port, t.Index)
}

// PortInstance is one independently addressable element of a port array.
type PortInstance struct {
	Component string // owning component instance
	Name      string
	Index     int
	Type      string
	Namespace string
	Role      Role
	MaxCount  int
	Sync      string
	Comment   string
	Args      []Arg
	Return    string
	Source    string
	Target    *Target
}

// Count returns the declared array cardinality, treating unset as 1.
func (p *PortInstance) Count() int {
	if p.MaxCount < 1 {
		return 1
	}
	return p.MaxCount
}

// Wired reports whether the port has a target reference.
func (p *PortInstance) Wired() bool {
	return p.Target != nil && p.Target.Component != ""
}

// Ref returns the target reference another port would use to point here.
func (p *PortInstance) Ref() *Target {
	return &Target{
		Component: p.Component,
		Port:      p.Name,
		Index:     p.Index,
		Type:      p.Type,
		Role:      p.Role,
	}
}

// ComponentInstance is a named occurrence of a component kind.
type ComponentInstance struct {
	Name      string
	Kind      string
	Namespace string
	BaseID    string
	Spec      *ComponentSpec
	Ports     []*PortInstance
}

// Port returns the first port instance with the given name and index, or nil.
func (c *ComponentInstance) Port(name string, index int) *PortInstance {
	for _, p := range c.Ports {
		if p.Name == name && p.Index == index {
			return p
		}
	}
	return nil
}

// Commands returns the commands declared by the instance's kind.
func (c *ComponentInstance) Commands() []Command {
	if c.Spec == nil {
		return nil
	}
	return c.Spec.Commands
}

// Topology is the reconciled graph of one deployment.
type Topology struct {
	Name       string
	Source     string
	Components []*ComponentInstance
}

// Component returns the instance with the given name, or nil if none exists.
// More than one instance with the name is an InconsistencyError.
func (t *Topology) Component(name string) (*ComponentInstance, error) {
	var found *ComponentInstance
	for _, c := range t.Components {
		if c.Name != name {
			continue
		}
		if found != nil {
			return nil, &InconsistencyError{
				Entity:    t.Name,
				Attribute: "component " + name,
				Reason:    "multiple component instances share the name",
			}
		}
		found = c
	}
	return found, nil
}

// Resolve returns the port a target reference points at. Either return
// value may be nil when the reference does not resolve.
func (t *Topology) Resolve(ref *Target) (*ComponentInstance, *PortInstance, error) {
	if ref == nil {
		return nil, nil, nil
	}
	comp, err := t.Component(ref.Component)
	if err != nil || comp == nil {
		return nil, nil, err
	}
	return comp, comp.Port(ref.Port, ref.Index), nil
}

// ResolvePeer resolves from's target. Among ports sharing the target's
// name and index, the one whose own target points back at from is
// preferred; otherwise the result is that of Resolve.
func (t *Topology) ResolvePeer(from *PortInstance) (*ComponentInstance, *PortInstance, error) {
	comp, first, err := t.Resolve(from.Target)
	if comp == nil || first == nil {
		return comp, first, err
	}
	for _, p := range comp.Ports {
		if p.Name != from.Target.Port || p.Index != from.Target.Index || p.Target == nil {
			continue
		}
		if p.Target.Component == from.Component && p.Target.Port == from.Name && p.Target.Index == from.Index {
			return comp, p, nil
		}
	}
	return comp, first, nil
}

// ---------------------------------------------------------------------------
// Type names
// ---------------------------------------------------------------------------

// BaseType strips any "::" or "." namespace qualification from a type name.
func BaseType(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// SameType reports whether two type names denote the same type, tolerating
// a fully qualified name on one side and a short name on the other.
func SameType(a, b string) bool {
	if a == b {
		return true
	}
	return qualifiedSuffix(a, b) || qualifiedSuffix(b, a)
}

// IsSerial reports whether the type name is the wildcard type.
func IsSerial(name string) bool {
	return BaseType(name) == SerialType
}

// qualifiedSuffix reports whether short is a namespace-qualified suffix of long.
func qualifiedSuffix(long, short string) bool {
	if short == "" || !strings.HasSuffix(long, short) || len(long) == len(short) {
		return false
	}
	head := long[:len(long)-len(short)]
	return strings.HasSuffix(head, "::") || strings.HasSuffix(head, ".") || strings.HasSuffix(head, ":")
}
