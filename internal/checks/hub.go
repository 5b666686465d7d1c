package checks

// hub.go - cross-topology check along a bridging hub component.
//
// Two deployments talk through a hub instance on each side. What enters
// the local hub's portIn:i leaves the remote hub's portOut:i, and likewise
// for the buffer arrays. The check first verifies that both sides of every
// hub slot are wired compatibly, then builds a combined topology in which
// each component attached to a local hub slot is wired straight to the
// component attached to the matching remote slot, and reruns the delegate
// checks over it under the "hub-" identifier prefix.

import (
	"fmt"
	"sort"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/model"
)

// Parameters of the hub check.
const (
	ParamRemoteTopology = "hub-remote-topology"
	ParamLocalHub       = "hub-local-hub-name"
	ParamRemoteHub      = "hub-remote-hub-name"
)

// hubPrefix namespaces problems reported by delegates over the combined
// topology.
const hubPrefix = "hub-"

// hubPairs maps each local hub port array to its remote counterpart.
var hubPairs = [][2]string{
	{"portIn", "portOut"},
	{"portOut", "portIn"},
	{"buffersIn", "buffersOut"},
	{"buffersOut", "buffersIn"},
}

// TopologyLoader loads and reconciles a topology file.
type TopologyLoader interface {
	LoadTopology(path string) (*model.Topology, error)
}

// HubLinter checks a topology against the remote topology on the far side
// of a hub pair.
type HubLinter struct {
	Loader    TopologyLoader
	Delegates []check.Check
}

// NewHubLinter returns a hub check that loads remote topologies with l and
// reruns the collision and command port checks across the hub.
func NewHubLinter(l TopologyLoader) *HubLinter {
	return &HubLinter{Loader: l, Delegates: []check.Check{PortCollision{}, CommandPorts{}}}
}

func (*HubLinter) Name() string { return "HubLinter" }

func (h *HubLinter) Identifiers() map[string]check.Severity {
	ids := map[string]check.Severity{}
	for _, d := range h.Delegates {
		for id, sev := range check.PrefixIdentifiers(hubPrefix, d.Identifiers()) {
			ids[id] = sev
		}
	}
	ids["hub-colliding-ids"] = check.Error
	ids["hub-ports-unused"] = check.Warning
	ids["hub-ports-not-connected"] = check.Error
	ids["hub-ports-not-parallel"] = check.Error
	ids["hub-port-directions-not-parallel"] = check.Error
	ids["hub-unused-ports-not-parallel"] = check.Error
	return ids
}

func (*HubLinter) Params() []check.Param {
	return []check.Param{
		{Name: ParamRemoteTopology, Type: "path", Help: "Topology XML of the remote side of the hub pair"},
		{Name: ParamLocalHub, Type: "string", Help: "Name of hub component in this topology"},
		{Name: ParamRemoteHub, Type: "string", Help: "Name of hub component in the remote topology"},
	}
}

// hubEnd is one hub port together with the component port wired to it.
type hubEnd struct {
	hub      *model.PortInstance
	attached *model.PortInstance // nil when the hub port is unwired
}

// hubSlot is a local hub end aligned with the remote end at the same
// position of the paired array.
type hubSlot struct {
	local, remote hubEnd
}

func (h *HubLinter) Run(r check.Reporter, top *model.Topology, params check.Params) error {
	remote, err := h.Loader.LoadTopology(params[ParamRemoteTopology])
	if err != nil {
		return fmt.Errorf("load remote topology: %w", err)
	}
	localHub, err := findHub(top, params[ParamLocalHub], "local")
	if err != nil {
		return err
	}
	remoteHub, err := findHub(remote, params[ParamRemoteHub], "remote")
	if err != nil {
		return err
	}

	var slots []hubSlot
	for _, pair := range hubPairs {
		local, err := hubEnds(top, localHub, pair[0])
		if err != nil {
			return err
		}
		far, err := hubEnds(remote, remoteHub, pair[1])
		if err != nil {
			return err
		}
		for i := 0; i < len(local) && i < len(far); i++ {
			slots = append(slots, hubSlot{local: local[i], remote: far[i]})
		}
	}
	for _, s := range slots {
		compareSlot(r, top, remote, s)
	}

	combined := fuse(r, top, remote, slots)
	if combined == nil {
		return nil
	}
	prefixed := check.Prefixed{Prefix: hubPrefix, Next: r}
	for _, d := range h.Delegates {
		if err := d.Run(prefixed, combined, params); err != nil {
			return fmt.Errorf("%s across hub: %w", d.Name(), err)
		}
	}
	return nil
}

func findHub(top *model.Topology, name, side string) (*model.ComponentInstance, error) {
	c, err := top.Component(name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("could not find component %q in %s topology %s", name, side, top.Name)
	}
	return c, nil
}

// hubEnds returns the hub's ports of the named array in index order with
// the component ports they are wired to. Duplicate indices keep the first.
func hubEnds(top *model.Topology, hub *model.ComponentInstance, name string) ([]hubEnd, error) {
	byIndex := map[int]*model.PortInstance{}
	for _, p := range hub.Ports {
		if p.Name != name {
			continue
		}
		if _, dup := byIndex[p.Index]; !dup {
			byIndex[p.Index] = p
		}
	}
	indices := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	ends := make([]hubEnd, 0, len(indices))
	for _, i := range indices {
		p := byIndex[i]
		end := hubEnd{hub: p}
		if p.Wired() {
			_, attached, err := top.ResolvePeer(p)
			if err != nil {
				return nil, err
			}
			end.attached = attached
		}
		ends = append(ends, end)
	}
	return ends, nil
}

// compareSlot reports the first misalignment of a hub slot, if any.
func compareSlot(r check.Reporter, local, remote *model.Topology, s hubSlot) {
	lh, rh := check.AtPort(local, s.local.hub), check.AtPort(remote, s.remote.hub)
	la, ra := s.local.attached, s.remote.attached
	switch {
	case s.local.hub.Index != s.remote.hub.Index:
		r.Report("hub-unused-ports-not-parallel",
			fmt.Sprintf("and %s should have aligning indices", rh), lh)
	case la == nil && ra == nil:
		r.Report("hub-ports-unused", fmt.Sprintf("and %s are both disconnected", rh), lh)
	case ra == nil:
		r.Report("hub-ports-not-connected",
			fmt.Sprintf("is connected to %s but remote %s is not connected", lh, rh), check.AtPort(local, la))
	case la == nil:
		r.Report("hub-ports-not-connected",
			fmt.Sprintf("is connected to %s but local %s is not connected", rh, lh), check.AtPort(remote, ra))
	case !model.SameType(la.Type, ra.Type):
		r.Report("hub-ports-not-parallel",
			fmt.Sprintf("of type %s at hub port %s is connected to %s of incompatible type %s at hub port %s",
				la.Type, lh, check.AtPort(remote, ra), ra.Type, rh), check.AtPort(local, la))
	case s.local.hub.Role == s.remote.hub.Role:
		r.Report("hub-port-directions-not-parallel",
			fmt.Sprintf("of direction %s parallel to %s of incompatible direction %s", s.local.hub.Role, rh, s.remote.hub.Role), lh)
	case la.Role == ra.Role:
		r.Report("hub-port-directions-not-parallel",
			fmt.Sprintf("of direction %s at hub port %s is connected to %s of incompatible direction %s at hub port %s",
				la.Role, lh, check.AtPort(remote, ra), ra.Role, rh), check.AtPort(local, la))
	}
}

// fuse builds the combined topology from copies of both sides with every
// fully wired hub slot bypassed. A remote instance whose name is taken on
// the local side joins as "<remote topology>/<name>". It returns nil, after
// reporting, when even that name is taken.
func fuse(r check.Reporter, local, remote *model.Topology, slots []hubSlot) *model.Topology {
	taken := map[string]bool{}
	for _, c := range local.Components {
		taken[c.Name] = true
	}
	rename := map[string]string{}
	collided := false
	for _, rc := range remote.Components {
		if !taken[rc.Name] {
			continue
		}
		alias := remote.Name + "/" + rc.Name
		if taken[alias] {
			r.Report("hub-colliding-ids",
				fmt.Sprintf("collides with component %s", check.AtComponent(local, alias)),
				check.AtComponent(remote, rc.Name))
			collided = true
			continue
		}
		rename[rc.Name] = alias
	}
	if collided {
		return nil
	}

	combined := &model.Topology{Name: local.Name + "+" + remote.Name, Source: local.Source}
	copies := map[*model.PortInstance]*model.PortInstance{}
	copyInto(combined, local, nil, copies)
	copyInto(combined, remote, rename, copies)

	for _, s := range slots {
		if s.local.attached == nil || s.remote.attached == nil {
			continue
		}
		la, ra := copies[s.local.attached], copies[s.remote.attached]
		la.Target, ra.Target = ra.Ref(), la.Ref()
		copies[s.local.hub].Target = nil
		copies[s.remote.hub].Target = nil
	}
	return combined
}

// copyInto appends clones of src's components to dst under their renamed
// names, remapping port owners and targets, and records each original
// port's clone in copies.
func copyInto(dst, src *model.Topology, rename map[string]string, copies map[*model.PortInstance]*model.PortInstance) {
	named := func(name string) string {
		if alias, ok := rename[name]; ok {
			return alias
		}
		return name
	}
	for _, c := range src.Components {
		cp := c.Clone()
		cp.Name = named(c.Name)
		for i, p := range c.Ports {
			q := cp.Ports[i]
			q.Component = named(p.Component)
			if q.Target != nil {
				q.Target.Component = named(q.Target.Component)
			}
			copies[p] = q
		}
		dst.Components = append(dst.Components, cp)
	}
}
