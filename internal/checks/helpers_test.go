package checks_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/model"
)

// port builds an unwired port template for newComp.
func port(name, typ string, role model.Role, maxCount int) *model.PortSpec {
	return &model.PortSpec{Name: name, Type: typ, Role: role, MaxCount: maxCount}
}

// newComp adds an instance of a single-use kind with the given ports.
func newComp(top *model.Topology, name string, commands int, ports ...*model.PortSpec) *model.ComponentInstance {
	spec := &model.ComponentSpec{Kind: name + "Kind", Ports: ports}
	for i := 0; i < commands; i++ {
		spec.Commands = append(spec.Commands, model.Command{Mnemonic: fmt.Sprintf("CMD_%d", i), Opcode: strconv.Itoa(i)})
	}
	c := spec.Instantiate()
	c.Name = name
	for _, p := range c.Ports {
		p.Component = name
	}
	top.Components = append(top.Components, c)
	return c
}

// ref parses "comp.port:idx".
func ref(t *testing.T, s string) (string, string, int) {
	t.Helper()
	comp, rest, ok := strings.Cut(s, ".")
	require.True(t, ok, s)
	name, idx, ok := strings.Cut(rest, ":")
	require.True(t, ok, s)
	n, err := strconv.Atoi(idx)
	require.NoError(t, err)
	return comp, name, n
}

// wire connects from -> to the way the reconciler does: the source points
// at the target, and the target gains a receiving port pointing back. A
// target slot that is already wired gets an extra receiving port.
func wire(t *testing.T, top *model.Topology, from, to string) {
	t.Helper()
	src := find(t, top, from)
	dstComp, dstName, dstIdx := ref(t, to)
	c, err := top.Component(dstComp)
	require.NoError(t, err)
	require.NotNil(t, c, to)
	dst := c.Port(dstName, dstIdx)
	require.NotNil(t, dst, to)
	if dst.Wired() {
		dst = dst.Clone()
		c.Ports = append(c.Ports, dst)
	}
	src.Target = dst.Ref()
	dst.Target = src.Ref()
}

func find(t *testing.T, top *model.Topology, s string) *model.PortInstance {
	t.Helper()
	comp, name, idx := ref(t, s)
	c, err := top.Component(comp)
	require.NoError(t, err)
	require.NotNil(t, c, s)
	p := c.Port(name, idx)
	require.NotNil(t, p, s)
	return p
}

// run executes c over top and returns its problems, failing on a check error.
func run(t *testing.T, c check.Check, top *model.Topology, params check.Params) []check.Problem {
	t.Helper()
	res := check.NewResult(c.Identifiers())
	require.NoError(t, c.Run(res, top, params))
	require.NoError(t, res.Err())
	return res.Problems()
}

func ids(problems []check.Problem) []string {
	out := make([]string, 0, len(problems))
	for _, p := range problems {
		out = append(out, p.ID)
	}
	return out
}
