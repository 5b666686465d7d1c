package checks_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/checks"
	"github.com/LeStarch/fplint/internal/reconcile"
	"github.com/LeStarch/fplint/internal/testutil/fixture"
)

func TestRegistryOrder(t *testing.T) {
	all := checks.All(nil)
	assert.Equal(t, []string{"PortCollision", "PortConnections", "CommandPorts", "HubLinter"}, check.Names(all))
}

func TestEngineEndToEndPair(t *testing.T) {
	top := pairTopology()
	wire(t, top, "A.dataOut:0", "B.dataIn:0")

	rep := (&check.Engine{Checks: checks.All(nil)}).Run(top, check.RunOptions{})
	assert.True(t, rep.Pass)
	assert.Empty(t, rep.Problems())
	require.Len(t, rep.Checks, 4)
	assert.True(t, rep.Checks[3].Skipped, "hub check needs parameters")
}

func TestEngineReferenceDeploymentPasses(t *testing.T) {
	root := fixture.Project(t, "ref")
	loader := &reconcile.Loader{}
	top, err := loader.LoadTopology(filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml"))
	require.NoError(t, err)

	rep := (&check.Engine{Checks: checks.All(loader)}).Run(top, check.RunOptions{})
	assert.True(t, rep.Pass, "%v", rep.Problems())
}

func TestEngineReferenceDeploymentDefects(t *testing.T) {
	root := fixture.Project(t, "ref")
	loader := &reconcile.Loader{}
	top, err := loader.LoadTopology(filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml"))
	require.NoError(t, err)

	// Point blinker2's registration at blinker1's dispatcher slot.
	b2, _ := top.Component("blinker2")
	reg := b2.Port("cmdRegOut", 0)
	reg.Target.Index = 0
	disp, _ := top.Component("cmdDisp")
	recv := disp.Port("compCmdReg", 0).Clone()
	recv.Target = reg.Ref()
	disp.Ports = append(disp.Ports, recv)
	for _, p := range disp.Ports {
		if p.Name == "compCmdReg" && p.Index == 1 {
			p.Target = nil
		}
	}

	rep := (&check.Engine{Checks: checks.All(loader)}).Run(top, check.RunOptions{})
	assert.False(t, rep.Pass)
	got := map[string]int{}
	for _, p := range rep.Problems() {
		got[p.ID]++
	}
	assert.Equal(t, map[string]int{
		"array-port-collision":       1,
		"port-not-connected":         1,
		"command-ports-not-parallel": 1,
	}, got)

	f, err := check.NewFilter("port-not-connected", `cmdDisp\.compCmdReg:1$`)
	require.NoError(t, err)
	rep = (&check.Engine{Checks: checks.All(loader)}).Run(top, check.RunOptions{
		Filters:    []check.Filter{f},
		Exclusions: []string{"PortCollision", "CommandPorts"},
	})
	assert.True(t, rep.Pass, "%v", rep.Problems())
}

var _ checks.TopologyLoader = (*reconcile.Loader)(nil)
