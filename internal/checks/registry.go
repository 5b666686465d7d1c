package checks

import "github.com/LeStarch/fplint/internal/check"

// All returns every check in run order. l loads the remote side of the hub
// check.
func All(l TopologyLoader) []check.Check {
	return []check.Check{
		PortCollision{},
		PortConnections{},
		CommandPorts{},
		NewHubLinter(l),
	}
}
