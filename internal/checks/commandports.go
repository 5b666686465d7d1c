package checks

import (
	"fmt"
	"strconv"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/model"
)

// commandTriad lists the command ports of a component in report order:
// registration, receipt and response.
var commandTriad = [3]struct {
	typ  string
	role model.Role
}{
	{"CmdReg", model.Output},
	{"Cmd", model.Input},
	{"CmdResponse", model.Output},
}

// CommandPorts verifies that each component's command ports are wired to
// one coherent dispatcher slot: registration and receipt at the same index,
// responses at index 0.
type CommandPorts struct{}

func (CommandPorts) Name() string { return "CommandPorts" }

func (CommandPorts) Identifiers() map[string]check.Severity {
	return map[string]check.Severity{
		"port-not-connected":                check.Warning,
		"command-ports-not-parallel":        check.Error,
		"invalid-target-port-in-connection": check.Error,
	}
}

func (CommandPorts) Params() []check.Param { return nil }

func (CommandPorts) Run(r check.Reporter, top *model.Topology, _ check.Params) error {
	for _, c := range top.Components {
		var (
			index [3]int
			wired [3]bool
			seen  bool
		)
		for _, p := range c.Ports {
			slot := triadSlot(p)
			if slot < 0 {
				continue
			}
			at := check.AtPort(top, p)
			if !p.Wired() {
				r.Report("port-not-connected", "command port not connected", at)
				continue
			}
			want := commandTriad[slot].typ
			if t := p.Target.Type; t != "" && !model.IsSerial(t) && model.BaseType(t) != want {
				r.Report("invalid-target-port-in-connection",
					fmt.Sprintf("command port connected to invalid type %s", t), at)
				continue
			}
			index[slot], wired[slot], seen = p.Target.Index, true, true
		}
		if !seen && len(c.Commands()) == 0 {
			continue
		}
		regOK := wired[0] == wired[1] && index[0] == index[1]
		if !regOK || !wired[2] || index[2] != 0 {
			r.Report("command-ports-not-parallel",
				fmt.Sprintf("has non-parallel command ports: %s,%s,%s",
					triadIndex(wired[0], index[0]), triadIndex(wired[1], index[1]), triadIndex(wired[2], index[2])),
				check.AtComponent(top, c.Name))
		}
	}
	return nil
}

// triadSlot returns the position of p in the command triad, or -1.
func triadSlot(p *model.PortInstance) int {
	base := model.BaseType(p.Type)
	for i, t := range commandTriad {
		if base == t.typ && p.Role == t.role {
			return i
		}
	}
	return -1
}

func triadIndex(wired bool, idx int) string {
	if !wired {
		return "n/a"
	}
	return strconv.Itoa(idx)
}
