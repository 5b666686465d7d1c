package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/LeStarch/fplint/internal/testutil/fixture"
)

// chdir changes the working directory for the duration of the test,
// standing in for testing.T.Chdir on toolchains older than Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// captureStdout redirects command output for the duration of the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

// ---------------------------------------------------------------------------
// Help and dispatch
// ---------------------------------------------------------------------------

func TestHelpContainsAllCommands(t *testing.T) {
	var sb strings.Builder
	printUsage(&sb)
	help := sb.String()
	assert.Contains(t, help, "Usage:")
	for _, cmd := range commands {
		assert.Contains(t, help, cmd.name)
		assert.Contains(t, help, cmd.short)
	}
}

func TestLongHelpForKnownCommands(t *testing.T) {
	for _, cmd := range commands {
		t.Run(cmd.name, func(t *testing.T) {
			var sb strings.Builder
			printCommandHelp(&sb, cmd.name)
			assert.Contains(t, sb.String(), cmd.usage)
		})
	}
}

func TestLongHelpUnknownCommand(t *testing.T) {
	var sb strings.Builder
	printCommandHelp(&sb, "no-such-command")
	assert.Contains(t, sb.String(), `unknown command "no-such-command"`)
}

func TestDispatchHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"help"}, {"help", "check"}} {
		captureStdout(t)
		assert.NoError(t, dispatch(args), "%v", args)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	err := dispatch([]string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestDispatchBadFlag(t *testing.T) {
	err := dispatch([]string{"check", "-no-such-flag"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: fplint check")
}

func TestList(t *testing.T) {
	out := captureStdout(t)
	require.NoError(t, dispatch([]string{"list"}))
	text := out.String()
	for _, want := range []string{
		"PortCollision", "PortConnections", "CommandPorts", "HubLinter",
		"array-port-collision", "hub-ports-unused", "-hub-remote-topology <path>",
	} {
		assert.Contains(t, text, want)
	}
	assert.Error(t, dispatch([]string{"list", "extra"}))
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func TestCheckReferencePasses(t *testing.T) {
	root := fixture.Project(t, "ref")
	out := captureStdout(t)

	err := dispatch([]string{"check", filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml")})
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "[SKIPPED] HubLinter: missing parameters")
	assert.Contains(t, out.String(), "Ref: 0 problem(s), 0 filtered, passed")
}

func TestCheckDiscoversTopology(t *testing.T) {
	root := fixture.Project(t, "ref")
	chdir(t, filepath.Join(root, "Ref"))
	out := captureStdout(t)

	require.NoError(t, dispatch([]string{"check"}))
	assert.Contains(t, out.String(), "passed")
}

func TestCheckDiscoveryNeedsExactlyOne(t *testing.T) {
	chdir(t, t.TempDir())
	err := dispatch([]string{"check"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topology")

	chdir(t, fixture.Project(t, "ref", "hub"))
	err = dispatch([]string{"check"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 3 topologies")
}

func TestCheckHubWritesReport(t *testing.T) {
	root := fixture.Project(t, "ref", "hub")
	reportPath := filepath.Join(t.TempDir(), "report.yml")
	out := captureStdout(t)

	err := dispatch([]string{
		"check",
		"-report", reportPath,
		"-hub-remote-topology", filepath.Join(root, "Remote", "Top", "RemoteTopologyAppAi.xml"),
		"-hub-local-hub-name", "hub",
		"-hub-remote-hub-name", "remoteHub",
		filepath.Join(root, "Local", "Top", "LocalTopologyAppAi.xml"),
	})
	require.True(t, errors.Is(err, errLintFailed), "got %v", err)
	assert.Contains(t, out.String(), "hub-ports-unused")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var doc struct {
		Pass       bool `yaml:"pass"`
		Topologies []struct {
			Topology string `yaml:"topology"`
			Checks   []struct {
				Name   string `yaml:"name"`
				Status string `yaml:"status"`
			} `yaml:"checks"`
		} `yaml:"topologies"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.False(t, doc.Pass)
	require.Len(t, doc.Topologies, 1)
	local := doc.Topologies[0]
	assert.Equal(t, "Local", local.Topology)
	require.Len(t, local.Checks, 4)
	assert.Equal(t, "HubLinter", local.Checks[3].Name)
	assert.Equal(t, "failed", local.Checks[3].Status)
}

func TestCheckContinuesPastLoadFailure(t *testing.T) {
	root := fixture.Project(t, "ref")
	reportPath := filepath.Join(t.TempDir(), "report.yml")
	missing := filepath.Join(root, "Gone", "Top", "GoneTopologyAppAi.xml")
	out := captureStdout(t)

	err := dispatch([]string{
		"check", "-report", reportPath,
		missing,
		filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load topology model "+missing)
	assert.Contains(t, out.String(), "Ref: 0 problem(s), 0 filtered, passed")

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "failed to load topology model")
}

func TestCheckConfigFiltersAndExcludes(t *testing.T) {
	root := fixture.Project(t, "ref", "hub")
	cfg := filepath.Join(root, "fplint.yml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
exclusions: [HubLinter, CommandPorts]
filters:
  port-not-connected:
  array-port-collision:
`), 0o644))
	out := captureStdout(t)

	err := dispatch([]string{"check", "-config", cfg, filepath.Join(root, "Local", "Top", "LocalTopologyAppAi.xml")})
	require.NoError(t, err, out.String())
	assert.NotContains(t, out.String(), "HubLinter")
}

func TestCheckBadConfig(t *testing.T) {
	root := fixture.Project(t, "ref")
	cfg := filepath.Join(root, "fplint.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("filters:\n  bogus-id:\n"), 0o644))

	err := dispatch([]string{"check", "-config", cfg, filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown identifier 'bogus-id' specified")
}

func TestCheckLoadFailure(t *testing.T) {
	err := dispatch([]string{"check", filepath.Join(t.TempDir(), "MissingTopologyAppAi.xml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load topology model")
}

func TestDispatchBareTopologyRunsCheck(t *testing.T) {
	root := fixture.Project(t, "ref")
	out := captureStdout(t)

	require.NoError(t, dispatch([]string{filepath.Join(root, "Ref", "Top", "RefTopologyAppAi.xml")}))
	assert.Contains(t, out.String(), "passed")
}

func TestDispatchNoArgsRunsCheck(t *testing.T) {
	root := fixture.Project(t, "ref")
	chdir(t, filepath.Join(root, "Ref"))
	out := captureStdout(t)

	require.NoError(t, dispatch(nil))
	assert.Contains(t, out.String(), "Ref: 0 problem(s), 0 filtered, passed")
	assert.NotContains(t, out.String(), "Usage:")

	chdir(t, t.TempDir())
	err := dispatch(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no topology")
}
