package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeStarch/fplint/internal/check"
	"github.com/LeStarch/fplint/internal/checks"
	"github.com/LeStarch/fplint/internal/config"
)

var registered = checks.All(nil)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "fplint.yml", `
filters:
  port-not-connected:
    - specifier: 'Ref\.blinker1\..*'
    - specifier: 'Ref\.cmdDisp\.compCmdSend:1'
  array-port-collision:
exclusions:
  - CommandPorts
params:
  hub-local-hub-name: hub
  hub-remote-hub-name: 7
`)
	cfg, err := config.Load(path, registered)
	require.NoError(t, err)

	assert.Equal(t, []string{"CommandPorts"}, cfg.Exclusions)
	assert.Equal(t, check.Params{"hub-local-hub-name": "hub", "hub-remote-hub-name": "7"}, cfg.Params)
	require.Len(t, cfg.Filters, 2)

	// Filters are ordered by identifier.
	assert.Equal(t, "array-port-collision", cfg.Filters[0].ID)
	assert.Equal(t, "port-not-connected", cfg.Filters[1].ID)
	assert.Len(t, cfg.Filters[1].Specifiers, 2)

	matchAll := check.Problem{ID: "array-port-collision", Location: check.Location{Topology: "Any", Component: "x"}}
	assert.True(t, cfg.Filters[0].Matches(matchAll))

	blinker := check.Problem{ID: "port-not-connected", Location: check.Location{Topology: "Ref", Component: "blinker1", Port: "schedIn"}}
	other := check.Problem{ID: "port-not-connected", Location: check.Location{Topology: "Ref", Component: "blinker2", Port: "schedIn"}}
	assert.True(t, cfg.Filters[1].Matches(blinker))
	assert.False(t, cfg.Filters[1].Matches(other))
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "fplint.toml", `
exclusions = ["HubLinter"]

[params]
hub-remote-topology = "Remote/Top/RemoteTopologyAppAi.xml"

[[filters.port-not-connected]]
specifier = "Ref\\.rateGroup"
`)
	cfg, err := config.Load(path, registered)
	require.NoError(t, err)

	assert.Equal(t, []string{"HubLinter"}, cfg.Exclusions)
	assert.Equal(t, "Remote/Top/RemoteTopologyAppAi.xml", cfg.Params["hub-remote-topology"])
	require.Len(t, cfg.Filters, 1)
	assert.Equal(t, "port-not-connected", cfg.Filters[0].ID)

	opts := cfg.RunOptions()
	assert.Equal(t, cfg.Exclusions, opts.Exclusions)
	assert.Equal(t, cfg.Params, opts.Params)
}

func TestLoadEmpty(t *testing.T) {
	cfg, err := config.Load("", registered)
	require.NoError(t, err)
	assert.Empty(t, cfg.Filters)
	assert.Empty(t, cfg.Exclusions)
	assert.NotNil(t, cfg.Params)

	cfg, err = config.Load(writeFile(t, "fplint.yml", ""), registered)
	require.NoError(t, err)
	assert.Empty(t, cfg.Filters)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		file string
		body string
		want string
	}{
		{"unknown identifier", "fplint.yml", "filters:\n  no-such-id:\n", "unknown identifier 'no-such-id' specified"},
		{"unknown exclusion", "fplint.yml", "exclusions: [NoSuchCheck]\n", "unknown check 'NoSuchCheck' in exclusions"},
		{"unknown param", "fplint.yml", "params:\n  colour: red\n", "unknown parameter 'colour'"},
		{"unknown key", "fplint.yml", "filterz: {}\n", "schema validation failed"},
		{"exclusions not a list", "fplint.yml", "exclusions: PortCollision\n", "schema validation failed"},
		{"bad specifier", "fplint.yml", "filters:\n  port-not-connected:\n    - specifier: '('\n", "invalid specifier"},
		{"bad yaml", "fplint.yml", "filters: [\n", "failed to parse YAML"},
		{"bad toml", "fplint.toml", "exclusions = [\n", "failed to parse TOML"},
		{"unsupported format", "fplint.json", "{}", "unsupported configuration format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.body)
			_, err := config.Load(path, registered)
			require.Error(t, err)

			var ce *config.ConfigurationError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, path, ce.Path)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "fplint.yml"), registered)
	var ce *config.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, config.Find(dir))

	toml := filepath.Join(dir, "fplint.toml")
	require.NoError(t, os.WriteFile(toml, nil, 0o644))
	assert.Equal(t, toml, config.Find(dir))

	yml := filepath.Join(dir, "fplint.yml")
	require.NoError(t, os.WriteFile(yml, nil, 0o644))
	assert.Equal(t, yml, config.Find(dir))
}
