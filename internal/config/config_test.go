package config

import (
	"os"
	"path/filepath"
	"testing"

	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
network:
  nodes_file: nodes.csv
  lines_file: lines.csv
  generators_file: /abs/generators.csv
  slack_nodes: [n2]
forecast:
  wind_scenarios_file: wind.csv
  wind_capacity_file: cap.csv
  load_file: load.csv
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadResolvesPathsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "nodes.csv", "ID\n")
	path := write(t, dir, "dispatch.yaml", sampleYAML)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nodes.csv"), c.Network.NodesFile)
	assert.Equal(t, "lines.csv", c.Network.LinesFile, "missing relative file falls back to cwd")
	assert.Equal(t, "/abs/generators.csv", c.Network.GeneratorsFile)
	assert.Equal(t, []string{"n2"}, c.Network.SlackNodes)
	assert.Equal(t, market.DefaultVOLL, c.Market.VOLL)
	assert.Equal(t, lp.DefaultTolerance, c.Solver.Tolerance)
}

func TestLoadKeepsExplicitSettings(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "dispatch.yaml", sampleYAML+"market:\n  voll: 250\nsolver:\n  tolerance: 1e-9\n")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250.0, c.Market.VOLL)
	assert.Equal(t, 1e-9, c.Solver.Tolerance)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		yaml string
	}{
		{"missing nodes file", "network:\n  lines_file: a\n"},
		{"negative voll", sampleYAML + "market:\n  voll: -5\n"},
		{"tolerance too large", sampleYAML + "solver:\n  tolerance: 2\n"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, dir, string(rune('a'+i))+".yaml", tt.yaml)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	var nilConfig *Config
	assert.Error(t, nilConfig.Validate())
}

func TestLoadUncheckedSkipsValidation(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "partial.yaml", "network:\n  nodes_file: n.csv\n")
	c, err := LoadUnchecked(path)
	require.NoError(t, err)
	assert.Equal(t, "n.csv", c.Network.NodesFile)
	assert.Zero(t, c.Market.VOLL)

	_, err = LoadUnchecked(write(t, dir, "broken.yaml", "network: [unterminated"))
	assert.Error(t, err)
	_, err = LoadUnchecked(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
