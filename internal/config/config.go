package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/market"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Network  NetworkConfig  `yaml:"network"`
	Forecast ForecastConfig `yaml:"forecast"`
	Market   MarketConfig   `yaml:"market"`
	Solver   SolverConfig   `yaml:"solver"`
}

type NetworkConfig struct {
	NodesFile      string `yaml:"nodes_file"`
	LinesFile      string `yaml:"lines_file"`
	GeneratorsFile string `yaml:"generators_file"`

	// Optional: angle reference nodes. Defaults to the first node in the nodes file.
	SlackNodes []string `yaml:"slack_nodes"`
}

type ForecastConfig struct {
	WindScenariosFile string `yaml:"wind_scenarios_file"`
	WindCapacityFile  string `yaml:"wind_capacity_file"`
	LoadFile          string `yaml:"load_file"`
}

type MarketConfig struct {
	VOLL float64 `yaml:"voll"`
}

type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked reads the file and resolves relative paths, but neither
// applies defaults nor validates. Useful for printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for _, p := range c.files() {
		*p = resolve(dir, *p)
	}
	return &c, nil
}

// ApplyDefaults fills the optional market and solver settings.
func (c *Config) ApplyDefaults() {
	if c.Market.VOLL == 0 {
		c.Market.VOLL = market.DefaultVOLL
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = lp.DefaultTolerance
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	required := []struct {
		key, value string
	}{
		{"network.nodes_file", c.Network.NodesFile},
		{"network.lines_file", c.Network.LinesFile},
		{"network.generators_file", c.Network.GeneratorsFile},
		{"forecast.wind_scenarios_file", c.Forecast.WindScenariosFile},
		{"forecast.wind_capacity_file", c.Forecast.WindCapacityFile},
		{"forecast.load_file", c.Forecast.LoadFile},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if c.Market.VOLL <= 0 || math.IsInf(c.Market.VOLL, 0) || math.IsNaN(c.Market.VOLL) {
		return fmt.Errorf("market.voll must be a positive number, got %v", c.Market.VOLL)
	}
	if c.Solver.Tolerance <= 0 || c.Solver.Tolerance >= 1 {
		return fmt.Errorf("solver.tolerance must be in (0, 1), got %v", c.Solver.Tolerance)
	}
	return nil
}

func (c *Config) files() []*string {
	return []*string{
		&c.Network.NodesFile,
		&c.Network.LinesFile,
		&c.Network.GeneratorsFile,
		&c.Forecast.WindScenariosFile,
		&c.Forecast.WindCapacityFile,
		&c.Forecast.LoadFile,
	}
}

// resolve interprets a relative path against the config file directory,
// falling back to the path as given (relative to cwd) if that doesn't exist.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}
