package data

import (
	"fmt"

	"stochastic-dispatch/internal/config"
	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/market"
	"stochastic-dispatch/internal/network"
	"stochastic-dispatch/internal/scenario"
)

// LoadNetwork reads the node, line and generator tables named by c.
func LoadNetwork(c *config.Config) (*network.Topology, *network.Fleet, error) {
	nodes, err := LoadNodes(c.Network.NodesFile)
	if err != nil {
		return nil, nil, err
	}
	lines, err := LoadLines(c.Network.LinesFile)
	if err != nil {
		return nil, nil, err
	}
	gens, err := LoadGenerators(c.Network.GeneratorsFile)
	if err != nil {
		return nil, nil, err
	}
	topo, err := network.NewTopology(nodes, lines, c.Network.SlackNodes)
	if err != nil {
		return nil, nil, err
	}
	fleet, err := network.NewFleet(gens, topo)
	if err != nil {
		return nil, nil, err
	}
	return topo, fleet, nil
}

// Open loads everything c names and builds the market on a fresh LP model.
func Open(c *config.Config) (*market.Market, error) {
	topo, fleet, err := LoadNetwork(c)
	if err != nil {
		return nil, err
	}
	forecast, err := LoadForecast(c.Forecast.WindScenariosFile, c.Forecast.WindCapacityFile, c.Forecast.LoadFile)
	if err != nil {
		return nil, err
	}
	return Build(topo, fleet, forecast, c.Market.VOLL, c.Solver.Tolerance)
}

// Build assembles a market from in-memory parts.
func Build(topo *network.Topology, fleet *network.Fleet, forecast scenario.Data, voll, tolerance float64) (*market.Market, error) {
	store, err := scenario.NewStore(forecast, topo)
	if err != nil {
		return nil, err
	}
	var opts []lp.Option
	if tolerance > 0 {
		opts = append(opts, lp.WithTolerance(tolerance))
	}
	m, err := market.New(topo, fleet, store, lp.New(opts...), market.Options{VOLL: voll})
	if err != nil {
		return nil, fmt.Errorf("build market: %w", err)
	}
	return m, nil
}
