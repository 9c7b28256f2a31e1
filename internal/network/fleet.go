package network

import (
	"math"

	"stochastic-dispatch/internal/model"
)

// Fleet indexes generators: capacity, linear cost, and which generators sit
// at each node of a Topology.
type Fleet struct {
	ids      []string
	index    map[string]int
	capacity []float64
	cost     []float64
	node     []int
	atNode   [][]int
}

func NewFleet(rows []model.GeneratorRow, topo *Topology) (*Fleet, error) {
	if topo == nil {
		return nil, model.NewDataError("generators", "topology is nil")
	}
	f := &Fleet{
		index:  make(map[string]int, len(rows)),
		atNode: make([][]int, topo.NumNodes()),
	}
	for i, g := range rows {
		if g.ID == "" {
			return nil, model.NewDataError("generators", "row %d has an empty ID", i)
		}
		if _, dup := f.index[g.ID]; dup {
			return nil, model.NewDataError("generators", "duplicate generator %q", g.ID)
		}
		n, ok := topo.NodeIndex(g.Node)
		if !ok {
			return nil, model.NewDataError("generators", "generator %q references unknown node %q", g.ID, g.Node)
		}
		if math.IsNaN(g.CapacityMW) || g.CapacityMW < 0 {
			return nil, model.NewDataError("generators", "generator %q capacity must be >= 0, got %v", g.ID, g.CapacityMW)
		}
		if math.IsNaN(g.LinearCost) || math.IsInf(g.LinearCost, 0) {
			return nil, model.NewDataError("generators", "generator %q has a non-finite cost", g.ID)
		}

		idx := len(f.ids)
		f.index[g.ID] = idx
		f.ids = append(f.ids, g.ID)
		f.capacity = append(f.capacity, g.CapacityMW)
		f.cost = append(f.cost, g.LinearCost)
		f.node = append(f.node, n)
		f.atNode[n] = append(f.atNode[n], idx)
	}
	return f, nil
}

func (f *Fleet) NumGenerators() int { return len(f.ids) }

// Generators returns generator IDs in load order.
func (f *Fleet) Generators() []string {
	return append([]string(nil), f.ids...)
}

func (f *Fleet) Generator(g int) string { return f.ids[g] }

func (f *Fleet) GeneratorIndex(id string) (int, bool) {
	idx, ok := f.index[id]
	return idx, ok
}

func (f *Fleet) Capacity(g int) float64 { return f.capacity[g] }
func (f *Fleet) Cost(g int) float64     { return f.cost[g] }

// Node is the position of the node owning generator g.
func (f *Fleet) Node(g int) int { return f.node[g] }

// GeneratorsAt lists the generators located at node n.
func (f *Fleet) GeneratorsAt(n int) []int {
	return append([]int(nil), f.atNode[n]...)
}
