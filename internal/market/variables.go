package market

import (
	"fmt"
	"math"

	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/network"
	"stochastic-dispatch/internal/scenario"
)

// VariableRegistry owns every decision variable handle, one dense slice per
// kind addressed by Key.
type VariableRegistry struct {
	solver  Solver
	grids   [numKinds]grid
	handles [numKinds][]lp.Var
}

// BuildVariables registers all decision variables with the solver:
//   - generation in [0, capacity] per (scenario, generator, step)
//   - renewable use in [0, available] and load shed in [0, demand] per (scenario, node, step)
//   - line flow in [-limit, limit] per (scenario, line, step)
//   - node angle, free, per (scenario, node, step), then fixed to 0 at slack nodes
func BuildVariables(solver Solver, topo *network.Topology, fleet *network.Fleet, store *scenario.Store) (*VariableRegistry, error) {
	nS, nT := store.NumScenarios(), store.NumSteps()
	r := &VariableRegistry{solver: solver}
	r.grids[Generation] = grid{nS, fleet.NumGenerators(), nT}
	r.grids[RenewableUse] = grid{nS, topo.NumNodes(), nT}
	r.grids[LoadShed] = grid{nS, topo.NumNodes(), nT}
	r.grids[LineFlow] = grid{nS, topo.NumLines(), nT}
	r.grids[NodeAngle] = grid{nS, topo.NumNodes(), nT}
	for _, kind := range Kinds() {
		r.handles[kind] = make([]lp.Var, r.grids[kind].size())
	}

	inf := math.Inf(1)
	err := r.each(Generation, func(k Key) (float64, float64) {
		return 0, fleet.Capacity(k.Entity)
	})
	if err == nil {
		err = r.each(RenewableUse, func(k Key) (float64, float64) {
			return 0, store.AvailableRenewable(k.Scenario, k.Entity, k.Step)
		})
	}
	if err == nil {
		err = r.each(LoadShed, func(k Key) (float64, float64) {
			return 0, store.Demand(k.Entity, k.Step)
		})
	}
	if err == nil {
		err = r.each(LineFlow, func(k Key) (float64, float64) {
			limit := topo.Limit(k.Entity)
			return -limit, limit
		})
	}
	if err == nil {
		err = r.each(NodeAngle, func(Key) (float64, float64) {
			return -inf, inf
		})
	}
	if err != nil {
		return nil, err
	}

	for s := 0; s < nS; s++ {
		for _, n := range topo.SlackNodes() {
			for t := 0; t < nT; t++ {
				if err := r.SetBounds(NodeAngle, Key{s, n, t}, 0, 0); err != nil {
					return nil, fmt.Errorf("fix slack angle: %w", err)
				}
			}
		}
	}
	return r, nil
}

func (r *VariableRegistry) each(kind Kind, bounds func(Key) (float64, float64)) error {
	g := r.grids[kind]
	for s := 0; s < g.scenarios; s++ {
		for e := 0; e < g.entities; e++ {
			for t := 0; t < g.steps; t++ {
				k := Key{Scenario: s, Entity: e, Step: t}
				lo, hi := bounds(k)
				v, err := r.solver.AddVariable(lo, hi)
				if err != nil {
					return fmt.Errorf("add %s variable %v: %w", kind, k, err)
				}
				r.handles[kind][g.index(k)] = v
			}
		}
	}
	return nil
}

// Count is the number of variables of kind.
func (r *VariableRegistry) Count(kind Kind) int {
	if kind < 0 || kind >= numKinds {
		return 0
	}
	return len(r.handles[kind])
}

// Handle returns the solver handle of the variable at k.
func (r *VariableRegistry) Handle(kind Kind, k Key) (lp.Var, bool) {
	if kind < 0 || kind >= numKinds || !r.grids[kind].contains(k) {
		return 0, false
	}
	return r.handles[kind][r.grids[kind].index(k)], true
}

func (r *VariableRegistry) mustHandle(kind Kind, k Key) lp.Var {
	v, ok := r.Handle(kind, k)
	if !ok {
		panic(fmt.Sprintf("market: no %s variable at %v", kind, k))
	}
	return v
}

// Bounds reads the current bounds of the variable at k back from the solver.
func (r *VariableRegistry) Bounds(kind Kind, k Key) (lower, upper float64, err error) {
	v, ok := r.Handle(kind, k)
	if !ok {
		return 0, 0, fmt.Errorf("no %s variable at %v", kind, k)
	}
	return r.solver.Bounds(v)
}

// SetBounds changes the bounds of the variable at k in place.
func (r *VariableRegistry) SetBounds(kind Kind, k Key, lower, upper float64) error {
	v, ok := r.Handle(kind, k)
	if !ok {
		return fmt.Errorf("no %s variable at %v", kind, k)
	}
	return r.solver.SetBounds(v, lower, upper)
}

// Value reads the solved value of the variable at k.
func (r *VariableRegistry) Value(kind Kind, k Key) (float64, error) {
	v, ok := r.Handle(kind, k)
	if !ok {
		return 0, fmt.Errorf("no %s variable at %v", kind, k)
	}
	return r.solver.Value(v)
}
