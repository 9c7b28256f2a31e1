package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/model"
	"stochastic-dispatch/internal/network"
	"stochastic-dispatch/internal/scenario"
)

// Options tunes model construction.
type Options struct {
	// VOLL is the value of lost load ($/MWh). Zero means DefaultVOLL.
	VOLL float64
}

// Market is the stochastic multi-period DC dispatch model. Topology, fleet,
// scenario set and horizon are fixed at New; only the forecast held in the
// scenario store may change afterwards, through Refresh.
//
// A Market is not safe for concurrent use; callers serialize Refresh and Solve.
type Market struct {
	topo   *network.Topology
	fleet  *network.Fleet
	store  *scenario.Store
	solver Solver
	voll   float64

	vars *VariableRegistry
	cons *ConstraintRegistry

	last    *Solution
	current bool
}

// New builds variables, objective and constraints on solver.
func New(topo *network.Topology, fleet *network.Fleet, store *scenario.Store, solver Solver, opts Options) (*Market, error) {
	if topo == nil || fleet == nil || store == nil || solver == nil {
		return nil, errors.New("market: topology, fleet, store and solver are required")
	}
	if store.NumNodes() != topo.NumNodes() {
		return nil, &model.ModelConsistencyError{Message: "scenario store was not built on this topology"}
	}
	voll := opts.VOLL
	if voll == 0 {
		voll = DefaultVOLL
	}
	if voll < 0 || math.IsNaN(voll) || math.IsInf(voll, 0) {
		return nil, model.NewDataError("voll", "must be finite and > 0, got %v", opts.VOLL)
	}

	m := &Market{topo: topo, fleet: fleet, store: store, solver: solver, voll: voll}

	var err error
	m.vars, err = BuildVariables(solver, topo, fleet, store)
	if err != nil {
		return nil, fmt.Errorf("build variables: %w", err)
	}
	if err := BuildObjective(solver, topo, fleet, store, m.vars, voll); err != nil {
		return nil, fmt.Errorf("build objective: %w", err)
	}
	m.cons, err = BuildConstraints(solver, topo, fleet, store, m.vars)
	if err != nil {
		return nil, fmt.Errorf("build constraints: %w", err)
	}

	nVars, nCons := 0, 0
	for _, k := range Kinds() {
		nVars += m.vars.Count(k)
	}
	for _, k := range ConstraintKinds() {
		nCons += m.cons.Count(k)
	}
	log.Printf("Market: built %d variables and %d constraints (%d scenarios x %d steps, %d nodes, %d lines, %d generators)",
		nVars, nCons, store.NumScenarios(), store.NumSteps(), topo.NumNodes(), topo.NumLines(), fleet.NumGenerators())
	return m, nil
}

func (m *Market) Topology() *network.Topology      { return m.topo }
func (m *Market) Fleet() *network.Fleet            { return m.fleet }
func (m *Market) Store() *scenario.Store           { return m.store }
func (m *Market) Variables() *VariableRegistry     { return m.vars }
func (m *Market) Constraints() *ConstraintRegistry { return m.cons }
func (m *Market) VOLL() float64                    { return m.voll }

// LastSolution is the most recent optimal solution, or nil.
func (m *Market) LastSolution() *Solution { return m.last }

// Current reports whether LastSolution was computed on the forecast the
// model holds now. A successful Refresh makes it stale until the next Solve.
func (m *Market) Current() bool { return m.last != nil && m.current }

// Solve runs the solver and snapshots the result. Any status other than
// optimal comes back as a *model.SolveError; the previous solution is kept.
func (m *Market) Solve(ctx context.Context) (*Solution, error) {
	status, err := m.solver.Solve(ctx)
	log.Printf("Market: solve finished with status %s", status)
	if err != nil {
		return nil, &model.SolveError{Status: status.String(), Err: err}
	}
	if status != lp.StatusOptimal {
		return nil, &model.SolveError{Status: status.String(), Err: fmt.Errorf("solver finished with status %s", status)}
	}
	sol, err := m.snapshot(status.String())
	if err != nil {
		return nil, fmt.Errorf("read solution: %w", err)
	}
	m.last = sol
	m.current = true
	return sol, nil
}
