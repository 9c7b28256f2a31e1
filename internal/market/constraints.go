package market

import (
	"fmt"

	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/network"
	"stochastic-dispatch/internal/scenario"
)

// ConstraintRegistry owns the power-balance and flow-angle constraint
// handles, laid out like the VariableRegistry.
type ConstraintRegistry struct {
	solver  Solver
	grids   [numConstraintKinds]grid
	handles [numConstraintKinds][]lp.Constraint
}

// BuildConstraints registers, for every scenario and step:
//
//	power balance at node n:
//	  sum(gen at n) + shed[n] + renew[n] - sum(flow out of n) + sum(flow into n) = demand[n]
//	flow-angle coupling on line l = (i, j):
//	  flow[l] - Y[l]*angle[i] + Y[l]*angle[j] = 0
func BuildConstraints(solver Solver, topo *network.Topology, fleet *network.Fleet, store *scenario.Store, vars *VariableRegistry) (*ConstraintRegistry, error) {
	nS, nT := store.NumScenarios(), store.NumSteps()
	r := &ConstraintRegistry{solver: solver}
	r.grids[PowerBalance] = grid{nS, topo.NumNodes(), nT}
	r.grids[FlowAngle] = grid{nS, topo.NumLines(), nT}
	for _, kind := range ConstraintKinds() {
		r.handles[kind] = make([]lp.Constraint, r.grids[kind].size())
	}

	for s := 0; s < nS; s++ {
		for n := 0; n < topo.NumNodes(); n++ {
			for t := 0; t < nT; t++ {
				k := Key{s, n, t}
				var expr lp.Expr
				for _, g := range fleet.GeneratorsAt(n) {
					expr = expr.Plus(vars.mustHandle(Generation, Key{s, g, t}), 1)
				}
				expr = expr.Plus(vars.mustHandle(LoadShed, k), 1)
				expr = expr.Plus(vars.mustHandle(RenewableUse, k), 1)
				for _, l := range topo.OutLines(n) {
					expr = expr.Plus(vars.mustHandle(LineFlow, Key{s, l, t}), -1)
				}
				for _, l := range topo.InLines(n) {
					expr = expr.Plus(vars.mustHandle(LineFlow, Key{s, l, t}), 1)
				}
				if err := r.add(PowerBalance, k, expr, store.Demand(n, t)); err != nil {
					return nil, err
				}
			}
		}
	}

	for s := 0; s < nS; s++ {
		for l := 0; l < topo.NumLines(); l++ {
			from, to := topo.Endpoints(l)
			y := topo.Admittance(l)
			for t := 0; t < nT; t++ {
				k := Key{s, l, t}
				expr := lp.Expr{}.
					Plus(vars.mustHandle(LineFlow, k), 1).
					Plus(vars.mustHandle(NodeAngle, Key{s, from, t}), -y).
					Plus(vars.mustHandle(NodeAngle, Key{s, to, t}), y)
				if err := r.add(FlowAngle, k, expr, 0); err != nil {
					return nil, err
				}
			}
		}
	}
	return r, nil
}

func (r *ConstraintRegistry) add(kind ConstraintKind, k Key, expr lp.Expr, rhs float64) error {
	c, err := r.solver.AddConstraint(expr, lp.EQ, rhs)
	if err != nil {
		return fmt.Errorf("add %s constraint %v: %w", kind, k, err)
	}
	r.handles[kind][r.grids[kind].index(k)] = c
	return nil
}

func (r *ConstraintRegistry) Count(kind ConstraintKind) int {
	if kind < 0 || kind >= numConstraintKinds {
		return 0
	}
	return len(r.handles[kind])
}

// Handle returns the solver handle of the constraint at k.
func (r *ConstraintRegistry) Handle(kind ConstraintKind, k Key) (lp.Constraint, bool) {
	if kind < 0 || kind >= numConstraintKinds || !r.grids[kind].contains(k) {
		return 0, false
	}
	return r.handles[kind][r.grids[kind].index(k)], true
}

// RightHandSide reads the current right-hand side of the constraint at k.
func (r *ConstraintRegistry) RightHandSide(kind ConstraintKind, k Key) (float64, error) {
	c, ok := r.Handle(kind, k)
	if !ok {
		return 0, fmt.Errorf("no %s constraint at %v", kind, k)
	}
	return r.solver.RightHandSide(c)
}

// SetRightHandSide changes the right-hand side of the constraint at k in place.
func (r *ConstraintRegistry) SetRightHandSide(kind ConstraintKind, k Key, rhs float64) error {
	c, ok := r.Handle(kind, k)
	if !ok {
		return fmt.Errorf("no %s constraint at %v", kind, k)
	}
	return r.solver.SetRightHandSide(c, rhs)
}
