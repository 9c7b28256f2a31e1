package market

import (
	"stochastic-dispatch/internal/lp"
	"stochastic-dispatch/internal/network"
	"stochastic-dispatch/internal/scenario"
)

// DefaultVOLL is the value of lost load in $/MWh.
const DefaultVOLL = 1000.0

// BuildObjective sets the expected-cost objective:
//
//	min sum_s p[s] * ( sum_{g,t} cost[g]*gen[s,g,t] + sum_{n,t} voll*shed[s,n,t] )
//
// Coefficients depend only on costs, weights and voll, so refreshing the
// forecast never touches the objective.
func BuildObjective(solver Solver, topo *network.Topology, fleet *network.Fleet, store *scenario.Store, vars *VariableRegistry, voll float64) error {
	nS, nT := store.NumScenarios(), store.NumSteps()
	expr := make(lp.Expr, 0, nS*nT*(fleet.NumGenerators()+topo.NumNodes()))
	for s := 0; s < nS; s++ {
		p := store.Probability(s)
		for g := 0; g < fleet.NumGenerators(); g++ {
			for t := 0; t < nT; t++ {
				expr = expr.Plus(vars.mustHandle(Generation, Key{s, g, t}), p*fleet.Cost(g))
			}
		}
		for n := 0; n < topo.NumNodes(); n++ {
			for t := 0; t < nT; t++ {
				expr = expr.Plus(vars.mustHandle(LoadShed, Key{s, n, t}), p*voll)
			}
		}
	}
	return solver.SetObjective(expr, lp.Minimize)
}
