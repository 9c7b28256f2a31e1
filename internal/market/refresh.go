package market

import (
	"fmt"
	"log"

	"stochastic-dispatch/internal/scenario"
)

// Refresh replaces the held forecast with d and pushes it into the existing
// model: the renewable-use and load-shed upper bounds and the power-balance
// right-hand sides. No variable or constraint is added or removed.
//
// d must cover the same scenarios and horizon as the model, otherwise a
// *model.ModelConsistencyError is returned; malformed data gives a
// *model.DataError. Both are detected before anything is touched. If the
// solver rejects a mutation half way, the old forecast is written back so
// the model matches the store it still holds.
func (m *Market) Refresh(d scenario.Data) error {
	next, err := scenario.NewStore(d, m.topo)
	if err != nil {
		return err
	}
	if err := m.store.CheckCompatible(next); err != nil {
		return err
	}
	if !next.ExplicitProbabilities() {
		next = next.WithProbabilities(m.store)
	}

	if err := m.apply(next); err != nil {
		if rbErr := m.apply(m.store); rbErr != nil {
			return fmt.Errorf("refresh: %v (restoring previous forecast: %w)", err, rbErr)
		}
		return fmt.Errorf("refresh: %w", err)
	}
	m.store = next
	m.current = false
	log.Printf("Market: refreshed forecast for %d scenarios x %d steps", next.NumScenarios(), next.NumSteps())
	return nil
}

func (m *Market) apply(store *scenario.Store) error {
	for s := 0; s < store.NumScenarios(); s++ {
		for n := 0; n < m.topo.NumNodes(); n++ {
			for t := 0; t < store.NumSteps(); t++ {
				k := Key{s, n, t}
				demand := store.Demand(n, t)
				if err := m.vars.SetBounds(RenewableUse, k, 0, store.AvailableRenewable(s, n, t)); err != nil {
					return err
				}
				if err := m.vars.SetBounds(LoadShed, k, 0, demand); err != nil {
					return err
				}
				if err := m.cons.SetRightHandSide(PowerBalance, k, demand); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
