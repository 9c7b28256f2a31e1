package market

// Solution is a snapshot of one optimal solve. Value tables are indexed
// [scenario][entity][step], with entities in topology/fleet load order.
type Solution struct {
	Status    string
	Objective float64

	Scenarios     []string
	Steps         []string
	Nodes         []string
	Lines         []string
	Generators    []string
	Probabilities []float64

	Generation         [][][]float64
	RenewableUsed      [][][]float64
	RenewableAvailable [][][]float64
	LoadShed           [][][]float64
	Demand             [][][]float64
	Flow               [][][]float64
	Angle              [][][]float64
}

// LoadServed is demand minus shed load at (scenario, node, step).
func (s *Solution) LoadServed(si, n, t int) float64 {
	return s.Demand[si][n][t] - s.LoadShed[si][n][t]
}

func (m *Market) snapshot(status string) (*Solution, error) {
	obj, err := m.solver.ObjectiveValue()
	if err != nil {
		return nil, err
	}
	sol := &Solution{
		Status:     status,
		Objective:  obj,
		Scenarios:  m.store.Scenarios(),
		Steps:      m.store.Steps(),
		Nodes:      m.topo.Nodes(),
		Generators: m.fleet.Generators(),
	}
	for _, l := range m.topo.Lines() {
		sol.Lines = append(sol.Lines, l.String())
	}
	for s := 0; s < m.store.NumScenarios(); s++ {
		sol.Probabilities = append(sol.Probabilities, m.store.Probability(s))
	}

	if sol.Generation, err = m.values(Generation); err != nil {
		return nil, err
	}
	if sol.RenewableUsed, err = m.values(RenewableUse); err != nil {
		return nil, err
	}
	if sol.LoadShed, err = m.values(LoadShed); err != nil {
		return nil, err
	}
	if sol.Flow, err = m.values(LineFlow); err != nil {
		return nil, err
	}
	if sol.Angle, err = m.values(NodeAngle); err != nil {
		return nil, err
	}
	if sol.RenewableAvailable, err = m.upperBounds(RenewableUse); err != nil {
		return nil, err
	}
	if sol.Demand, err = m.upperBounds(LoadShed); err != nil {
		return nil, err
	}
	return sol, nil
}

func (m *Market) values(kind Kind) ([][][]float64, error) {
	return m.table(kind, func(k Key) (float64, error) {
		return m.vars.Value(kind, k)
	})
}

func (m *Market) upperBounds(kind Kind) ([][][]float64, error) {
	return m.table(kind, func(k Key) (float64, error) {
		_, hi, err := m.vars.Bounds(kind, k)
		return hi, err
	})
}

func (m *Market) table(kind Kind, read func(Key) (float64, error)) ([][][]float64, error) {
	g := m.vars.grids[kind]
	out := make([][][]float64, g.scenarios)
	for s := range out {
		out[s] = make([][]float64, g.entities)
		for e := range out[s] {
			out[s][e] = make([]float64, g.steps)
			for t := range out[s][e] {
				v, err := read(Key{s, e, t})
				if err != nil {
					return nil, err
				}
				out[s][e][t] = v
			}
		}
	}
	return out, nil
}
