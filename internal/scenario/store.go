package scenario

import (
	"math"

	"stochastic-dispatch/internal/model"
)

// probabilityTolerance bounds how far explicit weights may drift from 1.
const probabilityTolerance = 1e-6

// Data is one block of forecast input: available renewable production per
// (scenario, node, step) and demand per (node, step). It is the payload both
// for the initial build and for every refresh.
//
// Nodes that appear in the network but not in Renewable or Demand are read as
// zero. Nodes that appear here but not in the network are rejected.
type Data struct {
	Scenarios []string `json:"scenarios"`
	Steps     []string `json:"steps"`
	// Renewable is keyed scenario -> node -> one value per step (MW).
	Renewable map[string]map[string][]float64 `json:"renewable"`
	// Demand is keyed node -> one value per step (MW).
	Demand map[string][]float64 `json:"demand"`
	// Probabilities is optional; uniform weights are used when it is empty.
	Probabilities map[string]float64 `json:"probabilities,omitempty"`
}

// Nodes is the part of the topology the store needs to resolve node labels.
type Nodes interface {
	NumNodes() int
	NodeIndex(id string) (int, bool)
}

// Store holds forecast data resolved onto the network's node order. Values
// are kept in flat slices addressed by integer positions; labels are only
// consulted at construction. A Store is never mutated after NewStore.
type Store struct {
	scenarios []string
	steps     []string
	numNodes  int

	prob     []float64
	explicit bool

	renewable []float64 // [scenario][node][step]
	demand    []float64 // [node][step]
}

func NewStore(d Data, nodes Nodes) (*Store, error) {
	if nodes == nil {
		return nil, model.NewDataError("scenario", "node index is nil")
	}
	if len(d.Scenarios) == 0 {
		return nil, model.NewDataError("scenarios", "at least one scenario is required")
	}
	if len(d.Steps) == 0 {
		return nil, model.NewDataError("steps", "at least one timestep is required")
	}
	scenIdx, err := labelIndex("scenarios", d.Scenarios)
	if err != nil {
		return nil, err
	}
	if _, err := labelIndex("steps", d.Steps); err != nil {
		return nil, err
	}

	s := &Store{
		scenarios: append([]string(nil), d.Scenarios...),
		steps:     append([]string(nil), d.Steps...),
		numNodes:  nodes.NumNodes(),
	}
	nS, nN, nT := len(s.scenarios), s.numNodes, len(s.steps)
	s.renewable = make([]float64, nS*nN*nT)
	s.demand = make([]float64, nN*nT)

	for scen, byNode := range d.Renewable {
		si, ok := scenIdx[scen]
		if !ok {
			return nil, model.NewDataError("renewable", "unknown scenario %q", scen)
		}
		for node, series := range byNode {
			n, ok := nodes.NodeIndex(node)
			if !ok {
				return nil, model.NewDataError("renewable", "unknown node %q in scenario %q", node, scen)
			}
			if err := checkSeries("renewable["+scen+"]["+node+"]", series, nT); err != nil {
				return nil, err
			}
			copy(s.renewable[(si*nN+n)*nT:], series)
		}
	}
	for node, series := range d.Demand {
		n, ok := nodes.NodeIndex(node)
		if !ok {
			return nil, model.NewDataError("demand", "unknown node %q", node)
		}
		if err := checkSeries("demand["+node+"]", series, nT); err != nil {
			return nil, err
		}
		copy(s.demand[n*nT:], series)
	}

	s.prob, s.explicit, err = probabilities(d.Scenarios, d.Probabilities)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func labelIndex(field string, labels []string) (map[string]int, error) {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		if l == "" {
			return nil, model.NewDataError(field, "label %d is empty", i)
		}
		if _, dup := idx[l]; dup {
			return nil, model.NewDataError(field, "duplicate label %q", l)
		}
		idx[l] = i
	}
	return idx, nil
}

func checkSeries(field string, series []float64, steps int) error {
	if len(series) != steps {
		return model.NewDataError(field, "expected %d values, got %d", steps, len(series))
	}
	for t, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return model.NewDataError(field, "value %d must be finite and >= 0, got %v", t, v)
		}
	}
	return nil
}

func probabilities(scenarios []string, given map[string]float64) ([]float64, bool, error) {
	out := make([]float64, len(scenarios))
	if len(given) == 0 {
		for i := range out {
			out[i] = 1.0 / float64(len(scenarios))
		}
		return out, false, nil
	}
	if len(given) != len(scenarios) {
		return nil, false, model.NewDataError("probabilities", "expected %d weights, got %d", len(scenarios), len(given))
	}
	sum := 0.0
	for i, s := range scenarios {
		p, ok := given[s]
		if !ok {
			return nil, false, model.NewDataError("probabilities", "missing weight for scenario %q", s)
		}
		if math.IsNaN(p) || p < 0 {
			return nil, false, model.NewDataError("probabilities", "weight for scenario %q must be >= 0", s)
		}
		out[i] = p
		sum += p
	}
	if math.Abs(sum-1) > probabilityTolerance {
		return nil, false, model.NewDataError("probabilities", "weights sum to %v, want 1", sum)
	}
	return out, true, nil
}

func (s *Store) NumScenarios() int { return len(s.scenarios) }
func (s *Store) NumSteps() int     { return len(s.steps) }
func (s *Store) NumNodes() int     { return s.numNodes }

// Scenarios returns scenario labels in order.
func (s *Store) Scenarios() []string { return append([]string(nil), s.scenarios...) }

// Steps returns the timestep labels that make up the horizon.
func (s *Store) Steps() []string { return append([]string(nil), s.steps...) }

func (s *Store) Scenario(si int) string { return s.scenarios[si] }
func (s *Store) Step(t int) string      { return s.steps[t] }

func (s *Store) Probability(si int) float64 { return s.prob[si] }

// ExplicitProbabilities reports whether the weights came from the payload
// rather than the uniform default.
func (s *Store) ExplicitProbabilities() bool { return s.explicit }

// AvailableRenewable is the renewable production available at node n in
// scenario si and step t.
func (s *Store) AvailableRenewable(si, n, t int) float64 {
	return s.renewable[(si*s.numNodes+n)*len(s.steps)+t]
}

// Demand is the load at node n in step t. It is shared by all scenarios.
func (s *Store) Demand(n, t int) float64 {
	return s.demand[n*len(s.steps)+t]
}

// CheckCompatible verifies that next covers the same scenarios, horizon and
// node set as s and carries the same scenario weights. It returns a
// ModelConsistencyError otherwise.
func (s *Store) CheckCompatible(next *Store) error {
	if next == nil {
		return &model.ModelConsistencyError{Message: "payload is empty"}
	}
	if next.numNodes != s.numNodes {
		return &model.ModelConsistencyError{Message: "node count changed"}
	}
	if !equalLabels(s.scenarios, next.scenarios) {
		return &model.ModelConsistencyError{Message: "scenario set differs from the one fixed at construction"}
	}
	if len(s.steps) != len(next.steps) {
		return &model.ModelConsistencyError{Message: "horizon length differs from the one fixed at construction"}
	}
	if !equalLabels(s.steps, next.steps) {
		return &model.ModelConsistencyError{Message: "timestep labels differ from the ones fixed at construction"}
	}
	if next.explicit {
		for i := range s.prob {
			if math.Abs(s.prob[i]-next.prob[i]) > probabilityTolerance {
				return &model.ModelConsistencyError{Message: "scenario probabilities differ from the ones fixed at construction"}
			}
		}
	}
	return nil
}

// WithProbabilities returns a copy of s using the weights of base. Refresh
// payloads without explicit weights inherit the weights of the model.
func (s *Store) WithProbabilities(base *Store) *Store {
	out := *s
	out.prob = append([]float64(nil), base.prob...)
	out.explicit = base.explicit
	return &out
}

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
