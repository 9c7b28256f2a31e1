package scenario

import (
	"math"
	"testing"

	"stochastic-dispatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNodes []string

func (f fakeNodes) NumNodes() int { return len(f) }

func (f fakeNodes) NodeIndex(id string) (int, bool) {
	for i, n := range f {
		if n == id {
			return i, true
		}
	}
	return 0, false
}

var nodes = fakeNodes{"n1", "n2"}

func sampleData() Data {
	return Data{
		Scenarios: []string{"s0", "s1"},
		Steps:     []string{"t0", "t1", "t2"},
		Renewable: map[string]map[string][]float64{
			"s0": {"n1": {1, 2, 3}},
			"s1": {"n1": {4, 5, 6}, "n2": {7, 8, 9}},
		},
		Demand: map[string][]float64{
			"n1": {10, 20, 30},
			"n2": {11, 21, 31},
		},
	}
}

func TestNewStoreAccessors(t *testing.T) {
	s, err := NewStore(sampleData(), nodes)
	require.NoError(t, err)

	assert.Equal(t, 2, s.NumScenarios())
	assert.Equal(t, 3, s.NumSteps())
	assert.Equal(t, []string{"t0", "t1", "t2"}, s.Steps())

	assert.Equal(t, 2.0, s.AvailableRenewable(0, 0, 1))
	assert.Equal(t, 0.0, s.AvailableRenewable(0, 1, 1), "absent node reads as zero")
	assert.Equal(t, 9.0, s.AvailableRenewable(1, 1, 2))
	assert.Equal(t, 30.0, s.Demand(0, 2))
	assert.Equal(t, 11.0, s.Demand(1, 0))

	assert.InDelta(t, 0.5, s.Probability(0), 1e-12)
	assert.InDelta(t, 0.5, s.Probability(1), 1e-12)
	assert.False(t, s.ExplicitProbabilities())
}

func TestNewStoreExplicitProbabilities(t *testing.T) {
	d := sampleData()
	d.Probabilities = map[string]float64{"s0": 0.25, "s1": 0.75}
	s, err := NewStore(d, nodes)
	require.NoError(t, err)
	assert.Equal(t, 0.75, s.Probability(1))
	assert.True(t, s.ExplicitProbabilities())
}

func TestNewStoreDataErrors(t *testing.T) {
	cases := map[string]func(d *Data){
		"no scenarios":       func(d *Data) { d.Scenarios = nil },
		"no steps":           func(d *Data) { d.Steps = nil },
		"duplicate step":     func(d *Data) { d.Steps = []string{"t0", "t0", "t1"} },
		"negative demand":    func(d *Data) { d.Demand["n1"] = []float64{1, -1, 1} },
		"negative renewable": func(d *Data) { d.Renewable["s0"]["n1"] = []float64{-1, 0, 0} },
		"nan renewable":      func(d *Data) { d.Renewable["s0"]["n1"] = []float64{math.NaN(), 0, 0} },
		"short series":       func(d *Data) { d.Demand["n2"] = []float64{1, 2} },
		"unknown node":       func(d *Data) { d.Demand["n9"] = []float64{1, 2, 3} },
		"unknown scenario":   func(d *Data) { d.Renewable["s9"] = map[string][]float64{"n1": {1, 1, 1}} },
		"bad weights sum":    func(d *Data) { d.Probabilities = map[string]float64{"s0": 0.5, "s1": 0.6} },
		"missing weight":     func(d *Data) { d.Probabilities = map[string]float64{"s0": 0.5, "sx": 0.5} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := sampleData()
			mutate(&d)
			_, err := NewStore(d, nodes)
			require.Error(t, err)
			assert.True(t, model.IsDataError(err), "got %v", err)
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	base, err := NewStore(sampleData(), nodes)
	require.NoError(t, err)

	same, err := NewStore(sampleData(), nodes)
	require.NoError(t, err)
	assert.NoError(t, base.CheckCompatible(same))

	cases := map[string]func(d *Data){
		"longer horizon": func(d *Data) {
			d.Steps = append(d.Steps, "t3")
			d.Renewable = nil
			d.Demand = nil
		},
		"renamed step": func(d *Data) {
			d.Steps = []string{"t0", "t1", "tX"}
		},
		"other scenarios": func(d *Data) {
			d.Scenarios = []string{"s0", "s2"}
			d.Renewable = nil
		},
		"changed weights": func(d *Data) {
			d.Probabilities = map[string]float64{"s0": 0.1, "s1": 0.9}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := sampleData()
			mutate(&d)
			next, err := NewStore(d, nodes)
			require.NoError(t, err)
			err = base.CheckCompatible(next)
			require.Error(t, err)
			assert.True(t, model.IsModelConsistencyError(err))
		})
	}
}

func TestWithProbabilitiesInheritsWeights(t *testing.T) {
	d := sampleData()
	d.Probabilities = map[string]float64{"s0": 0.2, "s1": 0.8}
	base, err := NewStore(d, nodes)
	require.NoError(t, err)

	next, err := NewStore(sampleData(), nodes)
	require.NoError(t, err)
	require.NoError(t, base.CheckCompatible(next))

	merged := next.WithProbabilities(base)
	assert.Equal(t, 0.8, merged.Probability(1))
	assert.Equal(t, 0.5, next.Probability(1), "base store is untouched")
}
