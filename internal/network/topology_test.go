package network

import (
	"math"
	"testing"

	"stochastic-dispatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodes() []model.NodeRow {
	return []model.NodeRow{{ID: "n1"}, {ID: "n2"}, {ID: "n3"}}
}

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{100, 100},
		{0.5, 0.5},
		{0, math.Inf(1)},
		{-20, math.Inf(1)},
		{0.00001, math.Inf(1)},
	}
	for _, c := range cases {
		got := NormalizeLimit(c.raw)
		assert.Equal(t, c.want, got, "raw=%v", c.raw)
		assert.True(t, got > 0)
	}
}

func TestNewTopologyAdjacency(t *testing.T) {
	lines := []model.LineRow{
		{From: "n1", To: "n2", Limit: 100, Admittance: 10},
		{From: "n2", To: "n3", Limit: 0, Admittance: 5},
		{From: "n1", To: "n3", Limit: -1, Admittance: 2},
	}
	topo, err := NewTopology(threeNodes(), lines, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"n1", "n2", "n3"}, topo.Nodes())
	assert.Equal(t, 3, topo.NumLines())
	assert.Equal(t, []int{0, 2}, topo.OutLines(0))
	assert.Empty(t, topo.InLines(0))
	assert.Equal(t, []int{1}, topo.OutLines(1))
	assert.Equal(t, []int{0}, topo.InLines(1))
	assert.Equal(t, []int{1, 2}, topo.InLines(2))

	assert.Equal(t, 100.0, topo.Limit(0))
	assert.True(t, math.IsInf(topo.Limit(1), 1))
	assert.True(t, math.IsInf(topo.Limit(2), 1))
	assert.Equal(t, 5.0, topo.Admittance(1))

	from, to := topo.Endpoints(1)
	assert.Equal(t, 1, from)
	assert.Equal(t, 2, to)

	idx, ok := topo.LineIndex(model.LineKey{From: "n2", To: "n3"})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = topo.LineIndex(model.LineKey{From: "n3", To: "n2"})
	assert.False(t, ok, "line identity is ordered")
}

func TestNewTopologySlackPolicy(t *testing.T) {
	topo, err := NewTopology(threeNodes(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, topo.SlackNodeIDs())
	assert.True(t, topo.IsSlack(0))
	assert.False(t, topo.IsSlack(1))

	topo, err = NewTopology(threeNodes(), nil, []string{"n3", "n2", "n3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n2"}, topo.SlackNodeIDs())
	assert.False(t, topo.IsSlack(0))
}

func TestNewTopologyDataErrors(t *testing.T) {
	cases := []struct {
		name  string
		nodes []model.NodeRow
		lines []model.LineRow
		slack []string
	}{
		{"no nodes", nil, nil, nil},
		{"empty id", []model.NodeRow{{ID: ""}}, nil, nil},
		{"duplicate node", []model.NodeRow{{ID: "a"}, {ID: "a"}}, nil, nil},
		{"unknown from", threeNodes(), []model.LineRow{{From: "x", To: "n1", Limit: 1, Admittance: 1}}, nil},
		{"unknown to", threeNodes(), []model.LineRow{{From: "n1", To: "x", Limit: 1, Admittance: 1}}, nil},
		{"self loop", threeNodes(), []model.LineRow{{From: "n1", To: "n1", Limit: 1, Admittance: 1}}, nil},
		{"duplicate line", threeNodes(), []model.LineRow{
			{From: "n1", To: "n2", Limit: 1, Admittance: 1},
			{From: "n1", To: "n2", Limit: 2, Admittance: 1},
		}, nil},
		{"nan admittance", threeNodes(), []model.LineRow{{From: "n1", To: "n2", Limit: 1, Admittance: math.NaN()}}, nil},
		{"unknown slack", threeNodes(), nil, []string{"n9"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTopology(c.nodes, c.lines, c.slack)
			require.Error(t, err)
			assert.True(t, model.IsDataError(err), "got %T", err)
		})
	}
}

func TestAdjacencyListsAreCopies(t *testing.T) {
	lines := []model.LineRow{
		{From: "n1", To: "n2", Limit: 100, Admittance: 10},
		{From: "n1", To: "n3", Limit: 100, Admittance: 10},
	}
	topo, err := NewTopology(threeNodes(), lines, nil)
	require.NoError(t, err)

	out := topo.OutLines(0)
	out[0] = 7
	_ = append(out[:1], 9)
	in := topo.InLines(1)
	in[0] = 7

	assert.Equal(t, []int{0, 1}, topo.OutLines(0))
	assert.Equal(t, []int{0}, topo.InLines(1))
}
