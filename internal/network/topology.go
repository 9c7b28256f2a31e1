package network

import (
	"math"

	"stochastic-dispatch/internal/model"
)

// limitEpsilon is the smallest raw line limit treated as a real limit.
const limitEpsilon = 1e-4

// NormalizeLimit maps a raw line limit onto the flow bound used by the model.
// Limits at or below limitEpsilon (zero, negative, or rounding noise) mean the
// line is unconstrained and come back as +Inf, so the returned limit is always
// strictly positive.
func NormalizeLimit(raw float64) float64 {
	if raw > limitEpsilon {
		return raw
	}
	return math.Inf(1)
}

// Topology is the read-only index over nodes and lines. Nodes and lines keep
// their load order; every other table is addressed by the integer position
// resolved once at construction.
type Topology struct {
	nodes     []string
	nodeIndex map[string]int

	lines      []model.LineKey
	lineIndex  map[model.LineKey]int
	lineFrom   []int
	lineTo     []int
	limit      []float64
	admittance []float64

	outLines [][]int
	inLines  [][]int

	slack   []int
	isSlack []bool
}

// NewTopology builds the index. slackNodes names the reference nodes; when it
// is empty the first node in load order is used.
func NewTopology(nodes []model.NodeRow, lines []model.LineRow, slackNodes []string) (*Topology, error) {
	if len(nodes) == 0 {
		return nil, model.NewDataError("nodes", "at least one node is required")
	}

	t := &Topology{
		nodes:     make([]string, 0, len(nodes)),
		nodeIndex: make(map[string]int, len(nodes)),
		lineIndex: make(map[model.LineKey]int, len(lines)),
	}
	for i, n := range nodes {
		if n.ID == "" {
			return nil, model.NewDataError("nodes", "row %d has an empty ID", i)
		}
		if _, dup := t.nodeIndex[n.ID]; dup {
			return nil, model.NewDataError("nodes", "duplicate node %q", n.ID)
		}
		t.nodeIndex[n.ID] = len(t.nodes)
		t.nodes = append(t.nodes, n.ID)
	}

	t.outLines = make([][]int, len(t.nodes))
	t.inLines = make([][]int, len(t.nodes))
	for i, l := range lines {
		key := model.LineKey{From: l.From, To: l.To}
		from, ok := t.nodeIndex[l.From]
		if !ok {
			return nil, model.NewDataError("lines", "line %s references unknown node %q", key, l.From)
		}
		to, ok := t.nodeIndex[l.To]
		if !ok {
			return nil, model.NewDataError("lines", "line %s references unknown node %q", key, l.To)
		}
		if from == to {
			return nil, model.NewDataError("lines", "line %s connects a node to itself", key)
		}
		if _, dup := t.lineIndex[key]; dup {
			return nil, model.NewDataError("lines", "duplicate line %s", key)
		}
		if math.IsNaN(l.Limit) || math.IsNaN(l.Admittance) || math.IsInf(l.Admittance, 0) {
			return nil, model.NewDataError("lines", "line %s (row %d) has a non-numeric limit or admittance", key, i)
		}

		idx := len(t.lines)
		t.lineIndex[key] = idx
		t.lines = append(t.lines, key)
		t.lineFrom = append(t.lineFrom, from)
		t.lineTo = append(t.lineTo, to)
		t.limit = append(t.limit, NormalizeLimit(l.Limit))
		t.admittance = append(t.admittance, l.Admittance)
		t.outLines[from] = append(t.outLines[from], idx)
		t.inLines[to] = append(t.inLines[to], idx)
	}

	if len(slackNodes) == 0 {
		slackNodes = []string{t.nodes[0]}
	}
	t.isSlack = make([]bool, len(t.nodes))
	for _, id := range slackNodes {
		idx, ok := t.nodeIndex[id]
		if !ok {
			return nil, model.NewDataError("slack_nodes", "unknown slack node %q", id)
		}
		if t.isSlack[idx] {
			continue
		}
		t.isSlack[idx] = true
		t.slack = append(t.slack, idx)
	}
	return t, nil
}

func (t *Topology) NumNodes() int { return len(t.nodes) }
func (t *Topology) NumLines() int { return len(t.lines) }

// Nodes returns node IDs in load order.
func (t *Topology) Nodes() []string {
	return append([]string(nil), t.nodes...)
}

func (t *Topology) Node(n int) string { return t.nodes[n] }

func (t *Topology) NodeIndex(id string) (int, bool) {
	idx, ok := t.nodeIndex[id]
	return idx, ok
}

// Lines returns line keys in load order.
func (t *Topology) Lines() []model.LineKey {
	return append([]model.LineKey(nil), t.lines...)
}

func (t *Topology) Line(l int) model.LineKey { return t.lines[l] }

func (t *Topology) LineIndex(key model.LineKey) (int, bool) {
	idx, ok := t.lineIndex[key]
	return idx, ok
}

// Endpoints returns the node positions of line l.
func (t *Topology) Endpoints(l int) (from, to int) {
	return t.lineFrom[l], t.lineTo[l]
}

// Limit is the normalized flow limit of line l; +Inf when unconstrained.
func (t *Topology) Limit(l int) float64 { return t.limit[l] }

func (t *Topology) Admittance(l int) float64 { return t.admittance[l] }

// OutLines lists the lines leaving node n.
func (t *Topology) OutLines(n int) []int {
	return append([]int(nil), t.outLines[n]...)
}

// InLines lists the lines entering node n.
func (t *Topology) InLines(n int) []int {
	return append([]int(nil), t.inLines[n]...)
}

// SlackNodes returns the positions of the reference nodes.
func (t *Topology) SlackNodes() []int {
	return append([]int(nil), t.slack...)
}

func (t *Topology) IsSlack(n int) bool { return t.isSlack[n] }

// SlackNodeIDs returns the IDs of the reference nodes.
func (t *Topology) SlackNodeIDs() []string {
	out := make([]string, len(t.slack))
	for i, n := range t.slack {
		out[i] = t.nodes[n]
	}
	return out
}
