package data

import (
	"stochastic-dispatch/internal/model"
)

// LoadNodes reads the node list. The file needs an ID column; row order is
// the node order of the model.
func LoadNodes(path string) ([]model.NodeRow, error) {
	t, err := readTable(path, "nodes")
	if err != nil {
		return nil, err
	}
	id, err := t.column("ID")
	if err != nil {
		return nil, err
	}
	out := make([]model.NodeRow, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, model.NodeRow{ID: t.text(i, id)})
	}
	return out, nil
}

// LoadLines reads fromNode,toNode,limit,Y rows.
func LoadLines(path string) ([]model.LineRow, error) {
	t, err := readTable(path, "lines")
	if err != nil {
		return nil, err
	}
	cols := make([]int, 4)
	for i, name := range []string{"fromNode", "toNode", "limit", "Y"} {
		if cols[i], err = t.column(name); err != nil {
			return nil, err
		}
	}
	out := make([]model.LineRow, 0, len(t.rows))
	for i := range t.rows {
		limit, err := t.float(i, cols[2])
		if err != nil {
			return nil, err
		}
		y, err := t.float(i, cols[3])
		if err != nil {
			return nil, err
		}
		out = append(out, model.LineRow{
			From:       t.text(i, cols[0]),
			To:         t.text(i, cols[1]),
			Limit:      limit,
			Admittance: y,
		})
	}
	return out, nil
}

// LoadGenerators reads the generator table: the first column is the
// generator id, then capacity, lincost and origin (the hosting node).
func LoadGenerators(path string) ([]model.GeneratorRow, error) {
	t, err := readTable(path, "generators")
	if err != nil {
		return nil, err
	}
	capCol, err := t.column("capacity")
	if err != nil {
		return nil, err
	}
	costCol, err := t.column("lincost")
	if err != nil {
		return nil, err
	}
	originCol, err := t.column("origin")
	if err != nil {
		return nil, err
	}
	out := make([]model.GeneratorRow, 0, len(t.rows))
	for i := range t.rows {
		capacity, err := t.float(i, capCol)
		if err != nil {
			return nil, err
		}
		cost, err := t.float(i, costCol)
		if err != nil {
			return nil, err
		}
		out = append(out, model.GeneratorRow{
			ID:         t.text(i, 0),
			CapacityMW: capacity,
			LinearCost: cost,
			Node:       t.text(i, originCol),
		})
	}
	return out, nil
}
