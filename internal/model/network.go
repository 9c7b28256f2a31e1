package model

// NodeRow is one row of the node table.
type NodeRow struct {
	ID string `json:"id"`
}

// LineRow is one row of the line table. A line is identified by the ordered
// (From, To) pair. Limit is the raw thermal limit in MW as it appears in the
// input; values at or below zero mean "no limit".
type LineRow struct {
	From       string  `json:"from_node"`
	To         string  `json:"to_node"`
	Limit      float64 `json:"limit"`
	Admittance float64 `json:"admittance"`
}

// GeneratorRow is one row of the generator table.
// Units:
// - CapacityMW: MW
// - LinearCost: $/MWh
type GeneratorRow struct {
	ID         string  `json:"id"`
	CapacityMW float64 `json:"capacity_mw"`
	LinearCost float64 `json:"lin_cost"`
	Node       string  `json:"origin"`
}

// LineKey identifies a line by its ordered endpoints.
type LineKey struct {
	From string
	To   string
}

func (k LineKey) String() string {
	return k.From + "->" + k.To
}
