// Package report turns a market solution into flat rows for files and APIs.
package report

import (
	"stochastic-dispatch/internal/market"
)

// LedgerRow is one solved variable: what was dispatched where, when, and in
// which scenario.
type LedgerRow struct {
	Scenario string  `json:"scenario"`
	Step     string  `json:"step"`
	Kind     string  `json:"kind"`
	Entity   string  `json:"entity"`
	Value    float64 `json:"value"`

	// Upper is the forecast cap for renewable use and load shed; nil for
	// the other kinds.
	Upper *float64 `json:"upper,omitempty"`
}

// SummaryRow aggregates one (scenario, step) across the network.
type SummaryRow struct {
	Scenario           string  `json:"scenario"`
	Step               string  `json:"step"`
	Probability        float64 `json:"probability"`
	Generation         float64 `json:"generation_mw"`
	RenewableAvailable float64 `json:"renewable_available_mw"`
	RenewableUsed      float64 `json:"renewable_used_mw"`
	LoadShed           float64 `json:"load_shed_mw"`
	LoadServed         float64 `json:"load_served_mw"`
}

// Ledger flattens sol into rows ordered by scenario, step, kind, entity.
func Ledger(sol *market.Solution) []LedgerRow {
	if sol == nil {
		return nil
	}
	type block struct {
		kind     market.Kind
		entities []string
		values   [][][]float64
		upper    [][][]float64
	}
	blocks := []block{
		{market.Generation, sol.Generators, sol.Generation, nil},
		{market.RenewableUse, sol.Nodes, sol.RenewableUsed, sol.RenewableAvailable},
		{market.LoadShed, sol.Nodes, sol.LoadShed, sol.Demand},
		{market.LineFlow, sol.Lines, sol.Flow, nil},
		{market.NodeAngle, sol.Nodes, sol.Angle, nil},
	}

	var rows []LedgerRow
	for s, scen := range sol.Scenarios {
		for t, step := range sol.Steps {
			for _, b := range blocks {
				for e, entity := range b.entities {
					row := LedgerRow{
						Scenario: scen,
						Step:     step,
						Kind:     b.kind.String(),
						Entity:   entity,
						Value:    b.values[s][e][t],
					}
					if b.upper != nil {
						u := b.upper[s][e][t]
						row.Upper = &u
					}
					rows = append(rows, row)
				}
			}
		}
	}
	return rows
}

// Summarize totals generation, renewables and load per (scenario, step).
func Summarize(sol *market.Solution) []SummaryRow {
	if sol == nil {
		return nil
	}
	rows := make([]SummaryRow, 0, len(sol.Scenarios)*len(sol.Steps))
	for s, scen := range sol.Scenarios {
		for t, step := range sol.Steps {
			r := SummaryRow{Scenario: scen, Step: step, Probability: sol.Probabilities[s]}
			for g := range sol.Generators {
				r.Generation += sol.Generation[s][g][t]
			}
			for n := range sol.Nodes {
				r.RenewableAvailable += sol.RenewableAvailable[s][n][t]
				r.RenewableUsed += sol.RenewableUsed[s][n][t]
				r.LoadShed += sol.LoadShed[s][n][t]
				r.LoadServed += sol.LoadServed(s, n, t)
			}
			rows = append(rows, r)
		}
	}
	return rows
}

// Curtailment is available minus used renewable production over the summary.
func Curtailment(rows []SummaryRow) float64 {
	total := 0.0
	for _, r := range rows {
		total += r.RenewableAvailable - r.RenewableUsed
	}
	return total
}
