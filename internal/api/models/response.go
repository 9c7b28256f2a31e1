package models

import (
	"time"

	"stochastic-dispatch/internal/report"
)

// NetworkResponse describes the loaded grid.
type NetworkResponse struct {
	Nodes      []string        `json:"nodes"`
	SlackNodes []string        `json:"slack_nodes"`
	Lines      []LineInfo      `json:"lines"`
	Generators []GeneratorInfo `json:"generators"`
}

// LineInfo is one directed line. A null limit means unconstrained.
type LineInfo struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Limit      *float64 `json:"limit"`
	Admittance float64  `json:"admittance"`
}

type GeneratorInfo struct {
	ID         string  `json:"id"`
	Node       string  `json:"node"`
	CapacityMW float64 `json:"capacity_mw"`
	LinearCost float64 `json:"lincost"`
}

// ModelResponse describes the built optimization model.
type ModelResponse struct {
	Scenarios     []string       `json:"scenarios"`
	Probabilities []float64      `json:"probabilities"`
	Steps         []string       `json:"steps"`
	VOLL          float64        `json:"voll"`
	Variables     map[string]int `json:"variables"`
	Constraints   map[string]int `json:"constraints"`

	// Current is false once a forecast refresh has happened since the last solve.
	Current bool `json:"current"`
}

// SolveResponse is returned by POST /api/v1/solve and GET /api/v1/runs/:id.
type SolveResponse struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Status      string              `json:"status"`
	Objective   float64             `json:"objective"`
	Curtailment float64             `json:"curtailment_mw"`
	Summary     []report.SummaryRow `json:"summary"`
	Ledger      []report.LedgerRow  `json:"ledger,omitempty"`
}

// ForecastResponse acknowledges a forecast refresh.
type ForecastResponse struct {
	Status    string   `json:"status"`
	Scenarios []string `json:"scenarios"`
	Steps     []string `json:"steps"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
