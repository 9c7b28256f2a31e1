package models

// SolveRequest is the optional body of POST /api/v1/solve.
type SolveRequest struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// RunQuery is the query string of GET /api/v1/runs/:id.
type RunQuery struct {
	IncludeLedger bool `form:"include_ledger,omitempty"`
}
