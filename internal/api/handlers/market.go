package handlers

import (
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"sync"

	"stochastic-dispatch/internal/api/models"
	"stochastic-dispatch/internal/market"
	"stochastic-dispatch/internal/report"
	"stochastic-dispatch/internal/scenario"

	"github.com/gin-gonic/gin"
)

// MarketHandler serves the one dispatch model of this process. Solve and
// forecast refresh mutate the model, so every request takes the lock.
type MarketHandler struct {
	mu     sync.Mutex
	market *market.Market
	runs   *RunCache
}

// NewMarketHandler creates a handler around m, caching solves in runs.
func NewMarketHandler(m *market.Market, runs *RunCache) *MarketHandler {
	return &MarketHandler{market: m, runs: runs}
}

// GetNetwork handles GET /api/v1/network
func (h *MarketHandler) GetNetwork(c *gin.Context) {
	h.mu.Lock()
	topo, fleet := h.market.Topology(), h.market.Fleet()
	h.mu.Unlock()

	resp := models.NetworkResponse{
		Nodes:      topo.Nodes(),
		SlackNodes: topo.SlackNodeIDs(),
		Lines:      make([]models.LineInfo, 0, topo.NumLines()),
		Generators: make([]models.GeneratorInfo, 0, fleet.NumGenerators()),
	}
	for l := 0; l < topo.NumLines(); l++ {
		key := topo.Line(l)
		info := models.LineInfo{From: key.From, To: key.To, Admittance: topo.Admittance(l)}
		if limit := topo.Limit(l); !math.IsInf(limit, 1) {
			info.Limit = &limit
		}
		resp.Lines = append(resp.Lines, info)
	}
	for g := 0; g < fleet.NumGenerators(); g++ {
		resp.Generators = append(resp.Generators, models.GeneratorInfo{
			ID:         fleet.Generator(g),
			Node:       topo.Node(fleet.Node(g)),
			CapacityMW: fleet.Capacity(g),
			LinearCost: fleet.Cost(g),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetModel handles GET /api/v1/model
func (h *MarketHandler) GetModel(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	store := h.market.Store()
	resp := models.ModelResponse{
		Scenarios:     store.Scenarios(),
		Probabilities: make([]float64, store.NumScenarios()),
		Steps:         store.Steps(),
		VOLL:          h.market.VOLL(),
		Variables:     map[string]int{},
		Constraints:   map[string]int{},
		Current:       h.market.Current(),
	}
	for s := range resp.Probabilities {
		resp.Probabilities[s] = store.Probability(s)
	}
	for _, k := range market.Kinds() {
		resp.Variables[k.String()] = h.market.Variables().Count(k)
	}
	for _, k := range market.ConstraintKinds() {
		resp.Constraints[k.String()] = h.market.Constraints().Count(k)
	}
	c.JSON(http.StatusOK, resp)
}

// Solve handles POST /api/v1/solve
func (h *MarketHandler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}
	}

	h.mu.Lock()
	sol, err := h.market.Solve(c.Request.Context())
	h.mu.Unlock()
	if err != nil {
		log.Printf("SolveHandler: solve failed: %v", err)
		respondError(c, err)
		return
	}

	run := h.runs.Add(sol)
	log.Printf("SolveHandler: run %s objective %.2f", run.ID, sol.Objective)
	c.JSON(http.StatusOK, buildSolveResponse(run, req.IncludeLedger))
}

// GetRun handles GET /api/v1/runs/:id
func (h *MarketHandler) GetRun(c *gin.Context) {
	var q models.RunQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	run, ok := h.runs.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "run " + id + " not found or expired",
			},
		})
		return
	}
	c.JSON(http.StatusOK, buildSolveResponse(run, q.IncludeLedger))
}

// RefreshForecast handles POST /api/v1/forecast
func (h *MarketHandler) RefreshForecast(c *gin.Context) {
	var d scenario.Data
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}

	h.mu.Lock()
	err := h.market.Refresh(d)
	h.mu.Unlock()
	if err != nil {
		log.Printf("ForecastHandler: refresh rejected: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ForecastResponse{
		Status:    "refreshed",
		Scenarios: d.Scenarios,
		Steps:     d.Steps,
	})
}

func buildSolveResponse(run *Run, includeLedger bool) models.SolveResponse {
	summary := report.Summarize(run.Solution)
	resp := models.SolveResponse{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt,
		Status:      run.Solution.Status,
		Objective:   run.Solution.Objective,
		Curtailment: report.Curtailment(summary),
		Summary:     summary,
	}
	if includeLedger {
		resp.Ledger = report.Ledger(run.Solution)
	}
	return resp
}
