// Package api wires the HTTP surface of the dispatch service.
package api

import (
	"net/http"

	"stochastic-dispatch/internal/api/handlers"
	"stochastic-dispatch/internal/api/middleware"
	"stochastic-dispatch/internal/api/models"

	"github.com/gin-gonic/gin"
)

// NewRouter registers middleware and routes for h.
func NewRouter(h *handlers.MarketHandler) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/network", h.GetNetwork)
		v1.GET("/model", h.GetModel)
		v1.POST("/solve", h.Solve)
		v1.GET("/runs/:id", h.GetRun)
		v1.POST("/forecast", h.RefreshForecast)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "no route for " + c.Request.Method + " " + c.Request.URL.Path,
			},
		})
	})
	return router
}
