package handlers

import (
	"errors"
	"log"
	"net/http"

	"stochastic-dispatch/internal/api/models"
	"stochastic-dispatch/internal/model"

	"github.com/gin-gonic/gin"
)

// respondError maps the model error taxonomy onto HTTP responses.
func respondError(c *gin.Context, err error) {
	var (
		dataErr  *model.DataError
		consErr  *model.ModelConsistencyError
		solveErr *model.SolveError
	)
	status := http.StatusInternalServerError
	detail := models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
	switch {
	case errors.As(err, &dataErr):
		status = http.StatusBadRequest
		detail.Code = "DATA_ERROR"
		detail.Details = map[string]interface{}{"field": dataErr.Field}
	case errors.As(err, &consErr):
		status = http.StatusConflict
		detail.Code = "MODEL_CONSISTENCY_ERROR"
	case errors.As(err, &solveErr):
		status = http.StatusUnprocessableEntity
		detail.Code = "SOLVE_ERROR"
		detail.Details = map[string]interface{}{"status": solveErr.Status}
	default:
		log.Printf("Handler: unexpected error: %v", err)
	}
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
