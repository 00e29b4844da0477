package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/errs"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/services"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError maps a pipeline error onto a status code.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errs.Retryable(err):
		status = http.StatusServiceUnavailable
	}

	kind := errs.Kind(err)
	if errors.Is(err, services.ErrNotFound) {
		kind = "not_found"
	}

	c.JSON(status, ErrorResponse{
		Error:     err.Error(),
		Kind:      kind,
		Retryable: errs.Retryable(err),
		RequestID: c.GetString("request_id"),
	})
}
