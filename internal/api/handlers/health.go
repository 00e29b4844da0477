package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	outputDir string
}

func NewHealthHandler(outputDir string) *HealthHandler {
	return &HealthHandler{outputDir: outputDir}
}

// HealthCheck returns the health status of the API. The output directory is
// created on first write, so a missing one is still healthy.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	dirStatus := "ready"

	info, err := os.Stat(h.outputDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		dirStatus = "missing"
	case err != nil:
		status, dirStatus = "degraded", err.Error()
	case !info.IsDir():
		status, dirStatus = "degraded", "not a directory"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"output_dir": gin.H{
			"path":   h.outputDir,
			"status": dirStatus,
		},
	})
}
