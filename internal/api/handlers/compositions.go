package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/soundcanvas-api/internal/logger"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/models"
	"github.com/Conceptual-Machines/soundcanvas-api/internal/services"
)

const (
	midiContentType  = "audio/midi"
	compositionsPath = "/api/v1/compositions/"
)

type CompositionHandler struct {
	svc *services.GenerationService
}

func NewCompositionHandler(svc *services.GenerationService) *CompositionHandler {
	return &CompositionHandler{svc: svc}
}

type CreateCompositionResponse struct {
	*services.GenerationResult
	FileURL string `json:"file_url"`
}

// Create composes one song from an image's feature and parameter vectors.
func (h *CompositionHandler) Create(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Kind:      "invalid_input",
			RequestID: c.GetString("request_id"),
		})
		return
	}

	fields := logger.WithContext(c)
	fields["genre_override"] = req.Genre
	logger.Debug("Composition requested", fields)

	res, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", compositionsPath+res.ID)
	c.JSON(http.StatusCreated, CreateCompositionResponse{
		GenerationResult: res,
		FileURL:          fileURL(res.ID),
	})
}

// Get summarizes a stored composition.
func (h *CompositionHandler) Get(c *gin.Context) {
	id := c.Param("id")
	summary, err := h.svc.Inspect(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"summary":  summary,
		"file_url": fileURL(id),
	})
}

// File streams the stored .mid file.
func (h *CompositionHandler) File(c *gin.Context) {
	id := c.Param("id")
	path, err := h.svc.Path(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", midiContentType)
	c.FileAttachment(path, "composition_"+id+".mid")
}

func fileURL(id string) string {
	return compositionsPath + id + "/file"
}
