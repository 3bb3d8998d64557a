package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridsight/gridsight-backend/internal/services"
)

type DetectionHandler struct {
	detectionService services.DetectionService
}

func NewDetectionHandler(detectionService services.DetectionService) *DetectionHandler {
	return &DetectionHandler{detectionService: detectionService}
}

// POST /api/inspections/:id/detect
func (h *DetectionHandler) Run(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := h.detectionService.Run(c.Request.Context(), inspectionID, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, result)
}

// GET /api/ml/health
func (h *DetectionHandler) Health(c *gin.Context) {
	if err := h.detectionService.Health(c.Request.Context()); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "ml_unreachable", err)
		return
	}
	RespondOK(c, gin.H{"status": "ok"})
}
