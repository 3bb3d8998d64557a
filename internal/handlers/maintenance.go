package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type MaintenanceHandler struct {
	maintenanceService services.MaintenanceService
}

func NewMaintenanceHandler(maintenanceService services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: maintenanceService}
}

// POST /api/maintenance-records
func (h *MaintenanceHandler) Create(c *gin.Context) {
	var req struct {
		InspectionID      uuid.UUID               `json:"inspection_id"`
		TransformerStatus types.TransformerStatus `json:"transformer_status"`
		Notes             string                  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rec, err := h.maintenanceService.CreateFromInspection(c.Request.Context(), req.InspectionID, req.TransformerStatus, req.Notes, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, rec)
}

// GET /api/maintenance-records/:id
func (h *MaintenanceHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rec, err := h.maintenanceService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

// GET /api/inspections/:id/maintenance-records
func (h *MaintenanceHandler) GetByInspection(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.maintenanceService.GetByInspection(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"records": rows})
}

// GET /api/transformers/:id/maintenance-records
func (h *MaintenanceHandler) GetByTransformer(c *gin.Context) {
	transformerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.maintenanceService.GetByTransformer(c.Request.Context(), transformerID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"records": rows})
}

// PUT /api/maintenance-records/:id
func (h *MaintenanceHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rec, err := h.maintenanceService.Update(c.Request.Context(), id, updates)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

// POST /api/maintenance-records/:id/finalize
func (h *MaintenanceHandler) Finalize(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rec, err := h.maintenanceService.Finalize(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, rec)
}

// DELETE /api/maintenance-records/:id
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.maintenanceService.Delete(c.Request.Context(), id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
