package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type TransformerHandler struct {
	transformerService services.TransformerService
	inspectionService  services.InspectionService
}

func NewTransformerHandler(transformerService services.TransformerService, inspectionService services.InspectionService) *TransformerHandler {
	return &TransformerHandler{
		transformerService: transformerService,
		inspectionService:  inspectionService,
	}
}

// POST /api/transformers
func (h *TransformerHandler) Create(c *gin.Context) {
	var req struct {
		Code            string `json:"code"`
		Location        string `json:"location"`
		CapacityKVA     *int   `json:"capacity_kva"`
		Region          string `json:"region"`
		PoleNo          string `json:"pole_no"`
		Type            string `json:"type"`
		LocationDetails string `json:"location_details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	created, err := h.transformerService.Create(c.Request.Context(), &types.Transformer{
		Code:            req.Code,
		Location:        req.Location,
		CapacityKVA:     req.CapacityKVA,
		Region:          req.Region,
		PoleNo:          req.PoleNo,
		Type:            req.Type,
		LocationDetails: req.LocationDetails,
	})
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, created)
}

// GET /api/transformers
func (h *TransformerHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rows, total, err := h.transformerService.List(c.Request.Context(), c.Query("region"), limit, offset)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"transformers": rows, "total": total})
}

// GET /api/transformers/:id
func (h *TransformerHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	tr, err := h.transformerService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, tr)
}

// GET /api/transformers/:id/inspections
func (h *TransformerHandler) Inspections(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.inspectionService.GetByTransformer(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"inspections": rows})
}

// PUT /api/transformers/:id
func (h *TransformerHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	tr, err := h.transformerService.Update(c.Request.Context(), id, updates)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, tr)
}

// DELETE /api/transformers/:id
func (h *TransformerHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.transformerService.Delete(c.Request.Context(), id); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
