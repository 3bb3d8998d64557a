package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type InspectionHandler struct {
	inspectionService services.InspectionService
	historyService    services.HistoryService
}

func NewInspectionHandler(inspectionService services.InspectionService, historyService services.HistoryService) *InspectionHandler {
	return &InspectionHandler{
		inspectionService: inspectionService,
		historyService:    historyService,
	}
}

// POST /api/inspections
func (h *InspectionHandler) Create(c *gin.Context) {
	var req struct {
		InspectionNo   string    `json:"inspection_no"`
		TransformerID  uuid.UUID `json:"transformer_id"`
		Branch         string    `json:"branch"`
		InspectionDate time.Time `json:"inspection_date"`
		InspectionTime string    `json:"inspection_time"`
		InspectedBy    string    `json:"inspected_by"`
		Notes          string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	insp := &types.Inspection{
		InspectionNo:   req.InspectionNo,
		TransformerID:  req.TransformerID,
		Branch:         req.Branch,
		InspectionDate: req.InspectionDate,
		InspectionTime: req.InspectionTime,
		InspectedBy:    req.InspectedBy,
		Notes:          req.Notes,
	}
	created, err := h.inspectionService.Create(c.Request.Context(), insp, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, created)
}

// GET /api/inspections
func (h *InspectionHandler) List(c *gin.Context) {
	var status *types.InspectionStatus
	if raw := c.Query("status"); raw != "" {
		s := types.InspectionStatus(raw)
		if !s.Valid() {
			RespondError(c, http.StatusBadRequest, "invalid_status", nil)
			return
		}
		status = &s
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, total, err := h.inspectionService.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"inspections": rows, "total": total})
}

// GET /api/inspections/:id
func (h *InspectionHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	insp, err := h.inspectionService.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, insp)
}

// PUT /api/inspections/:id
func (h *InspectionHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var upd services.InspectionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	insp, err := h.inspectionService.Update(c.Request.Context(), id, upd, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, insp)
}

// DELETE /api/inspections/:id
func (h *InspectionHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.inspectionService.Delete(c.Request.Context(), id, actor(c)); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// GET /api/inspections/:id/access
func (h *InspectionHandler) CheckAccess(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	writable, reason, err := h.inspectionService.CheckAccess(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"writable": writable, "reason": reason})
}

// GET /api/inspections/:id/history
func (h *InspectionHandler) History(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.historyService.Full(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": entries})
}

// GET /api/inspections/:id/history/summary
func (h *InspectionHandler) HistorySummary(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.historyService.Recent(c.Request.Context(), id, limit)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": entries})
}

// GET /api/inspections/:id/history/box/:boxNumber
func (h *InspectionHandler) BoxHistory(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	boxNumber, err := strconv.Atoi(c.Param("boxNumber"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_box_number", err)
		return
	}
	entries, err := h.historyService.ByBox(c.Request.Context(), id, boxNumber)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"history": entries})
}

// GET /api/inspections/:id/history/statistics
func (h *InspectionHandler) HistoryStatistics(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stats, err := h.historyService.Statistics(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, stats)
}
