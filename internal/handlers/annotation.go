package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/requestdata"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type AnnotationHandler struct {
	annotationService services.AnnotationService
	feedbackService   services.FeedbackService
}

func NewAnnotationHandler(annotationService services.AnnotationService, feedbackService services.FeedbackService) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: annotationService,
		feedbackService:   feedbackService,
	}
}

func actor(c *gin.Context) string {
	return requestdata.GetRequestData(c.Request.Context()).Actor()
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/inspections/:id/annotations
func (h *AnnotationHandler) GetActive(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.annotationService.GetActive(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotations": rows})
}

// GET /api/inspections/:id/annotations/all
func (h *AnnotationHandler) GetAll(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.annotationService.GetAll(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"annotations": rows})
}

// POST /api/inspections/:id/annotations
func (h *AnnotationHandler) Save(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.annotationService.Save(c.Request.Context(), inspectionID, req, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, row)
}

// POST /api/inspections/:id/annotations/batch
func (h *AnnotationHandler) SaveBatch(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Annotations []services.SaveRequest `json:"annotations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rows, err := h.annotationService.SaveBatch(c.Request.Context(), inspectionID, req.Annotations, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"annotations": rows})
}

// POST /api/inspections/:id/detections
func (h *AnnotationHandler) RecordDetections(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Detections   []services.Detection `json:"detections"`
		ModelVersion string               `json:"model_version"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	rows, err := h.annotationService.RecordDetectionBatch(c.Request.Context(), inspectionID, req.Detections, req.ModelVersion, actor(c))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"annotations": rows})
}

type decisionRequest struct {
	Comment *string `json:"comment"`
}

func (h *AnnotationHandler) decide(c *gin.Context, op func(ctx context.Context, id uuid.UUID, actor string, comment *string) (*types.Annotation, error)) {
	annotationID, ok := pathUUID(c, "annotationId")
	if !ok {
		return
	}
	var req decisionRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	row, err := op(c.Request.Context(), annotationID, actor(c), req.Comment)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, row)
}

// POST /api/annotations/:annotationId/approve
func (h *AnnotationHandler) Approve(c *gin.Context) {
	h.decide(c, h.annotationService.Approve)
}

// POST /api/annotations/:annotationId/reject
func (h *AnnotationHandler) Reject(c *gin.Context) {
	h.decide(c, h.annotationService.Reject)
}

// DELETE /api/annotations/:annotationId
func (h *AnnotationHandler) Delete(c *gin.Context) {
	h.decide(c, h.annotationService.Delete)
}

// GET /api/annotations/:annotationId/lineage
func (h *AnnotationHandler) Lineage(c *gin.Context) {
	annotationID, ok := pathUUID(c, "annotationId")
	if !ok {
		return
	}
	rows, err := h.annotationService.GetLineage(c.Request.Context(), annotationID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"lineage": rows})
}

// GET /api/inspections/:id/feedback
func (h *AnnotationHandler) ExportFeedback(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := h.feedbackService.Export(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, report)
}

// GET /api/inspections/:id/annotations/sequence
func (h *AnnotationHandler) SequenceStatus(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	next, err := h.annotationService.NextBoxNumber(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"next_box_number": next})
}

// POST /api/inspections/:id/annotations/repair-sequence
func (h *AnnotationHandler) RepairSequence(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	next, err := h.annotationService.RepairSequence(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"next_box_number": next})
}
