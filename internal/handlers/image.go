package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type ImageHandler struct {
	imageService  services.ImageService
	renderService services.RenderService
}

func NewImageHandler(imageService services.ImageService, renderService services.RenderService) *ImageHandler {
	return &ImageHandler{
		imageService:  imageService,
		renderService: renderService,
	}
}

// POST /api/transformers/:id/images  (multipart: file, type, env_condition)
func (h *ImageHandler) Upload(c *gin.Context) {
	transformerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	req := services.UploadImageRequest{
		TransformerID:    transformerID,
		Type:             types.ImageType(c.PostForm("type")),
		OriginalFilename: file.Filename,
		ContentType:      file.Header.Get("Content-Type"),
		SizeBytes:        file.Size,
		Uploader:         actor(c),
	}
	if raw := c.PostForm("env_condition"); raw != "" {
		cond := types.EnvCondition(raw)
		req.EnvCondition = &cond
	}

	src, err := file.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer src.Close()

	img, err := h.imageService.Upload(c.Request.Context(), req, src)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, img)
}

// GET /api/transformers/:id/images
func (h *ImageHandler) GetByTransformer(c *gin.Context) {
	transformerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var imageType *types.ImageType
	if raw := c.Query("type"); raw != "" {
		it := types.ImageType(raw)
		imageType = &it
	}
	rows, err := h.imageService.GetByTransformer(c.Request.Context(), transformerID, imageType)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"images": rows})
}

// GET /api/transformers/:id/images/baseline
func (h *ImageHandler) LatestBaseline(c *gin.Context) {
	transformerID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	img, err := h.imageService.LatestBaseline(c.Request.Context(), transformerID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	if img == nil {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondOK(c, img)
}

// DELETE /api/images/:imageId
func (h *ImageHandler) Delete(c *gin.Context) {
	imageID, ok := pathUUID(c, "imageId")
	if !ok {
		return
	}
	if err := h.imageService.Delete(c.Request.Context(), imageID); err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// POST /api/inspections/:id/render
func (h *ImageHandler) RenderAnnotated(c *gin.Context) {
	inspectionID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	insp, err := h.renderService.RenderAnnotated(c.Request.Context(), inspectionID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, insp)
}
