package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/gridsight/gridsight-backend/internal/data/repos/transformers"
	types "github.com/gridsight/gridsight-backend/internal/domain"
	"github.com/gridsight/gridsight-backend/internal/pkg/apperr"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/platform/localmedia"
)

type UploadImageRequest struct {
	TransformerID    uuid.UUID
	Type             types.ImageType
	EnvCondition     *types.EnvCondition
	OriginalFilename string
	ContentType      string
	SizeBytes        int64
	Uploader         string
}

type ImageService interface {
	Upload(ctx context.Context, req UploadImageRequest, body io.Reader) (*types.ThermalImage, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ThermalImage, error)
	GetByTransformer(ctx context.Context, transformerID uuid.UUID, imageType *types.ImageType) ([]*types.ThermalImage, error)
	LatestBaseline(ctx context.Context, transformerID uuid.UUID) (*types.ThermalImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageService struct {
	log             *logger.Logger
	store           *localmedia.Store
	imageRepo       transformers.ThermalImageRepo
	transformerRepo transformers.TransformerRepo
}

func NewImageService(
	baseLog *logger.Logger,
	store *localmedia.Store,
	imageRepo transformers.ThermalImageRepo,
	transformerRepo transformers.TransformerRepo,
) ImageService {
	return &imageService{
		log:             baseLog.With("service", "ImageService"),
		store:           store,
		imageRepo:       imageRepo,
		transformerRepo: transformerRepo,
	}
}

func (s *imageService) Upload(ctx context.Context, req UploadImageRequest, body io.Reader) (*types.ThermalImage, error) {
	if req.Type != types.ImageBaseline && req.Type != types.ImageMaintenance {
		return nil, apperr.Validation("unknown image type %q", req.Type)
	}
	if req.Type == types.ImageBaseline && req.EnvCondition == nil {
		return nil, apperr.Validation("baseline images require an environmental condition")
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, apperr.Validation("unsupported content type %q", req.ContentType)
	}
	tr, err := s.transformerRepo.GetByID(ctx, nil, req.TransformerID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, apperr.NotFound("transformer")
	}

	stored, url, err := s.store.Save(req.OriginalFilename, body)
	if err != nil {
		return nil, err
	}
	img, err := s.imageRepo.Create(ctx, nil, &types.ThermalImage{
		TransformerID:    req.TransformerID,
		Type:             req.Type,
		EnvCondition:     req.EnvCondition,
		OriginalFilename: req.OriginalFilename,
		StoredFilename:   stored,
		ContentType:      req.ContentType,
		SizeBytes:        req.SizeBytes,
		Uploader:         req.Uploader,
		PublicURL:        url,
	})
	if err != nil {
		// Keep disk and database in step when the row insert fails.
		if rmErr := s.store.Remove(stored); rmErr != nil {
			s.log.Warn("Orphaned media file left on disk", "stored", stored, "error", rmErr)
		}
		return nil, err
	}
	s.log.Info("Thermal image uploaded",
		"transformer", tr.Code, "type", img.Type, "stored", stored, "bytes", req.SizeBytes)
	return img, nil
}

func (s *imageService) Get(ctx context.Context, id uuid.UUID) (*types.ThermalImage, error) {
	img, err := s.imageRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.NotFound("thermal image")
	}
	return img, nil
}

func (s *imageService) GetByTransformer(ctx context.Context, transformerID uuid.UUID, imageType *types.ImageType) ([]*types.ThermalImage, error) {
	return s.imageRepo.GetByTransformer(ctx, nil, transformerID, imageType)
}

func (s *imageService) LatestBaseline(ctx context.Context, transformerID uuid.UUID) (*types.ThermalImage, error) {
	return s.imageRepo.LatestBaseline(ctx, nil, transformerID)
}

func (s *imageService) Delete(ctx context.Context, id uuid.UUID) error {
	img, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.imageRepo.Delete(ctx, nil, id); err != nil {
		return err
	}
	if err := s.store.Remove(img.StoredFilename); err != nil {
		s.log.Warn("Could not remove media file", "stored", img.StoredFilename, "error", err)
	}
	return nil
}
