package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/clients/ml"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
	"github.com/gridsight/gridsight-backend/internal/platform/localmedia"
	"github.com/gridsight/gridsight-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Transformer services.TransformerService
	Inspection  services.InspectionService
	Annotation  services.AnnotationService
	Feedback    services.FeedbackService
	History     services.HistoryService
	Detection   services.DetectionService
	Image       services.ImageService
	Render      services.RenderService
	Maintenance services.MaintenanceService
	Comment     services.CommentService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, *localmedia.Store, error) {
	log.Info("Wiring services...")

	store, err := localmedia.NewStore(cfg.MediaRoot, cfg.MediaBaseURL, log)
	if err != nil {
		return Services{}, nil, fmt.Errorf("init media store: %w", err)
	}
	mlClient := ml.NewClient(cfg.MLBaseURL, cfg.MLTimeout, log)

	annotationService := services.NewAnnotationService(db, log, repos.Annotation, repos.BoxSequence, repos.History, repos.Inspection)

	return Services{
		Auth:        services.NewAuthService(db, log, repos.User, repos.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Transformer: services.NewTransformerService(log, repos.Transformer),
		Inspection:  services.NewInspectionService(db, log, repos.Inspection, repos.Transformer, repos.Annotation, repos.BoxSequence, repos.History),
		Annotation:  annotationService,
		Feedback:    services.NewFeedbackService(log, repos.Annotation, repos.Inspection),
		History:     services.NewHistoryService(log, repos.History, repos.Inspection),
		Detection:   services.NewDetectionService(log, mlClient, store, repos.Inspection, annotationService),
		Image:       services.NewImageService(log, store, repos.ThermalImage, repos.Transformer),
		Render:      services.NewRenderService(log, store, repos.Annotation, repos.Inspection),
		Maintenance: services.NewMaintenanceService(db, log, repos.Maintenance, repos.Annotation, repos.Inspection),
		Comment:     services.NewCommentService(log, repos.Comment, repos.Inspection),
	}, store, nil
}
