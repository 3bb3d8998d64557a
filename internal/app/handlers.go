package app

import (
	"gorm.io/gorm"

	"github.com/gridsight/gridsight-backend/internal/handlers"
	"github.com/gridsight/gridsight-backend/internal/pkg/logger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Transformer *handlers.TransformerHandler
	Inspection  *handlers.InspectionHandler
	Annotation  *handlers.AnnotationHandler
	Detection   *handlers.DetectionHandler
	Image       *handlers.ImageHandler
	Maintenance *handlers.MaintenanceHandler
	Comment     *handlers.CommentHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:        handlers.NewAuthHandler(services.Auth),
		Health:      handlers.NewHealthHandler(db),
		Transformer: handlers.NewTransformerHandler(services.Transformer, services.Inspection),
		Inspection:  handlers.NewInspectionHandler(services.Inspection, services.History),
		Annotation:  handlers.NewAnnotationHandler(services.Annotation, services.Feedback),
		Detection:   handlers.NewDetectionHandler(services.Detection),
		Image:       handlers.NewImageHandler(services.Image, services.Render),
		Maintenance: handlers.NewMaintenanceHandler(services.Maintenance),
		Comment:     handlers.NewCommentHandler(services.Comment),
	}
}
