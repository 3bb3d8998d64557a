package app

import (
	"github.com/gin-gonic/gin"

	"github.com/gridsight/gridsight-backend/internal/server"
)

func wireRouter(handlers Handlers, middleware Middleware, mediaRoot string) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		TransformerHandler: handlers.Transformer,
		InspectionHandler:  handlers.Inspection,
		AnnotationHandler:  handlers.Annotation,
		DetectionHandler:   handlers.Detection,
		ImageHandler:       handlers.Image,
		MaintenanceHandler: handlers.Maintenance,
		CommentHandler:     handlers.Comment,
		MediaRoot:          mediaRoot,
	})
}
