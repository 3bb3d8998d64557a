package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gridsight/gridsight-backend/internal/handlers"
	"github.com/gridsight/gridsight-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	HealthHandler      *handlers.HealthHandler
	TransformerHandler *handlers.TransformerHandler
	InspectionHandler  *handlers.InspectionHandler
	AnnotationHandler  *handlers.AnnotationHandler
	DetectionHandler   *handlers.DetectionHandler
	ImageHandler       *handlers.ImageHandler
	MaintenanceHandler *handlers.MaintenanceHandler
	CommentHandler     *handlers.CommentHandler

	MediaRoot string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthz", cfg.HealthHandler.Check)
	if cfg.MediaRoot != "" {
		router.Static("/media", cfg.MediaRoot)
	}
	router.POST("/api/auth/register", cfg.AuthHandler.Register)
	router.POST("/api/auth/login", cfg.AuthHandler.Login)
	router.POST("/api/auth/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/auth/logout", cfg.AuthHandler.Logout)

	api.GET("/ml/health", cfg.DetectionHandler.Health)

	transformers := api.Group("/transformers")
	{
		transformers.POST("", cfg.TransformerHandler.Create)
		transformers.GET("", cfg.TransformerHandler.List)
		transformers.GET("/:id", cfg.TransformerHandler.Get)
		transformers.PUT("/:id", cfg.TransformerHandler.Update)
		transformers.DELETE("/:id", cfg.TransformerHandler.Delete)
		transformers.GET("/:id/inspections", cfg.TransformerHandler.Inspections)
		transformers.POST("/:id/images", cfg.ImageHandler.Upload)
		transformers.GET("/:id/images", cfg.ImageHandler.GetByTransformer)
		transformers.GET("/:id/images/baseline", cfg.ImageHandler.LatestBaseline)
		transformers.GET("/:id/maintenance-records", cfg.MaintenanceHandler.GetByTransformer)
	}

	inspections := api.Group("/inspections")
	{
		inspections.POST("", cfg.InspectionHandler.Create)
		inspections.GET("", cfg.InspectionHandler.List)
		inspections.GET("/:id", cfg.InspectionHandler.Get)
		inspections.PUT("/:id", cfg.InspectionHandler.Update)
		inspections.DELETE("/:id", cfg.InspectionHandler.Delete)
		inspections.GET("/:id/access", cfg.InspectionHandler.CheckAccess)

		inspections.GET("/:id/history", cfg.InspectionHandler.History)
		inspections.GET("/:id/history/summary", cfg.InspectionHandler.HistorySummary)
		inspections.GET("/:id/history/box/:boxNumber", cfg.InspectionHandler.BoxHistory)
		inspections.GET("/:id/history/statistics", cfg.InspectionHandler.HistoryStatistics)

		inspections.GET("/:id/annotations", cfg.AnnotationHandler.GetActive)
		inspections.GET("/:id/annotations/all", cfg.AnnotationHandler.GetAll)
		inspections.POST("/:id/annotations", cfg.AnnotationHandler.Save)
		inspections.POST("/:id/annotations/batch", cfg.AnnotationHandler.SaveBatch)
		inspections.GET("/:id/annotations/sequence", cfg.AnnotationHandler.SequenceStatus)
		inspections.POST("/:id/annotations/repair-sequence", cfg.AnnotationHandler.RepairSequence)
		inspections.POST("/:id/detections", cfg.AnnotationHandler.RecordDetections)
		inspections.POST("/:id/detect", cfg.DetectionHandler.Run)
		inspections.GET("/:id/feedback", cfg.AnnotationHandler.ExportFeedback)
		inspections.POST("/:id/render", cfg.ImageHandler.RenderAnnotated)

		inspections.POST("/:id/comments", cfg.CommentHandler.Add)
		inspections.GET("/:id/comments", cfg.CommentHandler.GetByInspection)
		inspections.GET("/:id/maintenance-records", cfg.MaintenanceHandler.GetByInspection)
	}

	annotations := api.Group("/annotations")
	{
		annotations.POST("/:annotationId/approve", cfg.AnnotationHandler.Approve)
		annotations.POST("/:annotationId/reject", cfg.AnnotationHandler.Reject)
		annotations.DELETE("/:annotationId", cfg.AnnotationHandler.Delete)
		annotations.GET("/:annotationId/lineage", cfg.AnnotationHandler.Lineage)
	}

	records := api.Group("/maintenance-records")
	{
		records.POST("", cfg.MaintenanceHandler.Create)
		records.GET("/:id", cfg.MaintenanceHandler.Get)
		records.PUT("/:id", cfg.MaintenanceHandler.Update)
		records.POST("/:id/finalize", cfg.MaintenanceHandler.Finalize)
		records.DELETE("/:id", cfg.MaintenanceHandler.Delete)
	}

	comments := api.Group("/comments")
	{
		comments.PUT("/:commentId", cfg.CommentHandler.Update)
		comments.DELETE("/:commentId", cfg.CommentHandler.Delete)
	}

	api.DELETE("/images/:imageId", cfg.ImageHandler.Delete)

	return router
}
