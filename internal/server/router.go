package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/handlers"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/middleware"
)

type RouterConfig struct {
	ServiceName     string
	AuthMiddleware  *middleware.AuthMiddleware
	NodeHandler     *handlers.NodeHandler
	SequenceHandler *handlers.SequenceHandler
	ContentHandler  *handlers.ContentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Curriculum taxonomy
	api.GET("/nodes/roots", cfg.NodeHandler.ListRoots)
	api.POST("/nodes", cfg.NodeHandler.CreateNode)
	api.GET("/nodes/:id", cfg.NodeHandler.GetNode)
	api.PUT("/nodes/:id", cfg.NodeHandler.UpdateNode)
	api.DELETE("/nodes/:id", cfg.NodeHandler.DeleteNode)
	api.GET("/nodes/:id/children", cfg.NodeHandler.ListChildren)
	// Prerequisite graph
	api.GET("/nodes/:id/prerequisites", cfg.NodeHandler.ListPrerequisites)
	api.PUT("/nodes/:id/prerequisites/:prereqId", cfg.NodeHandler.UpsertPrerequisite)
	api.DELETE("/nodes/:id/prerequisites/:prereqId", cfg.NodeHandler.DeletePrerequisite)
	// Learning sequences
	api.POST("/sequences", cfg.SequenceHandler.CreateSequence)
	api.GET("/sequences/:id", cfg.SequenceHandler.GetSequence)
	api.PUT("/sequences/:id", cfg.SequenceHandler.UpdateSequence)
	api.DELETE("/sequences/:id", cfg.SequenceHandler.DeleteSequence)
	api.POST("/sequences/:id/contents", cfg.SequenceHandler.AddContent)
	api.PATCH("/sequences/:id/contents/:positionId", cfg.SequenceHandler.PatchPosition)
	api.DELETE("/sequences/:id/contents/:positionId", cfg.SequenceHandler.RemoveContent)
	api.PUT("/sequences/:id/order", cfg.SequenceHandler.Reorder)
	// Content resources (collaborator boundary)
	api.POST("/contents", cfg.ContentHandler.CreateContent)
	api.GET("/contents/:id", cfg.ContentHandler.GetContent)

	return router
}
