package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/cache"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/db"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/handlers"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/middleware"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/observability"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/repos"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/server"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/services"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/utils"
)

const serviceName = "curriculum-engine"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("DEPLOY_ENV", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	nodeRepo := repos.NewCurriculumNodeRepo(thePG, log)
	edgeRepo := repos.NewPrerequisiteEdgeRepo(thePG, log)
	contentRepo := repos.NewContentResourceRepo(thePG, log)
	sequenceRepo := repos.NewLearningSequenceRepo(thePG, log)
	positionRepo := repos.NewSequencePositionRepo(thePG, log)

	// Node cache (optional)
	nodeCache, err := cache.New(log)
	if err != nil {
		log.Warn("Node cache init failed, continuing without cache", "error", err)
		nodeCache = nil
	}
	if nodeCache != nil {
		defer nodeCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	treeGuard := services.NewTreeIntegrityGuard(thePG, log, nodeRepo, contentRepo)
	nodeService := services.NewNodeService(thePG, log, treeGuard, nodeRepo, edgeRepo)
	prereqService := services.NewPrerequisiteService(thePG, log, nodeRepo, edgeRepo)
	contentService := services.NewContentService(thePG, log, contentRepo, nodeRepo)
	sequenceService := services.NewSequenceService(thePG, log, sequenceRepo, positionRepo, nodeRepo, contentRepo)
	orderingEngine := services.NewSequenceOrderingEngine(thePG, log, sequenceRepo, positionRepo, nodeRepo, contentRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	nodeHandler := handlers.NewNodeHandler(log, nodeService, prereqService, contentService, nodeCache)
	sequenceHandler := handlers.NewSequenceHandler(log, sequenceService, orderingEngine)
	contentHandler := handlers.NewContentHandler(log, contentService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:     serviceName,
		AuthMiddleware:  authMiddleware,
		NodeHandler:     nodeHandler,
		SequenceHandler: sequenceHandler,
		ContentHandler:  contentHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
}
