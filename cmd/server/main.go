// @title           Partner Media Backend API
// @version         1.0.0
// @description     Edge endpoints for the partner app media gallery: signed
// @description     upload URL issuance with quota enforcement, pending-media
// @description     deletion, and display-order updates. Backed by Supabase
// @description     Postgres and Storage.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the Supabase JWT.

package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"partner-media-backend/internal/config"
	"partner-media-backend/internal/handlers"
	"partner-media-backend/internal/metrics"
	"partner-media-backend/internal/middleware"
	"partner-media-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.TmpBucket, cfg.MediaBucket)
	if err != nil {
		log.Fatalf("Failed to initialize storage client: %v", err)
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	m := metrics.New()

	uploadURLHandler := handlers.NewUploadURLHandler(dbClient, storageClient, m)
	removeHandler := handlers.NewRemoveHandler(dbClient, storageClient, m)
	reorderHandler := handlers.NewReorderHandler(dbClient, m)
	mediaHandler := handlers.NewMediaHandler(dbClient, storageClient)
	profileHandler := handlers.NewProfileHandler(dbClient)

	router := gin.Default()

	// No auth on health and metrics.
	router.GET("/health", handlers.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/get-upload-url", uploadURLHandler.GetUploadURL)
	api.POST("/remove-tmp", removeHandler.RemoveTmp)
	api.POST("/reorder", reorderHandler.Reorder)

	api.GET("/me", profileHandler.GetMyProfile)
	api.GET("/media", mediaHandler.ListMedia)
	api.GET("/media/quota", mediaHandler.GetQuota)
	api.GET("/media/url", mediaHandler.GetMediaURL)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
