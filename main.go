package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/config"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/database"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/handlers"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/routes"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/services"
)

func main() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		TimestampFormat: time.RFC3339,
	})

	// =========================
	// LOAD CONFIG
	// =========================
	if err := config.LoadConfig(); err != nil {
		log.Warnf("Config load warning: %v", err)
	}
	cfg := config.GlobalConfig

	// =========================
	// CONNECT DATABASE
	// =========================
	if err := database.ConnectDB(); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	database.RunMigrations()

	// Keep the pooled connections warm
	go func() {
		sqlDB, _ := database.DB.DB()
		for {
			sqlDB.Ping()
			time.Sleep(5 * time.Minute)
		}
	}()

	// =========================
	// INIT REPOSITORIES
	// =========================
	userRepo := repository.NewUserRepository(database.DB)
	songRepo := repository.NewSongRepository(database.DB)
	likeRepo := repository.NewLikeRepository(database.DB)
	ownershipRepo := repository.NewOwnershipRepository(database.DB)
	playlistRepo := repository.NewPlaylistRepository(database.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(database.DB)
	recommendationRepo := repository.NewRecommendationRepository(database.DB)

	// =========================
	// INIT SERVICES
	// =========================

	// External similarity / embedding services (optional)
	similarityClient := services.NewSimilarityClient(cfg)
	embeddingClient := services.NewEmbeddingClient(cfg)

	accessService := services.NewAccessService(songRepo, userRepo, ownershipRepo, playlistRepo, subscriptionRepo)
	libraryService := services.NewLibraryService(database.DB, songRepo, userRepo, likeRepo, ownershipRepo, playlistRepo, subscriptionRepo)
	recommendationService := services.NewRecommendationService(songRepo, userRepo, likeRepo, recommendationRepo, similarityClient, embeddingClient, cfg)
	cleanupService := services.NewCleanupService(database.DB, ownershipRepo, subscriptionRepo, cfg.CleanupGraceHours)

	// =========================
	// SCHEDULED CLEANUP SWEEP
	// =========================
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			removed, err := cleanupService.RunCleanupSweep(time.Now())
			if err != nil {
				log.Warnf("Scheduled cleanup sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				log.Infof("Scheduled cleanup sweep revoked %d grants", removed)
			}
		}
	}()

	// =========================
	// INIT HANDLERS
	// =========================
	authHandler := handlers.NewAuthHandler(userRepo)
	songHandler := handlers.NewSongHandler(songRepo, accessService)
	libraryHandler := handlers.NewLibraryHandler(libraryService, likeRepo, songRepo, playlistRepo, subscriptionRepo)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, songRepo)
	adminHandler := handlers.NewAdminHandler(cleanupService, recommendationService)

	// =========================
	// ROUTES
	// =========================
	router := routes.SetupRoutes(
		authHandler,
		songHandler,
		libraryHandler,
		recommendationHandler,
		adminHandler,
		userRepo,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.ServerPort
	}
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// =========================
	// START SERVER
	// =========================
	go func() {
		log.Infof("🎵 Music Sales API running on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Server error: %v", err)
		}
	}()

	// =========================
	// GRACEFUL SHUTDOWN
	// =========================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Forced shutdown: %v", err)
	}

	log.Info("✅ Server exited properly")
}
