package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/handlers"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/middleware"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

func SetupRoutes(
	authHandler *handlers.AuthHandler,
	songHandler *handlers.SongHandler,
	libraryHandler *handlers.LibraryHandler,
	recommendationHandler *handlers.RecommendationHandler,
	adminHandler *handlers.AdminHandler,
	userRepo repository.UserRepository,
) *gin.Engine {

	router := gin.New()

	// =========================
	// GLOBAL MIDDLEWARE
	// =========================
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// =========================
	// CORS CONFIG (DEV / PROD)
	// =========================
	env := os.Getenv("ENV")
	frontendURL := os.Getenv("CORS_ORIGIN")

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if env == "production" {
		if frontendURL == "" {
			log.Fatal("CORS_ORIGIN environment variable is not set in production")
		}
		corsConfig.AllowOrigins = []string{frontendURL}
	} else {
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}
		if frontendURL != "" {
			allowedOrigins = append(allowedOrigins, frontendURL)
		}
		corsConfig.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return strings.HasPrefix(origin, "http://192.168.") || strings.HasPrefix(origin, "http://10.")
		}
	}

	router.Use(cors.New(corsConfig))

	// =========================
	// SECURITY HEADERS
	// =========================
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// =========================
	// API ROUTES
	// =========================
	api := router.Group("/api")
	{
		// ---------- AUTH ----------
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("/")
			authProtected.Use(middleware.JWTMiddleware())
			{
				authProtected.GET("/me", authHandler.Me)
			}
		}

		// ---------- PUBLIC SONGS (optional JWT for like status) ----------
		songs := api.Group("/songs")
		songs.Use(middleware.OptionalJWTMiddleware())
		{
			songs.GET("", songHandler.GetAllSongs)
			songs.GET("/search", songHandler.SearchSongs)
			songs.GET("/:id", songHandler.GetSongByID)
		}

		// ---------- PROTECTED ----------
		protected := api.Group("/")
		protected.Use(middleware.JWTMiddleware())
		{
			protected.GET("/songs/:id/access", songHandler.CheckAccess)
			protected.GET("/catalog/accessible", songHandler.AccessibleCatalog)

			user := protected.Group("/user")
			{
				user.POST("/like/:song_id", libraryHandler.ToggleLike)
				user.POST("/dislike/:song_id", libraryHandler.ToggleDislike)
				user.GET("/likes", libraryHandler.GetUserLikes)
				user.GET("/subscription", libraryHandler.SubscriptionStatus)
			}

			playlists := protected.Group("/playlists")
			{
				playlists.GET("", libraryHandler.ListPlaylists)
				playlists.GET("/:id", libraryHandler.GetPlaylist)
				playlists.POST("/liked/sync", libraryHandler.SyncLikedPlaylist)
			}

			recommendations := protected.Group("/recommendations")
			{
				recommendations.GET("", recommendationHandler.GetRecommendations)
				recommendations.POST("/refresh", recommendationHandler.RefreshRecommendations)
				recommendations.GET("/fresh", recommendationHandler.RecommendationsFresh)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.AdminMiddleware(userRepo))
			{
				admin.POST("/songs", songHandler.CreateSong)
				admin.PUT("/songs/:id", songHandler.UpdateSong)
				admin.POST("/cleanup", adminHandler.RunCleanup)
				admin.POST("/affinity/sync", adminHandler.SyncAffinity)
			}
		}
	}

	// =========================
	// HEALTH & METRICS
	// =========================
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Server is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Music Sales API",
			"version": "1.0.0",
		})
	})

	return router
}
