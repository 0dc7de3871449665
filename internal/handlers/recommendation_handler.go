package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/services"
)

type RecommendationHandler struct {
	recService services.RecommendationService
	songRepo   repository.SongRepository
}

func NewRecommendationHandler(recService services.RecommendationService, songRepo repository.SongRepository) *RecommendationHandler {
	return &RecommendationHandler{
		recService: recService,
		songRepo:   songRepo,
	}
}

func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	userID := c.GetUint("user_id")

	entries, err := h.recService.GetRecommendations(userID)
	if err != nil {
		log.WithField("error", err).Error("Failed to get recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to get recommendations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Recommendations fetched",
		"data":    h.hydrate(entries),
	})
}

// RefreshRecommendations regenerates the caller's set on demand, bypassing
// the 24h cache.
func (h *RecommendationHandler) RefreshRecommendations(c *gin.Context) {
	userID := c.GetUint("user_id")

	entries, err := h.recService.GenerateRecommendations(userID)
	if err != nil {
		log.WithField("error", err).Error("Failed to regenerate recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to regenerate recommendations",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Recommendations regenerated",
		"data":    h.hydrate(entries),
	})
}

func (h *RecommendationHandler) RecommendationsFresh(c *gin.Context) {
	userID := c.GetUint("user_id")

	fresh, err := h.recService.HasFreshRecommendations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to check recommendation freshness",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"fresh": fresh},
	})
}

// hydrate attaches full song records to the persisted (song id, score)
// entries for the response.
func (h *RecommendationHandler) hydrate(entries []models.Recommendation) []models.Recommendation {
	if len(entries) == 0 {
		return entries
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.SongID)
	}
	songs, err := h.songRepo.GetSongsByIDs(ids)
	if err != nil {
		log.WithField("error", err).Warn("Failed to hydrate recommendation songs")
		return entries
	}
	byID := make(map[string]models.Song, len(songs))
	for i := range songs {
		byID[songs[i].ID] = songs[i]
	}
	for i := range entries {
		entries[i].Song = byID[entries[i].SongID]
	}
	return entries
}
