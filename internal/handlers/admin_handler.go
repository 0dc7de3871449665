package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/services"
)

type AdminHandler struct {
	cleanupService services.CleanupService
	recService     services.RecommendationService
}

func NewAdminHandler(cleanupService services.CleanupService, recService services.RecommendationService) *AdminHandler {
	return &AdminHandler{
		cleanupService: cleanupService,
		recService:     recService,
	}
}

// RunCleanup triggers the subscription-lapse sweep immediately. "Nothing to
// clean" is a success with removed = 0.
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	removed, err := h.cleanupService.RunCleanupSweep(time.Now())
	if err != nil {
		log.WithField("error", err).Error("Cleanup sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Cleanup sweep failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Cleanup sweep completed",
		"data":    gin.H{"removed": removed},
	})
}

// SyncAffinity exports the like ledger to the similarity service. Partial
// failures still report success with a completion count.
func (h *AdminHandler) SyncAffinity(c *gin.Context) {
	exported, failed, err := h.recService.SyncAffinityData()
	if err != nil {
		log.WithField("error", err).Error("Affinity sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Affinity sync failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Affinity sync completed",
		"data": gin.H{
			"exported": exported,
			"failed":   failed,
		},
	})
}
