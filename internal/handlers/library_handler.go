package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/services"
)

type LibraryHandler struct {
	libraryService services.LibraryService
	likeRepo       repository.LikeRepository
	songRepo       repository.SongRepository
	playlistRepo   repository.PlaylistRepository
	subRepo        repository.SubscriptionRepository
}

func NewLibraryHandler(
	libraryService services.LibraryService,
	likeRepo repository.LikeRepository,
	songRepo repository.SongRepository,
	playlistRepo repository.PlaylistRepository,
	subRepo repository.SubscriptionRepository,
) *LibraryHandler {
	return &LibraryHandler{
		libraryService: libraryService,
		likeRepo:       likeRepo,
		songRepo:       songRepo,
		playlistRepo:   playlistRepo,
		subRepo:        subRepo,
	}
}

func (h *LibraryHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, h.libraryService.ToggleLike)
}

func (h *LibraryHandler) ToggleDislike(c *gin.Context) {
	h.toggle(c, h.libraryService.ToggleDislike)
}

func (h *LibraryHandler) toggle(c *gin.Context, fn func(uint, string) (models.LikeState, error)) {
	userID := c.GetUint("user_id")
	songID := c.Param("song_id")
	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	state, err := fn(userID, songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		log.WithField("error", err).Error("Failed to toggle affinity")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update like state",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"state": state},
	})
}

func (h *LibraryHandler) GetUserLikes(c *gin.Context) {
	userID := c.GetUint("user_id")

	ids, err := h.likeRepo.LikedSongIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch likes",
		})
		return
	}

	songs, err := h.songRepo.GetSongsByIDs(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch liked songs",
		})
		return
	}
	for i := range songs {
		songs[i].IsLiked = true
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   songs,
	})
}

// SyncLikedPlaylist reconciles the system "Liked Songs" playlist with the
// user's current likes and reports how much actually changed.
func (h *LibraryHandler) SyncLikedPlaylist(c *gin.Context) {
	userID := c.GetUint("user_id")

	added, removed, err := h.libraryService.SyncLikedPlaylist(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "User not found",
			})
			return
		}
		log.WithField("error", err).Error("Failed to sync liked playlist")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to sync liked playlist",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Liked playlist synchronized",
		"data": gin.H{
			"added":   added,
			"removed": removed,
		},
	})
}

func (h *LibraryHandler) ListPlaylists(c *gin.Context) {
	userID := c.GetUint("user_id")

	playlists, err := h.playlistRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch playlists",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   playlists,
	})
}

// GetPlaylist returns one playlist with its resolved member songs. Another
// user's playlist is a 404, never a 403.
func (h *LibraryHandler) GetPlaylist(c *gin.Context) {
	userID := c.GetUint("user_id")
	playlistID := c.Param("id")
	if _, err := uuid.Parse(playlistID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid playlist ID format",
		})
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(playlistID)
	if err != nil && !errors.Is(err, repository.ErrPlaylistNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch playlist",
		})
		return
	}
	if err != nil || playlist.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Playlist not found",
		})
		return
	}

	memberIDs, err := h.playlistRepo.MemberSongIDs(playlist.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch playlist songs",
		})
		return
	}
	songs, err := h.songRepo.GetSongsByIDs(memberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch playlist songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"playlist": playlist,
			"songs":    songs,
		},
	})
}

// SubscriptionStatus reports the caller's latest subscription and whether it
// currently entitles them to stream.
func (h *LibraryHandler) SubscriptionStatus(c *gin.Context) {
	userID := c.GetUint("user_id")

	sub, err := h.subRepo.CurrentSubscription(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch subscription",
		})
		return
	}

	entitled, err := h.subRepo.IsEntitled(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to check entitlement",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"subscription": sub,
			"entitled":     entitled,
		},
	})
}
