package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/services"
)

type SongHandler struct {
	songRepo      repository.SongRepository
	accessService services.AccessService
}

func NewSongHandler(songRepo repository.SongRepository, accessService services.AccessService) *SongHandler {
	return &SongHandler{
		songRepo:      songRepo,
		accessService: accessService,
	}
}

func (h *SongHandler) GetAllSongs(c *gin.Context) {
	userID := c.GetUint("user_id")

	var songs []models.Song
	var err error
	if userID > 0 {
		songs, err = h.songRepo.GetAllSongsWithLikeStatus(userID)
	} else {
		songs, err = h.songRepo.GetAllSongs()
	}
	if err != nil {
		log.WithField("error", err).Error("Failed to fetch songs")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Songs fetched successfully",
		"data":    songs,
	})
}

func (h *SongHandler) SearchSongs(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Search query is required",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	songs, err := h.songRepo.SearchSongs(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to search songs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Search completed",
		"data":    songs,
	})
}

func (h *SongHandler) GetSongByID(c *gin.Context) {
	songID := c.Param("id")
	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song fetched successfully",
		"data":    song,
	})
}

// CheckAccess answers whether the caller may stream the song. Denial and a
// nonexistent song look identical to the client so the catalog's contents
// never leak; the distinction survives only in the logs.
func (h *SongHandler) CheckAccess(c *gin.Context) {
	userID := c.GetUint("user_id")
	songID := c.Param("id")
	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	allowed, err := h.accessService.CanAccess(userID, songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) || errors.Is(err, repository.ErrUserNotFound) {
			log.WithFields(log.Fields{
				"user_id": userID,
				"song_id": songID,
				"error":   err,
			}).Warn("Access check against nonexistent reference")
			c.JSON(http.StatusOK, gin.H{
				"status": "success",
				"data":   gin.H{"allowed": false},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to check access",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"allowed": allowed},
	})
}

// CreateSong adds a catalog entry. Admin only.
func (h *SongHandler) CreateSong(c *gin.Context) {
	var input models.SongInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song payload: " + err.Error(),
		})
		return
	}

	song := models.Song{
		Title:        input.Title,
		Artist:       input.Artist,
		Album:        input.Album,
		Genre:        input.Genre,
		TrackNumber:  input.TrackNumber,
		IsAlbumCover: input.IsAlbumCover,
		AudioRef:     input.AudioRef,
		ImageRef:     input.ImageRef,
		Active:       true,
	}
	if input.Active != nil {
		song.Active = *input.Active
	}

	if err := h.songRepo.CreateSong(&song); err != nil {
		log.WithField("error", err).Error("Failed to create song")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to create song",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Song created successfully",
		"data":    song,
	})
}

// UpdateSong replaces a catalog entry's metadata. Admin only.
func (h *SongHandler) UpdateSong(c *gin.Context) {
	songID := c.Param("id")
	if _, err := uuid.Parse(songID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song ID format",
		})
		return
	}

	var input models.SongInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid song payload: " + err.Error(),
		})
		return
	}

	song, err := h.songRepo.GetSongByID(songID)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"status":  "error",
				"message": "Song not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to fetch song",
		})
		return
	}

	song.Title = input.Title
	song.Artist = input.Artist
	song.Album = input.Album
	song.Genre = input.Genre
	song.TrackNumber = input.TrackNumber
	song.IsAlbumCover = input.IsAlbumCover
	song.AudioRef = input.AudioRef
	song.ImageRef = input.ImageRef
	if input.Active != nil {
		song.Active = *input.Active
	}

	if err := h.songRepo.UpdateSong(song); err != nil {
		log.WithField("error", err).Error("Failed to update song")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to update song",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Song updated successfully",
		"data":    song,
	})
}

func (h *SongHandler) AccessibleCatalog(c *gin.Context) {
	userID := c.GetUint("user_id")
	excludePlaylist := c.Query("exclude_playlist")

	songs, err := h.accessService.ListAccessibleCatalog(userID, excludePlaylist)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "User not found",
			})
			return
		}
		log.WithField("error", err).Error("Failed to list accessible catalog")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to list accessible catalog",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Accessible catalog fetched",
		"data":    songs,
	})
}
