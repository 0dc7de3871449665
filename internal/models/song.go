package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Song is a catalog metadata record. Album-cover rows share the table with
// playable tracks but are never streamable themselves.
type Song struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Artist       string    `gorm:"type:varchar(255);not null" json:"artist"`
	Album        *string   `gorm:"type:varchar(255)" json:"album,omitempty"`
	IsAlbumCover bool      `gorm:"default:false" json:"is_album_cover"`
	Genre        string    `gorm:"type:varchar(100)" json:"genre"`
	TrackNumber  int       `json:"track_number"`
	StreamCount  int64     `gorm:"default:0" json:"stream_count"`
	AudioRef     *string   `gorm:"type:varchar(512)" json:"audio_ref,omitempty"`
	ImageRef     *string   `gorm:"type:varchar(512)" json:"image_ref,omitempty"`
	Active       bool      `gorm:"default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Per-request decoration, never persisted
	IsLiked bool `gorm:"-" json:"is_liked"`
}

func (s *Song) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Playable reports whether the song can actually be streamed: it must be
// active, must not be an album cover and must carry an audio reference.
func (s *Song) Playable() bool {
	return s.Active && !s.IsAlbumCover && s.AudioRef != nil && *s.AudioRef != ""
}

// SongInput is the admin payload for creating or updating catalog entries.
// Audio and image references point at already-uploaded blobs.
type SongInput struct {
	Title        string  `json:"title" binding:"required"`
	Artist       string  `json:"artist" binding:"required"`
	Album        *string `json:"album"`
	Genre        string  `json:"genre"`
	TrackNumber  int     `json:"track_number"`
	IsAlbumCover bool    `json:"is_album_cover"`
	AudioRef     *string `json:"audio_ref"`
	ImageRef     *string `json:"image_ref"`
	Active       *bool   `json:"active"`
}
