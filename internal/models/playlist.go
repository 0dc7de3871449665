package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikedSongsPlaylistName is the name of the single system playlist the
// reconciler keeps in step with a user's likes.
const LikedSongsPlaylistName = "Liked Songs"

// Playlist. System-generated playlists (IsSystem) cannot be renamed or
// deleted through normal user operations.
type Playlist struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	IsSystem  bool      `gorm:"default:false" json:"is_system"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    User           `gorm:"foreignKey:UserID" json:"-"`
	Entries []PlaylistSong `gorm:"foreignKey:PlaylistID" json:"entries,omitempty"`
}

func (p *Playlist) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PlaylistSong is a playlist membership row. It references the ownership
// record rather than the song so that revoking a subscription grant takes the
// membership with it. The (playlist, ownership) pair is unique; duplicate
// inserts under concurrency are benign no-ops.
type PlaylistSong struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaylistID string    `gorm:"type:uuid;not null;uniqueIndex:idx_playlist_songs_entry" json:"playlist_id"`
	UserSongID uint      `gorm:"not null;uniqueIndex:idx_playlist_songs_entry;index" json:"user_song_id"`
	AddedAt    time.Time `gorm:"autoCreateTime" json:"added_at"`

	// Relationships
	Playlist Playlist `gorm:"foreignKey:PlaylistID" json:"-"`
	UserSong UserSong `gorm:"foreignKey:UserSongID" json:"user_song,omitempty"`
}
