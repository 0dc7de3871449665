package models

import (
	"time"
)

// LikeState is the per-(user, song) affinity state.
type LikeState string

const (
	LikeStateUnset    LikeState = "unset"
	LikeStateLiked    LikeState = "liked"
	LikeStateDisliked LikeState = "disliked"
)

// SongLike records an explicit affinity signal. At most one row exists per
// (user, song); an absent row means the state is unset.
type SongLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_song_likes_user_song" json:"user_id"`
	SongID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_song_likes_user_song;index" json:"song_id"`
	IsLike    bool      `gorm:"not null" json:"is_like"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
	Song Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}

// State maps the row onto the three-valued like state.
func (l *SongLike) State() LikeState {
	if l == nil {
		return LikeStateUnset
	}
	if l.IsLike {
		return LikeStateLiked
	}
	return LikeStateDisliked
}
