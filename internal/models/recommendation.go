package models

import (
	"time"
)

// Recommendation is one entry of a user's cached recommendation set. Sets are
// regenerated wholesale (delete + insert in one transaction), never patched.
type Recommendation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_recommendations_user_pos" json:"user_id"`
	SongID      string    `gorm:"type:uuid;not null" json:"song_id"`
	Position    int       `gorm:"not null;uniqueIndex:idx_recommendations_user_pos" json:"position"`
	Score       float64   `gorm:"not null" json:"score"`
	GeneratedAt time.Time `gorm:"not null" json:"generated_at"`

	// Relationships
	Song Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}

// ScoredSong is a (song, score) pair as returned by the external similarity
// service. IDs coming back from it are never trusted until revalidated
// against the catalog.
type ScoredSong struct {
	SongID string  `json:"song_id"`
	Score  float64 `json:"score"`
}
