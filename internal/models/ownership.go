package models

import (
	"time"
)

// Provenance distinguishes a permanent purchase from a revocable grant that
// only existed because the user was entitled under a subscription when the
// song was first accessed.
type Provenance string

const (
	ProvenancePurchased    Provenance = "purchased"
	ProvenanceSubscription Provenance = "subscription"
)

// UserSong is an ownership record. Purchased rows are immutable; subscription
// rows are revoked by the lapse-cleanup sweep once the grace period passes.
type UserSong struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_songs_user_song" json:"user_id"`
	SongID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_songs_user_song;index" json:"song_id"`
	Provenance Provenance `gorm:"type:varchar(20);not null" json:"provenance"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
	Song Song `gorm:"foreignKey:SongID" json:"song,omitempty"`
}
