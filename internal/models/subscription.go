package models

import (
	"time"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	UserID        uint               `gorm:"not null;index" json:"user_id"`
	Status        SubscriptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	StartedAt     time.Time          `gorm:"not null" json:"started_at"`
	EndsAt        *time.Time         `gorm:"index" json:"ends_at,omitempty"`
	NextBillingAt *time.Time         `json:"next_billing_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// EntitledAt reports whether the subscription grants streaming access at the
// given instant: active with no end date or an end date still ahead, or
// cancelled but with the paid period still running.
func (s *Subscription) EntitledAt(now time.Time) bool {
	switch s.Status {
	case SubscriptionActive:
		return s.EndsAt == nil || s.EndsAt.After(now)
	case SubscriptionCancelled:
		return s.EndsAt != nil && s.EndsAt.After(now)
	default:
		return false
	}
}
