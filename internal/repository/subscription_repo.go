package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

type SubscriptionRepository interface {
	CurrentSubscription(userID uint) (*models.Subscription, error)
	IsEntitled(userID uint, now time.Time) (bool, error)
	LapsedUserIDs(cutoff time.Time) ([]uint, error)
}

type subscriptionRepo struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

// CurrentSubscription returns the user's most relevant subscription: the most
// recently started one. Nil when the user never subscribed.
func (r *subscriptionRepo) CurrentSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// IsEntitled reports whether any of the user's subscriptions grants streaming
// access right now. A user who resubscribed after a lapse is entitled even
// though an older lapsed row still exists.
func (r *subscriptionRepo) IsEntitled(userID uint, now time.Time) (bool, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	if err != nil {
		return false, err
	}
	for i := range subs {
		if subs[i].EntitledAt(now) {
			return true, nil
		}
	}
	return false, nil
}

// LapsedUserIDs returns users holding a cancelled or expired subscription
// whose paid period ended before the cutoff. Callers still have to skip users
// who hold an independently entitling subscription.
func (r *subscriptionRepo) LapsedUserIDs(cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Subscription{}).
		Distinct("user_id").
		Where("status IN ?", []models.SubscriptionStatus{
			models.SubscriptionCancelled,
			models.SubscriptionExpired,
		}).
		Where("ends_at IS NOT NULL AND ends_at < ?", cutoff).
		Pluck("user_id", &ids).Error
	if ids == nil {
		ids = []uint{}
	}
	return ids, err
}
