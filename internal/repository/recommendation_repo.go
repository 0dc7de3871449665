package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

type RecommendationRepository interface {
	ListByUser(userID uint) ([]models.Recommendation, error)
	LatestGeneratedAt(userID uint) (*time.Time, error)
	ReplaceForUser(userID uint, entries []models.Recommendation) error
}

type recommendationRepo struct {
	db *gorm.DB
}

func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepo{db: db}
}

func (r *recommendationRepo) ListByUser(userID uint) ([]models.Recommendation, error) {
	var entries []models.Recommendation
	err := r.db.Where("user_id = ?", userID).Order("position").Find(&entries).Error
	if entries == nil {
		entries = []models.Recommendation{}
	}
	return entries, err
}

func (r *recommendationRepo) LatestGeneratedAt(userID uint) (*time.Time, error) {
	var entry models.Recommendation
	err := r.db.Where("user_id = ?", userID).
		Order("generated_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry.GeneratedAt, nil
}

// ReplaceForUser swaps the user's recommendation set as one snapshot:
// delete plus insert inside a single transaction, so a concurrent freshness
// read never observes a mix of two generations.
func (r *recommendationRepo) ReplaceForUser(userID uint, entries []models.Recommendation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&models.Recommendation{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}
