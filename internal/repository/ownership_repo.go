package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

type OwnershipRepository interface {
	Get(userID uint, songID string) (*models.UserSong, error)
	Create(record *models.UserSong) error
	CreateBatch(records []models.UserSong) error
	SongIDsByUser(userID uint) ([]string, error)
	ListByUserProvenance(userID uint, provenance models.Provenance) ([]models.UserSong, error)
	DeleteByIDs(ids []uint) (int64, error)
}

type ownershipRepo struct {
	db *gorm.DB
}

func NewOwnershipRepository(db *gorm.DB) OwnershipRepository {
	return &ownershipRepo{db: db}
}

func (r *ownershipRepo) Get(userID uint, songID string) (*models.UserSong, error) {
	var record models.UserSong
	err := r.db.Where("user_id = ? AND song_id = ?", userID, songID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create inserts an ownership record. A concurrent insert for the same
// (user, song) is a benign no-op under the uniqueness constraint.
func (r *ownershipRepo) Create(record *models.UserSong) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

// CreateBatch materializes many grants in one insert rather than a loop of
// single creates.
func (r *ownershipRepo) CreateBatch(records []models.UserSong) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}

func (r *ownershipRepo) SongIDsByUser(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.UserSong{}).
		Where("user_id = ?", userID).
		Pluck("song_id", &ids).Error
	if ids == nil {
		ids = []string{}
	}
	return ids, err
}

func (r *ownershipRepo) ListByUserProvenance(userID uint, provenance models.Provenance) ([]models.UserSong, error) {
	var records []models.UserSong
	err := r.db.Where("user_id = ? AND provenance = ?", userID, provenance).Find(&records).Error
	return records, err
}

func (r *ownershipRepo) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.UserSong{})
	return result.RowsAffected, result.Error
}
