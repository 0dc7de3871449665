package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

// SongLikerCount is a per-song distinct-liker aggregate used by the
// popularity ranking.
type SongLikerCount struct {
	SongID string `gorm:"column:song_id"`
	Likers int64  `gorm:"column:likers"`
}

type LikeRepository interface {
	GetLike(userID uint, songID string) (*models.SongLike, error)
	CreateLike(like *models.SongLike) error
	SaveLike(like *models.SongLike) error
	DeleteLike(userID uint, songID string) error
	LikedSongIDs(userID uint) ([]string, error)
	DislikedSongIDs(userID uint) ([]string, error)
	ListAll() ([]models.SongLike, error)
	NeighborIDs(userID uint, songIDs []string) ([]uint, error)
	LikesByUsers(userIDs []uint) ([]models.SongLike, error)
	DistinctLikerCounts() (map[string]int64, error)
}

type likeRepo struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepo{db: db}
}

func (r *likeRepo) GetLike(userID uint, songID string) (*models.SongLike, error) {
	var like models.SongLike
	err := r.db.Where("user_id = ? AND song_id = ?", userID, songID).First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // unset, not an error
		}
		return nil, err
	}
	return &like, nil
}

func (r *likeRepo) CreateLike(like *models.SongLike) error {
	return r.db.Create(like).Error
}

func (r *likeRepo) SaveLike(like *models.SongLike) error {
	return r.db.Save(like).Error
}

func (r *likeRepo) DeleteLike(userID uint, songID string) error {
	return r.db.Where("user_id = ? AND song_id = ?", userID, songID).
		Delete(&models.SongLike{}).Error
}

func (r *likeRepo) LikedSongIDs(userID uint) ([]string, error) {
	return r.songIDsByState(userID, true)
}

func (r *likeRepo) DislikedSongIDs(userID uint) ([]string, error) {
	return r.songIDsByState(userID, false)
}

func (r *likeRepo) songIDsByState(userID uint, isLike bool) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.SongLike{}).
		Where("user_id = ? AND is_like = ?", userID, isLike).
		Pluck("song_id", &ids).Error
	if ids == nil {
		ids = []string{}
	}
	return ids, err
}

func (r *likeRepo) ListAll() ([]models.SongLike, error) {
	var likes []models.SongLike
	err := r.db.Order("id").Find(&likes).Error
	return likes, err
}

// NeighborIDs returns the other users who liked at least one of the given
// songs.
func (r *likeRepo) NeighborIDs(userID uint, songIDs []string) ([]uint, error) {
	if len(songIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	err := r.db.Model(&models.SongLike{}).
		Distinct("user_id").
		Where("song_id IN ? AND is_like = ? AND user_id <> ?", songIDs, true, userID).
		Pluck("user_id", &ids).Error
	if ids == nil {
		ids = []uint{}
	}
	return ids, err
}

func (r *likeRepo) LikesByUsers(userIDs []uint) ([]models.SongLike, error) {
	if len(userIDs) == 0 {
		return []models.SongLike{}, nil
	}
	var likes []models.SongLike
	err := r.db.Where("user_id IN ? AND is_like = ?", userIDs, true).Find(&likes).Error
	return likes, err
}

func (r *likeRepo) DistinctLikerCounts() (map[string]int64, error) {
	var rows []SongLikerCount
	err := r.db.Model(&models.SongLike{}).
		Select("song_id, COUNT(DISTINCT user_id) AS likers").
		Where("is_like = ?", true).
		Group("song_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SongID] = row.Likers
	}
	return counts, nil
}
