package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

var ErrSongNotFound = errors.New("song not found")

type SongRepository interface {
	CreateSong(song *models.Song) error
	GetSongByID(id string) (*models.Song, error)
	GetSongsByIDs(ids []string) ([]models.Song, error)
	GetAllSongs() ([]models.Song, error)
	GetAllSongsWithLikeStatus(userID uint) ([]models.Song, error)
	ListPlayableSongs() ([]models.Song, error)
	SearchSongs(query string, limit int) ([]models.Song, error)
	UpdateSong(song *models.Song) error
}

type songRepo struct {
	db *gorm.DB
}

func NewSongRepository(db *gorm.DB) SongRepository {
	return &songRepo{db: db}
}

func (r *songRepo) CreateSong(song *models.Song) error {
	return r.db.Create(song).Error
}

func (r *songRepo) GetSongByID(id string) (*models.Song, error) {
	var song models.Song
	err := r.db.First(&song, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &song, nil
}

func (r *songRepo) GetSongsByIDs(ids []string) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}
	var songs []models.Song
	err := r.db.Where("id IN ?", ids).Find(&songs).Error
	return songs, err
}

func (r *songRepo) GetAllSongs() ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Order("created_at DESC").Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (r *songRepo) GetAllSongsWithLikeStatus(userID uint) ([]models.Song, error) {
	songs, err := r.GetAllSongs()
	if err != nil {
		return nil, err
	}

	var likedSongIDs []string
	err = r.db.Model(&models.SongLike{}).
		Where("user_id = ? AND is_like = ?", userID, true).
		Pluck("song_id", &likedSongIDs).Error
	if err != nil {
		return songs, nil
	}

	likedMap := make(map[string]bool, len(likedSongIDs))
	for _, id := range likedSongIDs {
		likedMap[id] = true
	}
	for i := range songs {
		songs[i].IsLiked = likedMap[songs[i].ID]
	}
	return songs, nil
}

// ListPlayableSongs returns active, non-cover songs that carry an audio
// reference. Album covers never count as streamable tracks.
func (r *songRepo) ListPlayableSongs() ([]models.Song, error) {
	var songs []models.Song
	err := r.db.
		Where("active = ?", true).
		Where("is_album_cover = ?", false).
		Where("audio_ref IS NOT NULL AND audio_ref <> ''").
		Find(&songs).Error
	if err != nil {
		return nil, err
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return songs, nil
}

func (r *songRepo) SearchSongs(query string, limit int) ([]models.Song, error) {
	var songs []models.Song
	err := r.db.Where("title ILIKE ? OR artist ILIKE ? OR genre ILIKE ?",
		"%"+query+"%", "%"+query+"%", "%"+query+"%").
		Limit(limit).
		Find(&songs).Error
	return songs, err
}

func (r *songRepo) UpdateSong(song *models.Song) error {
	return r.db.Save(song).Error
}
