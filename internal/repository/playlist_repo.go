package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

var ErrPlaylistNotFound = errors.New("playlist not found")

type PlaylistRepository interface {
	GetPlaylistByID(id string) (*models.Playlist, error)
	FindSystemPlaylist(userID uint, name string) (*models.Playlist, error)
	CreatePlaylist(playlist *models.Playlist) error
	ListByUser(userID uint) ([]models.Playlist, error)
	MemberSongIDs(playlistID string) ([]string, error)
	AddMemberships(entries []models.PlaylistSong) (int64, error)
	RemoveMembershipsBySongIDs(playlistID string, songIDs []string) (int64, error)
	DeleteMembershipsByOwnership(userSongIDs []uint) (int64, error)
}

type playlistRepo struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepo{db: db}
}

func (r *playlistRepo) GetPlaylistByID(id string) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.First(&playlist, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepo) FindSystemPlaylist(userID uint, name string) (*models.Playlist, error) {
	var playlist models.Playlist
	err := r.db.Where("user_id = ? AND name = ? AND is_system = ?", userID, name, true).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *playlistRepo) CreatePlaylist(playlist *models.Playlist) error {
	return r.db.Create(playlist).Error
}

func (r *playlistRepo) ListByUser(userID uint) ([]models.Playlist, error) {
	var playlists []models.Playlist
	err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&playlists).Error
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	return playlists, err
}

// MemberSongIDs resolves a playlist's membership rows to the song ids behind
// their ownership records.
func (r *playlistRepo) MemberSongIDs(playlistID string) ([]string, error) {
	if playlistID == "" {
		return []string{}, nil
	}
	var ids []string
	err := r.db.Model(&models.PlaylistSong{}).
		Joins("JOIN user_songs ON user_songs.id = playlist_songs.user_song_id").
		Where("playlist_songs.playlist_id = ?", playlistID).
		Pluck("user_songs.song_id", &ids).Error
	if ids == nil {
		ids = []string{}
	}
	return ids, err
}

// AddMemberships inserts membership rows; duplicates under the
// (playlist, ownership) uniqueness constraint are silently skipped. Returns
// the number of rows actually written.
func (r *playlistRepo) AddMemberships(entries []models.PlaylistSong) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries)
	return result.RowsAffected, result.Error
}

func (r *playlistRepo) RemoveMembershipsBySongIDs(playlistID string, songIDs []string) (int64, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	ownershipIDs := r.db.Model(&models.UserSong{}).
		Select("id").
		Where("song_id IN ?", songIDs)
	result := r.db.Where("playlist_id = ? AND user_song_id IN (?)", playlistID, ownershipIDs).
		Delete(&models.PlaylistSong{})
	return result.RowsAffected, result.Error
}

func (r *playlistRepo) DeleteMembershipsByOwnership(userSongIDs []uint) (int64, error) {
	if len(userSongIDs) == 0 {
		return 0, nil
	}
	result := r.db.Where("user_song_id IN ?", userSongIDs).Delete(&models.PlaylistSong{})
	return result.RowsAffected, result.Error
}
