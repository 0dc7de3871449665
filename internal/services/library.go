package services

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

// LibraryService owns the like/dislike state machine and keeps the system
// "Liked Songs" playlist reconciled with it.
type LibraryService interface {
	ToggleLike(userID uint, songID string) (models.LikeState, error)
	ToggleDislike(userID uint, songID string) (models.LikeState, error)
	SyncLikedPlaylist(userID uint) (added, removed int, err error)
}

type libraryService struct {
	db            *gorm.DB
	songRepo      repository.SongRepository
	userRepo      repository.UserRepository
	likeRepo      repository.LikeRepository
	ownershipRepo repository.OwnershipRepository
	playlistRepo  repository.PlaylistRepository
	subRepo       repository.SubscriptionRepository
}

func NewLibraryService(
	db *gorm.DB,
	songRepo repository.SongRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	ownershipRepo repository.OwnershipRepository,
	playlistRepo repository.PlaylistRepository,
	subRepo repository.SubscriptionRepository,
) LibraryService {
	return &libraryService{
		db:            db,
		songRepo:      songRepo,
		userRepo:      userRepo,
		likeRepo:      likeRepo,
		ownershipRepo: ownershipRepo,
		playlistRepo:  playlistRepo,
		subRepo:       subRepo,
	}
}

// ToggleLike advances the per-(user, song) state machine:
// unset -> liked, liked -> unset, disliked -> liked.
func (s *libraryService) ToggleLike(userID uint, songID string) (models.LikeState, error) {
	return s.toggle(userID, songID, true)
}

// ToggleDislike mirrors ToggleLike:
// unset -> disliked, disliked -> unset, liked -> disliked.
func (s *libraryService) ToggleDislike(userID uint, songID string) (models.LikeState, error) {
	return s.toggle(userID, songID, false)
}

func (s *libraryService) toggle(userID uint, songID string, isLike bool) (models.LikeState, error) {
	// Toggling is a mutation, so the referenced song must exist.
	if _, err := s.songRepo.GetSongByID(songID); err != nil {
		return models.LikeStateUnset, err
	}

	like, err := s.likeRepo.GetLike(userID, songID)
	if err != nil {
		return models.LikeStateUnset, err
	}

	switch {
	case like == nil:
		like = &models.SongLike{UserID: userID, SongID: songID, IsLike: isLike}
		if err := s.likeRepo.CreateLike(like); err != nil {
			return models.LikeStateUnset, err
		}
	case like.IsLike == isLike:
		if err := s.likeRepo.DeleteLike(userID, songID); err != nil {
			return like.State(), err
		}
		like = nil
	default:
		like.IsLike = isLike
		if err := s.likeRepo.SaveLike(like); err != nil {
			return like.State(), err
		}
	}

	return like.State(), nil
}

// SyncLikedPlaylist makes the system "Liked Songs" playlist's membership
// equal to the user's current likes that are accessible. Likes the user
// cannot access (no ownership and no entitlement) are skipped silently.
// A second call with no intervening change performs zero writes.
func (s *libraryService) SyncLikedPlaylist(userID uint) (int, int, error) {
	exists, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return 0, 0, err
	}
	if !exists {
		return 0, 0, repository.ErrUserNotFound
	}

	playlist, err := s.playlistRepo.FindSystemPlaylist(userID, models.LikedSongsPlaylistName)
	if err != nil {
		return 0, 0, err
	}
	if playlist == nil {
		playlist = &models.Playlist{
			UserID:   userID,
			Name:     models.LikedSongsPlaylistName,
			IsSystem: true,
		}
		if err := s.playlistRepo.CreatePlaylist(playlist); err != nil {
			return 0, 0, err
		}
	}

	target, err := s.likeRepo.LikedSongIDs(userID)
	if err != nil {
		return 0, 0, err
	}
	targetSet := make(map[string]bool, len(target))
	for _, id := range target {
		targetSet[id] = true
	}

	current, err := s.playlistRepo.MemberSongIDs(playlist.ID)
	if err != nil {
		return 0, 0, err
	}
	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}

	var toAdd []string
	for _, id := range target {
		if !currentSet[id] {
			toAdd = append(toAdd, id)
		}
	}
	var toRemove []string
	for _, id := range current {
		if !targetSet[id] {
			toRemove = append(toRemove, id)
		}
	}

	if len(toAdd) == 0 && len(toRemove) == 0 {
		return 0, 0, nil
	}

	entitled, err := s.subRepo.IsEntitled(userID, time.Now())
	if err != nil {
		return 0, 0, err
	}

	// Additions and removals are one logical unit.
	var added, removed int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txPlaylists := repository.NewPlaylistRepository(tx)

		var entries []models.PlaylistSong
		for _, songID := range toAdd {
			ownership, err := s.resolveOwnership(tx, userID, songID, entitled)
			if err != nil {
				return err
			}
			if ownership == nil {
				// No access and no way to grant it: skip, never fail.
				log.WithFields(log.Fields{
					"user_id": userID,
					"song_id": songID,
				}).Debug("Skipping liked song without access")
				continue
			}
			entries = append(entries, models.PlaylistSong{
				PlaylistID: playlist.ID,
				UserSongID: ownership.ID,
			})
		}
		added, err = txPlaylists.AddMemberships(entries)
		if err != nil {
			return err
		}

		removed, err = txPlaylists.RemoveMembershipsBySongIDs(playlist.ID, toRemove)
		return err
	})
	if err != nil {
		return 0, 0, err
	}

	return int(added), int(removed), nil
}

// resolveOwnership reuses an existing ownership record or, when the user is
// entitled and the song is playable, materializes a subscription grant inside
// the sync transaction. Returns nil when access cannot be established.
func (s *libraryService) resolveOwnership(tx *gorm.DB, userID uint, songID string, entitled bool) (*models.UserSong, error) {
	var record models.UserSong
	err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !entitled {
		return nil, nil
	}

	var song models.Song
	if err := tx.First(&song, "id = ?", songID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !song.Playable() {
		return nil, nil
	}

	grant := models.UserSong{
		UserID:     userID,
		SongID:     songID,
		Provenance: models.ProvenanceSubscription,
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
		return nil, err
	}
	if grant.ID == 0 {
		// Lost a concurrent insert race; read the surviving row.
		if err := tx.Where("user_id = ? AND song_id = ?", userID, songID).First(&grant).Error; err != nil {
			return nil, err
		}
	}
	return &grant, nil
}
