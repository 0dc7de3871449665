package services

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

// AccessService is the authoritative yes/no on whether a user may stream a
// song. It reconciles purchases, subscription entitlement and catalog state,
// lazily materializing subscription-granted ownership.
type AccessService interface {
	CanAccess(userID uint, songID string) (bool, error)
	ListAccessibleCatalog(userID uint, excludePlaylistID string) ([]models.Song, error)
}

type accessService struct {
	songRepo      repository.SongRepository
	userRepo      repository.UserRepository
	ownershipRepo repository.OwnershipRepository
	playlistRepo  repository.PlaylistRepository
	subRepo       repository.SubscriptionRepository
}

func NewAccessService(
	songRepo repository.SongRepository,
	userRepo repository.UserRepository,
	ownershipRepo repository.OwnershipRepository,
	playlistRepo repository.PlaylistRepository,
	subRepo repository.SubscriptionRepository,
) AccessService {
	return &accessService{
		songRepo:      songRepo,
		userRepo:      userRepo,
		ownershipRepo: ownershipRepo,
		playlistRepo:  playlistRepo,
		subRepo:       subRepo,
	}
}

// CanAccess: an existing ownership record always wins; otherwise an
// unplayable song is a plain "no"; otherwise current entitlement materializes
// a subscription-granted record. Only a nonexistent song or user id is an
// error, every other outcome is a boolean.
func (s *accessService) CanAccess(userID uint, songID string) (bool, error) {
	record, err := s.ownershipRepo.Get(userID, songID)
	if err != nil {
		return false, err
	}
	if record != nil {
		return true, nil
	}

	song, err := s.songRepo.GetSongByID(songID)
	if err != nil {
		return false, err
	}
	if !song.Playable() {
		return false, nil
	}

	exists, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, repository.ErrUserNotFound
	}

	entitled, err := s.subRepo.IsEntitled(userID, time.Now())
	if err != nil {
		return false, err
	}
	if !entitled {
		return false, nil
	}

	grant := &models.UserSong{
		UserID:     userID,
		SongID:     songID,
		Provenance: models.ProvenanceSubscription,
	}
	if err := s.ownershipRepo.Create(grant); err != nil {
		return false, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"song_id": songID,
	}).Debug("Materialized subscription-granted ownership")
	return true, nil
}

// ListAccessibleCatalog is the bulk variant of CanAccess: when the user is
// entitled it synthesizes subscription grants for every playable, non-cover
// song not yet owned and not already queued in the excluded playlist, in one
// batch insert, then returns all accessible songs outside that playlist.
// Accessibility follows ownership, so a purchased track stays listed even
// after the catalog retires it.
func (s *accessService) ListAccessibleCatalog(userID uint, excludePlaylistID string) ([]models.Song, error) {
	exists, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrUserNotFound
	}

	playable, err := s.songRepo.ListPlayableSongs()
	if err != nil {
		return nil, err
	}

	ownedIDs, err := s.ownershipRepo.SongIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	memberIDs, err := s.playlistRepo.MemberSongIDs(excludePlaylistID)
	if err != nil {
		return nil, err
	}
	queued := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		queued[id] = true
	}

	entitled, err := s.subRepo.IsEntitled(userID, time.Now())
	if err != nil {
		return nil, err
	}

	var grants []models.UserSong
	if entitled {
		for i := range playable {
			id := playable[i].ID
			if owned[id] || queued[id] {
				continue
			}
			grants = append(grants, models.UserSong{
				UserID:     userID,
				SongID:     id,
				Provenance: models.ProvenanceSubscription,
			})
			owned[id] = true
		}
		if err := s.ownershipRepo.CreateBatch(grants); err != nil {
			return nil, err
		}
		if len(grants) > 0 {
			log.WithFields(log.Fields{
				"user_id": userID,
				"granted": len(grants),
			}).Info("Materialized subscription grants for catalog listing")
		}
	}

	ids := make([]string, 0, len(owned))
	for _, id := range ownedIDs {
		if !queued[id] {
			ids = append(ids, id)
		}
	}
	for _, grant := range grants {
		ids = append(ids, grant.SongID)
	}
	return s.songRepo.GetSongsByIDs(ids)
}
