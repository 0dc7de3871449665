package services

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/metrics"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

// CleanupService revokes subscription-granted access once a lapsed
// subscription has been out of its grace period. Purchased ownership is never
// touched.
type CleanupService interface {
	RunCleanupSweep(now time.Time) (int, error)
}

type cleanupService struct {
	db            *gorm.DB
	ownershipRepo repository.OwnershipRepository
	subRepo       repository.SubscriptionRepository
	grace         time.Duration
}

func NewCleanupService(
	db *gorm.DB,
	ownershipRepo repository.OwnershipRepository,
	subRepo repository.SubscriptionRepository,
	graceHours int,
) CleanupService {
	return &cleanupService{
		db:            db,
		ownershipRepo: ownershipRepo,
		subRepo:       subRepo,
		grace:         time.Duration(graceHours) * time.Hour,
	}
}

// RunCleanupSweep is idempotent: running it twice back to back removes
// nothing the second time. Each user is handled independently; one user's
// failure never aborts the sweep for the rest.
func (s *cleanupService) RunCleanupSweep(now time.Time) (int, error) {
	cutoff := now.Add(-s.grace)

	userIDs, err := s.subRepo.LapsedUserIDs(cutoff)
	if err != nil {
		return 0, err
	}

	var removed int
	for _, userID := range userIDs {
		n, err := s.revokeUser(userID, now, cutoff)
		if err != nil {
			log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err,
			}).Warn("Cleanup failed for user, continuing sweep")
			continue
		}
		removed += n
	}

	if removed > 0 {
		metrics.CleanupRemovedOwnerships.Add(float64(removed))
		log.WithFields(log.Fields{
			"removed": removed,
			"users":   len(userIDs),
		}).Info("Subscription-lapse cleanup completed")
	}
	return removed, nil
}

func (s *cleanupService) revokeUser(userID uint, now, cutoff time.Time) (int, error) {
	// The user may have resubscribed since the lapse.
	entitled, err := s.subRepo.IsEntitled(userID, now)
	if err != nil {
		return 0, err
	}
	if entitled {
		return 0, nil
	}

	// Stale lapsed rows from earlier cycles don't count. The grace window
	// runs from the end of the most recent subscription.
	current, err := s.subRepo.CurrentSubscription(userID)
	if err != nil {
		return 0, err
	}
	if current == nil || current.EndsAt == nil || !current.EndsAt.Before(cutoff) {
		return 0, nil
	}

	grants, err := s.ownershipRepo.ListByUserProvenance(userID, models.ProvenanceSubscription)
	if err != nil {
		return 0, err
	}
	if len(grants) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(grants))
	for _, g := range grants {
		ids = append(ids, g.ID)
	}

	// Memberships reference the ownership rows, so both go in one
	// transaction.
	var revoked int64
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewPlaylistRepository(tx).DeleteMembershipsByOwnership(ids); err != nil {
			return err
		}
		n, err := repository.NewOwnershipRepository(tx).DeleteByIDs(ids)
		if err != nil {
			return err
		}
		revoked = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(revoked), nil
}
