package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

// testEnv bundles a throwaway in-memory DB with the repositories the services
// under test need. Each test gets its own named memory database so state never
// leaks between tests.
type testEnv struct {
	db        *gorm.DB
	users     repository.UserRepository
	songs     repository.SongRepository
	likes     repository.LikeRepository
	ownership repository.OwnershipRepository
	playlists repository.PlaylistRepository
	subs      repository.SubscriptionRepository
	recs      repository.RecommendationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Song{},
		&models.SongLike{},
		&models.UserSong{},
		&models.Playlist{},
		&models.PlaylistSong{},
		&models.Subscription{},
		&models.Recommendation{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return &testEnv{
		db:        db,
		users:     repository.NewUserRepository(db),
		songs:     repository.NewSongRepository(db),
		likes:     repository.NewLikeRepository(db),
		ownership: repository.NewOwnershipRepository(db),
		playlists: repository.NewPlaylistRepository(db),
		subs:      repository.NewSubscriptionRepository(db),
		recs:      repository.NewRecommendationRepository(db),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) createSong(t *testing.T, title string, streamCount int64) *models.Song {
	t.Helper()
	audio := "audio/" + title + ".mp3"
	song := &models.Song{
		Title:       title,
		Artist:      "Test Artist",
		Genre:       "Electronic",
		StreamCount: streamCount,
		AudioRef:    &audio,
		Active:      true,
	}
	if err := e.db.Create(song).Error; err != nil {
		t.Fatalf("failed to create song %s: %v", title, err)
	}
	return song
}

func (e *testEnv) createCoverSong(t *testing.T, title string) *models.Song {
	t.Helper()
	song := &models.Song{
		Title:        title,
		Artist:       "Test Artist",
		IsAlbumCover: true,
		Active:       true,
	}
	if err := e.db.Create(song).Error; err != nil {
		t.Fatalf("failed to create cover %s: %v", title, err)
	}
	return song
}

func (e *testEnv) activeSubscription(t *testing.T, userID uint) {
	t.Helper()
	sub := &models.Subscription{
		UserID:    userID,
		Status:    models.SubscriptionActive,
		StartedAt: time.Now().Add(-24 * time.Hour),
	}
	if err := e.db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create subscription: %v", err)
	}
}

func (e *testEnv) lapsedSubscription(t *testing.T, userID uint, endedAgo time.Duration) {
	t.Helper()
	endsAt := time.Now().Add(-endedAgo)
	sub := &models.Subscription{
		UserID:    userID,
		Status:    models.SubscriptionExpired,
		StartedAt: endsAt.Add(-30 * 24 * time.Hour),
		EndsAt:    &endsAt,
	}
	if err := e.db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create lapsed subscription: %v", err)
	}
}

func (e *testEnv) grantOwnership(t *testing.T, userID uint, songID string, provenance models.Provenance) *models.UserSong {
	t.Helper()
	record := &models.UserSong{
		UserID:     userID,
		SongID:     songID,
		Provenance: provenance,
	}
	if err := e.db.Create(record).Error; err != nil {
		t.Fatalf("failed to create ownership: %v", err)
	}
	return record
}

func (e *testEnv) like(t *testing.T, userID uint, songID string) {
	t.Helper()
	if err := e.db.Create(&models.SongLike{UserID: userID, SongID: songID, IsLike: true}).Error; err != nil {
		t.Fatalf("failed to create like: %v", err)
	}
}

func (e *testEnv) dislike(t *testing.T, userID uint, songID string) {
	t.Helper()
	if err := e.db.Create(&models.SongLike{UserID: userID, SongID: songID, IsLike: false}).Error; err != nil {
		t.Fatalf("failed to create dislike: %v", err)
	}
}

func (e *testEnv) ownershipCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(&models.UserSong{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ownership: %v", err)
	}
	return count
}
