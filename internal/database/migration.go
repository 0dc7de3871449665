package database

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

func AutoMigrate() error {
	tables := []interface{}{
		&models.User{},
		&models.Song{},
		&models.SongLike{},
		&models.UserSong{},
		&models.Playlist{},
		&models.PlaylistSong{},
		&models.Subscription{},
		&models.Recommendation{},
	}

	for _, table := range tables {
		if err := DB.AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
	}

	log.Info("✅ Database migration completed")
	return nil
}

func RunMigrations() {
	if err := AutoMigrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
}
