package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

func newAccessService(e *testEnv) AccessService {
	return NewAccessService(e.songs, e.users, e.ownership, e.playlists, e.subs)
}

func TestCanAccessPurchasedSong(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "buyer")
	song := env.createSong(t, "owned-track", 10)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenancePurchased)

	svc := newAccessService(env)

	allowed, err := svc.CanAccess(user.ID, song.ID)
	if err != nil {
		t.Fatalf("CanAccess failed: %v", err)
	}
	if !allowed {
		t.Error("expected access for purchased song")
	}
}

func TestCanAccessDeniedWithoutEntitlement(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "freeloader")
	song := env.createSong(t, "unowned-track", 10)

	svc := newAccessService(env)

	allowed, err := svc.CanAccess(user.ID, song.ID)
	if err != nil {
		t.Fatalf("CanAccess failed: %v", err)
	}
	if allowed {
		t.Error("expected denial without ownership or subscription")
	}
	if n := env.ownershipCount(t, user.ID); n != 0 {
		t.Errorf("denial must not create ownership, got %d records", n)
	}
}

func TestCanAccessEntitledMaterializesGrant(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "subscriber")
	song := env.createSong(t, "streamable", 10)
	env.activeSubscription(t, user.ID)

	svc := newAccessService(env)

	allowed, err := svc.CanAccess(user.ID, song.ID)
	if err != nil {
		t.Fatalf("CanAccess failed: %v", err)
	}
	if !allowed {
		t.Fatal("expected access under active subscription")
	}

	record, err := env.ownership.Get(user.ID, song.ID)
	if err != nil {
		t.Fatalf("failed to read ownership: %v", err)
	}
	if record == nil {
		t.Fatal("expected a materialized ownership record")
	}
	if record.Provenance != models.ProvenanceSubscription {
		t.Errorf("provenance = %q, want %q", record.Provenance, models.ProvenanceSubscription)
	}

	// Repeating the check reuses the grant, it never duplicates it.
	if _, err := svc.CanAccess(user.ID, song.ID); err != nil {
		t.Fatalf("second CanAccess failed: %v", err)
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("expected exactly one ownership record, got %d", n)
	}
}

func TestCanAccessUnplayableSong(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "subscriber2")
	cover := env.createCoverSong(t, "album-cover")
	env.activeSubscription(t, user.ID)

	svc := newAccessService(env)

	allowed, err := svc.CanAccess(user.ID, cover.ID)
	if err != nil {
		t.Fatalf("CanAccess failed: %v", err)
	}
	if allowed {
		t.Error("album covers must never be streamable")
	}
	if n := env.ownershipCount(t, user.ID); n != 0 {
		t.Errorf("no grant should exist for unplayable song, got %d", n)
	}
}

func TestCanAccessUnknownSong(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "curious")

	svc := newAccessService(env)

	_, err := svc.CanAccess(user.ID, uuid.NewString())
	if !errors.Is(err, repository.ErrSongNotFound) {
		t.Errorf("expected ErrSongNotFound, got %v", err)
	}
}

func TestCanAccessUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	song := env.createSong(t, "lonely-track", 0)

	svc := newAccessService(env)

	_, err := svc.CanAccess(9999, song.ID)
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccessibleCatalogForSubscriber(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "catalog-user")
	env.activeSubscription(t, user.ID)

	env.createSong(t, "track-a", 100)
	env.createSong(t, "track-b", 50)
	env.createSong(t, "track-c", 10)
	env.createCoverSong(t, "cover-art")

	svc := newAccessService(env)

	songs, err := svc.ListAccessibleCatalog(user.ID, "")
	if err != nil {
		t.Fatalf("ListAccessibleCatalog failed: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 accessible songs, got %d", len(songs))
	}
	for _, s := range songs {
		if s.IsAlbumCover {
			t.Errorf("cover %q leaked into accessible catalog", s.Title)
		}
	}

	// Every playable song got a subscription grant, the cover did not.
	if n := env.ownershipCount(t, user.ID); n != 3 {
		t.Errorf("expected 3 materialized grants, got %d", n)
	}
	var subGrants int64
	env.db.Model(&models.UserSong{}).
		Where("user_id = ? AND provenance = ?", user.ID, models.ProvenanceSubscription).
		Count(&subGrants)
	if subGrants != 3 {
		t.Errorf("expected 3 subscription-provenance grants, got %d", subGrants)
	}
}

func TestAccessibleCatalogWithoutSubscription(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "purchaser")
	owned := env.createSong(t, "bought-track", 20)
	env.createSong(t, "other-track", 30)
	env.grantOwnership(t, user.ID, owned.ID, models.ProvenancePurchased)

	svc := newAccessService(env)

	songs, err := svc.ListAccessibleCatalog(user.ID, "")
	if err != nil {
		t.Fatalf("ListAccessibleCatalog failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected only purchased song, got %d songs", len(songs))
	}
	if songs[0].ID != owned.ID {
		t.Errorf("accessible song = %s, want %s", songs[0].ID, owned.ID)
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("no grants should materialize without entitlement, got %d records", n)
	}
}

func TestAccessibleCatalogExcludesQueuedPlaylist(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "queue-user")
	env.activeSubscription(t, user.ID)

	queued := env.createSong(t, "queued-track", 5)
	env.createSong(t, "free-track", 5)

	record := env.grantOwnership(t, user.ID, queued.ID, models.ProvenancePurchased)
	playlist := &models.Playlist{UserID: user.ID, Name: "Queue"}
	if err := env.db.Create(playlist).Error; err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	if err := env.db.Create(&models.PlaylistSong{PlaylistID: playlist.ID, UserSongID: record.ID}).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}

	svc := newAccessService(env)

	songs, err := svc.ListAccessibleCatalog(user.ID, playlist.ID)
	if err != nil {
		t.Fatalf("ListAccessibleCatalog failed: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song outside the queue, got %d", len(songs))
	}
	if songs[0].ID == queued.ID {
		t.Error("queued song must be excluded from the listing")
	}
}

func TestAccessibleCatalogKeepsRetiredOwnedSongs(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "archivist")
	song := env.createSong(t, "retired-track", 0)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenancePurchased)

	// The catalog retires the track after the purchase. Both resolver
	// entry points still honor the ownership record.
	if err := env.db.Model(&models.Song{}).
		Where("id = ?", song.ID).
		Update("active", false).Error; err != nil {
		t.Fatalf("failed to retire song: %v", err)
	}

	svc := newAccessService(env)

	allowed, err := svc.CanAccess(user.ID, song.ID)
	if err != nil {
		t.Fatalf("CanAccess failed: %v", err)
	}
	if !allowed {
		t.Error("purchased song must stay accessible after retirement")
	}

	songs, err := svc.ListAccessibleCatalog(user.ID, "")
	if err != nil {
		t.Fatalf("ListAccessibleCatalog failed: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != song.ID {
		t.Errorf("catalog = %v, want the retired purchased song", songs)
	}
}

func TestAccessibleCatalogUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	env.createSong(t, "some-track", 0)

	svc := newAccessService(env)

	_, err := svc.ListAccessibleCatalog(424242, "")
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
