package services

import (
	"testing"
	"time"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

func newCleanup(e *testEnv, graceHours int) CleanupService {
	return NewCleanupService(e.db, e.ownership, e.subs, graceHours)
}

func TestCleanupRevokesLapsedGrants(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "lapsed")
	purchased := env.createSong(t, "bought", 0)
	streamedA := env.createSong(t, "streamed-a", 0)
	streamedB := env.createSong(t, "streamed-b", 0)

	env.lapsedSubscription(t, user.ID, 72*time.Hour)
	keep := env.grantOwnership(t, user.ID, purchased.ID, models.ProvenancePurchased)
	grantA := env.grantOwnership(t, user.ID, streamedA.ID, models.ProvenanceSubscription)
	grantB := env.grantOwnership(t, user.ID, streamedB.ID, models.ProvenanceSubscription)

	// Playlist memberships hang off the ownership records and must be
	// revoked together with them.
	playlist := &models.Playlist{UserID: user.ID, Name: models.LikedSongsPlaylistName, IsSystem: true}
	if err := env.db.Create(playlist).Error; err != nil {
		t.Fatalf("failed to create playlist: %v", err)
	}
	for _, record := range []*models.UserSong{keep, grantA, grantB} {
		entry := &models.PlaylistSong{PlaylistID: playlist.ID, UserSongID: record.ID}
		if err := env.db.Create(entry).Error; err != nil {
			t.Fatalf("failed to create membership: %v", err)
		}
	}

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("RunCleanupSweep failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// The purchase and its membership survive, the subscription grants do not.
	record, err := env.ownership.Get(user.ID, purchased.ID)
	if err != nil {
		t.Fatalf("failed to read ownership: %v", err)
	}
	if record == nil {
		t.Error("purchased ownership must survive the sweep")
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("expected 1 surviving ownership record, got %d", n)
	}

	members, err := env.playlists.MemberSongIDs(playlist.ID)
	if err != nil {
		t.Fatalf("MemberSongIDs failed: %v", err)
	}
	if len(members) != 1 || members[0] != purchased.ID {
		t.Errorf("surviving members = %v, want just %s", members, purchased.ID)
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "swept")
	song := env.createSong(t, "once-streamed", 0)
	env.lapsedSubscription(t, user.ID, 72*time.Hour)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenanceSubscription)

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("first sweep removed %d, want 1", removed)
	}

	removed, err = svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second sweep removed %d, want 0", removed)
	}
}

func TestCleanupSkipsResubscribedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "returnee")
	song := env.createSong(t, "still-streamed", 0)

	// Old lapsed subscription plus a new active one: still entitled.
	env.lapsedSubscription(t, user.ID, 30*24*time.Hour)
	env.activeSubscription(t, user.ID)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenanceSubscription)

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("RunCleanupSweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 for a resubscribed user", removed)
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("grant was revoked despite active subscription, %d records left", n)
	}
}

func TestCleanupRespectsGracePeriod(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "grace")
	song := env.createSong(t, "grace-track", 0)

	// Lapsed only a day ago: inside the 48h grace window.
	env.lapsedSubscription(t, user.ID, 24*time.Hour)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenanceSubscription)

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("RunCleanupSweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 inside the grace period", removed)
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("grant revoked inside grace period, %d records left", n)
	}
}

func TestCleanupKeysOnLatestSubscription(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "renewer")
	song := env.createSong(t, "renewed-track", 0)

	// A stale lapse from a previous billing cycle plus the current
	// subscription, which lapsed only hours ago. The grace window runs
	// from the latest end date, so the old row must not trigger revocation.
	env.lapsedSubscription(t, user.ID, 30*24*time.Hour)
	env.lapsedSubscription(t, user.ID, 10*time.Hour)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenanceSubscription)

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("RunCleanupSweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 while the latest subscription is inside the grace window", removed)
	}
	if n := env.ownershipCount(t, user.ID); n != 1 {
		t.Errorf("grant revoked inside grace period, %d records left", n)
	}

	// Once the latest lapse is older than the grace window the stale row
	// no longer shields anything.
	lateSweep := time.Now().Add(60 * time.Hour)
	removed, err = svc.RunCleanupSweep(lateSweep)
	if err != nil {
		t.Fatalf("late RunCleanupSweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("late sweep removed %d, want 1", removed)
	}
}

func TestCleanupWithNothingToDo(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "idle")
	song := env.createSong(t, "idle-track", 0)
	env.activeSubscription(t, user.ID)
	env.grantOwnership(t, user.ID, song.ID, models.ProvenanceSubscription)

	svc := newCleanup(env, 48)

	removed, err := svc.RunCleanupSweep(time.Now())
	if err != nil {
		t.Fatalf("RunCleanupSweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0 when nothing lapsed", removed)
	}
}
