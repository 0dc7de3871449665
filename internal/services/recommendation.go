package services

import (
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/config"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/metrics"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/repository"
)

const (
	// MaxRecommendations caps every generated set.
	MaxRecommendations = 20

	// RecommendationTTL is how long a generated set is served from cache.
	RecommendationTTL = 24 * time.Hour
)

// RecommendationService produces ranked, cached, per-user recommendation
// sets via a two-variant strategy: the external similarity service when
// configured and healthy, a local graph/popularity ranking otherwise. The
// fallback never surfaces an error to the caller.
type RecommendationService interface {
	GetRecommendations(userID uint) ([]models.Recommendation, error)
	GenerateRecommendations(userID uint) ([]models.Recommendation, error)
	HasFreshRecommendations(userID uint) (bool, error)
	SyncAffinityData() (exported, failed int, err error)
}

type recommendationService struct {
	songRepo   repository.SongRepository
	userRepo   repository.UserRepository
	likeRepo   repository.LikeRepository
	recRepo    repository.RecommendationRepository
	similarity SimilarityClient // nil when not configured
	embedder   EmbeddingClient  // nil when not configured
	cfg        *config.Config
}

func NewRecommendationService(
	songRepo repository.SongRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	recRepo repository.RecommendationRepository,
	similarity SimilarityClient,
	embedder EmbeddingClient,
	cfg *config.Config,
) RecommendationService {
	return &recommendationService{
		songRepo:   songRepo,
		userRepo:   userRepo,
		likeRepo:   likeRepo,
		recRepo:    recRepo,
		similarity: similarity,
		embedder:   embedder,
		cfg:        cfg,
	}
}

// candidate is an intermediate (song, score) holder; stream count and id
// ride along for the deterministic tie-break.
type candidate struct {
	songID      string
	score       float64
	streamCount int64
}

func (s *recommendationService) GetRecommendations(userID uint) ([]models.Recommendation, error) {
	if !s.cfg.RecsAlwaysRegenerate {
		fresh, err := s.HasFreshRecommendations(userID)
		if err != nil {
			return nil, err
		}
		if fresh {
			return s.recRepo.ListByUser(userID)
		}
	}
	return s.GenerateRecommendations(userID)
}

func (s *recommendationService) HasFreshRecommendations(userID uint) (bool, error) {
	generatedAt, err := s.recRepo.LatestGeneratedAt(userID)
	if err != nil {
		return false, err
	}
	if generatedAt == nil {
		return false, nil
	}
	return time.Since(*generatedAt) < RecommendationTTL, nil
}

func (s *recommendationService) GenerateRecommendations(userID uint) ([]models.Recommendation, error) {
	exists, err := s.userRepo.ExistsByID(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repository.ErrUserNotFound
	}

	liked, err := s.likeRepo.LikedSongIDs(userID)
	if err != nil {
		return nil, err
	}
	disliked, err := s.likeRepo.DislikedSongIDs(userID)
	if err != nil {
		return nil, err
	}

	var candidates []candidate
	if s.similarity != nil {
		pairs, err := s.similarity.Recommend(userID, MaxRecommendations, disliked)
		if err != nil || len(pairs) == 0 {
			// External failure is recovered locally, never propagated.
			log.WithFields(log.Fields{
				"user_id": userID,
				"error":   err,
			}).Warn("Similarity service unavailable, falling back to local strategy")
			metrics.SimilarityFallbacks.Inc()
		} else {
			for _, pair := range pairs {
				candidates = append(candidates, candidate{songID: pair.SongID, score: pair.Score})
			}
		}
	}

	if len(candidates) == 0 {
		candidates, err = s.localCandidates(userID, liked, disliked)
		if err != nil {
			return nil, err
		}
	}

	// Revalidate every candidate against the catalog, whichever strategy
	// produced it. External ids are never trusted without this check.
	survivors, err := s.revalidate(candidates)
	if err != nil {
		return nil, err
	}
	if len(survivors) > MaxRecommendations {
		survivors = survivors[:MaxRecommendations]
	}

	now := time.Now()
	entries := make([]models.Recommendation, 0, len(survivors))
	for i, c := range survivors {
		entries = append(entries, models.Recommendation{
			UserID:      userID,
			SongID:      c.songID,
			Position:    i + 1,
			Score:       c.score,
			GeneratedAt: now,
		})
	}

	if err := s.recRepo.ReplaceForUser(userID, entries); err != nil {
		return nil, err
	}

	metrics.RecommendationsGenerated.Inc()
	log.WithFields(log.Fields{
		"user_id": userID,
		"count":   len(entries),
	}).Info("Generated recommendation set")

	return entries, nil
}

// localCandidates implements the local strategy: neighbor-overlap ranking
// when the user has likes and neighbors exist, popularity ranking otherwise,
// with popularity fill whenever the neighbor ranking comes up short.
func (s *recommendationService) localCandidates(userID uint, liked, disliked []string) ([]candidate, error) {
	exclude := make(map[string]bool, len(liked)+len(disliked))
	for _, id := range liked {
		exclude[id] = true
	}
	for _, id := range disliked {
		exclude[id] = true
	}

	if len(liked) == 0 {
		return s.popularityCandidates(exclude, MaxRecommendations)
	}

	neighbors, err := s.likeRepo.NeighborIDs(userID, liked)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return s.popularityCandidates(exclude, MaxRecommendations)
	}

	neighborLikes, err := s.likeRepo.LikesByUsers(neighbors)
	if err != nil {
		return nil, err
	}

	// Distinct neighbors per candidate song.
	likersBySong := make(map[string]map[uint]struct{})
	for _, l := range neighborLikes {
		if exclude[l.SongID] {
			continue
		}
		if likersBySong[l.SongID] == nil {
			likersBySong[l.SongID] = make(map[uint]struct{})
		}
		likersBySong[l.SongID][l.UserID] = struct{}{}
	}

	songIDs := make([]string, 0, len(likersBySong))
	for id := range likersBySong {
		songIDs = append(songIDs, id)
	}
	songs, err := s.songRepo.GetSongsByIDs(songIDs)
	if err != nil {
		return nil, err
	}
	streamCounts := make(map[string]int64, len(songs))
	for i := range songs {
		streamCounts[songs[i].ID] = songs[i].StreamCount
	}

	candidates := make([]candidate, 0, len(likersBySong))
	for id, likers := range likersBySong {
		candidates = append(candidates, candidate{
			songID:      id,
			score:       float64(len(likers)),
			streamCount: streamCounts[id],
		})
	}
	sortCandidates(candidates)

	if len(candidates) >= MaxRecommendations {
		return candidates[:MaxRecommendations], nil
	}

	// Pad with popularity results, local results first.
	fillExclude := make(map[string]bool, len(exclude)+len(candidates))
	for id := range exclude {
		fillExclude[id] = true
	}
	for _, c := range candidates {
		fillExclude[c.songID] = true
	}
	fill, err := s.popularityCandidates(fillExclude, MaxRecommendations-len(candidates))
	if err != nil {
		return nil, err
	}
	return append(candidates, fill...), nil
}

// popularityCandidates ranks the playable catalog by
// 2 x distinct likers + stream count, ties broken by higher stream count
// then ascending song id so repeated runs order identically.
func (s *recommendationService) popularityCandidates(exclude map[string]bool, limit int) ([]candidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	songs, err := s.songRepo.ListPlayableSongs()
	if err != nil {
		return nil, err
	}
	likerCounts, err := s.likeRepo.DistinctLikerCounts()
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(songs))
	for i := range songs {
		if exclude[songs[i].ID] {
			continue
		}
		candidates = append(candidates, candidate{
			songID:      songs[i].ID,
			score:       float64(2*likerCounts[songs[i].ID] + songs[i].StreamCount),
			streamCount: songs[i].StreamCount,
		})
	}
	sortCandidates(candidates)

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func sortCandidates(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].streamCount != candidates[j].streamCount {
			return candidates[i].streamCount > candidates[j].streamCount
		}
		return candidates[i].songID < candidates[j].songID
	})
}

// revalidate keeps only candidates that exist in the catalog and are playable
// non-cover tracks, preserving rank order.
func (s *recommendationService) revalidate(candidates []candidate) ([]candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.songID)
	}
	songs, err := s.songRepo.GetSongsByIDs(ids)
	if err != nil {
		return nil, err
	}
	playable := make(map[string]bool, len(songs))
	for i := range songs {
		if songs[i].Playable() {
			playable[songs[i].ID] = true
		}
	}

	survivors := candidates[:0]
	for _, c := range candidates {
		if playable[c.songID] {
			survivors = append(survivors, c)
		}
	}
	return survivors, nil
}

// SyncAffinityData exports the whole like ledger to the similarity service,
// optionally enriched with text embeddings. Per-row failures are logged and
// skipped; the batch always runs to completion.
func (s *recommendationService) SyncAffinityData() (int, int, error) {
	if s.similarity == nil {
		log.Info("Similarity service not configured, skipping affinity sync")
		return 0, 0, nil
	}

	likes, err := s.likeRepo.ListAll()
	if err != nil {
		return 0, 0, err
	}
	if len(likes) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.SongID)
	}
	songs, err := s.songRepo.GetSongsByIDs(ids)
	if err != nil {
		return 0, 0, err
	}
	songByID := make(map[string]models.Song, len(songs))
	for i := range songs {
		songByID[songs[i].ID] = songs[i]
	}

	var exported, failed int
	for _, like := range likes {
		var embedding []float64
		if s.embedder != nil {
			if song, ok := songByID[like.SongID]; ok {
				text := strings.TrimSpace(song.Title + " " + song.Artist + " " + song.Genre)
				emb, err := s.embedder.Embed(text)
				if err != nil {
					log.WithFields(log.Fields{
						"song_id": like.SongID,
						"error":   err,
					}).Warn("Embedding failed, exporting affinity without it")
				} else {
					embedding = emb
				}
			}
		}

		if err := s.similarity.UpsertAffinity(like.UserID, like.SongID, like.IsLike, embedding); err != nil {
			failed++
			log.WithFields(log.Fields{
				"user_id": like.UserID,
				"song_id": like.SongID,
				"error":   err,
			}).Warn("Affinity upsert failed, continuing batch")
			continue
		}
		exported++
		metrics.AffinityRowsExported.Inc()
	}

	log.WithFields(log.Fields{
		"exported": exported,
		"failed":   failed,
	}).Info("Affinity sync completed")
	return exported, failed, nil
}
