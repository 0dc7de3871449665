package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dwarwick/MusicSalesApp-sub000/internal/config"
	"github.com/dwarwick/MusicSalesApp-sub000/internal/models"
)

// SimilarityClient talks to the external similarity service. It is unreliable
// by design: callers must always be able to fall back to a local strategy.
type SimilarityClient interface {
	Recommend(userID uint, limit int, excludeSongIDs []string) ([]models.ScoredSong, error)
	UpsertAffinity(userID uint, songID string, isLike bool, embedding []float64) error
}

// EmbeddingClient produces short text-derived embeddings. Absence never
// blocks affinity sync.
type EmbeddingClient interface {
	Embed(text string) ([]float64, error)
}

type similarityClient struct {
	baseURL string
	client  *http.Client
}

// NewSimilarityClient returns nil when no service URL is configured; the
// recommendation engine treats nil as "local strategies only".
func NewSimilarityClient(cfg *config.Config) SimilarityClient {
	if cfg.SimilarityURL == "" {
		log.Info("Similarity service not configured, external recommendations disabled")
		return nil
	}
	return &similarityClient{
		baseURL: cfg.SimilarityURL,
		client:  &http.Client{Timeout: cfg.SimilarityTimeout},
	}
}

type recommendRequest struct {
	UserID  uint     `json:"user_id"`
	Limit   int      `json:"limit"`
	Exclude []string `json:"exclude_songs"`
}

func (c *similarityClient) Recommend(userID uint, limit int, excludeSongIDs []string) ([]models.ScoredSong, error) {
	payload, err := json.Marshal(recommendRequest{
		UserID:  userID,
		Limit:   limit,
		Exclude: excludeSongIDs,
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.baseURL+"/recommend", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("similarity recommend failed (%d): %s", resp.StatusCode, string(body))
	}

	var pairs []models.ScoredSong
	if err := json.Unmarshal(body, &pairs); err != nil {
		return nil, fmt.Errorf("similarity recommend: bad response: %w", err)
	}
	return pairs, nil
}

type affinityUpsert struct {
	UserID    uint      `json:"user_id"`
	SongID    string    `json:"song_id"`
	IsLike    bool      `json:"is_like"`
	Embedding []float64 `json:"embedding,omitempty"`
}

func (c *similarityClient) UpsertAffinity(userID uint, songID string, isLike bool, embedding []float64) error {
	payload, err := json.Marshal(affinityUpsert{
		UserID:    userID,
		SongID:    songID,
		IsLike:    isLike,
		Embedding: embedding,
	})
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.baseURL+"/affinity", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("affinity upsert failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

type embeddingClient struct {
	baseURL string
	client  *http.Client
}

func NewEmbeddingClient(cfg *config.Config) EmbeddingClient {
	if cfg.EmbeddingURL == "" {
		return nil
	}
	return &embeddingClient{
		baseURL: cfg.EmbeddingURL,
		client:  &http.Client{Timeout: cfg.SimilarityTimeout},
	}
}

func (c *embeddingClient) Embed(text string) ([]float64, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Post(c.baseURL+"/embed", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return result.Embedding, nil
}
