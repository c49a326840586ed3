// Package session persists search sessions in the key-value store so refine
// calls can reach the saved embedding and the cached original result set.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/snapstyle/snapstyle/internal/db"
	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
	domses "github.com/snapstyle/snapstyle/internal/domain/session"
)

// kvStore is the consumer interface for session persistence (ISP).
type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Repo stores sessions as JSON values with a TTL.
type Repo struct {
	store     kvStore
	keyPrefix string
	ttl       time.Duration
}

// New creates a session repository.
func New(store kvStore, keyPrefix string, ttl time.Duration) *Repo {
	return &Repo{store: store, keyPrefix: keyPrefix, ttl: ttl}
}

// sessionDTO is the persisted shape of a session.
type sessionDTO struct {
	ID             string         `json:"id"`
	Vector         []float32      `json:"vector"`
	Model          string         `json:"model"`
	Original       []candidateDTO `json:"original,omitempty"`
	HasOriginal    bool           `json:"has_original"`
	ActiveBrand    string         `json:"active_brand,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	LastSearchedAt time.Time      `json:"last_searched_at"`
}

// candidateDTO is the persisted shape of a cached result.
type candidateDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      *float64 `json:"price,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	Category   string   `json:"category"`
	Color      string   `json:"color,omitempty"`
	ProductURL string   `json:"product_url,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
}

// Save persists the session under its id.
func (r *Repo) Save(ctx context.Context, s *domses.Session) error {
	dto := sessionDTO{
		ID:             s.ID(),
		Vector:         s.Embedding().Vector,
		Model:          s.Embedding().Model,
		HasOriginal:    s.HasOriginal(),
		ActiveBrand:    s.ActiveBrand(),
		CreatedAt:      s.CreatedAt(),
		LastSearchedAt: s.LastSearchedAt(),
	}
	if s.HasOriginal() {
		dto.Original = make([]candidateDTO, 0, len(s.Original()))
		for _, c := range s.Original() {
			dto.Original = append(dto.Original, toCandidateDTO(c))
		}
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, r.key(s.ID()), data, r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID(), err)
	}
	return nil
}

// Get loads a session by id. Missing or expired sessions return
// domain.ErrSessionNotFound.
func (r *Repo) Get(ctx context.Context, id string) (*domses.Session, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var dto sessionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	var original []catalog.Candidate
	if dto.HasOriginal {
		original = make([]catalog.Candidate, 0, len(dto.Original))
		for _, c := range dto.Original {
			original = append(original, fromCandidateDTO(c))
		}
	}

	emb := domain.Embedding{Vector: dto.Vector, Model: dto.Model}
	return domses.Restore(dto.ID, emb, original, dto.ActiveBrand, dto.CreatedAt, dto.LastSearchedAt), nil
}

// Delete removes a session.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.keyPrefix + "session:" + id
}

func toCandidateDTO(c catalog.Candidate) candidateDTO {
	return candidateDTO{
		ID:         c.ID(),
		Title:      c.Title(),
		Price:      c.Price(),
		Brand:      c.Brand(),
		Category:   string(c.Category()),
		Color:      c.Color(),
		ProductURL: c.ProductURL(),
		ImageURL:   c.ImageURL(),
		Similarity: c.Similarity(),
	}
}

func fromCandidateDTO(dto candidateDTO) catalog.Candidate {
	return catalog.NewCandidate(catalog.CandidateRow{
		ID:         dto.ID,
		Title:      dto.Title,
		Price:      dto.Price,
		Brand:      dto.Brand,
		Category:   dto.Category,
		Color:      dto.Color,
		ProductURL: dto.ProductURL,
		ImageURL:   dto.ImageURL,
		Similarity: dto.Similarity,
	})
}
