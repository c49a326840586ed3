// Package catalog maps index driver rows onto domain candidates.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/snapstyle/snapstyle/internal/db"
	"github.com/snapstyle/snapstyle/internal/domain"
	domcat "github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// store is the consumer interface for catalog queries (ISP).
type store interface {
	SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	SearchVectorFiltered(ctx context.Context, q *db.FilteredVectorQuery) (*db.SearchResult, error)
	ListBrands(ctx context.Context) ([]string, error)
}

// Repo implements the index contracts of usecase/search and usecase/catalog.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates a catalog repository. keyPrefix is stripped from row keys to
// recover catalog item identifiers.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// SearchBaseline runs the vector-only query variant.
func (r *Repo) SearchBaseline(
	ctx context.Context, vector []float32, model string, k int,
) ([]domcat.Candidate, error) {
	sr, err := r.store.SearchVector(ctx, &db.VectorQuery{Vector: vector, Model: model, K: k})
	if err != nil {
		return nil, fmt.Errorf("search baseline: %w", err)
	}
	return r.toCandidates(sr), nil
}

// SearchPriceAware runs the price-aware query variant. A driver rejecting the
// variant surfaces as domain.ErrUnsupportedQueryVariant so callers above the
// repository never see db sentinels.
func (r *Repo) SearchPriceAware(
	ctx context.Context, vector []float32, model string, k int,
	priceMin, priceMax *float64, brand string,
) ([]domcat.Candidate, error) {
	q := &db.FilteredVectorQuery{
		VectorQuery: db.VectorQuery{Vector: vector, Model: model, K: k},
		PriceMin:    priceMin,
		PriceMax:    priceMax,
		Brand:       brand,
	}
	sr, err := r.store.SearchVectorFiltered(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrVariantUnsupported) {
			return nil, fmt.Errorf("search price-aware: %w", domain.ErrUnsupportedQueryVariant)
		}
		return nil, fmt.Errorf("search price-aware: %w", err)
	}
	return r.toCandidates(sr), nil
}

// Brands enumerates distinct brand values for filter population.
func (r *Repo) Brands(ctx context.Context) ([]string, error) {
	brands, err := r.store.ListBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// toCandidates converts driver rows into fully-populated candidates.
func (r *Repo) toCandidates(sr *db.SearchResult) []domcat.Candidate {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	candidates := make([]domcat.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		row := domcat.CandidateRow{
			ID:         strings.TrimPrefix(entry.Key, r.keyPrefix),
			Title:      entry.Fields["title"],
			Brand:      entry.Fields["brand"],
			Category:   entry.Fields["category"],
			Color:      entry.Fields["color"],
			ProductURL: entry.Fields["product_url"],
			ImageURL:   entry.Fields["image_url"],
		}
		if priceStr, ok := entry.Fields["price"]; ok {
			if p, err := strconv.ParseFloat(priceStr, 64); err == nil {
				row.Price = &p
			}
		}
		if entry.HasScore {
			score := entry.Score
			row.Similarity = &score
		}
		candidates = append(candidates, domcat.NewCandidate(row))
	}
	return candidates
}
