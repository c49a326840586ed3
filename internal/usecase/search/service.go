// Package search orchestrates visual similarity search over the product
// catalog: shape validation, candidate pooling, filtering, and match tiering.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
	domsearch "github.com/snapstyle/snapstyle/internal/domain/search"
	"github.com/snapstyle/snapstyle/internal/metrics"
)

const (
	variantBaseline   = "baseline"
	variantPriceAware = "price_aware"
)

// Config holds the orchestrator tuning knobs.
type Config struct {
	// Dimensions is the index vector dimension; query embeddings of any
	// other length are rejected before touching the index.
	Dimensions int
	// PoolSize is the candidate over-fetch per query. Must be >= any topK
	// so post-filtering still fills the page.
	PoolSize int
	// DefaultTopK caps the returned tier when the caller does not ask for
	// a specific page size.
	DefaultTopK int
	// MaxTopK bounds caller-requested page sizes; 0 means no bound.
	MaxTopK int
	// Thresholds drives the strong/weak/none tiering.
	Thresholds domsearch.Thresholds
}

// Query is one similarity search request.
type Query struct {
	Embedding domain.Embedding
	Criteria  domsearch.Criteria
	// TopK trims the returned tier; 0 means the configured default.
	TopK int
}

// Outcome is the tiered result of a search.
type Outcome struct {
	// Results is the best tier (strong when any, else weak), trimmed to topK.
	Results []catalog.Candidate
	Status  domsearch.Status
	// PredictedCategory is a best-effort garment guess, empty when the
	// predictor is absent or failed.
	PredictedCategory catalog.Category
}

// Service runs similarity searches against a candidate index.
type Service struct {
	index     Index
	predictor CategoryPredictor
	cfg       Config
	logger    *zap.Logger
}

// New creates a search orchestrator. predictor may be nil.
func New(index Index, predictor CategoryPredictor, cfg Config, logger *zap.Logger) *Service {
	return &Service{index: index, predictor: predictor, cfg: cfg, logger: logger}
}

// Search validates the query embedding, fetches a candidate pool, applies
// the criteria, and classifies the survivors into a match tier.
//
// Price bounds select the price-aware index variant; an index lacking it
// degrades to the baseline variant with all filtering done in memory. A
// shape-mismatched embedding fails fast without any index round trip.
func (s *Service) Search(ctx context.Context, q Query) (*Outcome, error) {
	if err := q.Embedding.Validate(s.cfg.Dimensions); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	start := time.Now()
	pool, variant, serverFiltered, err := s.fetchPool(ctx, q)
	metrics.SearchDuration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(variant, "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(variant, "ok").Inc()

	predicted := s.predictCategory(ctx, q.Embedding.Vector)

	kept := s.applyCriteria(pool, q.Criteria, predicted, serverFiltered)
	s.countUnscored(kept)
	kept = domsearch.Filter(kept, s.cfg.Thresholds.Floor(), len(kept))

	class := domsearch.Categorize(kept, s.cfg.Thresholds)
	metrics.SearchMatchStatusTotal.WithLabelValues(string(class.Status)).Inc()

	results := class.Best()
	if topK := s.topK(q.TopK); len(results) > topK {
		results = results[:topK]
	}
	return &Outcome{Results: results, Status: class.Status, PredictedCategory: predicted}, nil
}

// fetchPool picks the query variant and over-fetches PoolSize candidates.
// serverFiltered reports whether price and brand were already narrowed by
// the index, so applyCriteria does not need to redo them.
func (s *Service) fetchPool(ctx context.Context, q Query) (
	pool []catalog.Candidate, variant string, serverFiltered bool, err error,
) {
	vec, model := q.Embedding.Vector, q.Embedding.Model
	if !q.Criteria.HasPriceBounds() {
		pool, err = s.index.SearchBaseline(ctx, vec, model, s.cfg.PoolSize)
		return pool, variantBaseline, false, err
	}

	pool, err = s.index.SearchPriceAware(
		ctx, vec, model, s.cfg.PoolSize,
		q.Criteria.PriceMin(), q.Criteria.PriceMax(), q.Criteria.Brand(),
	)
	if err == nil {
		return pool, variantPriceAware, true, nil
	}
	if !errors.Is(err, domain.ErrUnsupportedQueryVariant) {
		return nil, variantPriceAware, false, err
	}

	metrics.SearchVariantFallbacksTotal.Inc()
	s.logger.Info("price-aware variant unsupported, falling back to baseline",
		zap.Error(err))
	pool, err = s.index.SearchBaseline(ctx, vec, model, s.cfg.PoolSize)
	return pool, variantBaseline, false, err
}

// applyCriteria narrows the pool by brand, price, and category. Price and
// brand are skipped when the index already applied them. The category filter
// targets the explicit criteria category, else the predicted one; a target of
// Other disables it so a wrong guess never empties the page. Rows from a
// server-filtered pool that omitted category pass rather than fail the filter.
func (s *Service) applyCriteria(
	pool []catalog.Candidate, crit domsearch.Criteria,
	predicted catalog.Category, serverFiltered bool,
) []catalog.Candidate {
	target := crit.Category()
	if !crit.HasCategory() {
		target = predicted
	}
	filterCategory := target != "" && target != catalog.Other

	kept := make([]catalog.Candidate, 0, len(pool))
	for i := range pool {
		c := &pool[i]
		if !serverFiltered {
			if crit.HasBrand() && !crit.MatchesBrand(c.Brand()) {
				continue
			}
			if crit.HasPriceBounds() && !crit.MatchesPrice(c.Price()) {
				continue
			}
		}
		if filterCategory && c.Category() != target {
			// Server-filtered rows may carry no category at all; an absent
			// value normalizes to Other and must not empty the pool.
			if !(serverFiltered && c.Category() == catalog.Other) {
				continue
			}
		}
		kept = append(kept, *c)
	}
	return kept
}

// predictCategory is best-effort: a nil predictor or a failed call yields no
// prediction and never fails the search.
func (s *Service) predictCategory(ctx context.Context, vec []float32) catalog.Category {
	if s.predictor == nil {
		return ""
	}
	cat, err := s.predictor.PredictCategory(ctx, vec)
	if err != nil {
		s.logger.Debug("category prediction failed", zap.Error(err))
		return ""
	}
	return cat
}

func (s *Service) countUnscored(pool []catalog.Candidate) {
	n := 0
	for i := range pool {
		if !pool[i].HasSimilarity() {
			n++
		}
	}
	if n > 0 {
		metrics.SearchUnscoredCandidatesTotal.Add(float64(n))
		s.logger.Debug("retained unscored candidates", zap.Int("count", n))
	}
}

func (s *Service) topK(requested int) int {
	k := s.cfg.DefaultTopK
	if requested > 0 {
		k = requested
	}
	if s.cfg.MaxTopK > 0 && k > s.cfg.MaxTopK {
		k = s.cfg.MaxTopK
	}
	return k
}
