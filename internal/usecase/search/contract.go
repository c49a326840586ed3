package search

import (
	"context"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// Index is the nearest-neighbor query contract. Both variants return
// candidates ordered by descending similarity.
//
// SearchPriceAware is optional: an index without it returns an error
// wrapping domain.ErrUnsupportedQueryVariant and the orchestrator falls
// back to SearchBaseline with in-memory filtering.
type Index interface {
	SearchBaseline(ctx context.Context, vector []float32, model string, k int) ([]catalog.Candidate, error)
	SearchPriceAware(
		ctx context.Context, vector []float32, model string, k int,
		priceMin, priceMax *float64, brand string,
	) ([]catalog.Candidate, error)
}

// CategoryPredictor guesses the garment category of an image embedding.
// Best-effort collaborator: errors degrade to no prediction, never fail a
// search.
type CategoryPredictor interface {
	PredictCategory(ctx context.Context, vector []float32) (catalog.Category, error)
}
