package search

import (
	"context"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// mockIndex returns canned candidate pools and records calls per variant.
type mockIndex struct {
	baseline      []catalog.Candidate
	priceAware    []catalog.Candidate
	baselineErr   error
	priceAwareErr error
	baselineCalls int
	priceCalls    int
	lastK         int
	lastBrand     string
	lastPriceMin  *float64
	lastPriceMax  *float64
}

func (m *mockIndex) SearchBaseline(
	_ context.Context, _ []float32, _ string, k int,
) ([]catalog.Candidate, error) {
	m.baselineCalls++
	m.lastK = k
	if m.baselineErr != nil {
		return nil, m.baselineErr
	}
	return m.baseline, nil
}

func (m *mockIndex) SearchPriceAware(
	_ context.Context, _ []float32, _ string, k int,
	priceMin, priceMax *float64, brand string,
) ([]catalog.Candidate, error) {
	m.priceCalls++
	m.lastK = k
	m.lastPriceMin, m.lastPriceMax, m.lastBrand = priceMin, priceMax, brand
	if m.priceAwareErr != nil {
		return nil, m.priceAwareErr
	}
	return m.priceAware, nil
}

// mockPredictor returns a fixed category guess.
type mockPredictor struct {
	category catalog.Category
	err      error
	calls    int
}

func (m *mockPredictor) PredictCategory(_ context.Context, _ []float32) (catalog.Category, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.category, nil
}

func candidate(id string, similarity float64, opts ...func(*catalog.CandidateRow)) catalog.Candidate {
	row := catalog.CandidateRow{ID: id, Title: id, Similarity: &similarity}
	for _, opt := range opts {
		opt(&row)
	}
	return catalog.NewCandidate(row)
}

func unscored(id string) catalog.Candidate {
	return catalog.NewCandidate(catalog.CandidateRow{ID: id, Title: id})
}

func withBrand(brand string) func(*catalog.CandidateRow) {
	return func(r *catalog.CandidateRow) { r.Brand = brand }
}

func withPrice(price float64) func(*catalog.CandidateRow) {
	return func(r *catalog.CandidateRow) { r.Price = &price }
}

func withCategory(category string) func(*catalog.CandidateRow) {
	return func(r *catalog.CandidateRow) { r.Category = category }
}
