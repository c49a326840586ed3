package catalog

import (
	"context"
	"testing"

	"github.com/snapstyle/snapstyle/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchVectorFn         func(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error)
	searchVectorFilteredFn func(ctx context.Context, q *db.FilteredVectorQuery) (*db.SearchResult, error)
	listBrandsFn           func(ctx context.Context) ([]string, error)
}

func (m *mockStore) SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	if m.searchVectorFn != nil {
		return m.searchVectorFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchVectorFiltered(ctx context.Context, q *db.FilteredVectorQuery) (*db.SearchResult, error) {
	if m.searchVectorFilteredFn != nil {
		return m.searchVectorFilteredFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) ListBrands(ctx context.Context) ([]string, error) {
	if m.listBrandsFn != nil {
		return m.listBrandsFn(ctx)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "snapstyle:"), ms
}

func testVector() []float32 {
	vec := make([]float32, 8)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}
