package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/snapstyle/snapstyle/internal/db"
	"github.com/snapstyle/snapstyle/internal/domain"
	domcat "github.com/snapstyle/snapstyle/internal/domain/catalog"
)

func TestSearchBaseline_MapsRows(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchVectorFn = func(_ context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
		if q.K != 50 {
			t.Errorf("expected k=50, got %d", q.K)
		}
		return &db.SearchResult{
			Total: 2,
			Entries: []db.SearchEntry{
				{
					Key:      "snapstyle:p1",
					Score:    0.91,
					HasScore: true,
					Fields: map[string]string{
						"title":    "Silk dress",
						"price":    "249.99",
						"brand":    "Acme",
						"category": "Dresses",
					},
				},
				{
					Key:    "snapstyle:p2",
					Fields: map[string]string{},
				},
			},
		}, nil
	}

	got, err := repo.SearchBaseline(context.Background(), testVector(), "siglip-test", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}

	first := got[0]
	if first.ID() != "p1" {
		t.Errorf("key prefix not stripped: %q", first.ID())
	}
	if first.Category() != domcat.Dress {
		t.Errorf("category not normalized: %q", first.Category())
	}
	if !first.HasSimilarity() || *first.Similarity() != 0.91 {
		t.Errorf("unexpected similarity: %v", first.Similarity())
	}
	if first.Price() == nil || *first.Price() != 249.99 {
		t.Errorf("unexpected price: %v", first.Price())
	}

	second := got[1]
	if second.HasSimilarity() {
		t.Error("legacy row must carry no similarity")
	}
	if second.Category() != domcat.Other {
		t.Errorf("missing category must normalize to other, got %q", second.Category())
	}
}

func TestSearchPriceAware_TranslatesUnsupported(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchVectorFilteredFn = func(_ context.Context, _ *db.FilteredVectorQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrVariantUnsupported}
	}

	min := 50.0
	_, err := repo.SearchPriceAware(context.Background(), testVector(), "siglip-test", 50, &min, nil, "")
	if !errors.Is(err, domain.ErrUnsupportedQueryVariant) {
		t.Fatalf("expected ErrUnsupportedQueryVariant, got %v", err)
	}
	if errors.Is(err, db.ErrVariantUnsupported) {
		t.Error("db sentinel must not leak above the repository")
	}
}

func TestBrands(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.listBrandsFn = func(_ context.Context) ([]string, error) {
		return []string{"Acme", "Zara"}, nil
	}

	got, err := repo.Brands(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "Acme" {
		t.Errorf("unexpected brands: %v", got)
	}
}
