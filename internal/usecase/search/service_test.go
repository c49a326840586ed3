package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
	domsearch "github.com/snapstyle/snapstyle/internal/domain/search"
)

const testDim = 8

func testConfig(t *testing.T) Config {
	t.Helper()
	th, err := domsearch.NewThresholds(0.25, 0.45, 0.65)
	if err != nil {
		t.Fatalf("NewThresholds: %v", err)
	}
	return Config{Dimensions: testDim, PoolSize: 50, DefaultTopK: 5, Thresholds: th}
}

func testEmbedding(dim int) domain.Embedding {
	return domain.Embedding{Vector: make([]float32, dim), Model: "siglip-so400m-patch14-384"}
}

func TestSearchShapeMismatchFailsFast(t *testing.T) {
	idx := &mockIndex{}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	_, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim - 1)})
	if !errors.Is(err, domain.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	var sm *domain.ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected ShapeMismatchError, got %T", err)
	}
	if sm.Got != testDim-1 || sm.Want != testDim {
		t.Errorf("got dims %d/%d, want %d/%d", sm.Got, sm.Want, testDim-1, testDim)
	}
	if idx.baselineCalls != 0 || idx.priceCalls != 0 {
		t.Error("index must not be queried on shape mismatch")
	}
}

func TestSearchBaselineTiering(t *testing.T) {
	tests := []struct {
		name        string
		pool        []catalog.Candidate
		wantStatus  domsearch.Status
		wantResults []string
	}{
		{
			name: "strong tier wins",
			pool: []catalog.Candidate{
				candidate("a", 0.9), candidate("b", 0.7), candidate("c", 0.5),
			},
			wantStatus:  domsearch.StatusStrong,
			wantResults: []string{"a", "b"},
		},
		{
			name: "weak tier when no strong",
			pool: []catalog.Candidate{
				candidate("a", 0.6), candidate("b", 0.5),
			},
			wantStatus:  domsearch.StatusWeak,
			wantResults: []string{"a", "b"},
		},
		{
			name: "unscored candidates land in weak tier",
			pool: []catalog.Candidate{
				candidate("a", 0.5), unscored("b"),
			},
			wantStatus:  domsearch.StatusWeak,
			wantResults: []string{"a", "b"},
		},
		{
			name: "between floor and weak yields none",
			pool: []catalog.Candidate{
				candidate("a", 0.3), candidate("b", 0.26),
			},
			wantStatus:  domsearch.StatusNone,
			wantResults: nil,
		},
		{
			name: "below floor dropped entirely",
			pool: []catalog.Candidate{
				candidate("a", 0.9), candidate("b", 0.1),
			},
			wantStatus:  domsearch.StatusStrong,
			wantResults: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &mockIndex{baseline: tt.pool}
			svc := New(idx, nil, testConfig(t), zap.NewNop())

			out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim)})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if out.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", out.Status, tt.wantStatus)
			}
			assertIDs(t, out.Results, tt.wantResults)
		})
	}
}

func TestSearchPoolOverfetchAndTopK(t *testing.T) {
	pool := make([]catalog.Candidate, 0, 50)
	for i := 0; i < 6; i++ {
		pool = append(pool, candidate(fmt.Sprintf("strong-%d", i), 0.9-float64(i)*0.01))
	}
	for i := 0; i < 44; i++ {
		pool = append(pool, candidate(fmt.Sprintf("floor-%d", i), 0.1))
	}

	idx := &mockIndex{baseline: pool}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if idx.lastK != 50 {
		t.Errorf("index queried with k=%d, want pool size 50", idx.lastK)
	}
	if len(out.Results) != 5 {
		t.Fatalf("got %d results, want default topK 5", len(out.Results))
	}
	if out.Results[0].ID() != "strong-0" {
		t.Errorf("ordering lost: first result %q", out.Results[0].ID())
	}
}

func TestSearchRequestedTopKClamped(t *testing.T) {
	pool := make([]catalog.Candidate, 0, 10)
	for i := 0; i < 10; i++ {
		pool = append(pool, candidate(fmt.Sprintf("c-%d", i), 0.9))
	}

	cfg := testConfig(t)
	cfg.MaxTopK = 3
	svc := New(&mockIndex{baseline: pool}, nil, cfg, zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), TopK: 100})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(out.Results) != 3 {
		t.Errorf("got %d results, want clamp to 3", len(out.Results))
	}
}

func TestSearchPriceAwareVariant(t *testing.T) {
	min, max := 20.0, 80.0
	crit, err := domsearch.NewCriteria(&min, &max, "", "")
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}

	idx := &mockIndex{priceAware: []catalog.Candidate{candidate("a", 0.9, withPrice(50))}}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if idx.priceCalls != 1 || idx.baselineCalls != 0 {
		t.Errorf("calls: priceAware=%d baseline=%d, want 1/0", idx.priceCalls, idx.baselineCalls)
	}
	if idx.lastPriceMin == nil || *idx.lastPriceMin != min {
		t.Error("price floor not forwarded to index")
	}
	assertIDs(t, out.Results, []string{"a"})
}

func TestSearchFallbackToBaseline(t *testing.T) {
	min := 20.0
	crit, err := domsearch.NewCriteria(&min, nil, "", "")
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}

	// The baseline pool mixes prices; the fallback must filter in memory.
	idx := &mockIndex{
		priceAwareErr: fmt.Errorf("rpc: %w", domain.ErrUnsupportedQueryVariant),
		baseline: []catalog.Candidate{
			candidate("cheap", 0.9, withPrice(10)),
			candidate("fits", 0.8, withPrice(40)),
		},
	}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if idx.priceCalls != 1 || idx.baselineCalls != 1 {
		t.Errorf("calls: priceAware=%d baseline=%d, want 1/1", idx.priceCalls, idx.baselineCalls)
	}
	assertIDs(t, out.Results, []string{"fits"})
}

func TestSearchGenuineIndexErrorPropagates(t *testing.T) {
	min := 20.0
	crit, err := domsearch.NewCriteria(&min, nil, "", "")
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}

	boom := errors.New("index down")
	idx := &mockIndex{priceAwareErr: boom}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	if _, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit}); !errors.Is(err, boom) {
		t.Fatalf("expected index error to propagate, got %v", err)
	}
	if idx.baselineCalls != 0 {
		t.Error("genuine errors must not trigger the baseline fallback")
	}
}

func TestSearchBrandFilterInMemory(t *testing.T) {
	crit, err := domsearch.NewCriteria(nil, nil, "Acme", "")
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}

	idx := &mockIndex{baseline: []catalog.Candidate{
		candidate("a", 0.9, withBrand("Acme")),
		candidate("b", 0.8, withBrand("Other Co")),
		candidate("c", 0.7, withBrand("acme")),
	}}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	assertIDs(t, out.Results, []string{"a", "c"})
}

func TestSearchCategoryFilter(t *testing.T) {
	pool := []catalog.Candidate{
		candidate("dress-1", 0.9, withCategory("dress")),
		candidate("shoes-1", 0.8, withCategory("sneakers")),
		candidate("misc-1", 0.7, withCategory("strange thing")),
	}

	tests := []struct {
		name      string
		category  string
		predicted catalog.Category
		wantIDs   []string
	}{
		{
			name:     "explicit category narrows",
			category: "dress",
			wantIDs:  []string{"dress-1"},
		},
		{
			name:      "predicted category narrows when criteria silent",
			predicted: catalog.Shoes,
			wantIDs:   []string{"shoes-1"},
		},
		{
			name:      "predicted other disables the filter",
			predicted: catalog.Other,
			wantIDs:   []string{"dress-1", "shoes-1", "misc-1"},
		},
		{
			name:     "criteria other disables the filter",
			category: "mystery garment",
			wantIDs:  []string{"dress-1", "shoes-1", "misc-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crit, err := domsearch.NewCriteria(nil, nil, "", tt.category)
			if err != nil {
				t.Fatalf("NewCriteria: %v", err)
			}
			idx := &mockIndex{baseline: pool}
			var pred CategoryPredictor
			if tt.predicted != "" {
				pred = &mockPredictor{category: tt.predicted}
			}
			svc := New(idx, pred, testConfig(t), zap.NewNop())

			out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			assertIDs(t, out.Results, tt.wantIDs)
		})
	}
}

func TestSearchCategoryFilterKeepsUncategorizedServerRows(t *testing.T) {
	min := 20.0
	crit, err := domsearch.NewCriteria(&min, nil, "", "dress")
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}

	// Price-aware rows may omit category; such rows normalize to Other and
	// must survive an explicit category filter instead of emptying the pool.
	idx := &mockIndex{priceAware: []catalog.Candidate{
		candidate("bare", 0.9, withPrice(50)),
		candidate("tagged", 0.8, withPrice(60), withCategory("sneakers")),
	}}
	svc := New(idx, nil, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim), Criteria: crit})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	assertIDs(t, out.Results, []string{"bare"})
	if out.Status != domsearch.StatusStrong {
		t.Errorf("status = %q, want %q", out.Status, domsearch.StatusStrong)
	}
}

func TestSearchPredictorFailureIsSoft(t *testing.T) {
	idx := &mockIndex{baseline: []catalog.Candidate{candidate("a", 0.9)}}
	pred := &mockPredictor{err: errors.New("provider down")}
	svc := New(idx, pred, testConfig(t), zap.NewNop())

	out, err := svc.Search(context.Background(), Query{Embedding: testEmbedding(testDim)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out.PredictedCategory != "" {
		t.Errorf("expected no prediction, got %q", out.PredictedCategory)
	}
	assertIDs(t, out.Results, []string{"a"})
}

func assertIDs(t *testing.T, got []catalog.Candidate, want []string) {
	t.Helper()
	if len(got) != len(want) {
		ids := make([]string, len(got))
		for i := range got {
			ids[i] = got[i].ID()
		}
		t.Fatalf("got %d results %v, want %d %v", len(got), ids, len(want), want)
	}
	for i := range want {
		if got[i].ID() != want[i] {
			t.Errorf("result[%d] = %q, want %q", i, got[i].ID(), want[i])
		}
	}
}
