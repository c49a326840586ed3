// Package db defines the storage contract for the catalog index and the
// session key-value store, plus the query/result shapes shared by drivers.
package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
// Consumers use the narrow sub-interfaces.
type Store interface {
	Pinger
	Searcher
	BrandLister
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher provides nearest-neighbor queries over the catalog index.
//
// SearchVector is the baseline variant: vector-only, always available,
// rows include the category field. SearchVectorFiltered is the price-aware
// variant: the index applies price bounds and brand equality server-side.
// It is optional — drivers return ErrVariantUnsupported when the backend
// lacks it, and callers fall back to the baseline variant.
type Searcher interface {
	SearchVector(ctx context.Context, q *VectorQuery) (*SearchResult, error)
	SearchVectorFiltered(ctx context.Context, q *FilteredVectorQuery) (*SearchResult, error)
}

// BrandLister enumerates distinct brand values for filter population.
type BrandLister interface {
	ListBrands(ctx context.Context) ([]string, error)
}

// KVStore provides simple key-value operations used for session persistence.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
