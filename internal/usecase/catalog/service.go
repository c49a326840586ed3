// Package catalog serves catalog metadata used to populate filter controls.
package catalog

import (
	"context"

	"go.uber.org/zap"
)

// BrandLister enumerates distinct brand values in the product index.
type BrandLister interface {
	Brands(ctx context.Context) ([]string, error)
}

// Service exposes catalog metadata lookups.
type Service struct {
	brands BrandLister
	logger *zap.Logger
}

// New creates a catalog metadata service.
func New(brands BrandLister, logger *zap.Logger) *Service {
	return &Service{brands: brands, logger: logger}
}

// Brands returns the sorted distinct brands. Failures degrade to an empty
// list: a missing filter dropdown is better than a failed page load.
func (s *Service) Brands(ctx context.Context) []string {
	brands, err := s.brands.Brands(ctx)
	if err != nil {
		s.logger.Warn("brand enumeration failed", zap.Error(err))
		return []string{}
	}
	if brands == nil {
		return []string{}
	}
	return brands
}
