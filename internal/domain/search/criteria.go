// Package search holds the query-side domain model: filter criteria,
// similarity tiers, and the match classification rules.
package search

import (
	"fmt"
	"strings"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// Criteria is the optional structured narrowing applied to a search.
// Ephemeral: constructed per search or refine call.
type Criteria struct {
	priceMin *float64
	priceMax *float64
	brand    string
	category catalog.Category
}

// NewCriteria validates and creates filter criteria. The category string is
// normalized; an empty string means no category constraint.
func NewCriteria(priceMin, priceMax *float64, brand, category string) (Criteria, error) {
	if priceMin != nil && *priceMin < 0 {
		return Criteria{}, fmt.Errorf("price floor must not be negative, got %v", *priceMin)
	}
	if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
		return Criteria{}, fmt.Errorf("price floor %v exceeds ceiling %v", *priceMin, *priceMax)
	}
	var cat catalog.Category
	if strings.TrimSpace(category) != "" {
		cat = catalog.NormalizeCategory(category)
	}
	return Criteria{
		priceMin: priceMin,
		priceMax: priceMax,
		brand:    strings.TrimSpace(brand),
		category: cat,
	}, nil
}

// PriceMin returns the optional price floor.
func (c Criteria) PriceMin() *float64 { return c.priceMin }

// PriceMax returns the optional price ceiling.
func (c Criteria) PriceMax() *float64 { return c.priceMax }

// Brand returns the exact-match brand constraint, empty when absent.
func (c Criteria) Brand() string { return c.brand }

// Category returns the category constraint, empty when absent.
func (c Criteria) Category() catalog.Category { return c.category }

// HasPriceBounds reports whether either price bound is set.
func (c Criteria) HasPriceBounds() bool { return c.priceMin != nil || c.priceMax != nil }

// HasBrand reports whether a brand constraint is set.
func (c Criteria) HasBrand() bool { return c.brand != "" }

// HasCategory reports whether an effective category constraint is set.
// A constraint that normalized to Other is treated as absent: filtering on
// the catch-all bucket would eliminate the result set instead of narrowing it.
func (c Criteria) HasCategory() bool {
	return c.category != "" && c.category != catalog.Other
}

// IsEmpty reports whether no constraint is set at all.
func (c Criteria) IsEmpty() bool {
	return c.priceMin == nil && c.priceMax == nil && c.brand == "" && c.category == ""
}

// MatchesBrand reports whether the candidate brand satisfies the constraint
// (case-insensitive exact match). Vacuously true without a constraint.
func (c Criteria) MatchesBrand(brand string) bool {
	if !c.HasBrand() {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(brand), c.brand)
}

// MatchesPrice reports whether a price satisfies the bounds. Candidates
// without a price fail any active bound.
func (c Criteria) MatchesPrice(price *float64) bool {
	if !c.HasPriceBounds() {
		return true
	}
	if price == nil {
		return false
	}
	if c.priceMin != nil && *price < *c.priceMin {
		return false
	}
	if c.priceMax != nil && *price > *c.priceMax {
		return false
	}
	return true
}

// MatchesCategory reports whether a category satisfies the constraint.
func (c Criteria) MatchesCategory(cat catalog.Category) bool {
	if !c.HasCategory() {
		return true
	}
	return cat == c.category
}
