package search

import (
	"fmt"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// Status classifies a result set by its best similarity.
type Status string

// Match status values. Derived per result set, never stored.
const (
	StatusNone   Status = "none"
	StatusWeak   Status = "weak"
	StatusStrong Status = "strong"
)

// Thresholds holds the similarity cutoffs for tiering.
// Invariant: Strong > Weak >= Floor.
type Thresholds struct {
	floor  float64
	weak   float64
	strong float64
}

// NewThresholds validates and creates similarity thresholds.
func NewThresholds(floor, weak, strong float64) (Thresholds, error) {
	if !(strong > weak && weak >= floor) {
		return Thresholds{}, fmt.Errorf(
			"thresholds must satisfy strong > weak >= floor, got strong=%v weak=%v floor=%v",
			strong, weak, floor,
		)
	}
	if floor < 0 || strong > 1 {
		return Thresholds{}, fmt.Errorf("thresholds must lie in [0,1], got floor=%v strong=%v", floor, strong)
	}
	return Thresholds{floor: floor, weak: weak, strong: strong}, nil
}

// Floor returns the minimum similarity below which candidates are dropped.
func (t Thresholds) Floor() float64 { return t.floor }

// Weak returns the weak-match threshold.
func (t Thresholds) Weak() float64 { return t.weak }

// Strong returns the strong-match threshold.
func (t Thresholds) Strong() float64 { return t.strong }

// Filter drops candidates whose similarity is present and below floor, then
// truncates to limit. Candidates without a score pass the floor (legacy index
// rows carry none; callers count these separately). Order is preserved: the
// index returns candidates sorted by descending similarity and Filter never
// re-sorts.
func Filter(candidates []catalog.Candidate, floor float64, limit int) []catalog.Candidate {
	kept := make([]catalog.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.HasSimilarity() && *c.Similarity() < floor {
			continue
		}
		kept = append(kept, c)
		if len(kept) == limit {
			break
		}
	}
	return kept
}

// Classification is the tier partition of a candidate set.
// StrongMatches and WeakMatches are disjoint, not cumulative.
type Classification struct {
	StrongMatches []catalog.Candidate
	WeakMatches   []catalog.Candidate
	Status        Status
}

// Best returns the tier matching the status: the strong set when strong, the
// weak set when weak, nil when none. The two sets are alternative result
// lists, never a union.
func (c Classification) Best() []catalog.Candidate {
	switch c.Status {
	case StatusStrong:
		return c.StrongMatches
	case StatusWeak:
		return c.WeakMatches
	}
	return nil
}

// Categorize partitions candidates into strong (similarity >= strong
// threshold) and weak (>= weak, < strong) tiers and derives the match status.
// Candidates without a similarity score land in the weak tier: they survived
// the floor but cannot claim a confident match.
func Categorize(candidates []catalog.Candidate, t Thresholds) Classification {
	var strong, weak []catalog.Candidate
	for _, c := range candidates {
		switch {
		case c.HasSimilarity() && *c.Similarity() >= t.strong:
			strong = append(strong, c)
		case !c.HasSimilarity() || *c.Similarity() >= t.weak:
			weak = append(weak, c)
		}
	}

	status := StatusNone
	switch {
	case len(strong) > 0:
		status = StatusStrong
	case len(weak) > 0:
		status = StatusWeak
	}

	return Classification{StrongMatches: strong, WeakMatches: weak, Status: status}
}
