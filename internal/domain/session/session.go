// Package session holds the per-user search session: the last computed
// embedding and the original unfiltered result set kept for filter-clear
// restoration. State lives here, in the caller's hands — the orchestrator
// itself is stateless and safe for concurrent use.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// Session is the state carried between a search and its refinements.
type Session struct {
	id        string
	embedding domain.Embedding
	// original is the result set of the first unfiltered search, captured
	// exactly once. Refinements never overwrite it; only a new-image search
	// replaces the whole session.
	original       []catalog.Candidate
	activeBrand    string
	createdAt      time.Time
	lastSearchedAt time.Time
}

// New starts a session for a freshly embedded image.
func New(emb domain.Embedding, now time.Time) *Session {
	return &Session{
		id:             uuid.NewString(),
		embedding:      emb,
		createdAt:      now,
		lastSearchedAt: now,
	}
}

// Restore rebuilds a session from persisted state.
func Restore(
	id string, emb domain.Embedding, original []catalog.Candidate,
	activeBrand string, createdAt, lastSearchedAt time.Time,
) *Session {
	return &Session{
		id:             id,
		embedding:      emb,
		original:       original,
		activeBrand:    activeBrand,
		createdAt:      createdAt,
		lastSearchedAt: lastSearchedAt,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Embedding returns the saved embedding for refinement queries.
func (s *Session) Embedding() domain.Embedding { return s.embedding }

// HasBaseQuery reports whether the session holds an embedding to refine.
func (s *Session) HasBaseQuery() bool { return len(s.embedding.Vector) > 0 }

// Original returns the cached unfiltered result set, nil when never captured.
func (s *Session) Original() []catalog.Candidate { return s.original }

// HasOriginal reports whether an original result set was captured.
func (s *Session) HasOriginal() bool { return s.original != nil }

// CaptureOriginal records the first unfiltered result set. Subsequent calls
// are no-ops: the capture happens once per session.
func (s *Session) CaptureOriginal(results []catalog.Candidate) {
	if s.original != nil {
		return
	}
	if results == nil {
		results = []catalog.Candidate{}
	}
	s.original = results
}

// ActiveBrand returns the currently applied brand filter, empty when none.
func (s *Session) ActiveBrand() string { return s.activeBrand }

// SetActiveBrand records the brand filter applied by the latest refinement.
func (s *Session) SetActiveBrand(brand string) { s.activeBrand = brand }

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastSearchedAt returns the time of the most recent search or refinement.
func (s *Session) LastSearchedAt() time.Time { return s.lastSearchedAt }

// Touch updates the last-search timestamp.
func (s *Session) Touch(now time.Time) { s.lastSearchedAt = now }
