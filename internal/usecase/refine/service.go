// Package refine manages search sessions: it runs the initial query, keeps
// the original result set, and re-runs or restores it as filters change.
package refine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
	domsearch "github.com/snapstyle/snapstyle/internal/domain/search"
	domses "github.com/snapstyle/snapstyle/internal/domain/session"
	"github.com/snapstyle/snapstyle/internal/usecase/search"
)

// Result is a search outcome bound to its session.
type Result struct {
	SessionID         string
	Results           []catalog.Candidate
	Status            domsearch.Status
	PredictedCategory catalog.Category
}

// Service owns the session lifecycle around the search orchestrator.
type Service struct {
	searcher   Searcher
	sessions   Sessions
	thresholds domsearch.Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a session-aware refine service.
func New(searcher Searcher, sessions Sessions, thresholds domsearch.Thresholds, logger *zap.Logger) *Service {
	return &Service{
		searcher:   searcher,
		sessions:   sessions,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

// Begin opens a session for an embedded query image and runs the first
// search. An unfiltered first search captures its results as the session
// original, so a later filter-clearing refine restores them without touching
// the index.
func (s *Service) Begin(
	ctx context.Context, emb domain.Embedding, crit domsearch.Criteria, topK int,
) (*Result, error) {
	out, err := s.searcher.Search(ctx, search.Query{Embedding: emb, Criteria: crit, TopK: topK})
	if err != nil {
		return nil, err
	}

	sess := domses.New(emb, s.now())
	if crit.IsEmpty() {
		sess.CaptureOriginal(out.Results)
	}
	sess.SetActiveBrand(crit.Brand())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Result{
		SessionID:         sess.ID(),
		Results:           out.Results,
		Status:            out.Status,
		PredictedCategory: out.PredictedCategory,
	}, nil
}

// Refine re-runs the session's base query under new criteria. Clearing all
// filters restores the captured original result set without an index round
// trip. The original is captured at most once per session and never
// overwritten by refinements.
func (s *Service) Refine(
	ctx context.Context, sessionID string, crit domsearch.Criteria, topK int,
) (*Result, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasBaseQuery() {
		return nil, fmt.Errorf("refine session %s: %w", sessionID, domain.ErrNoBaseQuery)
	}

	if crit.IsEmpty() && sess.HasOriginal() {
		return s.restoreOriginal(ctx, sess)
	}

	out, err := s.searcher.Search(ctx, search.Query{
		Embedding: sess.Embedding(),
		Criteria:  crit,
		TopK:      topK,
	})
	if err != nil {
		return nil, err
	}
	if crit.IsEmpty() {
		sess.CaptureOriginal(out.Results)
	}
	sess.SetActiveBrand(crit.Brand())
	sess.Touch(s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Result{
		SessionID:         sess.ID(),
		Results:           out.Results,
		Status:            out.Status,
		PredictedCategory: out.PredictedCategory,
	}, nil
}

// restoreOriginal serves the cached first-search results. The match status is
// recomputed from the stored similarities so the response shape matches a
// fresh search.
func (s *Service) restoreOriginal(ctx context.Context, sess *domses.Session) (*Result, error) {
	original := sess.Original()
	class := domsearch.Categorize(original, s.thresholds)

	sess.SetActiveBrand("")
	sess.Touch(s.now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Debug("restored original results",
		zap.String("session_id", sess.ID()),
		zap.Int("count", len(original)))
	return &Result{SessionID: sess.ID(), Results: original, Status: class.Status}, nil
}
