package refine

import (
	"context"

	domses "github.com/snapstyle/snapstyle/internal/domain/session"
	"github.com/snapstyle/snapstyle/internal/usecase/search"
)

// Searcher runs one similarity search. Implemented by usecase/search.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Outcome, error)
}

// Sessions persists search sessions between the initial query and its
// refinements.
type Sessions interface {
	Save(ctx context.Context, s *domses.Session) error
	Get(ctx context.Context, id string) (*domses.Session, error)
}
