package refine

import (
	"context"

	"github.com/snapstyle/snapstyle/internal/domain"
	domses "github.com/snapstyle/snapstyle/internal/domain/session"
	"github.com/snapstyle/snapstyle/internal/usecase/search"
)

// mockSearcher returns a canned outcome and counts index-bound calls.
type mockSearcher struct {
	outcome *search.Outcome
	err     error
	calls   int
	lastQ   search.Query
}

func (m *mockSearcher) Search(_ context.Context, q search.Query) (*search.Outcome, error) {
	m.calls++
	m.lastQ = q
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

// mockSessions is an in-memory session store.
type mockSessions struct {
	store   map[string]*domses.Session
	saveErr error
	getErr  error
}

func newMockSessions() *mockSessions {
	return &mockSessions{store: make(map[string]*domses.Session)}
}

func (m *mockSessions) Save(_ context.Context, s *domses.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.store[s.ID()] = s
	return nil
}

func (m *mockSessions) Get(_ context.Context, id string) (*domses.Session, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if s, ok := m.store[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}
