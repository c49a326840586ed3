package chi

import (
	"context"

	"github.com/snapstyle/snapstyle/internal/domain"
	domses "github.com/snapstyle/snapstyle/internal/domain/session"
	"github.com/snapstyle/snapstyle/internal/usecase/search"
)

// mockEmbedder returns a canned embedding or error.
type mockEmbedder struct {
	embedding domain.Embedding
	err       error
	lastImage domain.Image
}

func (m *mockEmbedder) Embed(_ context.Context, img domain.Image) (domain.Embedding, error) {
	m.lastImage = img
	if m.err != nil {
		return domain.Embedding{}, m.err
	}
	return m.embedding, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return nil }

// mockSearcher implements refine.Searcher.
type mockSearcher struct {
	outcome *search.Outcome
	err     error
	calls   int
}

func (m *mockSearcher) Search(_ context.Context, _ search.Query) (*search.Outcome, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

// mockSessions implements refine.Sessions in memory.
type mockSessions struct {
	store map[string]*domses.Session
}

func newMockSessions() *mockSessions {
	return &mockSessions{store: make(map[string]*domses.Session)}
}

func (m *mockSessions) Save(_ context.Context, s *domses.Session) error {
	m.store[s.ID()] = s
	return nil
}

func (m *mockSessions) Get(_ context.Context, id string) (*domses.Session, error) {
	if s, ok := m.store[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

// mockPinger implements health.IndexPinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// mockBrands implements catalog.BrandLister.
type mockBrands struct {
	brands []string
	err    error
}

func (m *mockBrands) Brands(_ context.Context) ([]string, error) {
	return m.brands, m.err
}
