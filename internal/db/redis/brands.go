package redis

import (
	"context"
	"sort"

	"github.com/snapstyle/snapstyle/internal/db"
)

// ListBrands enumerates distinct brand tag values via FT.TAGVALS.
func (s *Store) ListBrands(ctx context.Context) ([]string, error) {
	cmd := s.b().Arbitrary("FT.TAGVALS").Args(s.indexName(), "brand").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpTagVals, Err: err}
	}

	brands := make([]string, 0, len(raw))
	for _, msg := range raw {
		v, err := msg.ToString()
		if err != nil || v == "" {
			continue
		}
		brands = append(brands, v)
	}
	sort.Strings(brands)
	return brands, nil
}
