package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/snapstyle/snapstyle/internal/db"
)

// catalogFields are the product attributes returned with every hit.
var catalogFields = []string{
	"title", "price", "brand", "category", "color", "product_url", "image_url",
}

// scoreField is the alias under which FT.SEARCH reports the KNN cosine distance.
const scoreField = "__embedding_score"

// SearchVector runs the baseline KNN query via FT.SEARCH.
func (s *Store) SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	if err := validateVectorQuery(q.Vector, q.K); err != nil {
		return nil, err
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @embedding $BLOB AS %s]", q.K, scoreField)

	return s.runKNN(ctx, queryStr, q.Vector, q.K)
}

// SearchVectorFiltered runs the price-aware KNN variant: price bounds and
// brand equality become an FT.SEARCH pre-filter. An index whose schema lacks
// the price or brand attribute rejects the query; that condition surfaces as
// db.ErrVariantUnsupported so callers can fall back to SearchVector.
func (s *Store) SearchVectorFiltered(ctx context.Context, q *db.FilteredVectorQuery) (*db.SearchResult, error) {
	if err := validateVectorQuery(q.Vector, q.K); err != nil {
		return nil, err
	}

	prefilter := buildPrefilter(q)
	if prefilter == "" {
		return s.SearchVector(ctx, &q.VectorQuery)
	}

	queryStr := fmt.Sprintf("(%s)=>[KNN %d @embedding $BLOB AS %s]", prefilter, q.K, scoreField)

	res, err := s.runKNN(ctx, queryStr, q.Vector, q.K)
	if err != nil {
		if isRedisErr(err, "unknown field") || isRedisErr(err, "no such filter") {
			return nil, fmt.Errorf("%w: %w", db.ErrVariantUnsupported, err)
		}
		return nil, err
	}
	return res, nil
}

func (s *Store) runKNN(ctx context.Context, queryStr string, vector []float32, k int) (*db.SearchResult, error) {
	args := []string{s.indexName(), queryStr}

	returnFields := append([]string{scoreField}, catalogFields...)
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)

	args = append(args,
		"SORTBY", scoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(k),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

func validateVectorQuery(vector []float32, k int) error {
	if len(vector) == 0 {
		return fmt.Errorf("vector is required")
	}
	if k <= 0 {
		return fmt.Errorf("k must be positive")
	}
	return nil
}

// buildPrefilter translates price bounds and brand into an FT.SEARCH filter.
func buildPrefilter(q *db.FilteredVectorQuery) string {
	var parts []string

	if q.PriceMin != nil || q.PriceMax != nil {
		minBound := "-inf"
		maxBound := "+inf"
		if q.PriceMin != nil {
			minBound = fmt.Sprintf("%g", *q.PriceMin)
		}
		if q.PriceMax != nil {
			maxBound = fmt.Sprintf("%g", *q.PriceMax)
		}
		parts = append(parts, fmt.Sprintf("@price:[%s %s]", minBound, maxBound))
	}

	if q.Brand != "" {
		parts = append(parts, fmt.Sprintf("@brand:{%s}", tagEscaper.Replace(q.Brand)))
	}

	return strings.Join(parts, " ")
}

// parseKNNResult converts the RESP2 reply into db.SearchResult.
// 2-stride: [total, key1, fields1, key2, fields2, ...]
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		}

		if scoreStr, ok := entry.Fields[scoreField]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = max(0, 1.0-dist) // cosine distance → similarity, clamped to [0,1]
				entry.HasScore = true
			}
			delete(entry.Fields, scoreField)
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// tagEscaper escapes RediSearch TAG syntax characters in brand values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return rueidis.BinaryString(buf)
}
