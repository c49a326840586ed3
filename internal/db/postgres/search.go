package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/snapstyle/snapstyle/internal/db"
)

// baselineQuery calls the vector-only match function. Rows come back sorted
// by descending similarity and always include the category column.
const baselineQuery = `
	SELECT id, title, price, brand, category, color, product_url, image_url, similarity
	FROM match_products($1, $2, $3)`

// filteredQuery calls the price-aware match function. The function predates
// the category column and does not return it.
const filteredQuery = `
	SELECT id, title, price, brand, color, product_url, image_url, similarity
	FROM match_products_filtered($1, $2, $3, $4, $5, $6)`

// SearchVector runs the baseline nearest-neighbor query.
func (s *Store) SearchVector(ctx context.Context, q *db.VectorQuery) (*db.SearchResult, error) {
	rows, err := s.sqldb.QueryContext(ctx, baselineQuery, pgvector.NewVector(q.Vector), q.Model, q.K)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	return scanRows(rows, true)
}

// SearchVectorFiltered runs the price-aware variant. A database that has not
// deployed match_products_filtered answers with SQLSTATE 42883
// (undefined_function); that condition surfaces as db.ErrVariantUnsupported
// so callers can fall back to SearchVector.
func (s *Store) SearchVectorFiltered(ctx context.Context, q *db.FilteredVectorQuery) (*db.SearchResult, error) {
	var brand sql.NullString
	if q.Brand != "" {
		brand = sql.NullString{String: q.Brand, Valid: true}
	}

	rows, err := s.sqldb.QueryContext(ctx, filteredQuery,
		pgvector.NewVector(q.Vector), q.Model, q.K,
		nullFloat(q.PriceMin), nullFloat(q.PriceMax), brand,
	)
	if err != nil {
		if isUndefinedFunction(err) {
			return nil, fmt.Errorf("%w: %w", db.ErrVariantUnsupported, err)
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	return scanRows(rows, false)
}

// ListBrands enumerates distinct brand values.
func (s *Store) ListBrands(ctx context.Context) ([]string, error) {
	rows, err := s.sqldb.QueryContext(ctx,
		`SELECT DISTINCT brand FROM products WHERE brand IS NOT NULL AND brand <> '' ORDER BY brand`)
	if err != nil {
		return nil, &db.Error{Op: db.OpTagVals, Err: err}
	}
	defer rows.Close()

	var brands []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpTagVals, Err: err}
	}
	return brands, nil
}

// scanRows converts function rows into the driver-neutral result shape.
func scanRows(rows *sql.Rows, withCategory bool) (*db.SearchResult, error) {
	var entries []db.SearchEntry

	for rows.Next() {
		var (
			id                                       string
			title, brand, category, color, purl, iml sql.NullString
			price                                    sql.NullFloat64
			similarity                               sql.NullFloat64
		)

		var err error
		if withCategory {
			err = rows.Scan(&id, &title, &price, &brand, &category, &color, &purl, &iml, &similarity)
		} else {
			err = rows.Scan(&id, &title, &price, &brand, &color, &purl, &iml, &similarity)
		}
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		fields := map[string]string{}
		setIfValid(fields, "title", title)
		setIfValid(fields, "brand", brand)
		setIfValid(fields, "color", color)
		setIfValid(fields, "product_url", purl)
		setIfValid(fields, "image_url", iml)
		if withCategory {
			setIfValid(fields, "category", category)
		}
		if price.Valid {
			fields["price"] = strconv.FormatFloat(price.Float64, 'f', -1, 64)
		}

		entry := db.SearchEntry{Key: id, Fields: fields}
		if similarity.Valid {
			entry.Score = similarity.Float64
			entry.HasScore = true
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func setIfValid(fields map[string]string, key string, v sql.NullString) {
	if v.Valid && v.String != "" {
		fields[key] = v.String
	}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// isUndefinedFunction matches SQLSTATE 42883 (undefined_function) and 42P01
// (undefined_table), the signatures of a backend without the filtered variant.
func isUndefinedFunction(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "42883" || pqErr.Code == "42P01"
}
