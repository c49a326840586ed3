// Package chi is the HTTP API: request decoding, error mapping, and routing
// for the visual search endpoints.
package chi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain"
	domsearch "github.com/snapstyle/snapstyle/internal/domain/search"
	logpkg "github.com/snapstyle/snapstyle/internal/logger"
	cataloguc "github.com/snapstyle/snapstyle/internal/usecase/catalog"
	healthuc "github.com/snapstyle/snapstyle/internal/usecase/health"
	"github.com/snapstyle/snapstyle/internal/usecase/refine"
)

// Embedder turns a query image into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, img domain.Image) (domain.Embedding, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the visual search HTTP API.
type Server struct {
	embedder      Embedder
	search        *refine.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	embedder Embedder,
	search *refine.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		embedder: embedder,
		search:   search,
		catalog:  catalog,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrShapeMismatch, http.StatusBadGateway, codeShapeMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingFailed),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
		sentinelHandler(domain.ErrNoBaseQuery, http.StatusConflict, codeNoBaseQuery),
	}
	return s
}

// Routes mounts the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.CreateSearch)
	r.Post("/v1/refine", s.RefineSearch)
	r.Get("/v1/brands", s.ListBrands)
	r.Get("/healthz", s.GetHealth)
}

// CreateSearch handles POST /v1/search: embed the query image, open a
// session, and return the first result page.
func (s *Server) CreateSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	img, ok := imageFromRequest(w, &req)
	if !ok {
		return
	}
	crit, ok := criteriaFromPayload(w, req.Filters)
	if !ok {
		return
	}

	emb, err := s.embedder.Embed(r.Context(), img)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Begin(r.Context(), emb, crit, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(res))
}

// RefineSearch handles POST /v1/refine: re-run the session's base query
// under new filters, or restore the original results when filters clear.
func (s *Server) RefineSearch(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "session_id is required")
		return
	}
	crit, ok := criteriaFromPayload(w, req.Filters)
	if !ok {
		return
	}

	res, err := s.search.Refine(r.Context(), req.SessionID, crit, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSearchResponse(res))
}

// ListBrands handles GET /v1/brands.
func (s *Server) ListBrands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, brandsResponse{Brands: s.catalog.Brands(r.Context())})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// imageFromRequest validates and decodes the query image. Exactly one of
// image_url and image_b64 must be set.
func imageFromRequest(w http.ResponseWriter, req *searchRequest) (domain.Image, bool) {
	switch {
	case req.ImageURL == "" && req.ImageB64 == "":
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image_url or image_b64 is required")
		return domain.Image{}, false
	case req.ImageURL != "" && req.ImageB64 != "":
		writeError(w, http.StatusBadRequest, codeValidationFailed, "image_url and image_b64 are mutually exclusive")
		return domain.Image{}, false
	case req.ImageB64 != "":
		raw, err := base64.StdEncoding.DecodeString(req.ImageB64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "image_b64 is not valid base64")
			return domain.Image{}, false
		}
		return domain.Image{Bytes: raw}, true
	default:
		return domain.Image{URL: req.ImageURL}, true
	}
}

func criteriaFromPayload(w http.ResponseWriter, p *filterPayload) (domsearch.Criteria, bool) {
	if p == nil {
		p = &filterPayload{}
	}
	crit, err := domsearch.NewCriteria(p.PriceMin, p.PriceMax, p.Brand, p.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return domsearch.Criteria{}, false
	}
	return crit, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// safeDomainMessage returns the sentinel text for known errors and a generic
// message otherwise, so internal details never leak to clients.
func safeDomainMessage(err error) string {
	var sm *domain.ShapeMismatchError
	if errors.As(err, &sm) {
		return sm.Error()
	}
	sentinels := []error{
		domain.ErrShapeMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrSessionNotFound,
		domain.ErrNoBaseQuery,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
