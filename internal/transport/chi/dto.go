package chi

import (
	"github.com/snapstyle/snapstyle/internal/domain/catalog"
	"github.com/snapstyle/snapstyle/internal/usecase/refine"
)

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeSessionNotFound  = "session_not_found"
	codeNoBaseQuery      = "no_base_query"
	codeEmbeddingFailed  = "embedding_provider_error"
	codeShapeMismatch    = "embedding_shape_mismatch"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// filterPayload is the wire shape of search criteria.
type filterPayload struct {
	PriceMin *float64 `json:"price_min,omitempty"`
	PriceMax *float64 `json:"price_max,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Category string   `json:"category,omitempty"`
}

type searchRequest struct {
	ImageURL string         `json:"image_url,omitempty"`
	ImageB64 string         `json:"image_b64,omitempty"`
	Filters  *filterPayload `json:"filters,omitempty"`
	TopK     int            `json:"top_k,omitempty"`
}

type refineRequest struct {
	SessionID string         `json:"session_id"`
	Filters   *filterPayload `json:"filters,omitempty"`
	TopK      int            `json:"top_k,omitempty"`
}

type productPayload struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      *float64 `json:"price,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	Category   string   `json:"category"`
	Color      string   `json:"color,omitempty"`
	ProductURL string   `json:"product_url,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Similarity *float64 `json:"similarity,omitempty"`
}

type searchResponse struct {
	SessionID         string           `json:"session_id"`
	MatchStatus       string           `json:"match_status"`
	PredictedCategory string           `json:"predicted_category,omitempty"`
	Results           []productPayload `json:"results"`
}

type brandsResponse struct {
	Brands []string `json:"brands"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func toSearchResponse(res *refine.Result) searchResponse {
	return searchResponse{
		SessionID:         res.SessionID,
		MatchStatus:       string(res.Status),
		PredictedCategory: string(res.PredictedCategory),
		Results:           toProductPayloads(res.Results),
	}
}

func toProductPayloads(candidates []catalog.Candidate) []productPayload {
	out := make([]productPayload, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		out[i] = productPayload{
			ID:         c.ID(),
			Title:      c.Title(),
			Price:      c.Price(),
			Brand:      c.Brand(),
			Category:   string(c.Category()),
			Color:      c.Color(),
			ProductURL: c.ProductURL(),
			ImageURL:   c.ImageURL(),
			Similarity: c.Similarity(),
		}
	}
	return out
}
