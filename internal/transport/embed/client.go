// Package embed is the HTTP client for the external image embedding service.
// A request carries image bytes or a URL; the response is a fixed-length
// float vector plus the producing model's name.
package embed

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain"
	"github.com/snapstyle/snapstyle/internal/metrics"
)

// Client embeds images via an ordered list of interchangeable endpoints.
// Endpoints differ only in availability (a local encoder, a proxy, a
// last-resort gateway); each serves the same model and contract, so failover
// never changes search semantics.
type Client struct {
	endpoints  []string
	apiKey     string
	dimensions int
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds embedding client settings.
type Config struct {
	Endpoints  []string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewClient creates an embedding client.
func NewClient(cfg *Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("at least one embedding endpoint is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoints:  cfg.Endpoints,
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type embedRequest struct {
	ImageURL string `json:"image_url,omitempty"`
	ImageB64 string `json:"image_b64,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
	Error     string    `json:"error,omitempty"`
}

// Embed implements domain.ImageEmbedder. Endpoints are tried in preference
// order; only availability failures (connection errors, 5xx) move the
// request along the chain. A shape mismatch is a contract violation and
// fails immediately without trying further endpoints.
func (c *Client) Embed(ctx context.Context, img domain.Image) (domain.Embedding, error) {
	if img.URL == "" && len(img.Bytes) == 0 {
		return domain.Embedding{}, fmt.Errorf("image url or bytes required")
	}

	var lastErr error
	for i, endpoint := range c.endpoints {
		if i > 0 {
			metrics.EmbeddingFailoversTotal.Inc()
		}

		emb, err := c.embedOnce(ctx, endpoint, img)
		if err == nil {
			return emb, nil
		}
		if !isAvailabilityError(err) {
			return domain.Embedding{}, err
		}

		c.logger.Warn("embedding endpoint unavailable, trying next",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		lastErr = err
	}

	return domain.Embedding{}, fmt.Errorf(
		"all embedding endpoints failed: %w: %w", domain.ErrEmbeddingProviderError, lastErr)
}

func (c *Client) embedOnce(ctx context.Context, endpoint string, img domain.Image) (domain.Embedding, error) {
	reqBody := embedRequest{ImageURL: img.URL}
	if len(img.Bytes) > 0 {
		reqBody.ImageB64 = base64.StdEncoding.EncodeToString(img.Bytes)
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, endpoint+"/v1/embed/image", bytes.NewReader(payload))
	if err != nil {
		return domain.Embedding{}, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, "", "transport").Inc()
		return domain.Embedding{}, &availabilityError{err: fmt.Errorf("embed request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, "", "read_body").Inc()
		return domain.Embedding{}, &availabilityError{err: fmt.Errorf("read embed response: %w", err)}
	}

	if resp.StatusCode >= 500 {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, "", "server_error").Inc()
		return domain.Embedding{}, &availabilityError{
			err: fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, errorDetail(body)),
		}
	}
	if resp.StatusCode != http.StatusOK {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, "", "api_error").Inc()
		return domain.Embedding{}, fmt.Errorf(
			"embedding endpoint returned %d: %s: %w",
			resp.StatusCode, errorDetail(body), domain.ErrEmbeddingProviderError)
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, "", "bad_json").Inc()
		return domain.Embedding{}, fmt.Errorf(
			"decode embed response: %w: %w", err, domain.ErrEmbeddingProviderError)
	}
	if parsed.Error != "" || len(parsed.Embedding) == 0 {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, parsed.Model, "empty_response").Inc()
		return domain.Embedding{}, fmt.Errorf(
			"embedding service error %q: %w", parsed.Error, domain.ErrEmbeddingProviderError)
	}

	emb := domain.Embedding{Vector: parsed.Embedding, Model: parsed.Model}
	if err := emb.Validate(c.dimensions); err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(endpoint, parsed.Model, "shape_mismatch").Inc()
		metrics.EmbeddingRequestsTotal.WithLabelValues(endpoint, parsed.Model, "error").Inc()
		return domain.Embedding{}, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(endpoint, parsed.Model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(endpoint, parsed.Model).Observe(duration.Seconds())

	return emb, nil
}

// HealthCheck probes the first endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints[0]+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding health check returned %d", resp.StatusCode)
	}
	return nil
}

// errorDetail extracts the "error" field from a JSON failure body.
func errorDetail(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return string(body)
}

// availabilityError marks a failure worth retrying on the next endpoint.
type availabilityError struct {
	err error
}

func (e *availabilityError) Error() string { return e.err.Error() }
func (e *availabilityError) Unwrap() error { return e.err }

func isAvailabilityError(err error) bool {
	var ae *availabilityError
	if errors.As(err, &ae) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
