// Package openai hosts the text-side embedder used for zero-shot category
// prediction. The embedding model is multimodal: category prompts embedded
// through its text tower live in the same space as image vectors, so the
// nearest prompt is a usable guess at the garment category.
package openai

import (
	"context"
	"fmt"
	"math"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

// Predictor guesses a canonical category from an image embedding.
type Predictor struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *zap.Logger

	mu         sync.Mutex
	prototypes map[catalog.Category][]float32
}

// Config holds the text embedder settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewPredictor creates a category predictor over an OpenAI-compatible API.
func NewPredictor(cfg *Config) *Predictor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Predictor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		logger: logger,
	}
}

// PredictCategory returns the canonical category whose prompt embedding is
// nearest to the image embedding. Best-effort: any failure returns Other
// with the error, and callers must treat the result as a soft hint.
func (p *Predictor) PredictCategory(ctx context.Context, vector []float32) (catalog.Category, error) {
	prototypes, err := p.getPrototypes(ctx)
	if err != nil {
		return catalog.Other, fmt.Errorf("category prototypes: %w", err)
	}

	best := catalog.Other
	bestScore := math.Inf(-1)
	for cat, proto := range prototypes {
		if score := cosine(vector, proto); score > bestScore {
			bestScore = score
			best = cat
		}
	}
	return best, nil
}

// getPrototypes embeds one prompt per canonical category, once, lazily.
// A failed build is retried on the next call rather than cached.
func (p *Predictor) getPrototypes(ctx context.Context) (map[catalog.Category][]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.prototypes != nil {
		return p.prototypes, nil
	}

	cats := Categories()
	prompts := make([]string, len(cats))
	for i, c := range cats {
		prompts[i] = prompt(c)
	}

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          prompts,
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("embed category prompts: %w", err)
	}
	if len(resp.Data) != len(cats) {
		return nil, fmt.Errorf("expected %d prompt embeddings, got %d", len(cats), len(resp.Data))
	}

	prototypes := make(map[catalog.Category][]float32, len(cats))
	for i, c := range cats {
		prototypes[c] = resp.Data[i].Embedding
	}

	p.prototypes = prototypes
	p.logger.Info("category prototypes ready", zap.Int("count", len(prototypes)))
	return prototypes, nil
}

// Categories lists the categories worth predicting. Other is excluded: it is
// the degraded answer, not a target.
func Categories() []catalog.Category {
	all := catalog.Categories()
	out := make([]catalog.Category, 0, len(all)-1)
	for _, c := range all {
		if c != catalog.Other {
			out = append(out, c)
		}
	}
	return out
}

func prompt(c catalog.Category) string {
	return "a product photo of a " + string(c)
}

// cosine computes cosine similarity between two vectors. Zero for mismatched
// lengths or zero vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
