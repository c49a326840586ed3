package domain

import "context"

// Embedding is a fixed-length visual feature vector plus the model that produced it.
type Embedding struct {
	Vector []float32
	Model  string
}

// Validate checks the vector against the expected index dimension.
// A mismatch is a contract violation, never silently truncated or padded.
func (e Embedding) Validate(dim int) error {
	if len(e.Vector) != dim {
		return NewShapeMismatch(len(e.Vector), dim, e.Model)
	}
	return nil
}

// Image is the input to the embedding service: raw bytes or a reachable URL.
// Exactly one of the two should be set.
type Image struct {
	URL   string
	Bytes []byte
}

// ImageEmbedder vectorizes an image via the external embedding service.
type ImageEmbedder interface {
	Embed(ctx context.Context, img Image) (Embedding, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
