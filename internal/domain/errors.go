package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch signals an embedding whose length differs from the index dimension.
	ErrShapeMismatch = errors.New("embedding shape mismatch")
	// ErrNoBaseQuery signals a refine attempt with no prior search in the session.
	ErrNoBaseQuery = errors.New("no base query to refine")
	// ErrSessionNotFound signals a missing or expired search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnsupportedQueryVariant signals that the index lacks the price-aware
	// query variant. Recoverable: callers fall back to the baseline variant.
	ErrUnsupportedQueryVariant = errors.New("query variant not supported by index")
	// ErrEmbeddingProviderError signals an embedding service failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// ShapeMismatchError wraps ErrShapeMismatch with the observed and expected
// lengths and the model that produced the vector.
type ShapeMismatchError struct {
	Got   int
	Want  int
	Model string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d, want %d (model %s)", ErrShapeMismatch.Error(), e.Got, e.Want, e.Model)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// NewShapeMismatch creates a shape mismatch error.
func NewShapeMismatch(got, want int, model string) error {
	return &ShapeMismatchError{Got: got, Want: want, Model: model}
}
