package domain

import (
	"errors"
	"math"
	"testing"
)

func TestSimilarityDistanceRoundTrip(t *testing.T) {
	values := []float64{0, 0.25, 0.3333333, 0.5, 0.75, 0.999999, 1}

	for _, v := range values {
		back := DistanceFromSimilarity(SimilarityFromDistance(v))
		if math.Abs(back-v) > 1e-6 {
			t.Errorf("round trip diverged for %v: got %v", v, back)
		}
	}
}

func TestEmbeddingValidate(t *testing.T) {
	vec := make([]float32, 1152)
	emb := Embedding{Vector: vec, Model: "siglip-test"}
	if err := emb.Validate(1152); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	short := Embedding{Vector: vec[:1151], Model: "siglip-test"}
	err := short.Validate(1152)
	if err == nil {
		t.Fatal("expected shape mismatch error")
	}

	var sm *ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected ShapeMismatchError, got %T", err)
	}
	if !errors.Is(err, ErrShapeMismatch) {
		t.Error("expected error to wrap ErrShapeMismatch")
	}
	if sm.Got != 1151 || sm.Want != 1152 {
		t.Errorf("unexpected lengths: got=%d want=%d", sm.Got, sm.Want)
	}
}
