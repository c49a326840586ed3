package search

import (
	"testing"

	"github.com/snapstyle/snapstyle/internal/domain/catalog"
)

func mustThresholds(t *testing.T) Thresholds {
	t.Helper()
	th, err := NewThresholds(0.25, 0.45, 0.65)
	if err != nil {
		t.Fatalf("NewThresholds: %v", err)
	}
	return th
}

func scored(t *testing.T, id string, sim float64) catalog.Candidate {
	t.Helper()
	return catalog.NewCandidate(catalog.CandidateRow{ID: id, Similarity: &sim})
}

func unscored(t *testing.T, id string) catalog.Candidate {
	t.Helper()
	return catalog.NewCandidate(catalog.CandidateRow{ID: id})
}

func ids(cs []catalog.Candidate) []string {
	out := make([]string, len(cs))
	for i := range cs {
		out[i] = cs[i].ID()
	}
	return out
}

func TestNewThresholds_Ordering(t *testing.T) {
	tests := []struct {
		name                string
		floor, weak, strong float64
		wantErr             bool
	}{
		{"valid", 0.25, 0.45, 0.65, false},
		{"weak below floor", 0.5, 0.45, 0.65, true},
		{"strong equals weak", 0.25, 0.65, 0.65, true},
		{"strong above one", 0.25, 0.45, 1.5, true},
		{"negative floor", -0.1, 0.45, 0.65, true},
		{"weak equals floor", 0.45, 0.45, 0.65, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewThresholds(tt.floor, tt.weak, tt.strong)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFilter_DropsBelowFloor(t *testing.T) {
	candidates := []catalog.Candidate{
		scored(t, "a", 0.9),
		scored(t, "b", 0.3),
		scored(t, "c", 0.1),
		scored(t, "d", 0.25),
	}

	got := Filter(candidates, 0.25, 10)

	want := []string{"a", "b", "d"}
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], gotIDs[i])
		}
	}
}

func TestFilter_KeepsUnscoredCandidates(t *testing.T) {
	candidates := []catalog.Candidate{
		scored(t, "a", 0.9),
		unscored(t, "legacy"),
		scored(t, "b", 0.1),
	}

	got := Filter(candidates, 0.25, 10)

	if len(got) != 2 || got[1].ID() != "legacy" {
		t.Fatalf("expected unscored candidate retained, got %v", ids(got))
	}
}

func TestFilter_TruncatesToLimit(t *testing.T) {
	// Pool of 50, six above the floor, top-5 requested.
	var candidates []catalog.Candidate
	for i := 0; i < 6; i++ {
		candidates = append(candidates, scored(t, string(rune('a'+i)), 0.9-float64(i)*0.1))
	}
	for i := 0; i < 44; i++ {
		candidates = append(candidates, scored(t, "low", 0.05))
	}

	got := Filter(candidates, 0.25, 5)

	if len(got) != 5 {
		t.Fatalf("expected exactly 5 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if *got[i].Similarity() > *got[i-1].Similarity() {
			t.Errorf("order not preserved at position %d", i)
		}
	}
}

func TestFilter_NeverExceedsLimit(t *testing.T) {
	candidates := []catalog.Candidate{scored(t, "a", 0.9), scored(t, "b", 0.8)}

	if got := Filter(candidates, 0.25, 1); len(got) > 1 {
		t.Errorf("limit violated: %d results", len(got))
	}
	if got := Filter(nil, 0.25, 5); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %d", len(got))
	}
}

func TestCategorize_TiersAreDisjoint(t *testing.T) {
	th := mustThresholds(t)
	candidates := []catalog.Candidate{
		scored(t, "s1", 0.9),
		scored(t, "s2", 0.65),
		scored(t, "w1", 0.5),
		scored(t, "w2", 0.45),
		scored(t, "floor", 0.3),
	}

	cl := Categorize(candidates, th)

	if cl.Status != StatusStrong {
		t.Fatalf("expected strong status, got %q", cl.Status)
	}
	strongIDs := ids(cl.StrongMatches)
	weakIDs := ids(cl.WeakMatches)
	if len(strongIDs) != 2 || len(weakIDs) != 2 {
		t.Fatalf("unexpected partition: strong=%v weak=%v", strongIDs, weakIDs)
	}
	seen := map[string]bool{}
	for _, id := range strongIDs {
		seen[id] = true
	}
	for _, id := range weakIDs {
		if seen[id] {
			t.Errorf("candidate %s appears in both tiers", id)
		}
	}
}

func TestCategorize_Status(t *testing.T) {
	th := mustThresholds(t)

	tests := []struct {
		name       string
		candidates []catalog.Candidate
		want       Status
	}{
		{"empty", nil, StatusNone},
		{"only below weak", []catalog.Candidate{scored(t, "a", 0.3)}, StatusNone},
		{"weak only", []catalog.Candidate{scored(t, "a", 0.5)}, StatusWeak},
		{"strong present", []catalog.Candidate{scored(t, "a", 0.5), scored(t, "b", 0.7)}, StatusStrong},
		{"unscored counts as weak", []catalog.Candidate{unscored(t, "legacy")}, StatusWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := Categorize(tt.candidates, th)
			if cl.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, cl.Status)
			}
			if (cl.Status == StatusStrong) != (len(cl.StrongMatches) > 0) {
				t.Error("status strong iff strong matches non-empty violated")
			}
		})
	}
}

func TestClassification_Best(t *testing.T) {
	th := mustThresholds(t)

	cl := Categorize([]catalog.Candidate{scored(t, "s", 0.8), scored(t, "w", 0.5)}, th)
	if got := ids(cl.Best()); len(got) != 1 || got[0] != "s" {
		t.Errorf("expected strong set only, got %v", got)
	}

	cl = Categorize([]catalog.Candidate{scored(t, "w", 0.5)}, th)
	if got := ids(cl.Best()); len(got) != 1 || got[0] != "w" {
		t.Errorf("expected weak set, got %v", got)
	}

	cl = Categorize(nil, th)
	if got := cl.Best(); got != nil {
		t.Errorf("expected nil for none status, got %v", got)
	}
}
