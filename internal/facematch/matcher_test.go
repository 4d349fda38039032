package facematch

import (
	"math"
	"testing"
)

func TestFindBest_ExactMatch(t *testing.T) {
	gallery := Gallery{
		{UserID: "S1", Embedding: []float32{1, 0, 0}},
		{UserID: "S2", Embedding: []float32{0, 1, 0}},
	}

	result := FindBest([]float32{1, 0, 0}, []float32{1, 0, 0}, gallery, 1.0)

	if result.UserID != "S1" {
		t.Fatalf("expected S1, got %q", result.UserID)
	}
	if result.Distance > eps {
		t.Errorf("expected distance 0, got %v", result.Distance)
	}
	if !result.Matched() {
		t.Error("expected Matched() to be true")
	}
}

func TestFindBest_UsesMirroredProbe(t *testing.T) {
	gallery := Gallery{
		{UserID: "S1", Embedding: []float32{0, 1}},
	}

	// The unmirrored probe is orthogonal (distance sqrt(2)), the mirrored one is exact.
	result := FindBest([]float32{1, 0}, []float32{0, 1}, gallery, 1.0)

	if result.UserID != "S1" {
		t.Fatalf("expected mirrored probe to match S1, got %q", result.UserID)
	}
	if result.Distance > eps {
		t.Errorf("expected distance 0, got %v", result.Distance)
	}
}

func TestFindBest_ThresholdIsStrict(t *testing.T) {
	// Normalized distance between these two is exactly 2.
	gallery := Gallery{{UserID: "S1", Embedding: []float32{-1, 0}}}

	result := FindBest([]float32{1, 0}, nil, gallery, 2.0)
	if result.Matched() {
		t.Errorf("distance equal to threshold must not match, got %q", result.UserID)
	}
	if math.Abs(result.Distance-2) > eps {
		t.Errorf("expected closest distance 2, got %v", result.Distance)
	}

	result = FindBest([]float32{1, 0}, nil, gallery, 2.0+1e-9)
	if !result.Matched() {
		t.Error("distance just below threshold should match")
	}
}

func TestFindBest_NeverReturnsMatchAtOrAboveThreshold(t *testing.T) {
	gallery := Gallery{
		{UserID: "A", Embedding: []float32{1, 1, 0}},
		{UserID: "B", Embedding: []float32{0, 1, 1}},
		{UserID: "C", Embedding: []float32{1, 0, 1}},
		{UserID: "D", Embedding: []float32{-1, 2, 0.5}},
	}
	probes := [][]float32{
		{1, 0, 0},
		{0.2, 0.9, 0.1},
		{-1, -1, -1},
		{3, 1, 2},
	}
	thresholds := []float64{0.1, 0.5, 0.68, 1.0, 1.5}

	for _, p := range probes {
		for _, th := range thresholds {
			r := FindBest(p, nil, gallery, th)
			if r.Matched() && r.Distance >= th {
				t.Errorf("probe %v threshold %v matched %s at distance %v", p, th, r.UserID, r.Distance)
			}
		}
	}
}

func TestFindBest_PicksClosest(t *testing.T) {
	gallery := Gallery{
		{UserID: "far", Embedding: []float32{0, 1}},
		{UserID: "near", Embedding: []float32{1, 0.1}},
		{UserID: "middle", Embedding: []float32{1, 1}},
	}

	result := FindBest([]float32{1, 0}, nil, gallery, 1.5)
	if result.UserID != "near" {
		t.Errorf("expected near, got %q", result.UserID)
	}
}

func TestFindBest_TieBreakFirstWins(t *testing.T) {
	gallery := Gallery{
		{UserID: "S1", Embedding: []float32{2, 0}},
		{UserID: "S2", Embedding: []float32{5, 0}}, // same direction, same normalized distance
	}

	result := FindBest([]float32{1, 0}, nil, gallery, 1.0)
	if result.UserID != "S1" {
		t.Errorf("expected first entry to win tie, got %q", result.UserID)
	}
}

func TestFindBest_NoMatch(t *testing.T) {
	gallery := Gallery{
		{UserID: "S1", Embedding: []float32{0, 1}},
		{UserID: "S2", Embedding: []float32{-1, 0}},
	}

	result := FindBest([]float32{1, 0}, []float32{1, 0}, gallery, 0.5)
	if result.Matched() {
		t.Errorf("expected no match, got %q", result.UserID)
	}
	if math.Abs(result.Distance-math.Sqrt2) > eps {
		t.Errorf("expected closest distance sqrt(2), got %v", result.Distance)
	}
}

func TestFindBest_SkipsInvalidEntries(t *testing.T) {
	gallery := Gallery{
		{UserID: "zero", Embedding: []float32{0, 0}},
		{UserID: "wrong-dim", Embedding: []float32{1, 0, 0}},
		{UserID: "empty", Embedding: nil},
		{UserID: "ok", Embedding: []float32{1, 0}},
	}

	result := FindBest([]float32{1, 0}, nil, gallery, 1.0)
	if result.UserID != "ok" {
		t.Errorf("expected ok, got %q", result.UserID)
	}
}

func TestFindBest_NoProbes(t *testing.T) {
	gallery := Gallery{{UserID: "S1", Embedding: []float32{1, 0}}}

	result := FindBest(nil, nil, gallery, 1.0)
	if result.Matched() {
		t.Error("expected no match without probes")
	}
	if !math.IsInf(result.Distance, 1) {
		t.Errorf("expected +Inf distance, got %v", result.Distance)
	}
}

func TestFindBest_EmptyGallery(t *testing.T) {
	result := FindBest([]float32{1, 0}, []float32{0, 1}, nil, 1.0)
	if result.Matched() {
		t.Error("expected no match for empty gallery")
	}
	if !math.IsInf(result.Distance, 1) {
		t.Errorf("expected +Inf distance, got %v", result.Distance)
	}
}

func TestFindBest_ScaleInvariant(t *testing.T) {
	gallery := Gallery{{UserID: "S1", Embedding: []float32{100, 200, 300}}}

	result := FindBest([]float32{0.1, 0.2, 0.3}, nil, gallery, 0.01)
	if result.UserID != "S1" {
		t.Errorf("expected scaled gallery vector to match, got %q (distance %v)", result.UserID, result.Distance)
	}
}
