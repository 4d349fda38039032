package facematch

import (
	"math"
	"testing"
)

const eps = 1e-6

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestL2Normalize(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
		isNil bool
	}{
		{"unit axis", []float32{1, 0, 0}, false},
		{"scaled", []float32{3, 4}, false},
		{"negative", []float32{-2, -2, 1}, false},
		{"zero vector", []float32{0, 0, 0}, true},
		{"empty", []float32{}, true},
		{"nil", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := L2Normalize(tc.input)
			if tc.isNil {
				if got != nil {
					t.Errorf("L2Normalize(%v) = %v; want nil", tc.input, got)
				}
				return
			}
			if math.Abs(norm(got)-1) > eps {
				t.Errorf("L2Normalize(%v) has norm %v; want 1", tc.input, norm(got))
			}
		})
	}
}

func TestL2Normalize_DoesNotMutateInput(t *testing.T) {
	in := []float32{3, 4}
	_ = L2Normalize(in)
	if in[0] != 3 || in[1] != 4 {
		t.Errorf("input was mutated: %v", in)
	}
}

func TestL2Normalize_Idempotent(t *testing.T) {
	vectors := [][]float32{
		{3, 4},
		{0.1, -0.7, 2.5, 9},
		{1e-3, 1e-3},
		{-5, 0, 12},
	}
	for _, v := range vectors {
		once := L2Normalize(v)
		twice := L2Normalize(once)
		for i := range once {
			if math.Abs(float64(once[i]-twice[i])) > eps {
				t.Errorf("normalizing %v twice changed component %d: %v vs %v", v, i, once[i], twice[i])
			}
		}
	}
}

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"3-4-5", []float32{0, 0}, []float32{3, 4}, 5},
		{"opposite units", []float32{1, 0}, []float32{-1, 0}, 2},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, math.Inf(1)},
		{"empty", []float32{}, []float32{}, math.Inf(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EuclideanDistance(tc.a, tc.b)
			if math.IsInf(tc.expected, 1) {
				if !math.IsInf(got, 1) {
					t.Errorf("EuclideanDistance = %v; want +Inf", got)
				}
				return
			}
			if math.Abs(got-tc.expected) > eps {
				t.Errorf("EuclideanDistance = %v; want %v", got, tc.expected)
			}
		})
	}
}

func TestNormalizedDistance_SymmetricAndNonNegative(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{-1, 0.5, 4},
		{10, 10, 10},
		{0.01, -3, 2},
	}
	for i, a := range vectors {
		for j, b := range vectors {
			ab := NormalizedDistance(a, b)
			ba := NormalizedDistance(b, a)
			if ab < 0 {
				t.Errorf("distance(%d,%d) = %v is negative", i, j, ab)
			}
			if math.Abs(ab-ba) > eps {
				t.Errorf("distance not symmetric for (%d,%d): %v vs %v", i, j, ab, ba)
			}
			if ab > 2+eps {
				t.Errorf("normalized distance(%d,%d) = %v exceeds 2", i, j, ab)
			}
		}
	}
}

func TestNormalizedDistance_ScaleInvariant(t *testing.T) {
	a := []float32{1, 2, 3}
	scaled := []float32{10, 20, 30}
	if d := NormalizedDistance(a, scaled); d > eps {
		t.Errorf("expected ~0 distance for scaled vector, got %v", d)
	}
}

func TestNormalizedDistance_ZeroVector(t *testing.T) {
	if d := NormalizedDistance([]float32{0, 0}, []float32{1, 0}); !math.IsInf(d, 1) {
		t.Errorf("expected +Inf for zero vector, got %v", d)
	}
}
