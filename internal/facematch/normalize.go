package facematch

import "math"

// L2Normalize returns a unit-length copy of v.
// Zero or empty vectors have no direction and yield nil.
func L2Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// EuclideanDistance computes the L2 distance between two vectors of equal length.
// Returns +Inf when the lengths differ or a vector is empty.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// NormalizedDistance normalizes both vectors and returns their euclidean distance,
// which lies in [0, 2]. Returns +Inf if either vector cannot be normalized.
func NormalizedDistance(a, b []float32) float64 {
	na, nb := L2Normalize(a), L2Normalize(b)
	if na == nil || nb == nil {
		return math.Inf(1)
	}
	return EuclideanDistance(na, nb)
}
