// Package facematch finds the enrolled user closest to a probe face embedding.
// All distances are euclidean distances between L2-normalized vectors.
package facematch

import "math"

// Entry is one enrolled user's embedding in the gallery.
type Entry struct {
	UserID    string
	Embedding []float32
}

// Gallery is an ordered list of enrolled embeddings. Matching iterates it in
// order, so callers that need reproducible tie-breaking must keep it sorted.
type Gallery []Entry

// MatchResult is the outcome of FindBest.
// UserID is empty when nothing was under the threshold; Distance is then the
// closest distance seen (or +Inf for an empty gallery).
type MatchResult struct {
	UserID   string
	Distance float64
}

// Matched reports whether a gallery entry satisfied the threshold.
func (r MatchResult) Matched() bool {
	return r.UserID != ""
}

func noMatch() MatchResult {
	return MatchResult{Distance: math.Inf(1)}
}
