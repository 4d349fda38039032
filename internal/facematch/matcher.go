package facematch

import "math"

// FindBest returns the gallery entry closest to the probe.
//
// Each gallery embedding is compared with both the probe and its mirrored
// counterpart and the smaller distance counts. An entry becomes the running
// best only when that distance is below the running minimum and strictly below
// threshold, so the first of several equal minima wins.
// Either probe may be nil when its extraction failed; both nil yields no match.
func FindBest(probe, mirrored []float32, gallery Gallery, threshold float64) MatchResult {
	np := L2Normalize(probe)
	nm := L2Normalize(mirrored)

	result := noMatch()
	if np == nil && nm == nil {
		return result
	}

	closest := math.Inf(1)
	for _, entry := range gallery {
		ng := L2Normalize(entry.Embedding)
		if ng == nil {
			continue
		}

		best := math.Min(probeDistance(np, ng), probeDistance(nm, ng))
		if math.IsInf(best, 1) {
			continue // dimension mismatch
		}
		if best < closest {
			closest = best
		}

		if best < result.Distance && best < threshold {
			result.UserID = entry.UserID
			result.Distance = best
		}
	}

	if !result.Matched() {
		result.Distance = closest
	}
	return result
}

func probeDistance(probe, gallery []float32) float64 {
	if probe == nil {
		return math.Inf(1)
	}
	return EuclideanDistance(probe, gallery)
}
