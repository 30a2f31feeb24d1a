package detect

import "math"

// maxCosineDistance is returned for inputs where no angle can be measured:
// mismatched lengths, empty descriptors or zero vectors.
const maxCosineDistance = 2.0

// CosineDistance measures the angular distance between two face descriptors
// as 1 minus their cosine similarity, so identical descriptors score 0 and
// opposite ones score 2.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return maxCosineDistance
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return maxCosineDistance
	}

	// Accumulated rounding can push the ratio marginally outside [-1, 1].
	similarity := math.Max(-1, math.Min(1, dot/(math.Sqrt(magA)*math.Sqrt(magB))))
	return 1 - similarity
}
