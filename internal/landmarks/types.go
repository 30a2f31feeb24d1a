// Package landmarks computes geometric signals (eye openness, expression
// quality) from facial landmark point sets. All functions are pure and
// read-only over their inputs; missing or degenerate landmarks degrade to
// documented neutral defaults instead of errors.
package landmarks

// Point is a landmark coordinate normalized to the photo (x right, y down).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointSet is one facial region's landmark points plus the detector's quality
// estimate for that region in [0,1]. An empty Points slice means the detector
// could not resolve the region, which is a valid, expected outcome.
type PointSet struct {
	Points  []Point `json:"points,omitempty"`
	Quality float64 `json:"quality"`
}

// Empty reports whether the region has no landmark data.
func (s PointSet) Empty() bool {
	return len(s.Points) == 0
}
