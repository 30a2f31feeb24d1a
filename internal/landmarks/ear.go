package landmarks

import (
	"math"
	"sort"
)

const (
	// minEyePoints is the minimum landmark count needed to compute an EAR.
	minEyePoints = 6

	// neutralEAR is returned when the geometry is too degenerate to measure.
	neutralEAR = 0.5

	// minEyeSpan guards the EAR division against a near-zero horizontal span.
	minEyeSpan = 1e-4

	// maxVerticalCandidates caps how many top/bottom lid points are considered.
	maxVerticalCandidates = 3
)

// EyeState is the resolved openness decision for a face's eye pair.
type EyeState struct {
	LeftOpen   bool    `json:"left_open"`
	RightOpen  bool    `json:"right_open"`
	Confidence float64 `json:"confidence"`
}

// BothOpen reports whether both eyes were classified as open.
func (s EyeState) BothOpen() bool {
	return s.LeftOpen && s.RightOpen
}

// EyeThresholds selects the per-eye open cutoff from the average EAR of the
// pair. Raw EAR varies by roughly ±0.1 across individuals purely from eye
// shape, so a single global cutoff misclassifies genuinely-open narrow eyes
// as closed; the band structure adapts the cutoff to the observed pair.
type EyeThresholds struct {
	WideBand   float64 `yaml:"wide_band"`   // avg EAR above this uses WideOpen
	NormalBand float64 `yaml:"normal_band"` // avg EAR above this uses NormalOpen
	NarrowBand float64 `yaml:"narrow_band"` // avg EAR above this uses NarrowOpen

	WideOpen   float64 `yaml:"wide_open"`
	NormalOpen float64 `yaml:"normal_open"`
	NarrowOpen float64 `yaml:"narrow_open"`
	SlitOpen   float64 `yaml:"slit_open"` // used below NarrowBand
}

// DefaultEyeThresholds returns the calibrated EAR bands.
func DefaultEyeThresholds() EyeThresholds {
	return EyeThresholds{
		WideBand:   0.30,
		NormalBand: 0.20,
		NarrowBand: 0.12,
		WideOpen:   0.21,
		NormalOpen: 0.18,
		NarrowOpen: 0.15,
		SlitOpen:   0.12,
	}
}

// cutoff picks the open threshold for a given average EAR.
func (t EyeThresholds) cutoff(avgEAR float64) float64 {
	switch {
	case avgEAR > t.WideBand:
		return t.WideOpen
	case avgEAR > t.NormalBand:
		return t.NormalOpen
	case avgEAR > t.NarrowBand:
		return t.NarrowOpen
	default:
		return t.SlitOpen
	}
}

// EyeAspectRatio computes the eye aspect ratio from an eye landmark set.
//
// The corners are the two points with extreme x. From the remaining points,
// up to three top and three bottom candidates (extreme y) are paired to the
// corner they sit closest to, and the ratio is the mean vertical gap over the
// horizontal span:
//
//	EAR = (‖topOuter−bottomOuter‖ + ‖topInner−bottomInner‖) / (2·‖outer−inner‖)
//
// Degenerate geometry (fewer than six points, near-zero span) yields a
// neutral 0.5 rather than an error or a division blow-up.
func EyeAspectRatio(points []Point) float64 {
	if len(points) < minEyePoints {
		return neutralEAR
	}

	outer, inner := extremesByX(points)
	span := Distance(outer, inner)
	if math.Abs(inner.X-outer.X) < minEyeSpan || span < minEyeSpan {
		return neutralEAR
	}

	// Lid candidates exclude the corners so a flat corner point can never be
	// paired against itself.
	lids := make([]Point, 0, len(points))
	for _, p := range points {
		if p == outer || p == inner {
			continue
		}
		lids = append(lids, p)
	}
	if len(lids) < 2 {
		return neutralEAR
	}

	sort.Slice(lids, func(i, j int) bool { return lids[i].Y < lids[j].Y })

	n := min(maxVerticalCandidates, len(lids)/2)
	if n == 0 {
		n = 1
	}
	tops := lids[:n]
	bottoms := lids[len(lids)-n:]

	topOuter := nearestByX(tops, outer)
	bottomOuter := nearestByX(bottoms, outer)
	topInner := nearestByX(tops, inner)
	bottomInner := nearestByX(bottoms, inner)

	return (Distance(topOuter, bottomOuter) + Distance(topInner, bottomInner)) / (2 * span)
}

// ResolveEyeState classifies eye openness for a pair of eye landmark sets.
//
// Missing landmarks on either side yield the optimistic default (both open,
// zero confidence) so downstream scoring degrades gracefully instead of
// penalizing faces the detector could not fully analyze.
func ResolveEyeState(left, right PointSet, t EyeThresholds) EyeState {
	if left.Empty() || right.Empty() {
		return EyeState{LeftOpen: true, RightOpen: true, Confidence: 0}
	}

	leftEAR := EyeAspectRatio(left.Points)
	rightEAR := EyeAspectRatio(right.Points)
	avgEAR := (leftEAR + rightEAR) / 2

	cutoff := t.cutoff(avgEAR)
	confidence := 1.0
	if cutoff > 0 {
		confidence = math.Min(1, avgEAR/cutoff)
	}

	return EyeState{
		LeftOpen:   leftEAR > cutoff,
		RightOpen:  rightEAR > cutoff,
		Confidence: confidence,
	}
}
