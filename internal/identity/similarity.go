package identity

import (
	"math"

	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// Angle normalizers for the pose similarity blend. Yaw and pitch rarely
// exceed ±90° for a detectable face; roll spans the full ±180°.
const (
	yawNormalizer   = 90.0
	pitchNormalizer = 90.0
	rollNormalizer  = 180.0
)

// embeddingSimilarity maps a descriptor distance (cosine, 0..2) onto [0,1].
func embeddingSimilarity(distance float64) float64 {
	return math.Max(0, 1-distance/2)
}

// angleSimilarity scores how close two angles are, linearly falling to zero
// at the normalizer.
func angleSimilarity(a, b, normalizer float64) float64 {
	return math.Max(0, 1-math.Abs(a-b)/normalizer)
}

// poseSimilarity blends per-axis angle similarities, weighting yaw highest
// since it dominates apparent face identity changes.
func poseSimilarity(a, b scoring.FaceQualityRecord) float64 {
	return 0.5*angleSimilarity(a.Pose.Yaw, b.Pose.Yaw, yawNormalizer) +
		0.3*angleSimilarity(a.Pose.Pitch, b.Pose.Pitch, pitchNormalizer) +
		0.2*angleSimilarity(a.Pose.Roll, b.Pose.Roll, rollNormalizer)
}

// featureConsistency scores soft agreement between two faces: matching eye
// state, similar smile intensity, and alignment-compatible pose each add to
// a 0.5 base, capped at 1.0.
func (r *Resolver) featureConsistency(a, b scoring.FaceQualityRecord) float64 {
	score := 0.5
	if a.Eyes.BothOpen() == b.Eyes.BothOpen() {
		score += 0.2
	}
	if math.Abs(a.Expression.Intensity-b.Expression.Intensity) < r.thresholds.MaxSmileDelta {
		score += 0.2
	}
	if math.Abs(a.Pose.Yaw-b.Pose.Yaw) < r.thresholds.AlignYaw &&
		math.Abs(a.Pose.Pitch-b.Pose.Pitch) < r.thresholds.AlignPitch {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

// centerDistance returns the distance between two face box centers in
// normalized coordinates.
func centerDistance(a, b scoring.FaceQualityRecord) float64 {
	ax, ay := a.BBox.Center()
	bx, by := b.BBox.Center()
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

// areaRatio returns the face area ratio a/b, or 0 for degenerate boxes.
func areaRatio(a, b scoring.FaceQualityRecord) float64 {
	areaB := b.BBox.Area()
	if areaB <= 0 {
		return 0
	}
	return a.BBox.Area() / areaB
}
