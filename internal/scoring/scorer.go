package scoring

import (
	"image"
	"log"
	"math"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/landmarks"
)

// Weights holds the composite blend plus the optimal pose envelope.
type Weights struct {
	Capture    float64 `yaml:"capture"`
	Eyes       float64 `yaml:"eyes"`
	Expression float64 `yaml:"expression"`
	Sharpness  float64 `yaml:"sharpness"`
	Pose       float64 `yaml:"pose"`

	// Pose angles inside the envelope score 1.0, outside 0.5.
	MaxYaw   float64 `yaml:"max_yaw"`
	MaxPitch float64 `yaml:"max_pitch"`
	MaxRoll  float64 `yaml:"max_roll"`

	// OffPoseScore is the pose score outside the optimal envelope.
	OffPoseScore float64 `yaml:"off_pose_score"`
}

// DefaultWeights returns the calibrated composite blend.
func DefaultWeights() Weights {
	return Weights{
		Capture:      0.30,
		Eyes:         0.25,
		Expression:   0.20,
		Sharpness:    0.15,
		Pose:         0.10,
		MaxYaw:       25,
		MaxPitch:     20,
		MaxRoll:      15,
		OffPoseScore: 0.5,
	}
}

// Scorer turns detector output into immutable FaceQualityRecords.
type Scorer struct {
	weights    Weights
	eyes       landmarks.EyeThresholds
	expression landmarks.ExpressionWeights
	edges      detect.EdgeFilter
}

// NewScorer creates a scorer. The edge filter may be nil, in which case the
// sharpness proxy falls back to the area-only signal.
func NewScorer(w Weights, eyes landmarks.EyeThresholds, expr landmarks.ExpressionWeights, edges detect.EdgeFilter) *Scorer {
	return &Scorer{
		weights:    w,
		eyes:       eyes,
		expression: expr,
		edges:      edges,
	}
}

// Score builds the quality record for one detected face. The decoded image is
// optional; without it the sharpness estimate degrades to the area signal.
func (s *Scorer) Score(photo detect.Photo, face detect.DetectedFace, img image.Image) FaceQualityRecord {
	eyes := landmarks.EyeState{LeftOpen: true, RightOpen: true, Confidence: 0}
	expression := landmarks.ExpressionQuality{Intensity: 0, Naturalness: 0.5, Confidence: 0}
	if face.Landmarks != nil {
		lm := face.Landmarks
		eyes = landmarks.ResolveEyeState(lm.LeftEye, lm.RightEye, s.eyes)
		expression = landmarks.ScoreExpression(lm.OuterLips, lm.Contour, lm.LeftEye, lm.RightEye, s.expression)
	}

	sharpness := s.estimateSharpness(photo, face, img)

	eyeScore := 0.0
	if eyes.BothOpen() {
		eyeScore = 1.0
	}

	poseScore := s.weights.OffPoseScore
	if s.poseOptimal(face.Pose) {
		poseScore = 1.0
	}

	expressionScore := 0.6*expression.Naturalness + 0.4*expression.Intensity

	composite := s.weights.Capture*clamp01(face.CaptureQuality) +
		s.weights.Eyes*eyeScore +
		s.weights.Expression*expressionScore +
		s.weights.Sharpness*sharpness +
		s.weights.Pose*poseScore

	return FaceQualityRecord{
		PhotoID:    photo.ID,
		FaceIndex:  face.Index,
		TakenAt:    photo.TakenAt,
		BBox:       face.BBox,
		Eyes:       eyes,
		Expression: expression,
		Pose:       face.Pose,
		Sharpness:  sharpness,
		DetScore:   face.DetScore,
		Composite:  clamp01(composite),
	}
}

// poseOptimal reports whether the head orientation sits inside the envelope.
func (s *Scorer) poseOptimal(p detect.Pose) bool {
	return math.Abs(p.Yaw) <= s.weights.MaxYaw &&
		math.Abs(p.Pitch) <= s.weights.MaxPitch &&
		math.Abs(p.Roll) <= s.weights.MaxRoll
}

// estimateSharpness blends the face-area ratio with the edge response of the
// face crop. This is a pragmatic proxy, not true blur detection: larger
// regions that the edge filter handles successfully score higher.
func (s *Scorer) estimateSharpness(photo detect.Photo, face detect.DetectedFace, img image.Image) float64 {
	areaScore := clamp01(face.BBox.Area() * areaScale)

	if s.edges == nil || img == nil {
		return clamp01(areaScore * unfilteredFactor)
	}

	edge, err := s.edges.EdgeResponse(img, face.BBox)
	if err != nil {
		log.Printf("edge filter failed for photo %s face %d: %v", photo.ID, face.Index, err)
		return clamp01(areaScore * unfilteredFactor)
	}

	return clamp01(areaWeight*areaScore + edgeWeight*clamp01(edge))
}

const (
	// areaScale maps the normalized face area onto [0,1]; a face covering 5%
	// of the frame saturates the area signal.
	areaScale = 20.0

	// unfilteredFactor discounts regions the edge filter could not process.
	unfilteredFactor = 0.8

	areaWeight = 0.4
	edgeWeight = 0.6
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
