// Package detect defines the external collaborators the analysis engine
// consumes (face detection, embeddings, image loading, edge filtering) and the
// data they exchange. The engine itself never talks to a model or the
// filesystem directly; it only sees these contracts.
package detect

import (
	"time"

	"github.com/kozaktomas/burst-composer/internal/landmarks"
)

// Photo identifies one photo inside a cluster. TakenAt drives the canonical
// processing order, so callers should populate it from EXIF when available.
type Photo struct {
	ID      string    `json:"id"`
	Path    string    `json:"path"`
	TakenAt time.Time `json:"taken_at"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
}

// Rect is a bounding box in normalized image coordinates (0-1, y down).
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the box center point.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Area returns the normalized area of the box.
func (r Rect) Area() float64 {
	if r.W <= 0 || r.H <= 0 {
		return 0
	}
	return r.W * r.H
}

// Pose holds head orientation angles in degrees as reported by the detector.
type Pose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// FaceLandmarks groups the optional per-region landmark sets for one face.
// Any region may be empty; consumers substitute documented neutral defaults.
type FaceLandmarks struct {
	LeftEye   landmarks.PointSet `json:"left_eye"`
	RightEye  landmarks.PointSet `json:"right_eye"`
	OuterLips landmarks.PointSet `json:"outer_lips"`
	Contour   landmarks.PointSet `json:"contour"`
}

// DetectedFace is one face as reported by the detector for a single photo.
// Immutable after detection.
type DetectedFace struct {
	Index          int            `json:"index"` // detector emission order within the photo
	BBox           Rect           `json:"bbox"`
	CaptureQuality float64        `json:"capture_quality"` // detector quality scalar in [0,1]
	DetScore       float64        `json:"det_score"`       // raw detection confidence
	Pose           Pose           `json:"pose"`
	Landmarks      *FaceLandmarks `json:"landmarks,omitempty"`
}
