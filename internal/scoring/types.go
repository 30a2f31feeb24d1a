// Package scoring combines geometric signals with detector-supplied capture
// quality, pose, and a sharpness proxy into a single composite quality score
// per face.
package scoring

import (
	"strconv"
	"time"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/landmarks"
)

// FaceQualityRecord is the fully scored view of one detected face.
// Immutable once created by the Scorer.
type FaceQualityRecord struct {
	PhotoID   string    `json:"photo_id"`
	FaceIndex int       `json:"face_index"` // detector emission order within the photo
	TakenAt   time.Time `json:"taken_at"`

	BBox       detect.Rect                 `json:"bbox"`
	Eyes       landmarks.EyeState          `json:"eyes"`
	Expression landmarks.ExpressionQuality `json:"expression"`
	Pose       detect.Pose                 `json:"pose"`
	Sharpness  float64                     `json:"sharpness"`
	DetScore   float64                     `json:"det_score"`

	// Composite is the blended quality score in [0,1].
	Composite float64 `json:"composite"`
}

// Key identifies the face uniquely within one cluster analysis.
func (r FaceQualityRecord) Key() string {
	return r.PhotoID + "#" + strconv.Itoa(r.FaceIndex)
}
