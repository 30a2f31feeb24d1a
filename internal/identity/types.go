// Package identity resolves which person each scored face belongs to within a
// single cluster analysis. Resolution is a best-effort heuristic classifier
// over noisy similarity signals, not an authoritative biometric system.
//
// Identities are ephemeral: IDs are minted per analysis run, never merge after
// creation, and are never persisted or matched across runs.
package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// PersonIdentity is one resolved person within a single analysis run: an
// opaque run-scoped ID plus the ordered faces assigned to it. Grows by
// appending only; never merges with another identity.
type PersonIdentity struct {
	ID    string                      `json:"id"`
	Faces []scoring.FaceQualityRecord `json:"faces"`

	// descriptors is parallel to Faces; nil entries mark faces whose
	// embedding was unavailable.
	descriptors [][]float32
}

func newPersonIdentity() *PersonIdentity {
	return &PersonIdentity{ID: uuid.NewString()}
}

func (p *PersonIdentity) append(rec scoring.FaceQualityRecord, desc []float32) {
	p.Faces = append(p.Faces, rec)
	p.descriptors = append(p.descriptors, desc)
}

// Descriptor returns the stored descriptor for the i-th face, or nil when the
// embedding was unavailable for it.
func (p *PersonIdentity) Descriptor(i int) []float32 {
	if i < 0 || i >= len(p.descriptors) {
		return nil
	}
	return p.descriptors[i]
}

// Thresholds consolidates every numeric cutoff of the resolution state
// machine so the tiers can be audited and tested at their boundaries.
type Thresholds struct {
	// MinSimilarity is the floor below which a candidate identity is not
	// even considered.
	MinSimilarity float64 `yaml:"min_similarity"`

	// HighSimilarity with MinConfidence accepts a match outright (inclusive).
	HighSimilarity float64 `yaml:"high_similarity"`
	MinConfidence  float64 `yaml:"min_confidence"`

	// MediumSimilarity accepts only when 2 of 3 secondary checks pass.
	MediumSimilarity float64 `yaml:"medium_similarity"`

	// Secondary checks: position within MaxCenterDistance of the unit-square
	// diagonal, photos within MaxTimeGap, face area ratio inside
	// [MinSizeRatio, MaxSizeRatio].
	MaxCenterDistance float64       `yaml:"max_center_distance"`
	MaxTimeGap        time.Duration `yaml:"max_time_gap"`
	MinSizeRatio      float64       `yaml:"min_size_ratio"`
	MaxSizeRatio      float64       `yaml:"max_size_ratio"`

	// Degraded fallback when no embedding is available: pure position+size.
	FallbackCenterDistance float64 `yaml:"fallback_center_distance"`
	FallbackWidthDiff      float64 `yaml:"fallback_width_diff"`

	// Alignment-compatible pose window for the feature consistency signal.
	AlignYaw   float64 `yaml:"align_yaw"`
	AlignPitch float64 `yaml:"align_pitch"`

	// MaxSmileDelta is the expression-intensity window that still counts as
	// a consistent smile between two faces of the same person.
	MaxSmileDelta float64 `yaml:"max_smile_delta"`
}

// DefaultThresholds returns the calibrated resolution cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSimilarity:          0.2,
		HighSimilarity:         0.6,
		MinConfidence:          0.5,
		MediumSimilarity:       0.4,
		MaxCenterDistance:      0.4,
		MaxTimeGap:             5 * time.Minute,
		MinSizeRatio:           0.5,
		MaxSizeRatio:           2.0,
		FallbackCenterDistance: 0.3,
		FallbackWidthDiff:      0.5,
		AlignYaw:               30,
		AlignPitch:             30,
		MaxSmileDelta:          0.3,
	}
}
