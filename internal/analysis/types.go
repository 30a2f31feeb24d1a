// Package analysis is the engine surface: it orchestrates scoring, identity
// resolution, per-person aggregation and the eligibility decision for one
// cluster of near-duplicate photos.
package analysis

import (
	"time"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/identity"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// Cluster is a caller-supplied group of near-duplicate photos (e.g. a burst).
// Clustering itself happens outside this engine.
type Cluster struct {
	ID     string         `json:"id"`
	Photos []detect.Photo `json:"photos"`
}

// PersonFaceQualityAnalysis summarizes one person's faces across the cluster.
// Only materialized for persons with at least two faces and a meaningful
// improvement potential.
type PersonFaceQualityAnalysis struct {
	PersonID string                      `json:"person_id"`
	Faces    []scoring.FaceQualityRecord `json:"faces"`
	Best     scoring.FaceQualityRecord   `json:"best"`
	Worst    scoring.FaceQualityRecord   `json:"worst"`

	// ImprovementPotential is best minus worst composite score, never
	// negative.
	ImprovementPotential float64 `json:"improvement_potential"`
}

// ClusterFaceAnalysis is the cached result of one cluster analysis run.
type ClusterFaceAnalysis struct {
	ClusterID  string    `json:"cluster_id"`
	PhotoCount int       `json:"photo_count"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	Persons map[string]PersonFaceQualityAnalysis `json:"persons"`

	// BasePhotoID is the suggested compositing base: the photo whose faces
	// have the highest mean composite score.
	BasePhotoID string `json:"base_photo_id"`

	// OverallImprovement is the mean improvement potential across persons.
	OverallImprovement float64 `json:"overall_improvement"`

	// index is only populated on freshly computed analyses; cached copies
	// reloaded from disk carry no descriptor index.
	index *identity.FaceIndex
}

// FaceIndex returns the cluster's similar-face index, or nil when the
// analysis was reloaded from a persistent cache.
func (a *ClusterFaceAnalysis) FaceIndex() *identity.FaceIndex {
	return a.index
}

// NotEligibleReason enumerates the terminal non-eligible outcomes. These are
// expected, common results and travel as values, never as errors.
type NotEligibleReason string

const (
	ReasonInsufficientPhotos NotEligibleReason = "insufficient_photos"
	ReasonNoFaceVariations   NotEligibleReason = "no_face_variations"
)

// ImprovementCategory classifies what a composite swap would fix for one
// person.
type ImprovementCategory string

const (
	CategoryEyesOpen       ImprovementCategory = "eyes_open"
	CategoryExpression     ImprovementCategory = "expression"
	CategoryOverallQuality ImprovementCategory = "overall_quality"
)

// EstimatedImprovement describes one person's expected gain from compositing.
type EstimatedImprovement struct {
	PersonID      string              `json:"person_id"`
	SourcePhotoID string              `json:"source_photo_id"` // photo holding the person's best face
	Category      ImprovementCategory `json:"category"`
	Confidence    float64             `json:"confidence"`
}

// EligibilityResult is the terminal decision for a cluster.
type EligibilityResult struct {
	IsEligible   bool                   `json:"is_eligible"`
	Reason       NotEligibleReason      `json:"reason,omitempty"`
	Confidence   float64                `json:"confidence"`
	Improvements []EstimatedImprovement `json:"improvements,omitempty"`
}

// Thresholds consolidates the aggregation and eligibility cutoffs.
type Thresholds struct {
	// MinPersonImprovement is the floor below which per-person score
	// variance counts as noise, not a genuine improvement opportunity.
	MinPersonImprovement float64 `yaml:"min_person_improvement"`

	// MinOverallImprovement is the mean-potential cutoff for eligibility.
	MinOverallImprovement float64 `yaml:"min_overall_improvement"`

	// MinPhotos is the smallest cluster worth analyzing for a composite.
	MinPhotos int `yaml:"min_photos"`
}

// DefaultThresholds returns the calibrated aggregation cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPersonImprovement:  0.2,
		MinOverallImprovement: 0.3,
		MinPhotos:             2,
	}
}

// ResultCache memoizes finished cluster analyses and per-photo face lists.
// Implementations must serialize access internally; the analyzer never holds
// any cache lock while calling collaborators.
type ResultCache interface {
	// Cluster returns the cached analysis if present and still valid for
	// the given photo count; a changed count forces recomputation.
	Cluster(clusterID string, photoCount int) (*ClusterFaceAnalysis, bool)
	SetCluster(analysis *ClusterFaceAnalysis)

	PhotoFaces(photoID string) ([]scoring.FaceQualityRecord, bool)
	SetPhotoFaces(photoID string, faces []scoring.FaceQualityRecord)
}
