package analysis

import (
	"sort"

	"github.com/kozaktomas/burst-composer/internal/scoring"
)

// Eligibility confidence levels for the terminal outcomes. The insufficient
// photo count is a certainty; the variation-based rejections carry slightly
// less, reflecting the heuristic nature of the improvement estimate.
const (
	insufficientPhotosConfidence = 1.0
	noPersonsConfidence          = 0.9
	lowImprovementConfidence     = 0.8
)

// expressionGapFloor is the best-to-worst expression gap above which the
// improvement is classified as an expression fix.
const expressionGapFloor = 0.15

// EvaluateEligibility decides whether a cluster is worth compositing. Every
// outcome is a typed value; "not eligible" is an expected result, not a
// failure.
func EvaluateEligibility(a *ClusterFaceAnalysis, t Thresholds) EligibilityResult {
	if a.PhotoCount < t.MinPhotos {
		return EligibilityResult{
			IsEligible: false,
			Reason:     ReasonInsufficientPhotos,
			Confidence: insufficientPhotosConfidence,
		}
	}

	if len(a.Persons) == 0 {
		return EligibilityResult{
			IsEligible: false,
			Reason:     ReasonNoFaceVariations,
			Confidence: noPersonsConfidence,
		}
	}

	if a.OverallImprovement <= t.MinOverallImprovement {
		return EligibilityResult{
			IsEligible: false,
			Reason:     ReasonNoFaceVariations,
			Confidence: lowImprovementConfidence,
		}
	}

	improvements := make([]EstimatedImprovement, 0, len(a.Persons))
	for _, person := range a.Persons {
		improvements = append(improvements, EstimatedImprovement{
			PersonID:      person.PersonID,
			SourcePhotoID: person.Best.PhotoID,
			Category:      inferCategory(person),
			Confidence:    person.ImprovementPotential,
		})
	}
	// Map iteration order is random; keep the output reproducible.
	sort.Slice(improvements, func(i, j int) bool {
		return improvements[i].PersonID < improvements[j].PersonID
	})

	return EligibilityResult{
		IsEligible:   true,
		Confidence:   a.OverallImprovement,
		Improvements: improvements,
	}
}

// inferCategory names what the composite swap would fix for one person:
// closed eyes dominate, then a clear expression gap, then general quality.
func inferCategory(p PersonFaceQualityAnalysis) ImprovementCategory {
	if !p.Worst.Eyes.BothOpen() && p.Best.Eyes.BothOpen() {
		return CategoryEyesOpen
	}
	if expressionScore(p.Best)-expressionScore(p.Worst) > expressionGapFloor {
		return CategoryExpression
	}
	return CategoryOverallQuality
}

func expressionScore(r scoring.FaceQualityRecord) float64 {
	return 0.6*r.Expression.Naturalness + 0.4*r.Expression.Intensity
}
