package analysis

import (
	"testing"

	"github.com/kozaktomas/burst-composer/internal/landmarks"
	"github.com/kozaktomas/burst-composer/internal/scoring"
)

func personWithGap(id string, best, worst scoring.FaceQualityRecord) PersonFaceQualityAnalysis {
	return PersonFaceQualityAnalysis{
		PersonID:             id,
		Faces:                []scoring.FaceQualityRecord{best, worst},
		Best:                 best,
		Worst:                worst,
		ImprovementPotential: best.Composite - worst.Composite,
	}
}

func TestEvaluateEligibility_Rejections(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		name       string
		analysis   ClusterFaceAnalysis
		reason     NotEligibleReason
		confidence float64
	}{
		{
			"single photo",
			ClusterFaceAnalysis{PhotoCount: 1},
			ReasonInsufficientPhotos,
			1.0,
		},
		{
			"no qualifying persons",
			ClusterFaceAnalysis{PhotoCount: 3},
			ReasonNoFaceVariations,
			0.9,
		},
		{
			"improvement below threshold",
			ClusterFaceAnalysis{
				PhotoCount: 3,
				Persons: map[string]PersonFaceQualityAnalysis{
					"a": {ImprovementPotential: 0.29},
				},
				OverallImprovement: 0.29,
			},
			ReasonNoFaceVariations,
			0.8,
		},
		{
			"improvement exactly at threshold",
			ClusterFaceAnalysis{
				PhotoCount: 3,
				Persons: map[string]PersonFaceQualityAnalysis{
					"a": {ImprovementPotential: 0.3},
				},
				OverallImprovement: 0.3,
			},
			ReasonNoFaceVariations,
			0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EvaluateEligibility(&tt.analysis, thresholds)
			if result.IsEligible {
				t.Fatal("expected cluster to be rejected")
			}
			if result.Reason != tt.reason {
				t.Errorf("expected reason %s, got %s", tt.reason, result.Reason)
			}
			if result.Confidence != tt.confidence {
				t.Errorf("expected confidence %.2f, got %.2f", tt.confidence, result.Confidence)
			}
		})
	}
}

func TestEvaluateEligibility_Eligible(t *testing.T) {
	openEyes := landmarks.EyeState{LeftOpen: true, RightOpen: true}
	closedEyes := landmarks.EyeState{LeftOpen: false, RightOpen: false}

	blinker := personWithGap("person-b",
		scoring.FaceQualityRecord{PhotoID: "p2", Composite: 0.9, Eyes: openEyes},
		scoring.FaceQualityRecord{PhotoID: "p1", Composite: 0.5, Eyes: closedEyes},
	)
	frowner := personWithGap("person-a",
		scoring.FaceQualityRecord{
			PhotoID:    "p1",
			Composite:  0.8,
			Eyes:       openEyes,
			Expression: landmarks.ExpressionQuality{Intensity: 0.8, Naturalness: 0.8},
		},
		scoring.FaceQualityRecord{
			PhotoID:    "p3",
			Composite:  0.45,
			Eyes:       openEyes,
			Expression: landmarks.ExpressionQuality{Intensity: 0.1, Naturalness: 0.3},
		},
	)

	analysis := &ClusterFaceAnalysis{
		PhotoCount: 3,
		Persons: map[string]PersonFaceQualityAnalysis{
			blinker.PersonID: blinker,
			frowner.PersonID: frowner,
		},
		OverallImprovement: (0.4 + 0.35) / 2,
	}

	result := EvaluateEligibility(analysis, DefaultThresholds())
	if !result.IsEligible {
		t.Fatalf("expected eligible cluster, got reason %s", result.Reason)
	}
	if result.Confidence != analysis.OverallImprovement {
		t.Errorf("expected confidence %.4f, got %.4f", analysis.OverallImprovement, result.Confidence)
	}

	if len(result.Improvements) != 2 {
		t.Fatalf("expected 2 improvements, got %d", len(result.Improvements))
	}
	// Sorted by person ID for reproducible output.
	if result.Improvements[0].PersonID != "person-a" {
		t.Errorf("expected person-a first, got %s", result.Improvements[0].PersonID)
	}

	if got := result.Improvements[0].Category; got != CategoryExpression {
		t.Errorf("expected expression category for the frowner, got %s", got)
	}
	if got := result.Improvements[1].Category; got != CategoryEyesOpen {
		t.Errorf("expected eyes_open category for the blinker, got %s", got)
	}

	// Each improvement points at the person's best photo.
	if result.Improvements[1].SourcePhotoID != "p2" {
		t.Errorf("expected source photo p2, got %s", result.Improvements[1].SourcePhotoID)
	}
}

func TestInferCategory_OverallQualityFallback(t *testing.T) {
	openEyes := landmarks.EyeState{LeftOpen: true, RightOpen: true}

	person := personWithGap("p",
		scoring.FaceQualityRecord{Composite: 0.9, Eyes: openEyes, Sharpness: 0.9},
		scoring.FaceQualityRecord{Composite: 0.5, Eyes: openEyes, Sharpness: 0.2},
	)

	if got := inferCategory(person); got != CategoryOverallQuality {
		t.Errorf("expected overall_quality fallback, got %s", got)
	}
}
