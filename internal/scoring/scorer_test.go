package scoring

import (
	"image"
	"math"
	"testing"
	"time"

	"github.com/kozaktomas/burst-composer/internal/detect"
	"github.com/kozaktomas/burst-composer/internal/landmarks"
)

// stubEdgeFilter returns a fixed edge response.
type stubEdgeFilter struct {
	response float64
	err      error
	calls    int
}

func (f *stubEdgeFilter) EdgeResponse(img image.Image, region detect.Rect) (float64, error) {
	f.calls++
	return f.response, f.err
}

func testPhoto() detect.Photo {
	return detect.Photo{
		ID:      "photo-1",
		TakenAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestScore_MissingLandmarksDefaults(t *testing.T) {
	scorer := NewScorer(DefaultWeights(), landmarks.DefaultEyeThresholds(), landmarks.DefaultExpressionWeights(), nil)

	face := detect.DetectedFace{
		Index:          0,
		BBox:           detect.Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2},
		CaptureQuality: 0.9,
		DetScore:       0.95,
	}

	record := scorer.Score(testPhoto(), face, nil)

	if !record.Eyes.BothOpen() {
		t.Error("expected optimistic eye default for missing landmarks")
	}
	if record.Eyes.Confidence != 0 {
		t.Errorf("expected zero eye confidence, got %.4f", record.Eyes.Confidence)
	}
	if record.Expression.Naturalness != 0.5 || record.Expression.Confidence != 0 {
		t.Errorf("expected neutral expression, got %+v", record.Expression)
	}
}

func TestScore_CompositeBlend(t *testing.T) {
	weights := DefaultWeights()
	scorer := NewScorer(weights, landmarks.DefaultEyeThresholds(), landmarks.DefaultExpressionWeights(), nil)

	face := detect.DetectedFace{
		BBox:           detect.Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2},
		CaptureQuality: 0.9,
		Pose:           detect.Pose{Yaw: 5, Pitch: 3, Roll: 1},
	}

	record := scorer.Score(testPhoto(), face, nil)

	// No landmarks: eyes default open (score 1), expression is neutral
	// (0.6*0.5), sharpness is the discounted area signal, pose is optimal.
	area := face.BBox.Area() * 20
	if area > 1 {
		area = 1
	}
	sharpness := area * 0.8
	expected := weights.Capture*0.9 + weights.Eyes*1.0 + weights.Expression*0.3 +
		weights.Sharpness*sharpness + weights.Pose*1.0

	if math.Abs(record.Composite-expected) > 1e-9 {
		t.Errorf("expected composite %.4f, got %.4f", expected, record.Composite)
	}
}

func TestScore_PoseEnvelope(t *testing.T) {
	weights := DefaultWeights()
	scorer := NewScorer(weights, landmarks.DefaultEyeThresholds(), landmarks.DefaultExpressionWeights(), nil)

	tests := []struct {
		name    string
		pose    detect.Pose
		optimal bool
	}{
		{"frontal", detect.Pose{}, true},
		{"at the yaw limit", detect.Pose{Yaw: 25}, true},
		{"beyond yaw", detect.Pose{Yaw: 26}, false},
		{"beyond pitch", detect.Pose{Pitch: -21}, false},
		{"beyond roll", detect.Pose{Roll: 15.5}, false},
	}

	face := detect.DetectedFace{BBox: detect.Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			face.Pose = tt.pose
			inEnvelope := scorer.Score(testPhoto(), face, nil)

			face.Pose = detect.Pose{Yaw: 90, Pitch: 90, Roll: 90}
			offPose := scorer.Score(testPhoto(), face, nil)

			delta := inEnvelope.Composite - offPose.Composite
			expectedDelta := weights.Pose * (1.0 - weights.OffPoseScore)
			if tt.optimal {
				if math.Abs(delta-expectedDelta) > 1e-9 {
					t.Errorf("expected pose bonus %.4f, got %.4f", expectedDelta, delta)
				}
			} else if math.Abs(delta) > 1e-9 {
				t.Errorf("expected no pose bonus outside envelope, got delta %.4f", delta)
			}
		})
	}
}

func TestScore_ClosedEyesDropEyeScore(t *testing.T) {
	weights := DefaultWeights()
	scorer := NewScorer(weights, landmarks.DefaultEyeThresholds(), landmarks.DefaultExpressionWeights(), nil)

	closedEye := landmarks.PointSet{
		Points: []landmarks.Point{
			{X: 0.0, Y: 0.5}, {X: 1.0, Y: 0.5},
			{X: 0.25, Y: 0.49}, {X: 0.75, Y: 0.49},
			{X: 0.25, Y: 0.51}, {X: 0.75, Y: 0.51},
		},
		Quality: 1,
	}
	openEye := landmarks.PointSet{
		Points: []landmarks.Point{
			{X: 0.0, Y: 0.5}, {X: 1.0, Y: 0.5},
			{X: 0.25, Y: 0.35}, {X: 0.75, Y: 0.35},
			{X: 0.25, Y: 0.65}, {X: 0.75, Y: 0.65},
		},
		Quality: 1,
	}

	face := detect.DetectedFace{BBox: detect.Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}}

	face.Landmarks = &detect.FaceLandmarks{LeftEye: closedEye, RightEye: closedEye}
	closed := scorer.Score(testPhoto(), face, nil)

	face.Landmarks = &detect.FaceLandmarks{LeftEye: openEye, RightEye: openEye}
	open := scorer.Score(testPhoto(), face, nil)

	if closed.Eyes.BothOpen() {
		t.Error("expected closed eyes to be classified closed")
	}
	if open.Composite-closed.Composite < weights.Eyes-1e-9 {
		t.Errorf("expected eye weight gap of at least %.2f, got %.4f",
			weights.Eyes, open.Composite-closed.Composite)
	}
}

func TestEstimateSharpness(t *testing.T) {
	weights := DefaultWeights()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	face := detect.DetectedFace{BBox: detect.Rect{X: 0.4, Y: 0.4, W: 0.2, H: 0.2}}

	// Area 0.04 scales to 0.8.
	areaScore := 0.8

	filter := &stubEdgeFilter{response: 0.5}
	scorer := NewScorer(weights, landmarks.DefaultEyeThresholds(), landmarks.DefaultExpressionWeights(), filter)

	record := scorer.Score(testPhoto(), face, img)
	expected := 0.4*areaScore + 0.6*0.5
	if math.Abs(record.Sharpness-expected) > 1e-9 {
		t.Errorf("expected sharpness %.4f, got %.4f", expected, record.Sharpness)
	}
	if filter.calls != 1 {
		t.Errorf("expected one edge filter call, got %d", filter.calls)
	}

	// Without an image the estimate degrades to the discounted area signal.
	record = scorer.Score(testPhoto(), face, nil)
	if math.Abs(record.Sharpness-areaScore*0.8) > 1e-9 {
		t.Errorf("expected degraded sharpness %.4f, got %.4f", areaScore*0.8, record.Sharpness)
	}
}

func TestFaceQualityRecordKey(t *testing.T) {
	record := FaceQualityRecord{PhotoID: "p1", FaceIndex: 2}
	if key := record.Key(); key != "p1#2" {
		t.Errorf("expected key p1#2, got %s", key)
	}
}
