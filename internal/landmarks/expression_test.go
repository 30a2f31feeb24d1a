package landmarks

import "testing"

// smileLips builds an outer-lip set whose corners sit above the mouth center.
func smileLips() PointSet {
	return PointSet{
		Points: []Point{
			{X: 0.0, Y: 0.40}, // left corner
			{X: 1.0, Y: 0.40}, // right corner
			{X: 0.5, Y: 0.45}, // top
			{X: 0.5, Y: 0.75}, // bottom
		},
		Quality: 1,
	}
}

// neutralLips builds an outer-lip set with corners level with the center.
func neutralLips() PointSet {
	return PointSet{
		Points: []Point{
			{X: 0.0, Y: 0.50},
			{X: 1.0, Y: 0.50},
			{X: 0.5, Y: 0.45},
			{X: 0.5, Y: 0.55},
		},
		Quality: 1,
	}
}

func TestScoreExpression_SmileBeatsNeutral(t *testing.T) {
	w := DefaultExpressionWeights()
	eyes := PointSet{Points: syntheticEye(0.25), Quality: 1}

	smile := ScoreExpression(smileLips(), PointSet{}, eyes, eyes, w)
	neutral := ScoreExpression(neutralLips(), PointSet{}, eyes, eyes, w)

	if smile.Intensity <= neutral.Intensity {
		t.Errorf("expected smile intensity %.4f to exceed neutral %.4f",
			smile.Intensity, neutral.Intensity)
	}
}

func TestScoreExpression_MissingLips(t *testing.T) {
	got := ScoreExpression(PointSet{}, PointSet{}, PointSet{}, PointSet{}, DefaultExpressionWeights())

	if got.Intensity != 0 || got.Naturalness != 0.5 || got.Confidence != 0 {
		t.Errorf("expected neutral zero-confidence expression, got %+v", got)
	}
}

func TestScoreExpression_PosedSmilePenalized(t *testing.T) {
	w := DefaultExpressionWeights()

	// Strong lip activation with wide-open eyes (no creasing) reads as posed.
	relaxed := PointSet{Points: syntheticEye(0.35), Quality: 1}
	posed := ScoreExpression(smileLips(), PointSet{}, relaxed, relaxed, w)

	// The same lips with narrowed eyes show coordinated Duchenne activation.
	creased := PointSet{Points: syntheticEye(0.15), Quality: 1}
	natural := ScoreExpression(smileLips(), PointSet{}, creased, creased, w)

	if natural.Naturalness <= posed.Naturalness {
		t.Errorf("expected coordinated smile naturalness %.4f to exceed posed %.4f",
			natural.Naturalness, posed.Naturalness)
	}
}

func TestScoreExpression_AsymmetryLowersNaturalness(t *testing.T) {
	w := DefaultExpressionWeights()
	eyes := PointSet{Points: syntheticEye(0.15), Quality: 1}

	crooked := PointSet{
		Points: []Point{
			{X: 0.0, Y: 0.35}, // left corner pulled high
			{X: 1.0, Y: 0.48},
			{X: 0.5, Y: 0.45},
			{X: 0.5, Y: 0.75},
		},
		Quality: 1,
	}

	symmetric := ScoreExpression(smileLips(), PointSet{}, eyes, eyes, w)
	asymmetric := ScoreExpression(crooked, PointSet{}, eyes, eyes, w)

	if asymmetric.Naturalness >= symmetric.Naturalness {
		t.Errorf("expected asymmetric naturalness %.4f below symmetric %.4f",
			asymmetric.Naturalness, symmetric.Naturalness)
	}
}

func TestReadCheeks(t *testing.T) {
	// A curved contour should register more cheek definition than a flat one.
	flat := []Point{
		{X: 0.0, Y: 0.5}, {X: 0.25, Y: 0.5}, {X: 0.5, Y: 0.5},
		{X: 0.75, Y: 0.5}, {X: 1.0, Y: 0.5},
	}
	curved := []Point{
		{X: 0.0, Y: 0.5}, {X: 0.25, Y: 0.62}, {X: 0.5, Y: 0.68},
		{X: 0.75, Y: 0.62}, {X: 1.0, Y: 0.5},
	}

	flatSignal, ok := readCheeks(flat)
	if !ok {
		t.Fatal("expected flat contour to be readable")
	}
	curvedSignal, ok := readCheeks(curved)
	if !ok {
		t.Fatal("expected curved contour to be readable")
	}

	if curvedSignal <= flatSignal {
		t.Errorf("expected curved contour signal %.4f to exceed flat %.4f",
			curvedSignal, flatSignal)
	}

	if _, ok := readCheeks(flat[:3]); ok {
		t.Error("expected too-short contour to be rejected")
	}
}
