package landmarks

import "math"

const (
	// minLipPoints is the minimum outer-lip landmark count for a lip reading.
	minLipPoints = 4

	// minContourPoints is the minimum face-contour count for cheek curvature.
	minContourPoints = 5

	// lipCurveScale converts normalized corner elevation into intensity.
	lipCurveScale = 8.0

	// lipSymmetryScale converts the corner elevation delta into a penalty.
	lipSymmetryScale = 4.0

	// contourCurveScale converts mean contour curvature into cheek definition.
	contourCurveScale = 40.0

	// creaseBaselineEAR is the relaxed-eye EAR against which vertical
	// compression (the Duchenne proxy) is measured.
	creaseBaselineEAR = 0.30

	// posedLipFloor and posedCreaseCeiling bound the "posed smile" detection:
	// strong lip activation with near-zero eye creasing.
	posedLipFloor      = 0.6
	posedCreaseCeiling = 0.1
)

// ExpressionQuality describes smile intensity and how genuine it appears.
type ExpressionQuality struct {
	Intensity   float64 `json:"intensity"`
	Naturalness float64 `json:"naturalness"`
	Confidence  float64 `json:"confidence"`
}

// ExpressionWeights consolidates the expression fusion constants so threshold
// changes are auditable in one place.
type ExpressionWeights struct {
	// Intensity mix over the three regional signals.
	Lip    float64 `yaml:"lip"`
	Crease float64 `yaml:"crease"`
	Cheek  float64 `yaml:"cheek"`

	// Naturalness mix, emphasizing the Duchenne crease signal.
	NatCrease   float64 `yaml:"nat_crease"`
	NatSymmetry float64 `yaml:"nat_symmetry"`
	NatCheek    float64 `yaml:"nat_cheek"`

	// PosedPenalty multiplies naturalness when lips are strongly activated
	// without any eye creasing. CoordinationBonus multiplies it when the
	// crease/lip activation ratio falls in a plausible coordinated range.
	PosedPenalty      float64 `yaml:"posed_penalty"`
	CoordinationBonus float64 `yaml:"coordination_bonus"`
	CoordinationMin   float64 `yaml:"coordination_min"`
	CoordinationMax   float64 `yaml:"coordination_max"`
}

// DefaultExpressionWeights returns the calibrated expression constants.
func DefaultExpressionWeights() ExpressionWeights {
	return ExpressionWeights{
		Lip:               0.60,
		Crease:            0.25,
		Cheek:             0.15,
		NatCrease:         0.50,
		NatSymmetry:       0.30,
		NatCheek:          0.20,
		PosedPenalty:      0.8,
		CoordinationBonus: 1.1,
		CoordinationMin:   0.2,
		CoordinationMax:   3.0,
	}
}

// lipSignals holds the per-region reading from the outer-lip points.
type lipSignals struct {
	intensity float64
	symmetry  float64
	openness  float64
}

// readLips measures corner elevation relative to the mouth center, corner
// symmetry, and mouth openness from the outer-lip landmark set.
func readLips(points []Point) (lipSignals, bool) {
	if len(points) < minLipPoints {
		return lipSignals{}, false
	}

	left, right := extremesByX(points)
	width := Distance(left, right)
	if width < minEyeSpan {
		return lipSignals{}, false
	}

	center := Centroid(points)

	// y grows downward, so a corner above the center has positive elevation.
	leftElev := (center.Y - left.Y) / width
	rightElev := (center.Y - right.Y) / width
	avgElev := (leftElev + rightElev) / 2

	var minY, maxY = points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	intensity := clamp01(avgElev * lipCurveScale)
	openness := clamp01((maxY - minY) / width)
	intensity = clamp01(intensity * (1 + 0.2*openness))

	return lipSignals{
		intensity: intensity,
		symmetry:  clamp01(1 - math.Abs(leftElev-rightElev)*lipSymmetryScale),
		openness:  openness,
	}, true
}

// readCheeks estimates cheek elevation and definition from the curvature of
// the face-contour points, measured as the mean second difference along the
// contour polyline, normalized by the contour extent.
func readCheeks(points []Point) (float64, bool) {
	if len(points) < minContourPoints {
		return 0, false
	}

	left, right := extremesByX(points)
	extent := Distance(left, right)
	if extent < minEyeSpan {
		return 0, false
	}

	var total float64
	for i := 1; i < len(points)-1; i++ {
		dx := points[i-1].X - 2*points[i].X + points[i+1].X
		dy := points[i-1].Y - 2*points[i].Y + points[i+1].Y
		total += math.Sqrt(dx*dx + dy*dy)
	}
	mean := total / float64(len(points)-2) / extent

	return clamp01(mean * contourCurveScale), true
}

// readCrease derives the eye-creasing signal from vertical eye compression.
// Narrowed (but not closed) eyes during a smile compress the EAR below the
// relaxed baseline, which proxies Duchenne activation.
func readCrease(left, right PointSet) (float64, bool) {
	if left.Empty() || right.Empty() {
		return 0, false
	}
	avgEAR := (EyeAspectRatio(left.Points) + EyeAspectRatio(right.Points)) / 2
	if avgEAR >= creaseBaselineEAR {
		return 0, true
	}
	return clamp01((creaseBaselineEAR - avgEAR) / creaseBaselineEAR), true
}

// ScoreExpression fuses lip, cheek, and eye-crease signals into a smile
// intensity/naturalness/confidence triple.
//
// Missing lip landmarks yield a neutral expression with zero confidence;
// missing cheek or eye regions simply contribute nothing to the fusion.
func ScoreExpression(lips, contour, leftEye, rightEye PointSet, w ExpressionWeights) ExpressionQuality {
	lip, lipOK := readLips(lips.Points)
	if !lipOK {
		return ExpressionQuality{Intensity: 0, Naturalness: 0.5, Confidence: 0}
	}

	cheek, cheekOK := readCheeks(contour.Points)
	crease, creaseOK := readCrease(leftEye, rightEye)

	quality := regionQuality(lips, contour, leftEye, rightEye, cheekOK, creaseOK)

	intensity := clamp01((w.Lip*lip.intensity + w.Crease*crease + w.Cheek*cheek) * quality)

	naturalness := w.NatCrease*crease + w.NatSymmetry*lip.symmetry + w.NatCheek*cheek
	if lip.intensity > posedLipFloor && crease < posedCreaseCeiling {
		// Strong lips with dead eyes reads as a posed smile.
		naturalness *= w.PosedPenalty
	} else if lip.intensity > 0 {
		if ratio := crease / lip.intensity; ratio >= w.CoordinationMin && ratio <= w.CoordinationMax {
			naturalness *= w.CoordinationBonus
		}
	}
	naturalness = clamp01(naturalness)

	agreement := intensityAgreement(lip.intensity, crease, cheek)
	confidence := clamp01(0.4*quality + 0.4*agreement + 0.2*lip.symmetry)

	return ExpressionQuality{
		Intensity:   intensity,
		Naturalness: naturalness,
		Confidence:  confidence,
	}
}

// regionQuality averages the detector quality of the regions that produced a
// usable signal.
func regionQuality(lips, contour, leftEye, rightEye PointSet, cheekOK, creaseOK bool) float64 {
	sum := lips.Quality
	n := 1.0
	if cheekOK {
		sum += contour.Quality
		n++
	}
	if creaseOK {
		sum += (leftEye.Quality + rightEye.Quality) / 2
		n++
	}
	return sum / n
}

// intensityAgreement rewards low variance between the three regional
// intensities: when lips, eyes and cheeks tell the same story, the reading
// is more trustworthy.
func intensityAgreement(signals ...float64) float64 {
	var mean float64
	for _, s := range signals {
		mean += s
	}
	mean /= float64(len(signals))

	var variance float64
	for _, s := range signals {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(signals))

	return clamp01(1 - variance*3)
}
