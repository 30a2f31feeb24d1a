package landmarks

import "math"

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Centroid returns the mean point of a set. Zero point for empty input.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}
}

// extremesByX returns the points with minimum and maximum x.
func extremesByX(points []Point) (minP, maxP Point) {
	minP, maxP = points[0], points[0]
	for _, p := range points[1:] {
		if p.X < minP.X {
			minP = p
		}
		if p.X > maxP.X {
			maxP = p
		}
	}
	return minP, maxP
}

// nearestByX returns the candidate whose x coordinate is closest to ref.X.
func nearestByX(candidates []Point, ref Point) Point {
	best := candidates[0]
	bestDiff := math.Abs(best.X - ref.X)
	for _, p := range candidates[1:] {
		if d := math.Abs(p.X - ref.X); d < bestDiff {
			best = p
			bestDiff = d
		}
	}
	return best
}

// clamp01 limits v to the [0,1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
