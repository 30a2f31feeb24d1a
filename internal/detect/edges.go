package detect

import (
	"errors"
	"image"
	"math"
)

// minRegionPixels is the smallest crop the Sobel filter will process.
const minRegionPixels = 4

// SobelFilter measures the mean gradient magnitude of a face crop. It is the
// default EdgeFilter implementation used by the sharpness proxy.
type SobelFilter struct{}

// NewSobelFilter creates the default edge filter.
func NewSobelFilter() *SobelFilter {
	return &SobelFilter{}
}

// EdgeResponse returns the normalized mean Sobel gradient of the region in
// [0,1]. Degenerate regions fail with an error, which callers treat as an
// expected "filter unavailable" outcome.
func (f *SobelFilter) EdgeResponse(img image.Image, region Rect) (float64, error) {
	if img == nil {
		return 0, errors.New("nil image")
	}

	crop := cropBounds(img.Bounds(), region)
	if crop.Dx() < minRegionPixels || crop.Dy() < minRegionPixels {
		return 0, errors.New("region too small for edge response")
	}

	gray := grayRegion(img, crop)
	width := len(gray)
	height := len(gray[0])

	var total float64
	count := 0
	for x := 1; x < width-1; x++ {
		for y := 1; y < height-1; y++ {
			gx := gray[x+1][y] - gray[x-1][y]
			gy := gray[x][y+1] - gray[x][y-1]
			total += math.Sqrt(gx*gx + gy*gy)
			count++
		}
	}
	if count == 0 {
		return 0, errors.New("empty gradient field")
	}

	// A mean gradient of 64 (out of the 0-255 luma range) saturates the
	// response; typical in-focus faces land well below that.
	return math.Min(1, total/float64(count)/64.0), nil
}

// cropBounds converts a normalized region into pixel bounds clipped to the
// image.
func cropBounds(bounds image.Rectangle, region Rect) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	r := image.Rect(
		bounds.Min.X+int(region.X*w),
		bounds.Min.Y+int(region.Y*h),
		bounds.Min.X+int((region.X+region.W)*w),
		bounds.Min.Y+int((region.Y+region.H)*h),
	)
	return r.Intersect(bounds)
}

// grayRegion converts a pixel region to a 2D array of luma values (0-255).
func grayRegion(img image.Image, crop image.Rectangle) [][]float64 {
	width := crop.Dx()
	height := crop.Dy()

	gray := make([][]float64, width)
	for x := range width {
		gray[x] = make([]float64, height)
		for y := range height {
			r, g, b, _ := img.At(crop.Min.X+x, crop.Min.Y+y).RGBA()
			// ITU-R BT.601 luma formula.
			gray[x][y] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray
}
