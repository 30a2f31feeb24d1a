package detect

import (
	"image"
	"image/color"
	"testing"
)

// stripes draws two-pixel vertical bars, strong edge content at every column.
func stripes(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			c := color.Gray{Y: 0}
			if x%4 < 2 {
				c = color.Gray{Y: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestSobelFilter_EdgeResponse(t *testing.T) {
	filter := NewSobelFilter()
	region := Rect{X: 0, Y: 0, W: 1, H: 1}

	flat := image.NewRGBA(image.Rect(0, 0, 32, 32))
	flatResponse, err := filter.EdgeResponse(flat, region)
	if err != nil {
		t.Fatalf("unexpected error on flat image: %v", err)
	}
	if flatResponse != 0 {
		t.Errorf("expected zero response for a flat image, got %.4f", flatResponse)
	}

	busyResponse, err := filter.EdgeResponse(stripes(32), region)
	if err != nil {
		t.Fatalf("unexpected error on striped image: %v", err)
	}
	if busyResponse <= flatResponse {
		t.Errorf("expected striped response %.4f to exceed flat %.4f",
			busyResponse, flatResponse)
	}
	if busyResponse > 1 {
		t.Errorf("expected response capped at 1, got %.4f", busyResponse)
	}
}

func TestSobelFilter_DegenerateRegions(t *testing.T) {
	filter := NewSobelFilter()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	if _, err := filter.EdgeResponse(nil, Rect{W: 1, H: 1}); err == nil {
		t.Error("expected error for nil image")
	}

	// A 2x2 pixel region is below the minimum.
	if _, err := filter.EdgeResponse(img, Rect{X: 0, Y: 0, W: 0.02, H: 0.02}); err == nil {
		t.Error("expected error for a too-small region")
	}

	// A region entirely outside the image clips to nothing.
	if _, err := filter.EdgeResponse(img, Rect{X: 2, Y: 2, W: 0.5, H: 0.5}); err == nil {
		t.Error("expected error for an out-of-bounds region")
	}
}

func TestCropBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 100)

	crop := cropBounds(bounds, Rect{X: 0.25, Y: 0.5, W: 0.5, H: 0.5})
	expected := image.Rect(50, 50, 150, 100)
	if crop != expected {
		t.Errorf("expected crop %v, got %v", expected, crop)
	}

	// Regions extending past the image clip to it.
	crop = cropBounds(bounds, Rect{X: 0.9, Y: 0.9, W: 0.5, H: 0.5})
	if crop.Max.X != 200 || crop.Max.Y != 100 {
		t.Errorf("expected crop clipped to image, got %v", crop)
	}
}
