package detect

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// ErrNotFound is returned by an ImageLoader when the photo does not exist.
var ErrNotFound = errors.New("photo not found")

// ErrNoDescriptor is returned by an EmbeddingGenerator when it cannot produce
// a descriptor for a region. Callers treat this as an expected outcome and
// fall back to geometric matching, never as a hard failure.
var ErrNoDescriptor = errors.New("no descriptor available")

// DetectionError wraps a non-recoverable detector failure for one photo.
// The pipeline logs it, drops the photo from the working set and continues.
type DetectionError struct {
	PhotoID string
	Err     error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("face detection failed for photo %s: %v", e.PhotoID, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// FaceDetector finds faces and their landmark sets in a decoded photo.
type FaceDetector interface {
	Detect(ctx context.Context, photo Photo, img image.Image) ([]DetectedFace, error)
}

// EmbeddingGenerator produces feature descriptors for face regions and
// measures the distance between two descriptors. Embed may fail or return
// ErrNoDescriptor; both are expected and trigger the resolver fallback path.
type EmbeddingGenerator interface {
	Embed(ctx context.Context, img image.Image, region Rect) ([]float32, error)
	Distance(a, b []float32) float64
}

// ImageLoader decodes a photo reference into pixels.
type ImageLoader interface {
	Load(ctx context.Context, photo Photo) (image.Image, error)
}

// EdgeFilter measures the edge response of a face region, used as a sharpness
// proxy. A failed filter run is expected for degenerate regions.
type EdgeFilter interface {
	EdgeResponse(img image.Image, region Rect) (float64, error)
}
