package detect

import (
	"context"
	"errors"
	"image"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func detectPayload() string {
	return `{
		"faces_count": 1,
		"faces": [{
			"face_index": 0,
			"bbox": [100, 50, 300, 250],
			"det_score": 0.95,
			"quality": 0.8,
			"pose": {"pitch": 5, "yaw": -10, "roll": 2},
			"landmarks": {
				"left_eye": {"points": [[150, 100], [180, 100]], "quality": 0.9},
				"right_eye": {"points": [[220, 100], [250, 100]], "quality": 0.9},
				"outer_lips": {"points": [[170, 200], [230, 200]], "quality": 0.85},
				"contour": {"points": [], "quality": 0}
			}
		}],
		"model": "buffalo_l"
	}`
}

func TestFaceService_Detect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("expected multipart upload: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(detectPayload()))
	}))
	defer server.Close()

	service := NewFaceService(server.URL)
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))

	faces, err := service.Detect(context.Background(), Photo{ID: "p1"}, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}

	face := faces[0]
	// Pixel bbox [100,50,300,250] on a 400x400 image.
	if math.Abs(face.BBox.X-0.25) > 1e-9 || math.Abs(face.BBox.W-0.5) > 1e-9 {
		t.Errorf("unexpected normalized bbox: %+v", face.BBox)
	}
	if face.Pose.Yaw != -10 {
		t.Errorf("expected yaw -10, got %.2f", face.Pose.Yaw)
	}
	if face.Landmarks == nil {
		t.Fatal("expected landmarks")
	}
	if len(face.Landmarks.LeftEye.Points) != 2 {
		t.Errorf("expected 2 left-eye points, got %d", len(face.Landmarks.LeftEye.Points))
	}
	// Pixel point (150,100) normalizes to (0.375, 0.25).
	if p := face.Landmarks.LeftEye.Points[0]; math.Abs(p.X-0.375) > 1e-9 || math.Abs(p.Y-0.25) > 1e-9 {
		t.Errorf("unexpected normalized point: %+v", p)
	}
	if len(face.Landmarks.Contour.Points) != 0 {
		t.Errorf("expected empty contour, got %d points", len(face.Landmarks.Contour.Points))
	}
}

func TestFaceService_DetectServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := NewFaceService(server.URL)
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	_, err := service.Detect(context.Background(), Photo{ID: "p1"}, img)
	if err == nil {
		t.Fatal("expected error from failing service")
	}

	var detErr *DetectionError
	if !errors.As(err, &detErr) {
		t.Fatalf("expected DetectionError, got %T", err)
	}
	if detErr.PhotoID != "p1" {
		t.Errorf("expected photo ID p1, got %s", detErr.PhotoID)
	}
}

func TestFaceService_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dim": 3, "embedding": [0.1, 0.2, 0.3], "model": "buffalo_l"}`))
	}))
	defer server.Close()

	service := NewFaceService(server.URL)
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))

	desc, err := service.Embed(context.Background(), img, Rect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(desc) != 3 || desc[1] != 0.2 {
		t.Errorf("unexpected descriptor: %v", desc)
	}
}

func TestFaceService_EmbedNoDescriptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"dim": 0, "embedding": [], "model": "buffalo_l"}`))
	}))
	defer server.Close()

	service := NewFaceService(server.URL)
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))

	_, err := service.Embed(context.Background(), img, Rect{X: 0.25, Y: 0.25, W: 0.5, H: 0.5})
	if !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("expected ErrNoDescriptor, got %v", err)
	}

	// A region outside the image cannot be cropped at all.
	_, err = service.Embed(context.Background(), img, Rect{X: 2, Y: 2, W: 0.5, H: 0.5})
	if !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("expected ErrNoDescriptor for an empty crop, got %v", err)
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 0},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 1},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineDistance(tt.a, tt.b); math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("expected distance %.4f, got %.4f", tt.expected, got)
			}
		})
	}
}
