package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"golang.org/x/image/draw"

	"github.com/kozaktomas/burst-composer/internal/landmarks"
)

const (
	defaultFaceServiceURL = "http://localhost:8000"

	// embedCropSize is the square side the face crop is scaled to before it
	// is sent to the embedding endpoint.
	embedCropSize = 160
)

// FaceService is an HTTP client for an InsightFace-style sidecar that serves
// both face detection (with landmarks) and face embeddings. It implements
// FaceDetector and EmbeddingGenerator.
type FaceService struct {
	baseURL string
	client  *http.Client
}

// NewFaceService creates a client for the face service.
func NewFaceService(baseURL string) *FaceService {
	if baseURL == "" {
		baseURL = defaultFaceServiceURL
	}
	return &FaceService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// serviceFace mirrors the detection endpoint's per-face payload. Coordinates
// arrive in pixels relative to the uploaded image.
type serviceFace struct {
	FaceIndex int         `json:"face_index"`
	BBox      []float64   `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64     `json:"det_score"`
	Quality   float64     `json:"quality"`
	Pose      servicePose `json:"pose"`
	Landmarks *struct {
		LeftEye   serviceRegion `json:"left_eye"`
		RightEye  serviceRegion `json:"right_eye"`
		OuterLips serviceRegion `json:"outer_lips"`
		Contour   serviceRegion `json:"contour"`
	} `json:"landmarks"`
}

type servicePose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

type serviceRegion struct {
	Points  [][]float64 `json:"points"`
	Quality float64     `json:"quality"`
}

type detectResponse struct {
	FacesCount int           `json:"faces_count"`
	Faces      []serviceFace `json:"faces"`
	Model      string        `json:"model"`
}

type embedResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// Detect uploads the photo and converts the service response into normalized
// DetectedFaces. A transport or service failure wraps into a DetectionError.
func (s *FaceService) Detect(ctx context.Context, photo Photo, img image.Image) ([]DetectedFace, error) {
	data, err := encodeJPEG(img)
	if err != nil {
		return nil, &DetectionError{PhotoID: photo.ID, Err: err}
	}

	body, err := s.postMultipartImage(ctx, "/detect/face", data)
	if err != nil {
		return nil, &DetectionError{PhotoID: photo.ID, Err: err}
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &DetectionError{PhotoID: photo.ID, Err: fmt.Errorf("parsing response: %w", err)}
	}

	bounds := img.Bounds()
	faces := make([]DetectedFace, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		faces = append(faces, serviceFaceToDetected(f, bounds.Dx(), bounds.Dy()))
	}
	return faces, nil
}

// Embed scales the face crop and requests a descriptor for it. An empty
// embedding from the service maps to ErrNoDescriptor, triggering the
// resolver's fallback path.
func (s *FaceService) Embed(ctx context.Context, img image.Image, region Rect) ([]float32, error) {
	crop := cropBounds(img.Bounds(), region)
	if crop.Empty() {
		return nil, ErrNoDescriptor
	}

	scaled := image.NewRGBA(image.Rect(0, 0, embedCropSize, embedCropSize))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), img, crop, draw.Over, nil)

	data, err := encodeJPEG(scaled)
	if err != nil {
		return nil, fmt.Errorf("encoding face crop: %w", err)
	}

	body, err := s.postMultipartImage(ctx, "/embed/face", data)
	if err != nil {
		return nil, err
	}

	var resp embedResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, ErrNoDescriptor
	}
	return resp.Embedding, nil
}

// Distance measures descriptor distance with the service's metric (cosine).
func (s *FaceService) Distance(a, b []float32) float64 {
	return CosineDistance(a, b)
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint.
func (s *FaceService) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// serviceFaceToDetected converts pixel-space service output into the
// normalized coordinate system used everywhere else.
func serviceFaceToDetected(f serviceFace, width, height int) DetectedFace {
	face := DetectedFace{
		Index:          f.FaceIndex,
		CaptureQuality: f.Quality,
		DetScore:       f.DetScore,
		Pose: Pose{
			Pitch: f.Pose.Pitch,
			Yaw:   f.Pose.Yaw,
			Roll:  f.Pose.Roll,
		},
	}

	if len(f.BBox) == 4 && width > 0 && height > 0 {
		w := float64(width)
		h := float64(height)
		face.BBox = Rect{
			X: f.BBox[0] / w,
			Y: f.BBox[1] / h,
			W: (f.BBox[2] - f.BBox[0]) / w,
			H: (f.BBox[3] - f.BBox[1]) / h,
		}
	}

	if f.Landmarks != nil {
		face.Landmarks = &FaceLandmarks{
			LeftEye:   regionToPointSet(f.Landmarks.LeftEye, width, height),
			RightEye:  regionToPointSet(f.Landmarks.RightEye, width, height),
			OuterLips: regionToPointSet(f.Landmarks.OuterLips, width, height),
			Contour:   regionToPointSet(f.Landmarks.Contour, width, height),
		}
	}
	return face
}

func regionToPointSet(r serviceRegion, width, height int) landmarks.PointSet {
	if len(r.Points) == 0 || width <= 0 || height <= 0 {
		return landmarks.PointSet{Quality: r.Quality}
	}
	points := make([]landmarks.Point, 0, len(r.Points))
	for _, p := range r.Points {
		if len(p) < 2 {
			continue
		}
		points = append(points, landmarks.Point{
			X: p[0] / float64(width),
			Y: p[1] / float64(height),
		})
	}
	return landmarks.PointSet{Points: points, Quality: r.Quality}
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
