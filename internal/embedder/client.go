// Package embedder computes face embeddings through the embedding server.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const defaultEmbeddingURL = "http://localhost:8000"

var (
	// ErrNoFaceDetected is returned when the image contains no detectable face.
	ErrNoFaceDetected = errors.New("no face detected")
	// ErrModel is returned when the embedding server fails or answers with garbage.
	ErrModel = errors.New("embedding model error")
)

// Extractor turns an image into a face embedding.
type Extractor interface {
	Compute(ctx context.Context, image []byte) ([]float32, error)
}

// Client computes face embeddings using the embedding server
type Client struct {
	baseURL     string
	model       string
	expectedDim int
	client      *http.Client
}

var _ Extractor = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithExpectedDim rejects embeddings whose dimension differs from dim.
func WithExpectedDim(dim int) Option {
	return func(c *Client) { c.expectedDim = dim }
}

// NewClient creates a new embedding client
func NewClient(baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultEmbeddingURL
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model name being used
func (c *Client) Model() string {
	return c.model
}

// FaceDetection represents a single detected face
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// Area returns the bounding box area, 0 for a malformed box.
func (f FaceDetection) Area() float64 {
	if len(f.BBox) != 4 {
		return 0
	}
	w, h := f.BBox[2]-f.BBox[0], f.BBox[3]-f.BBox[1]
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// FaceResponse represents the response from the face embedding endpoint
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage posts the image as the "file" part of a multipart form.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", http.DetectContentType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if c.model != "" {
		if err := writer.WriteField("model", c.model); err != nil {
			return nil, fmt.Errorf("failed to write model field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// ComputeFaceEmbeddings detects faces and computes their embeddings
func (c *Client) ComputeFaceEmbeddings(ctx context.Context, imageData []byte) (*FaceResponse, error) {
	body, err := c.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}

	var faceResp FaceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", ErrModel, err)
	}

	return &faceResp, nil
}

// Compute returns the embedding of the largest face in the image.
func (c *Client) Compute(ctx context.Context, imageData []byte) ([]float32, error) {
	resp, err := c.ComputeFaceEmbeddings(ctx, imageData)
	if err != nil {
		return nil, err
	}

	face, ok := largestFace(resp.Faces)
	if !ok {
		return nil, ErrNoFaceDetected
	}
	if len(face.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrModel)
	}
	if c.expectedDim > 0 && len(face.Embedding) != c.expectedDim {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrModel, len(face.Embedding), c.expectedDim)
	}

	return face.Embedding, nil
}

// largestFace picks the face with the biggest bounding box. The first one wins on ties.
func largestFace(faces []FaceDetection) (FaceDetection, bool) {
	if len(faces) == 0 {
		return FaceDetection{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Area() > best.Area() {
			best = f
		}
	}
	return best, true
}
