package scanning

import "context"

// Image is one captured photo as submitted by the client.
type Image struct {
	Data        []byte
	ContentType string
}

// Detector defines the interface for text detection backends
type Detector interface {
	// DetectText returns all text printed in the image, line by line.
	// An empty string with a nil error means the image holds no text.
	DetectText(ctx context.Context, imageData []byte, contentType string) (string, error)
	// Close closes the detector and releases resources
	Close() error
}
