package scanning

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Detector interface with a local Tesseract install
type Tesseract struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseract creates a Tesseract Detector. Languages default to Spanish then English.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"spa", "eng"}
	}
	return &Tesseract{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// DetectText runs OCR on the image. Tesseract isn't cancellable, so the
// context is only checked before starting.
func (t *Tesseract) DetectText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	// A gosseract client is not safe for concurrent use, so each call gets its own
	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}

	return cleanLines(text), nil
}

// Close is a no-op; clients are created per call
func (t *Tesseract) Close() error {
	return nil
}
