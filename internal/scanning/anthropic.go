package scanning

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMessager is the slice of the Anthropic client the detector uses
type anthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Anthropic implements the Detector interface using Claude vision models
type Anthropic struct {
	messages anthropicMessager
	model    string
	timeout  time.Duration
}

// NewAnthropic creates a new Anthropic Detector instance
func NewAnthropic(apiKey string, modelName string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	if modelName == "" {
		modelName = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Anthropic{
		messages: &c.Messages,
		model:    modelName,
		timeout:  30 * time.Second,
	}, nil
}

// DetectText transcribes the packaging text in the image
func (a *Anthropic) DetectText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	pngData, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{anthropic.NewUserMessage(
			anthropic.NewImageBlockBase64("image/png", base64.StdEncoding.EncodeToString(pngData)),
			anthropic.NewTextBlock(transcribePrompt),
		)},
		Temperature: anthropic.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("calling anthropic API: %w", err)
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}

	text, err := parseTranscriptJSON(sb.String())
	if err != nil {
		return "", fmt.Errorf("parsing anthropic transcript: %w", err)
	}

	return text, nil
}

// Close is a no-op; the SDK client holds no resources
func (a *Anthropic) Close() error {
	return nil
}
