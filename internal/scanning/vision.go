package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// Vision implements the Detector interface using Google Cloud Vision text detection
type Vision struct {
	client   *vision.ImageAnnotatorClient
	annotate func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)
	timeout  time.Duration
}

// NewVision creates a Cloud Vision Detector. With an empty credentials file
// the client falls back to application default credentials.
func NewVision(ctx context.Context, credentialsFile string) (*Vision, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}

	return &Vision{
		client: client,
		annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
			return client.BatchAnnotateImages(ctx, req)
		},
		timeout: 30 * time.Second,
	}, nil
}

// DetectText returns the full text annotation of the image
func (v *Vision) DetectText(ctx context.Context, imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	// Vision reads JPEG and PNG natively, everything else goes through PNG
	if ct := strings.ToLower(contentType); ct != "image/jpeg" && ct != "image/png" {
		converted, err := prepareImageData(imageData, contentType)
		if err != nil {
			return "", err
		}
		imageData = converted
	}

	resp, err := v.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: imageData},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_TEXT_DETECTION}},
			ImageContext: &visionpb.ImageContext{
				LanguageHints: []string{"es", "en"},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.GetResponses()) == 0 {
		return "", nil
	}

	r := resp.GetResponses()[0]
	if e := r.GetError(); e != nil && e.GetMessage() != "" {
		return "", fmt.Errorf("vision annotate error: %s", e.GetMessage())
	}

	// The first annotation holds the whole text, the rest are single words
	annotations := r.GetTextAnnotations()
	if len(annotations) == 0 {
		return "", nil
	}

	return cleanLines(annotations[0].GetDescription()), nil
}

// Close closes the Vision client
func (v *Vision) Close() error {
	if v.client == nil {
		return nil
	}
	return v.client.Close()
}
