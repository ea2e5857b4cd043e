package scanning

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zombor/expiry-tracker/internal/expiry"
)

var tracer = otel.Tracer("github.com/zombor/expiry-tracker/internal/scanning")

// maxConcurrentDetections bounds the calls made to a backend for one batch
const maxConcurrentDetections = 3

// DetectAll runs text detection over a batch of images concurrently. Blocks
// come back in capture order; a failing image is reported in its block and
// never stops the others.
func DetectAll(ctx context.Context, detector Detector, images []Image) []expiry.TextBlock {
	ctx, span := tracer.Start(ctx, "scanning.DetectAll", trace.WithAttributes(
		attribute.Int("images", len(images)),
	))
	defer span.End()

	blocks := make([]expiry.TextBlock, len(images))

	var g errgroup.Group
	g.SetLimit(maxConcurrentDetections)

	for i, img := range images {
		g.Go(func() error {
			blocks[i] = detectOne(ctx, detector, i, img)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, b := range blocks {
		if b.Err != nil {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed", failed))

	return blocks
}

func detectOne(ctx context.Context, detector Detector, index int, img Image) expiry.TextBlock {
	ctx, span := tracer.Start(ctx, "scanning.DetectText", trace.WithAttributes(
		attribute.Int("index", index),
		attribute.String("content_type", img.ContentType),
		attribute.Int("bytes", len(img.Data)),
	))
	defer span.End()

	text, err := detector.DetectText(ctx, img.Data, img.ContentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "text detection failed")
		slog.Warn("text detection failed", "index", index, "error", err)
		return expiry.TextBlock{Text: text, Err: err}
	}

	slog.Debug("text detected", "index", index, "chars", len(text))
	return expiry.TextBlock{Text: text}
}
