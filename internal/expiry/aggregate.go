package expiry

import (
	"errors"
	"strings"
)

// BlockDelimiter separates the text of consecutive images in Result.RawText.
const BlockDelimiter = "\n---\n"

var (
	// ErrNoImages is reported for an empty batch.
	ErrNoImages = errors.New("no images were provided")
	// ErrNothingDetected is reported when no image yielded a code or a date.
	ErrNothingDetected = errors.New("no relevant information was detected in the images")
)

// TextBlock is the recognized text of one captured image. Err is set when
// text detection failed for that image; Text may still hold partial output.
type TextBlock struct {
	Text string
	Err  error
}

// BlockReport describes what happened to one block during aggregation.
type BlockReport struct {
	Index      int
	Extraction Extraction
	Err        error
}

// Result is the merged outcome of one scan batch.
type Result struct {
	ProductCode    string
	ExpirationDate Date
	RawText        string
	Success        bool
	Blocks         []BlockReport
	empty          bool
}

// Err returns the batch-level failure, if any.
func (r Result) Err() error {
	switch {
	case r.Success:
		return nil
	case r.empty:
		return ErrNoImages
	default:
		return ErrNothingDetected
	}
}

// Aggregate runs Extract over each block in capture order and keeps the
// first product code and the first expiration date seen. The two fields are
// chosen independently, so they may come from different images. Blocks
// that failed detection are skipped but never abort the batch.
func Aggregate(blocks []TextBlock) Result {
	res := Result{
		Blocks: make([]BlockReport, 0, len(blocks)),
		empty:  len(blocks) == 0,
	}

	var raw strings.Builder
	for i, b := range blocks {
		if b.Text != "" {
			raw.WriteString(b.Text)
			raw.WriteString(BlockDelimiter)
		}

		report := BlockReport{Index: i, Err: b.Err}
		if b.Err == nil {
			report.Extraction = Extract(b.Text)
			if res.ProductCode == "" {
				res.ProductCode = report.Extraction.ProductCode
			}
			if res.ExpirationDate.IsZero() {
				res.ExpirationDate = report.Extraction.Date
			}
		}
		res.Blocks = append(res.Blocks, report)
	}

	res.RawText = raw.String()
	res.Success = res.ProductCode != "" || !res.ExpirationDate.IsZero()
	return res
}
