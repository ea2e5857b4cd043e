package scanning

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// ErrEmptyImage is returned when a payload decodes to zero bytes
var ErrEmptyImage = errors.New("empty image")

// DecodeImage turns a base64 payload, with or without a data URL prefix,
// into raw bytes and a content type.
func DecodeImage(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	contentType := ""

	// data:image/jpeg;base64,....
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma == -1 {
			return Image{}, fmt.Errorf("malformed data URL")
		}
		meta := payload[len("data:"):comma]
		contentType, _, _ = strings.Cut(meta, ";")
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients strip the padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return Image{}, fmt.Errorf("decoding base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}

	if contentType == "" {
		contentType = sniffContentType(data)
	}

	return Image{Data: data, ContentType: contentType}, nil
}

// sniffContentType detects the MIME type of raw image bytes
func sniffContentType(data []byte) string {
	if isHEICFormat(data) {
		return "image/heic"
	}
	ct := http.DetectContentType(data)
	ct, _, _ = strings.Cut(ct, ";")
	return ct
}

// pdfToImage renders the first page of a PDF as PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// imageToPNG re-encodes a JPEG, GIF or HEIC photo as PNG
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	// Phone cameras often produce HEIC, which the standard image package can't decode
	if isHEICFormat(imageData) || isHEICMimeType(mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			if errors.Is(err, image.ErrFormat) {
				return nil, fmt.Errorf("unsupported image format (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareImageData normalizes an image to PNG for the detection backends
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = sniffContentType(imageData)
	}

	switch {
	case mimeType == "application/pdf":
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, nil
	case mimeType != "image/png" || isHEICFormat(imageData):
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, nil
	}

	return imageData, nil
}
