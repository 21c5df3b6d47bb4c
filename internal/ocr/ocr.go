package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when the binary was built without cgo, so Tesseract
// cannot be called.
var ErrUnavailable = errors.New("tesseract OCR not available in this build")

// Word is one recognized word with its bounding box in image coordinates.
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0.0 to 1.0
	Bounds     image.Rectangle `json:"bounds"`
}

// Options controls word extraction.
type Options struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	Language string

	// MinConfidence drops words below this confidence (0.0 to 1.0).
	MinConfidence float64
}

// DefaultOptions returns English recognition with a 0.5 confidence floor.
func DefaultOptions() Options {
	return Options{Language: DefaultLanguage, MinConfidence: 0.5}
}

// TextBoxes returns the bounding boxes of the words found in img. It is the form
// used to clear annotations out of a mask.
func TextBoxes(img image.Image, opts Options) ([]image.Rectangle, error) {
	words, err := Words(img, opts)
	if err != nil {
		return nil, err
	}
	boxes := make([]image.Rectangle, len(words))
	for i, w := range words {
		boxes[i] = w.Bounds
	}
	return boxes, nil
}

// encodePNG serializes img for Tesseract, which reads encoded images rather than
// pixel buffers.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}
	return buf.Bytes(), nil
}
