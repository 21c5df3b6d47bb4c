//go:build cgo

package ocr

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Words runs Tesseract on img and returns the recognized words.
//
// Word boxes are reported in the coordinates of img, so an image whose bounds do not
// start at (0, 0) gets its boxes shifted back by bounds.Min. Empty words and words
// below opts.MinConfidence are dropped.
//
// # Errors
//
// Returns an error if the image cannot be encoded, the language data is missing, or
// Tesseract fails. Callers that treat OCR as optional should fall back to a
// heuristic on error.
func Words(img image.Image, opts Options) ([]Word, error) {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(opts.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	origin := img.Bounds().Min
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		confidence := box.Confidence / 100.0
		if text == "" || confidence < opts.MinConfidence {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: confidence,
			Bounds:     box.Box.Add(origin),
		})
	}
	return words, nil
}

// Available reports whether Tesseract can be initialized.
func Available() bool {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
