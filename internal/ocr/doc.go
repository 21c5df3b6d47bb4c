// Package ocr finds text annotations in drawings using Tesseract.
//
// Drawings often carry labels, dimensions and part numbers next to the shapes. When
// text masking is enabled, the converter asks this package for word bounding boxes
// and clears them from the binary mask so lettering does not turn into polygons.
//
// # Build Variants
//
// Tesseract is reached through gosseract/v2, which needs cgo and the Tesseract and
// Leptonica libraries:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Builds without cgo compile a stub whose Words returns ErrUnavailable. The converter
// then falls back to the edge-density heuristic in the detection package.
//
// # Coordinates
//
// Word boxes use the coordinate space of the image passed in, with exclusive maximum
// corners as in image.Rectangle.
package ocr
