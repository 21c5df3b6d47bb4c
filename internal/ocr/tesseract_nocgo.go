//go:build !cgo

package ocr

import "image"

// Words always fails with ErrUnavailable without cgo.
func Words(img image.Image, opts Options) ([]Word, error) {
	return nil, ErrUnavailable
}

// Available reports false without cgo.
func Available() bool { return false }

// Version returns an empty string without cgo.
func Version() string { return "" }
