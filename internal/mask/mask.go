// Package mask builds the binary foreground mask that the contour tracer walks.
//
// A Mask is derived once from an 8-bit grayscale grid and a threshold: pixels at or
// below the threshold are foreground (dark ink on a light background), brighter pixels
// are background. Once built a Mask is never modified; the tracer keeps its own label
// grid.
package mask

import (
	"fmt"
	"image"
)

// DefaultThreshold is the intensity at or below which a pixel counts as foreground.
const DefaultThreshold = 240

// Mask is an immutable width × height grid of foreground flags.
type Mask struct {
	width  int
	height int
	bits   []bool
}

// Option adjusts how a Mask is derived from its source.
type Option func(*buildConfig)

type buildConfig struct {
	exclude []image.Rectangle
}

// WithExclusions clears every pixel inside the given rectangles (in source image
// coordinates). It is used to drop text annotations before tracing.
func WithExclusions(rects ...image.Rectangle) Option {
	return func(c *buildConfig) {
		c.exclude = append(c.exclude, rects...)
	}
}

// FromGray derives a mask from a grayscale image. A pixel is foreground when its
// intensity is less than or equal to threshold.
func FromGray(gray *image.Gray, threshold uint8, opts ...Option) *Mask {
	b := gray.Bounds()

	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	local := make([]image.Rectangle, len(cfg.exclude))
	for i, r := range cfg.exclude {
		local[i] = r.Sub(b.Min)
	}

	return FromFunc(b.Dx(), b.Dy(), func(x, y int) bool {
		return gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y <= threshold
	}, WithExclusions(local...))
}

// FromFunc builds a mask by evaluating fg for every pixel, row by row.
func FromFunc(width, height int, fg func(x, y int) bool, opts ...Option) *Mask {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Mask{
		width:  width,
		height: height,
		bits:   make([]bool, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.bits[y*width+x] = fg(x, y)
		}
	}

	bounds := image.Rect(0, 0, width, height)
	for _, r := range cfg.exclude {
		r = r.Intersect(bounds)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				m.bits[y*width+x] = false
			}
		}
	}
	return m
}

// Parse builds a mask from rows of text where '#' marks foreground and any other
// byte is background. All rows must have the same length.
func Parse(rows ...string) (*Mask, error) {
	if len(rows) == 0 {
		return FromFunc(0, 0, nil), nil
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("row %d has length %d, want %d", i, len(r), width)
		}
	}
	return FromFunc(width, len(rows), func(x, y int) bool {
		return rows[y][x] == '#'
	}), nil
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// At reports whether (x, y) is foreground. Coordinates outside the mask are
// background.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

// Count returns the number of foreground pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}
