package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Luma weights of ITU-R BT.601, the usual weights for 8-bit grayscale conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Flatten composites img onto an opaque white canvas of the same size. Transparent
// areas of a drawing therefore read as background. The result has its origin at
// (0, 0).
func Flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Point{}, 1.0)
}

// Denoise applies a Gaussian blur of the given radius. A radius of zero or less
// returns img unchanged.
func Denoise(img image.Image, radius float64) image.Image {
	if radius <= 0 {
		return img
	}
	return blur.Gaussian(img, radius)
}

// Grayscale converts img to 8-bit luminance with BT.601 weights. The result has its
// origin at (0, 0).
func Grayscale(img image.Image) *image.Gray {
	rgba := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)

	// bild writes the luminance into all three colour channels; keep red.
	b := rgba.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := gray.Pix[gray.PixOffset(0, y):]
		for x := range b.Dx() {
			dst[x] = src[4*x]
		}
	}
	return gray
}

// ToGray prepares a decoded image for thresholding: flatten alpha onto white,
// optionally blur, then convert to luminance.
func ToGray(img image.Image, blurRadius float64) *image.Gray {
	return Grayscale(Denoise(Flatten(img), blurRadius))
}
