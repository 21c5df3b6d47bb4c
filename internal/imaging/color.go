package imaging

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#RRGGBB" hex color.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// ColorKey builds a grayscale image in which pixels within tolerance of target are
// black and all others white. Distance is the CIE76 ΔE in Lab space scaled to 0..1,
// so 0.1 keeps close shades of a colour and rejects its neighbours on the wheel.
//
// The result feeds the same threshold stage as the luminance image, so a colour
// layer is traced exactly like a dark-on-light drawing.
func ColorKey(img image.Image, target colorful.Color, tolerance float64) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Drawings use few distinct colours; remember each verdict.
	verdicts := make(map[color.NRGBA]bool)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			match, seen := verdicts[c]
			if !seen {
				match = matches(c, target, tolerance)
				verdicts[c] = match
			}
			if match {
				out.Pix[y*out.Stride+x] = 0
			} else {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

func matches(c color.NRGBA, target colorful.Color, tolerance float64) bool {
	if c.A == 0 {
		return false
	}
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return false
	}
	return cf.DistanceLab(target) <= tolerance
}

// ColorFrequency is one entry of a colour histogram.
type ColorFrequency struct {
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// DominantColors returns the most frequent colours of img, grouping shades whose
// components agree in the top four bits. It is used to suggest colour layer
// targets for a drawing.
func DominantColors(img image.Image, count int) []ColorFrequency {
	b := img.Bounds()
	counts := make(map[color.RGBA]int)
	total := 0

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			key := color.RGBA{
				R: uint8(r>>8) &^ 0x0F,
				G: uint8(g>>8) &^ 0x0F,
				B: uint8(bl>>8) &^ 0x0F,
				A: 0xFF,
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		cf, _ := colorful.MakeColor(c)
		colors = append(colors, ColorFrequency{
			Hex:        cf.Hex(),
			Percentage: float64(n) / float64(total) * 100,
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors
}
