package mask

import (
	"image"
	"image/color"
	"testing"
)

// createGray creates a grayscale image filled with a single intensity
func createGray(width, height int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestFromGray_Threshold(t *testing.T) {
	img := createGray(4, 1, 255)
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 240})
	img.SetGray(2, 0, color.Gray{Y: 241})

	m := FromGray(img, DefaultThreshold)

	want := []bool{true, true, false, false}
	for x, w := range want {
		if got := m.At(x, 0); got != w {
			t.Errorf("At(%d,0) = %v, want %v", x, got, w)
		}
	}
	if m.Width() != 4 || m.Height() != 1 {
		t.Errorf("dimensions = %dx%d, want 4x1", m.Width(), m.Height())
	}
}

func TestFromGray_NonZeroOrigin(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 14, 24))
	for y := 20; y < 24; y++ {
		for x := 10; x < 14; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	img.SetGray(11, 21, color.Gray{Y: 0})
	img.SetGray(12, 22, color.Gray{Y: 0})

	m := FromGray(img, DefaultThreshold, WithExclusions(image.Rect(12, 22, 13, 23)))

	if !m.At(1, 1) {
		t.Error("pixel (11,21) should map to mask (1,1) as foreground")
	}
	if m.At(2, 2) {
		t.Error("excluded pixel (12,22) should be background")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestFromFunc_ExclusionClipped(t *testing.T) {
	m := FromFunc(5, 5, func(x, y int) bool { return true },
		WithExclusions(image.Rect(-3, -3, 2, 2), image.Rect(4, 4, 100, 100)))

	if m.Count() != 25-4-1 {
		t.Errorf("Count() = %d, want %d", m.Count(), 25-4-1)
	}
}

func TestAt_OutOfBounds(t *testing.T) {
	m := FromFunc(2, 2, func(x, y int) bool { return true })

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if m.At(p.X, p.Y) {
			t.Errorf("At(%d,%d) outside the mask should be background", p.X, p.Y)
		}
	}
}

func TestParse(t *testing.T) {
	m, err := Parse(
		"..#",
		"###",
	)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if m.Count() != 4 {
		t.Errorf("Count() = %d, want 4", m.Count())
	}
	if !m.At(2, 0) || m.At(0, 0) {
		t.Error("Parse placed foreground in the wrong cells")
	}

	if _, err := Parse("##", "#"); err == nil {
		t.Error("Parse should reject ragged rows")
	}

	empty, err := Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if empty.Width() != 0 || empty.Height() != 0 {
		t.Error("Parse() should produce an empty mask")
	}
}
