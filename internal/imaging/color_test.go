package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	if _, err := ParseColor("#ff0000"); err != nil {
		t.Errorf("ParseColor failed: %v", err)
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("ParseColor should reject a color name")
	}
}

func TestColorKey(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 30; x++ {
			switch {
			case x < 10:
				img.Set(x, y, color.RGBA{220, 20, 20, 255}) // red
			case x < 20:
				img.Set(x, y, color.RGBA{20, 20, 220, 255}) // blue
			default:
				img.Set(x, y, color.White)
			}
		}
	}

	target, err := ParseColor("#dc1414")
	if err != nil {
		t.Fatalf("ParseColor failed: %v", err)
	}
	key := ColorKey(img, target, 0.1)

	tests := []struct {
		x    int
		want uint8
	}{
		{5, 0},
		{15, 255},
		{25, 255},
	}
	for _, tt := range tests {
		if got := key.GrayAt(tt.x, 5).Y; got != tt.want {
			t.Errorf("pixel x=%d: got %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestColorKey_TransparentNeverMatches(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	black, _ := ParseColor("#000000")

	key := ColorKey(img, black, 0.5)
	for _, v := range key.Pix {
		if v != 255 {
			t.Fatal("transparent pixels should never match a colour key")
		}
	}
}

func TestDominantColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 7 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}

	colors := DominantColors(img, 5)
	if len(colors) != 2 {
		t.Fatalf("expected 2 colours, got %d", len(colors))
	}
	if colors[0].Hex != "#f0f0f0" || colors[0].Percentage != 70 {
		t.Errorf("first colour: got %+v, want #f0f0f0 at 70%%", colors[0])
	}
	if colors[1].Hex != "#000000" {
		t.Errorf("second colour: got %+v, want #000000", colors[1])
	}

	if got := DominantColors(img, 1); len(got) != 1 {
		t.Errorf("count limit: got %d colours, want 1", len(got))
	}
}
