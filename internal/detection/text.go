package detection

import (
	"image"
	"math"
	"sort"
)

// TextRegion is a rectangular area that likely contains lettering.
type TextRegion struct {
	Bounds     image.Rectangle `json:"bounds"`
	Confidence float64         `json:"confidence"`
}

// edgeThreshold is the grayscale step between neighbouring pixels that counts as an
// edge.
const edgeThreshold = 30

// textWindows are the sliding window sizes tried by DetectTextRegions, roughly one
// line of small, medium and large lettering.
var textWindows = []image.Point{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

// DetectTextRegions finds areas likely to hold text annotations using edge density.
// It is the fallback used to mask labels out of a drawing when OCR is unavailable.
//
// Lettering produces many short edges with mostly horizontal structure, whereas the
// drawn shapes this tool vectorizes produce long straight edges enclosing empty
// interiors. Windows whose edge density lies between 5% and 40% are scored by how
// horizontal their edge runs are; overlapping hits are merged.
//
// Bounds are returned in the coordinates of gray.
func DetectTextRegions(gray *image.Gray, minConfidence float64) []TextRegion {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	edges := detectEdges(gray)
	sums := integral(edges, width, height)

	candidates := make([]TextRegion, 0)
	for _, ws := range textWindows {
		stepX, stepY := ws.X/2, ws.Y/2
		for y := 0; y+ws.Y <= height; y += stepY {
			for x := 0; x+ws.X <= width; x += stepX {
				count := windowSum(sums, width, x, y, ws.X, ws.Y)
				density := float64(count) / float64(ws.X*ws.Y)
				if density < 0.05 || density > 0.4 {
					continue
				}

				confidence := horizontalScore(edges, width, x, y, ws.X, ws.Y) * (1.0 - math.Abs(density-0.2)/0.2)
				if confidence < minConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Bounds:     image.Rect(x, y, x+ws.X, y+ws.Y).Add(b.Min),
					Confidence: math.Round(confidence*1000) / 1000,
				})
			}
		}
	}

	merged := mergeOverlapping(candidates)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Confidence > merged[j].Confidence
	})
	return merged
}

// detectEdges marks pixels whose intensity differs from the right or lower neighbour
// by more than edgeThreshold. The last row and column are never edges.
func detectEdges(gray *image.Gray) []bool {
	b := gray.Bounds()
	width, height := b.Dx(), b.Dy()
	edges := make([]bool, width*height)
	for y := 0; y < height-1; y++ {
		for x := 0; x < width-1; x++ {
			c := int(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			right := int(gray.GrayAt(b.Min.X+x+1, b.Min.Y+y).Y)
			down := int(gray.GrayAt(b.Min.X+x, b.Min.Y+y+1).Y)
			if absInt(c-right) > edgeThreshold || absInt(c-down) > edgeThreshold {
				edges[y*width+x] = true
			}
		}
	}
	return edges
}

// integral builds a summed-area table of edge pixels with one extra row and column
// of zeros.
func integral(edges []bool, width, height int) []int {
	stride := width + 1
	sums := make([]int, stride*(height+1))
	for y := 0; y < height; y++ {
		row := 0
		for x := 0; x < width; x++ {
			if edges[y*width+x] {
				row++
			}
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + row
		}
	}
	return sums
}

func windowSum(sums []int, width, x, y, w, h int) int {
	stride := width + 1
	return sums[(y+h)*stride+x+w] - sums[y*stride+x+w] - sums[(y+h)*stride+x] + sums[y*stride+x]
}

// horizontalScore is the share of horizontal edge runs among all edge runs in the
// window. Text usually scores above 0.5.
func horizontalScore(edges []bool, width, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			e := edges[row*width+col]
			if e && !inRun {
				horizontal++
			}
			inRun = e
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			e := edges[row*width+col]
			if e && !inRun {
				vertical++
			}
			inRun = e
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeOverlapping unions overlapping regions, keeping the higher confidence.
func mergeOverlapping(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		found := false
		for i := range merged {
			if r.Bounds.Overlaps(merged[i].Bounds) {
				merged[i].Bounds = merged[i].Bounds.Union(r.Bounds)
				merged[i].Confidence = math.Max(merged[i].Confidence, r.Confidence)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, r)
		}
	}
	return merged
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
