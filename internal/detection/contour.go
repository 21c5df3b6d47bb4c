package detection

import (
	"github.com/ironsheep/image2layout/internal/mask"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is one closed boundary chain produced by TraceContours.
//
// Points are the centres of the boundary pixels in walk order; the chain closes
// implicitly from the last point back to the first. A single isolated pixel produces
// a one-point contour.
type Contour struct {
	// Points is the ordered boundary chain.
	Points []Point `json:"points"`

	// Hole is true when the contour bounds a background region enclosed by
	// foreground.
	Hole bool `json:"hole"`

	// Parent is the index of the enclosing contour in the slice returned by
	// TraceContours, or -1 for contours that sit directly on the background.
	Parent int `json:"parent"`
}

// 8-neighbourhood offsets. Index 0 is east and indices advance counter-clockwise as
// seen on screen (y grows downward): E, NE, N, NW, W, SW, S, SE.
var (
	neighbourDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	neighbourDY = [8]int{0, -1, -1, -1, 0, 1, 1, 1}
)

const (
	dirEast = 0
	dirWest = 4
)

// TraceContours finds every boundary between foreground and background in m,
// including the boundaries of holes nested inside foreground regions.
//
// # Algorithm (Suzuki–Abe border following)
//
//  1. Copy the mask into a label grid padded with a one-pixel background frame, so
//     regions touching the image border need no special case. Foreground starts as 1.
//  2. Scan in raster order. A pixel labelled 1 whose west neighbour is background
//     starts an outer border; a positively labelled pixel whose east neighbour is
//     background starts a hole border. Each border receives the next border number.
//  3. Walk the border: find the first foreground neighbour clockwise from the
//     background pixel that triggered the start, then repeatedly search
//     counter-clockwise around the current pixel starting just past the pixel we came
//     from. Visited pixels are labelled with the border number, negated when their
//     east neighbour was examined and found to be background; those labels stop the
//     same border from being started twice.
//  4. The walk ends when it is back at the start pixel and about to repeat its first
//     step.
//
// The parent of each border is derived from the last border crossed on the current
// row, following the Suzuki–Abe rules: an outer border inside a hole (or a hole inside
// an outer border) is that border's child, otherwise it shares its parent.
//
// Every pixel is visited a bounded number of times, so the cost is O(width × height).
func TraceContours(m *mask.Mask) []Contour {
	w, h := m.Width(), m.Height()
	if w == 0 || h == 0 {
		return nil
	}

	t := newTracer(m)

	// Border 1 is the frame, which behaves as a hole border without a parent.
	holes := []bool{false, true}
	parents := []int32{0, 0}
	nbd := int32(1)

	contours := make([]Contour, 0)

	for y := 1; y <= h; y++ {
		lnbd := int32(1)
		for x := 1; x <= w; x++ {
			idx := y*t.stride + x
			v := t.labels[idx]
			if v == 0 {
				continue
			}

			from := -1
			hole := false
			if v == 1 && t.labels[idx-1] == 0 {
				from = dirWest
			} else if v >= 1 && t.labels[idx+1] == 0 {
				from = dirEast
				hole = true
				if v > 1 {
					lnbd = v
				}
			}

			if from >= 0 {
				nbd++
				parent := parents[lnbd]
				if hole != holes[lnbd] {
					parent = lnbd
				}
				holes = append(holes, hole)
				parents = append(parents, parent)

				contours = append(contours, Contour{
					Points: t.follow(idx, from, nbd),
					Hole:   hole,
					Parent: contourIndex(parent),
				})
			}

			if v := t.labels[idx]; v != 1 {
				lnbd = abs32(v)
			}
		}
	}

	return contours
}

// tracer holds the padded label grid shared by all border walks of one mask.
type tracer struct {
	labels []int32
	stride int
	delta  [8]int
}

func newTracer(m *mask.Mask) *tracer {
	w, h := m.Width(), m.Height()
	stride := w + 2
	t := &tracer{
		labels: make([]int32, stride*(h+2)),
		stride: stride,
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.At(x, y) {
				t.labels[(y+1)*stride+x+1] = 1
			}
		}
	}
	for d := 0; d < 8; d++ {
		t.delta[d] = neighbourDY[d]*stride + neighbourDX[d]
	}
	return t
}

// follow walks one border starting at label index start. from is the direction of
// the background neighbour that triggered the border.
func (t *tracer) follow(start, from int, nbd int32) []Point {
	// Clockwise search for the first foreground neighbour.
	s := from
	found := false
	for k := 0; k < 8; k++ {
		s = (s + 7) & 7
		if t.labels[start+t.delta[s]] != 0 {
			found = true
			break
		}
	}
	if !found {
		t.labels[start] = -nbd
		return []Point{t.point(start)}
	}

	first := start + t.delta[s]
	cur := start
	pts := []Point{t.point(start)}

	for {
		// Counter-clockwise search starting just past the pixel we came from. The
		// pixel at s+8 is that previous pixel, so the search always terminates.
		e := s + 1
		next := cur + t.delta[e&7]
		for t.labels[next] == 0 {
			e++
			next = cur + t.delta[e&7]
		}

		// The search wrapped past east, so the east neighbour is background.
		if e > 8 {
			t.labels[cur] = -nbd
		} else if t.labels[cur] == 1 {
			t.labels[cur] = nbd
		}

		if next == start && cur == first {
			break
		}

		cur = next
		s = (e + 4) & 7
		pts = append(pts, t.point(cur))
	}

	return pts
}

// point converts a padded label index back into mask coordinates.
func (t *tracer) point(idx int) Point {
	return Point{X: idx%t.stride - 1, Y: idx/t.stride - 1}
}

// contourIndex maps a border number to its position in the result slice. Border 1
// (the frame) and the unset 0 map to -1.
func contourIndex(nbd int32) int {
	if nbd < 2 {
		return -1
	}
	return int(nbd) - 2
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
