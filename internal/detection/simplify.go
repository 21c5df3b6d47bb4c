package detection

import (
	"errors"
	"math"
)

// DefaultTolerance is the simplification tolerance as a fraction of the contour's
// closed perimeter.
const DefaultTolerance = 0.01

// ErrDegenerate is returned when a contour or polygon has too few distinct points
// to enclose an area.
var ErrDegenerate = errors.New("degenerate geometry")

// Polygon is a simplified closed outline in pixel space.
//
// Vertices are a subset of the source contour's points, in the contour's order, so
// the winding is whatever the tracer produced. No two consecutive vertices coincide
// and the outline closes from the last vertex back to the first.
type Polygon struct {
	// Vertices is the ordered vertex list (at least 3 entries).
	Vertices []Point `json:"vertices"`

	// Hole mirrors Contour.Hole of the source contour.
	Hole bool `json:"hole,omitempty"`
}

// Simplify reduces a contour to a minimal polygon whose outline stays within
// tolerance × perimeter of every contour point.
//
// Parameters:
//   - c: Contour produced by TraceContours.
//   - tolerance: Fraction of the closed perimeter used as the maximum perpendicular
//     deviation. DefaultTolerance (1%) matches typical drawn shapes.
//
// Returns ErrDegenerate when the contour has fewer than three distinct points or the
// simplified outline collapses below three vertices.
//
// # Algorithm
//
//  1. Drop consecutive duplicate points and measure the closed perimeter.
//  2. Pick two well-separated anchors: start at the first point and hop to the
//     farthest point a few times, which settles on a near-diameter pair.
//  3. Run Douglas–Peucker on both halves of the ring between the anchors and join
//     the kept points.
//  4. Remove vertices that lie within tolerance of the line through their two
//     neighbours. This drops an anchor that happened to land in the middle of a
//     straight run.
func Simplify(c Contour, tolerance float64) (Polygon, error) {
	pts := dedupe(c.Points)
	if len(pts) < 3 {
		return Polygon{}, ErrDegenerate
	}

	eps := tolerance * Perimeter(pts)

	a := 0
	b := farthest(pts, a)
	for i := 0; i < 2; i++ {
		a, b = b, farthest(pts, b)
	}
	if a == b {
		return Polygon{}, ErrDegenerate
	}

	first := douglasPeucker(ring(pts, a, b), eps)
	second := douglasPeucker(ring(pts, b, a), eps)

	// Both halves keep their end points; drop the duplicates where they join.
	vertices := make([]Point, 0, len(first)+len(second))
	vertices = append(vertices, first[:len(first)-1]...)
	vertices = append(vertices, second[:len(second)-1]...)

	// A contour can revisit a pixel along a one-pixel-wide spur.
	vertices = dedupe(removeCollinear(vertices, eps))
	if len(vertices) < 3 {
		return Polygon{}, ErrDegenerate
	}

	return Polygon{Vertices: vertices, Hole: c.Hole}, nil
}

// Perimeter returns the length of the closed path through pts.
func Perimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	prev := pts[len(pts)-1]
	for _, p := range pts {
		sum += distance(prev, p)
		prev = p
	}
	return sum
}

// Area returns the unsigned area enclosed by the closed path through pts using the
// shoelace formula.
func Area(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var twice int64
	prev := pts[len(pts)-1]
	for _, p := range pts {
		twice += int64(prev.X)*int64(p.Y) - int64(p.X)*int64(prev.Y)
		prev = p
	}
	return math.Abs(float64(twice)) / 2
}

// EdgeLengths returns the length of every edge of the closed polygon, starting with
// the edge from vertex 0 to vertex 1.
func (p Polygon) EdgeLengths() []float64 {
	n := len(p.Vertices)
	lengths := make([]float64, n)
	for i := range p.Vertices {
		lengths[i] = distance(p.Vertices[i], p.Vertices[(i+1)%n])
	}
	return lengths
}

// Area returns the unsigned area of the polygon in square pixels.
func (p Polygon) Area() float64 {
	return Area(p.Vertices)
}

// dedupe removes consecutive duplicate points, including a closing point equal to
// the first.
func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// farthest returns the index of the point farthest from pts[from]. Ties keep the
// earliest index.
func farthest(pts []Point, from int) int {
	o := pts[from]
	best, bestDist := from, int64(0)
	for i, p := range pts {
		dx, dy := int64(p.X-o.X), int64(p.Y-o.Y)
		if d := dx*dx + dy*dy; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ring returns the points from index i to index j inclusive, wrapping around the end
// of the slice.
func ring(pts []Point, i, j int) []Point {
	n := len(pts)
	count := (j-i+n)%n + 1
	out := make([]Point, count)
	for k := 0; k < count; k++ {
		out[k] = pts[(i+k)%n]
	}
	return out
}

// douglasPeucker simplifies an open chain, always keeping both end points. It uses
// an explicit stack so long contours cannot overflow the goroutine stack.
func douglasPeucker(chain []Point, eps float64) []Point {
	n := len(chain)
	if n <= 2 {
		return chain
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, n - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}

		maxDist, idx := -1.0, -1
		for i := s.lo + 1; i < s.hi; i++ {
			if d := lineDistance(chain[i], chain[s.lo], chain[s.hi]); d > maxDist {
				maxDist, idx = d, i
			}
		}

		if maxDist > eps {
			keep[idx] = true
			stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
		}
	}

	out := make([]Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, chain[i])
		}
	}
	return out
}

// removeCollinear drops vertices within eps of the line through their neighbours
// until no more can be removed or only three remain.
func removeCollinear(vertices []Point, eps float64) []Point {
	out := append([]Point(nil), vertices...)
	for changed := true; changed && len(out) > 3; {
		changed = false
		for i := 0; i < len(out) && len(out) > 3; {
			prev := out[(i+len(out)-1)%len(out)]
			next := out[(i+1)%len(out)]
			if lineDistance(out[i], prev, next) <= eps {
				out = append(out[:i], out[i+1:]...)
				changed = true
				continue
			}
			i++
		}
	}
	return out
}

// lineDistance returns the perpendicular distance from p to the line through a and
// b, or the distance to a when a and b coincide.
func lineDistance(p, a, b Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return distance(p, a)
	}
	cross := dx*float64(p.Y-a.Y) - dy*float64(p.X-a.X)
	return math.Abs(cross) / length
}

func distance(a, b Point) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
