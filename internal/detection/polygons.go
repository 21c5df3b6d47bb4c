package detection

import (
	"github.com/ironsheep/image2layout/internal/mask"
)

// Options controls FindPolygons.
type Options struct {
	// Tolerance is the simplification tolerance as a fraction of each contour's
	// perimeter. Zero selects DefaultTolerance.
	Tolerance float64

	// Filter holds the acceptance criteria applied after simplification.
	Filter FilterOptions
}

// DefaultOptions returns the detection settings used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Tolerance: DefaultTolerance,
		Filter:    DefaultFilterOptions(),
	}
}

// Stats counts what happened to every traced contour. Rejections are expected noise
// and are reported here instead of as errors.
type Stats struct {
	Contours         int `json:"contours"`
	Holes            int `json:"holes"`
	Degenerate       int `json:"degenerate"`
	RejectedArea     int `json:"rejected_area"`
	RejectedVertices int `json:"rejected_vertices"`
	Accepted         int `json:"accepted"`
}

// FindPolygons traces every contour of m, simplifies it and keeps the polygons that
// pass opts.Filter. Polygons are returned in tracing (raster) order.
func FindPolygons(m *mask.Mask, opts Options) ([]Polygon, Stats) {
	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = DefaultTolerance
	}

	contours := TraceContours(m)
	stats := Stats{Contours: len(contours)}
	polygons := make([]Polygon, 0)

	for _, c := range contours {
		if c.Hole {
			stats.Holes++
		}

		p, err := Simplify(c, tolerance)
		if err != nil {
			stats.Degenerate++
			continue
		}

		switch opts.Filter.Check(p) {
		case RejectedArea:
			stats.RejectedArea++
		case RejectedVertices:
			stats.RejectedVertices++
		default:
			stats.Accepted++
			polygons = append(polygons, p)
		}
	}

	return polygons, stats
}

// Add accumulates the counts of o into s.
func (s *Stats) Add(o Stats) {
	s.Contours += o.Contours
	s.Holes += o.Holes
	s.Degenerate += o.Degenerate
	s.RejectedArea += o.RejectedArea
	s.RejectedVertices += o.RejectedVertices
	s.Accepted += o.Accepted
}
