package detection

import "slices"

// DefaultMinArea is the smallest polygon area, in square pixels, that is kept.
const DefaultMinArea = 100

// DefaultAllowedVertices lists the simplified vertex counts accepted by default:
// rectangles, octagons and the regular polygons that approximate round shapes.
var DefaultAllowedVertices = []int{4, 8, 16, 32, 64}

// Verdict is the outcome of FilterOptions.Check.
type Verdict int

const (
	// Accepted means the polygon passed every filter.
	Accepted Verdict = iota

	// RejectedArea means the enclosed area is below MinArea.
	RejectedArea

	// RejectedVertices means the vertex count is not in AllowedVertices.
	RejectedVertices
)

// String returns a short name for log output.
func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case RejectedArea:
		return "area"
	case RejectedVertices:
		return "vertices"
	default:
		return "unknown"
	}
}

// FilterOptions holds the geometric acceptance criteria for simplified polygons.
type FilterOptions struct {
	// MinArea is the minimum enclosed area in square pixels. A polygon whose area
	// equals MinArea is accepted.
	MinArea float64

	// AllowedVertices is the set of accepted vertex counts. An empty set accepts any
	// count.
	AllowedVertices []int
}

// DefaultFilterOptions returns the filter used when no configuration is given.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		MinArea:         DefaultMinArea,
		AllowedVertices: slices.Clone(DefaultAllowedVertices),
	}
}

// Check applies the area filter and then the vertex-count filter.
func (o FilterOptions) Check(p Polygon) Verdict {
	if p.Area() < o.MinArea {
		return RejectedArea
	}
	if len(o.AllowedVertices) > 0 && !slices.Contains(o.AllowedVertices, len(p.Vertices)) {
		return RejectedVertices
	}
	return Accepted
}
