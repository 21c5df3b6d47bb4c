package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/image2layout/internal/detection"
)

var (
	// ErrDegenerate is returned when quantization collapses a polygon.
	ErrDegenerate = errors.New("degenerate polygon")

	// ErrOverflow is returned when a coordinate does not fit in int32. It matches
	// ErrDegenerate under errors.Is.
	ErrOverflow = fmt.Errorf("%w: coordinate outside int32 range", ErrDegenerate)
)

// Quantizer maps pixel coordinates onto the database grid.
type Quantizer struct {
	Scale float64 // User units per pixel
	Grid  float64 // User units per database unit
}

// Validate checks that both factors are positive and finite.
func (q Quantizer) Validate() error {
	if !(q.Scale > 0) || math.IsInf(q.Scale, 0) {
		return fmt.Errorf("invalid pixel scale %v: must be positive", q.Scale)
	}
	if !(q.Grid > 0) || math.IsInf(q.Grid, 0) {
		return fmt.Errorf("invalid grid %v: must be positive", q.Grid)
	}
	return nil
}

// Quantize converts pixel-space vertices to database units.
//
// Consecutive vertices that round to the same grid point are merged, including the
// last and first. If a merged pair lay more than one grid step apart in pixel space,
// or fewer than three distinct vertices remain, the result is ErrDegenerate.
func (q Quantizer) Quantize(vertices []detection.Point) ([]XY, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	factor := q.Scale / q.Grid
	step := q.Grid / q.Scale

	out := make([]XY, 0, len(vertices))
	src := make([]detection.Point, 0, len(vertices))
	for _, v := range vertices {
		p, err := q.point(v, factor)
		if err != nil {
			return nil, err
		}
		if n := len(out); n > 0 && out[n-1] == p {
			if pixelDistance(src[n-1], v) > step {
				return nil, fmt.Errorf("%w: vertices %v and %v merge on the grid", ErrDegenerate, src[n-1], v)
			}
			continue
		}
		out = append(out, p)
		src = append(src, v)
	}

	for n := len(out); n > 1 && out[n-1] == out[0]; n = len(out) {
		if pixelDistance(src[n-1], src[0]) > step {
			return nil, fmt.Errorf("%w: vertices %v and %v merge on the grid", ErrDegenerate, src[n-1], src[0])
		}
		out, src = out[:n-1], src[:n-1]
	}

	if len(out) < 3 {
		return nil, fmt.Errorf("%w: %d distinct vertices after quantization", ErrDegenerate, len(out))
	}
	return out, nil
}

func (q Quantizer) point(v detection.Point, factor float64) (XY, error) {
	x, okX := toInt32(float64(v.X) * factor)
	y, okY := toInt32(float64(v.Y) * factor)
	if !okX || !okY {
		return XY{}, fmt.Errorf("%w: pixel %v", ErrOverflow, v)
	}
	return XY{X: x, Y: y}, nil
}

// toInt32 rounds half away from zero and reports whether the result fits.
func toInt32(f float64) (int32, bool) {
	r := math.Round(f)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return 0, false
	}
	return int32(r), true
}

func pixelDistance(a, b detection.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
