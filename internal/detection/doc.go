// Package detection turns a binary mask into simplified polygons.
//
// This package implements the two geometric stages of the image-to-layout pipeline:
// boundary tracing and polygon simplification. Both are self-contained; no vision
// library is involved.
//
// # Pipeline
//
//  1. TraceContours: Suzuki–Abe border following over the mask. Every outer boundary
//     and every hole boundary becomes one closed Contour, with a parent index that
//     records nesting.
//  2. Simplify: Douglas–Peucker reduction of each closed contour with a tolerance
//     proportional to its perimeter (1% by default).
//  3. FilterOptions.Check: reject polygons below a minimum area, then polygons
//     whose vertex count is not in the allowed set (4, 8, 16, 32, 64 by default).
//
// FindPolygons runs all three and returns the accepted polygons plus Stats that count
// degenerate and rejected contours. Rejections are expected noise, not errors.
//
// Hole contours are reported and simplified like outer contours. They are not
// subtracted from the enclosing polygon.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Contour points are boundary pixel centres, so a filled rectangle covering
//     columns 10..49 traces to corners at x = 10 and x = 49
//
// # Winding
//
// Outer contours are walked counter-clockwise on screen and hole contours in the
// opposite sense. Simplification keeps the contour order. Callers must not rely on a
// particular orientation.
//
// # Text Regions
//
// DetectTextRegions is an edge-density heuristic that locates lettering so it can be
// masked out before tracing when OCR is not available.
package detection
