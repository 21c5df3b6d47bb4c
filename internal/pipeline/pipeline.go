// Package pipeline runs the image-to-layout conversion.
//
// A run takes a decoded image through every stage in order:
//
//  1. Prepare: flatten alpha, optionally blur, convert to luminance
//  2. Mask: threshold into a binary mask, clearing text annotations if requested
//  3. Trace and simplify: border following, Douglas–Peucker, area and vertex filters
//  4. Quantize: pixel coordinates to integer database units
//
// The luminance pass always runs on Options.Layer/Options.Datatype. Each configured
// ColorLayer adds a pass on its own layer that traces only pixels near its colour.
//
// Degenerate geometry never fails a run. It is logged at debug level and counted in
// Result.Degenerate. Only unreadable input or invalid options return an error.
//
// # Usage
//
//	opts := pipeline.DefaultOptions()
//	opts.Logger = logger
//	lib := layout.NewLibrary("IMAGE2OAS", 1e-6, 1e-9)
//	result, err := pipeline.Convert(ctx, cache, "drawing.png", lib, "IMAGE2OAS", opts)
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image2layout/internal/detection"
	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/layout"
	"github.com/ironsheep/image2layout/internal/mask"
	"github.com/ironsheep/image2layout/internal/ocr"
)

// Default layout placement and scale.
const (
	DefaultLayer     = 10
	DefaultDatatype  = 250
	DefaultPixelSize = 1.0   // user units per pixel
	DefaultGrid      = 0.001 // user units per database unit
)

// colorKeyThreshold splits the black/white image produced by imaging.ColorKey.
const colorKeyThreshold = 127

// textConfidence is the minimum score for heuristic text regions.
const textConfidence = 0.3

// textMargin grows every text box so anti-aliased glyph edges are cleared too.
const textMargin = 2

// ColorLayer traces the pixels near one colour onto a dedicated layer.
type ColorLayer struct {
	Color     colorful.Color
	Tolerance float64 // Lab distance, 0..1
	Layer     uint16
	Datatype  uint16
}

// Options controls a conversion run.
type Options struct {
	// Threshold is the luminance at or below which a pixel is foreground.
	Threshold uint8

	// BlurRadius applies a Gaussian blur before thresholding. Zero disables it.
	BlurRadius float64

	// MaskText clears detected lettering from the mask before tracing.
	MaskText bool

	// OCR configures Tesseract when MaskText is set.
	OCR ocr.Options

	// Detection holds the simplification tolerance and acceptance filters.
	Detection detection.Options

	// Quantizer maps pixels to database units.
	Quantizer layout.Quantizer

	// Layer and Datatype tag polygons of the luminance pass.
	Layer    uint16
	Datatype uint16

	// ColorLayers adds one pass per entry.
	ColorLayers []ColorLayer

	// MaxVertices drops polygons with more vertices than the output format can hold.
	// Zero means no limit.
	MaxVertices int

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// DefaultOptions returns the settings used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		Threshold: mask.DefaultThreshold,
		OCR:       ocr.DefaultOptions(),
		Detection: detection.DefaultOptions(),
		Quantizer: layout.Quantizer{Scale: DefaultPixelSize, Grid: DefaultGrid},
		Layer:     DefaultLayer,
		Datatype:  DefaultDatatype,
	}
}

// Validate checks the options that a run cannot recover from.
func (o Options) Validate() error {
	if err := o.Quantizer.Validate(); err != nil {
		return errs.Wrap(errs.CodeConfig, err, "invalid quantizer")
	}
	if o.Detection.Tolerance < 0 {
		return errs.New(errs.CodeConfig, "tolerance must not be negative, got %v", o.Detection.Tolerance)
	}
	return nil
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Polygon is one accepted polygon with both its pixel-space and layout geometry.
type Polygon struct {
	Layer       uint16            `json:"layer"`
	Datatype    uint16            `json:"datatype"`
	Hole        bool              `json:"hole,omitempty"`
	Vertices    []detection.Point `json:"vertices"`
	EdgeLengths []float64         `json:"edge_lengths"`
	Area        float64           `json:"area"`
	Points      []layout.XY       `json:"points"`
}

// Layout returns the polygon as stored in a layout cell.
func (p Polygon) Layout() layout.Polygon {
	return layout.Polygon{Layer: p.Layer, Datatype: p.Datatype, Points: p.Points}
}

// Result summarizes one run.
type Result struct {
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Polygons    []Polygon       `json:"polygons"`
	Stats       detection.Stats `json:"stats"`
	Degenerate  int             `json:"degenerate"`
	TextRegions int             `json:"text_regions"`
}

// pass is one mask/trace sweep over a prepared grayscale image.
type pass struct {
	name      string
	gray      *image.Gray
	threshold uint8
	layer     uint16
	datatype  uint16
}

// Run converts a decoded image into polygons.
func Run(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.logger()

	b := img.Bounds()
	result := &Result{Width: b.Dx(), Height: b.Dy(), Polygons: make([]Polygon, 0)}

	gray := imaging.ToGray(img, opts.BlurRadius)

	var exclusions []image.Rectangle
	if opts.MaskText {
		exclusions = textExclusions(gray, opts.OCR, logger)
		result.TextRegions = len(exclusions)
	}

	passes := []pass{{
		name:      "luminance",
		gray:      gray,
		threshold: opts.Threshold,
		layer:     opts.Layer,
		datatype:  opts.Datatype,
	}}
	var flat *image.NRGBA
	if len(opts.ColorLayers) > 0 {
		flat = imaging.Flatten(img)
	}
	for _, cl := range opts.ColorLayers {
		passes = append(passes, pass{
			name:      "color " + cl.Color.Hex(),
			gray:      imaging.ColorKey(flat, cl.Color, cl.Tolerance),
			threshold: colorKeyThreshold,
			layer:     cl.Layer,
			datatype:  cl.Datatype,
		})
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := runPass(p, exclusions, opts, logger, result); err != nil {
			return nil, err
		}
	}

	result.Degenerate += result.Stats.Degenerate
	return result, nil
}

func runPass(p pass, exclusions []image.Rectangle, opts Options, logger *log.Logger, result *Result) error {
	m := mask.FromGray(p.gray, p.threshold, mask.WithExclusions(exclusions...))
	polygons, stats := detection.FindPolygons(m, opts.Detection)
	result.Stats.Add(stats)

	logger.Debug("traced", "pass", p.name, "foreground", m.Count(),
		"contours", stats.Contours, "holes", stats.Holes, "accepted", stats.Accepted,
		"rejected_area", stats.RejectedArea, "rejected_vertices", stats.RejectedVertices)

	for _, poly := range polygons {
		if opts.MaxVertices > 0 && len(poly.Vertices) > opts.MaxVertices {
			result.Degenerate++
			logger.Debug("dropped polygon", "code", errs.CodeDegenerate, "vertices", len(poly.Vertices), "limit", opts.MaxVertices)
			continue
		}

		points, err := opts.Quantizer.Quantize(poly.Vertices)
		if errors.Is(err, layout.ErrDegenerate) {
			result.Degenerate++
			logger.Debug("dropped polygon", "code", errs.CodeDegenerate, "err", err)
			continue
		}
		if err != nil {
			return errs.Wrap(errs.CodeInternal, err, "failed to quantize polygon")
		}

		out := Polygon{
			Layer:       p.layer,
			Datatype:    p.datatype,
			Hole:        poly.Hole,
			Vertices:    poly.Vertices,
			EdgeLengths: poly.EdgeLengths(),
			Area:        poly.Area(),
			Points:      points,
		}
		logger.Debug("polygon", "layer", out.Layer, "datatype", out.Datatype,
			"vertices", fmt.Sprint(out.Vertices), "edges", formatLengths(out.EdgeLengths))
		result.Polygons = append(result.Polygons, out)
	}
	return nil
}

// textExclusions finds lettering with Tesseract, falling back to the edge-density
// heuristic when OCR is unavailable or fails.
func textExclusions(gray *image.Gray, opts ocr.Options, logger *log.Logger) []image.Rectangle {
	boxes, err := ocr.TextBoxes(gray, opts)
	if err != nil {
		logger.Debug("OCR unavailable, using edge-density text detection", "err", err)
		regions := detection.DetectTextRegions(gray, textConfidence)
		boxes = make([]image.Rectangle, len(regions))
		for i, r := range regions {
			boxes[i] = r.Bounds
		}
	}

	for i := range boxes {
		boxes[i] = boxes[i].Inset(-textMargin)
	}
	logger.Debug("masked text", "regions", len(boxes))
	return boxes
}

func formatLengths(lengths []float64) string {
	out := make([]string, len(lengths))
	for i, l := range lengths {
		out[i] = fmt.Sprintf("%.1f", l)
	}
	return fmt.Sprint(out)
}

// Convert loads path through cache, runs the pipeline and adds every accepted polygon
// to the cell of lib named cell. The cell is created only when the run succeeds.
func Convert(ctx context.Context, cache *imaging.ImageCache, path string, lib *layout.Library, cell string, opts Options) (*Result, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInput, err, "failed to read %s", path)
	}

	result, err := Run(ctx, img, opts)
	if err != nil {
		return nil, err
	}

	c := lib.AddCell(cell)
	for _, p := range result.Polygons {
		c.Add(p.Layout())
	}
	opts.logger().Debug("converted", "path", path, "cell", cell, "polygons", len(result.Polygons))
	return result, nil
}
