// Package config loads conversion settings from TOML.
//
// Every field has a default, so a file only needs the values it changes:
//
//	[mask]
//	threshold = 200
//	blur_sigma = 0.8
//	mask_text = true
//
//	[simplify]
//	tolerance = 0.01
//	min_area = 100.0
//	allowed_vertices = [4, 8]
//
//	[layout]
//	library = "IMAGE2OAS"
//	cell = "TOP"
//	unit = 1e-6
//	pixel_size = 0.5
//	grid = 0.001
//	layer = 10
//	datatype = 250
//	format = "gds"
//
//	[[color_layers]]
//	color = "#ff0000"
//	tolerance = 0.1
//	layer = 20
//	datatype = 0
//
// An empty allowed_vertices array accepts any vertex count. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
package config

import (
	"math"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/image2layout/internal/detection"
	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/layout"
	"github.com/ironsheep/image2layout/internal/mask"
	"github.com/ironsheep/image2layout/internal/ocr"
	"github.com/ironsheep/image2layout/internal/pipeline"
)

// DefaultName is the library and cell name used when none is configured.
const DefaultName = "IMAGE2OAS"

// DefaultUnit is the user unit in meters (one micron).
const DefaultUnit = 1e-6

// Config is the full set of conversion settings.
type Config struct {
	Mask        Mask         `toml:"mask"`
	Simplify    Simplify     `toml:"simplify"`
	Layout      Layout       `toml:"layout"`
	ColorLayers []ColorLayer `toml:"color_layers"`
}

// Mask controls how the image becomes a binary mask.
type Mask struct {
	Threshold   int     `toml:"threshold"`
	BlurSigma   float64 `toml:"blur_sigma"`
	MaskText    bool    `toml:"mask_text"`
	OCRLanguage string  `toml:"ocr_language"`
}

// Simplify controls contour simplification and filtering.
type Simplify struct {
	Tolerance       float64 `toml:"tolerance"`
	MinArea         float64 `toml:"min_area"`
	AllowedVertices []int   `toml:"allowed_vertices"`
}

// Layout controls placement and scale of the written polygons.
type Layout struct {
	Library   string  `toml:"library"`
	Cell      string  `toml:"cell"`
	Unit      float64 `toml:"unit"`       // user unit in meters
	PixelSize float64 `toml:"pixel_size"` // user units per pixel
	Grid      float64 `toml:"grid"`       // user units per database unit
	Layer     int     `toml:"layer"`
	Datatype  int     `toml:"datatype"`
	Format    string  `toml:"format"` // lyt, gds, or empty to follow the output extension
}

// ColorLayer maps one colour to its own layer.
type ColorLayer struct {
	Color     string  `toml:"color"`
	Tolerance float64 `toml:"tolerance"`
	Layer     int     `toml:"layer"`
	Datatype  int     `toml:"datatype"`
}

// Default returns the built-in settings.
func Default() *Config {
	filter := detection.DefaultFilterOptions()
	return &Config{
		Mask: Mask{
			Threshold:   mask.DefaultThreshold,
			OCRLanguage: ocr.DefaultLanguage,
		},
		Simplify: Simplify{
			Tolerance:       detection.DefaultTolerance,
			MinArea:         filter.MinArea,
			AllowedVertices: filter.AllowedVertices,
		},
		Layout: Layout{
			Library:   DefaultName,
			Cell:      DefaultName,
			Unit:      DefaultUnit,
			PixelSize: pipeline.DefaultPixelSize,
			Grid:      pipeline.DefaultGrid,
			Layer:     pipeline.DefaultLayer,
			Datatype:  pipeline.DefaultDatatype,
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Simplify.AllowedVertices = slices.Clone(c.Simplify.AllowedVertices)
	out.ColorLayers = slices.Clone(c.ColorLayers)
	return &out
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errs.Wrap(errs.CodeConfig, err, "failed to parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.CodeConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if c.Mask.Threshold < 0 || c.Mask.Threshold > math.MaxUint8 {
		return errs.New(errs.CodeConfig, "mask.threshold must be in 0..255, got %d", c.Mask.Threshold)
	}
	if c.Mask.BlurSigma < 0 {
		return errs.New(errs.CodeConfig, "mask.blur_sigma must not be negative, got %v", c.Mask.BlurSigma)
	}

	if c.Simplify.Tolerance < 0 || c.Simplify.Tolerance >= 1 {
		return errs.New(errs.CodeConfig, "simplify.tolerance must be in [0, 1), got %v", c.Simplify.Tolerance)
	}
	if c.Simplify.MinArea < 0 {
		return errs.New(errs.CodeConfig, "simplify.min_area must not be negative, got %v", c.Simplify.MinArea)
	}
	for _, n := range c.Simplify.AllowedVertices {
		if n < 3 {
			return errs.New(errs.CodeConfig, "simplify.allowed_vertices entries must be at least 3, got %d", n)
		}
	}

	l := c.Layout
	if strings.TrimSpace(l.Library) == "" {
		return errs.New(errs.CodeConfig, "layout.library must not be empty")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"layout.unit", l.Unit},
		{"layout.pixel_size", l.PixelSize},
		{"layout.grid", l.Grid},
	} {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return errs.New(errs.CodeConfig, "%s must be positive, got %v", f.name, f.value)
		}
	}
	if err := checkLayer("layout", l.Layer, l.Datatype); err != nil {
		return err
	}
	if _, err := layout.ParseFormat(l.Format); err != nil {
		return errs.Wrap(errs.CodeConfig, err, "invalid layout.format")
	}

	for i, cl := range c.ColorLayers {
		if _, err := imaging.ParseColor(cl.Color); err != nil {
			return errs.Wrap(errs.CodeConfig, err, "invalid color_layers[%d].color", i)
		}
		if cl.Tolerance < 0 || cl.Tolerance > 1 {
			return errs.New(errs.CodeConfig, "color_layers[%d].tolerance must be in 0..1, got %v", i, cl.Tolerance)
		}
		if err := checkLayer("color_layers", cl.Layer, cl.Datatype); err != nil {
			return err
		}
	}
	return nil
}

func checkLayer(section string, layer, datatype int) error {
	if layer < 0 || layer > math.MaxUint16 {
		return errs.New(errs.CodeConfig, "%s.layer must be in 0..65535, got %d", section, layer)
	}
	if datatype < 0 || datatype > math.MaxUint16 {
		return errs.New(errs.CodeConfig, "%s.datatype must be in 0..65535, got %d", section, datatype)
	}
	return nil
}

// Options converts the settings into pipeline options. The logger is left unset.
func (c *Config) Options() (pipeline.Options, error) {
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.DefaultOptions()
	opts.Threshold = uint8(c.Mask.Threshold)
	opts.BlurRadius = c.Mask.BlurSigma
	opts.MaskText = c.Mask.MaskText
	if c.Mask.OCRLanguage != "" {
		opts.OCR.Language = c.Mask.OCRLanguage
	}

	opts.Detection = detection.Options{
		Tolerance: c.Simplify.Tolerance,
		Filter: detection.FilterOptions{
			MinArea:         c.Simplify.MinArea,
			AllowedVertices: slices.Clone(c.Simplify.AllowedVertices),
		},
	}

	opts.Quantizer = layout.Quantizer{Scale: c.Layout.PixelSize, Grid: c.Layout.Grid}
	opts.Layer = uint16(c.Layout.Layer)
	opts.Datatype = uint16(c.Layout.Datatype)

	for _, cl := range c.ColorLayers {
		target, _ := imaging.ParseColor(cl.Color)
		opts.ColorLayers = append(opts.ColorLayers, pipeline.ColorLayer{
			Color:     target,
			Tolerance: cl.Tolerance,
			Layer:     uint16(cl.Layer),
			Datatype:  uint16(cl.Datatype),
		})
	}
	return opts, nil
}

// NewLibrary creates an empty library with the configured name and units. The
// database unit in meters is Unit * Grid.
func (c *Config) NewLibrary() *layout.Library {
	return layout.NewLibrary(c.Layout.Library, c.Layout.Unit, c.Layout.Unit*c.Layout.Grid)
}

// Format returns the configured output format for path.
func (c *Config) Format(path string) layout.Format {
	f, err := layout.ParseFormat(c.Layout.Format)
	if err != nil || f == "" {
		return layout.FormatFromPath(path)
	}
	return f
}
