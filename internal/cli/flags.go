package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/image2layout/internal/config"
)

// tuningOpts holds the flags that override configuration values. Only flags the
// user actually set replace the loaded value.
type tuningOpts struct {
	configPath string
	threshold  int
	blur       float64
	maskText   bool
	minArea    float64
	tolerance  float64
	layer      int
	datatype   int
	pixelSize  float64
	grid       float64
}

func (o *tuningOpts) register(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "TOML configuration file")
	f.IntVar(&o.threshold, "threshold", def.Mask.Threshold, "luminance at or below which a pixel is foreground (0-255)")
	f.Float64Var(&o.blur, "blur", def.Mask.BlurSigma, "Gaussian blur radius applied before thresholding")
	f.BoolVar(&o.maskText, "mask-text", def.Mask.MaskText, "clear text annotations before tracing")
	f.Float64Var(&o.minArea, "min-area", def.Simplify.MinArea, "minimum polygon area in square pixels")
	f.Float64Var(&o.tolerance, "tolerance", def.Simplify.Tolerance, "simplification tolerance as a fraction of the perimeter")
	f.IntVar(&o.layer, "layer", def.Layout.Layer, "layer of traced polygons")
	f.IntVar(&o.datatype, "datatype", def.Layout.Datatype, "datatype of traced polygons")
	f.Float64Var(&o.pixelSize, "pixel-size", def.Layout.PixelSize, "user units per pixel")
	f.Float64Var(&o.grid, "grid", def.Layout.Grid, "user units per database unit")
}

// load reads the configuration file, if any, and applies every flag for which
// changed reports true.
func (o *tuningOpts) load(changed func(name string) bool) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if changed("threshold") {
		cfg.Mask.Threshold = o.threshold
	}
	if changed("blur") {
		cfg.Mask.BlurSigma = o.blur
	}
	if changed("mask-text") {
		cfg.Mask.MaskText = o.maskText
	}
	if changed("min-area") {
		cfg.Simplify.MinArea = o.minArea
	}
	if changed("tolerance") {
		cfg.Simplify.Tolerance = o.tolerance
	}
	if changed("layer") {
		cfg.Layout.Layer = o.layer
	}
	if changed("datatype") {
		cfg.Layout.Datatype = o.datatype
	}
	if changed("pixel-size") {
		cfg.Layout.PixelSize = o.pixelSize
	}
	if changed("grid") {
		cfg.Layout.Grid = o.grid
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
