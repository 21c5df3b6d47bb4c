package config

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/layout"
)

// writeConfig writes content to a config.toml in a temp directory
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Mask.Threshold != 240 {
		t.Errorf("Expected threshold 240, got %d", cfg.Mask.Threshold)
	}
	if cfg.Simplify.MinArea != 100 || cfg.Simplify.Tolerance != 0.01 {
		t.Errorf("Unexpected simplify defaults: %+v", cfg.Simplify)
	}
	if !slices.Equal(cfg.Simplify.AllowedVertices, []int{4, 8, 16, 32, 64}) {
		t.Errorf("Unexpected allowed vertices: %v", cfg.Simplify.AllowedVertices)
	}
	if cfg.Layout.Library != "IMAGE2OAS" || cfg.Layout.Cell != "IMAGE2OAS" {
		t.Errorf("Unexpected names: %+v", cfg.Layout)
	}
	if cfg.Layout.Layer != 10 || cfg.Layout.Datatype != 250 {
		t.Errorf("Expected layer 10/250, got %d/%d", cfg.Layout.Layer, cfg.Layout.Datatype)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[mask]
threshold = 200
blur_sigma = 0.8

[simplify]
allowed_vertices = []

[layout]
cell = "TOP"
pixel_size = 0.5
format = "gds"

[[color_layers]]
color = "#ff0000"
tolerance = 0.1
layer = 20
datatype = 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Mask.Threshold != 200 || cfg.Mask.BlurSigma != 0.8 {
		t.Errorf("Mask section not applied: %+v", cfg.Mask)
	}
	if len(cfg.Simplify.AllowedVertices) != 0 {
		t.Errorf("Expected an empty allowed set, got %v", cfg.Simplify.AllowedVertices)
	}
	if cfg.Simplify.MinArea != 100 {
		t.Errorf("Unset keys should keep defaults, got min_area %v", cfg.Simplify.MinArea)
	}
	if cfg.Layout.Cell != "TOP" || cfg.Layout.Library != "IMAGE2OAS" {
		t.Errorf("Unexpected names: %+v", cfg.Layout)
	}
	if len(cfg.ColorLayers) != 1 || cfg.ColorLayers[0].Layer != 20 {
		t.Errorf("Expected one colour layer, got %+v", cfg.ColorLayers)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", "[mask\nthreshold = 1"},
		{"unknown key", "[mask]\nthreshhold = 200"},
		{"unknown section", "[output]\npath = \"x\""},
		{"wrong type", "[mask]\nthreshold = \"dark\""},
		{"invalid value", "[layout]\ngrid = 0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !errs.Is(err, errs.CodeConfig) {
				t.Errorf("Expected a config error, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errs.Is(err, errs.CodeConfig) {
		t.Errorf("Expected a config error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold too high", func(c *Config) { c.Mask.Threshold = 256 }},
		{"negative threshold", func(c *Config) { c.Mask.Threshold = -1 }},
		{"negative blur", func(c *Config) { c.Mask.BlurSigma = -1 }},
		{"tolerance of one", func(c *Config) { c.Simplify.Tolerance = 1 }},
		{"negative min area", func(c *Config) { c.Simplify.MinArea = -5 }},
		{"two-vertex polygons", func(c *Config) { c.Simplify.AllowedVertices = []int{2, 4} }},
		{"empty library name", func(c *Config) { c.Layout.Library = "  " }},
		{"zero unit", func(c *Config) { c.Layout.Unit = 0 }},
		{"negative pixel size", func(c *Config) { c.Layout.PixelSize = -1 }},
		{"infinite grid", func(c *Config) { c.Layout.Grid = math.Inf(1) }},
		{"NaN grid", func(c *Config) { c.Layout.Grid = math.NaN() }},
		{"layer out of range", func(c *Config) { c.Layout.Layer = 65536 }},
		{"negative datatype", func(c *Config) { c.Layout.Datatype = -1 }},
		{"unknown format", func(c *Config) { c.Layout.Format = "oasis" }},
		{"bad colour", func(c *Config) { c.ColorLayers = []ColorLayer{{Color: "red"}} }},
		{"colour tolerance", func(c *Config) { c.ColorLayers = []ColorLayer{{Color: "#ff0000", Tolerance: 2}} }},
		{"colour layer range", func(c *Config) { c.ColorLayers = []ColorLayer{{Color: "#ff0000", Layer: 70000}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errs.Is(err, errs.CodeConfig) {
				t.Errorf("Expected a config error, got %v", err)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Mask.Threshold = 128
	cfg.Mask.MaskText = true
	cfg.Mask.OCRLanguage = "deu"
	cfg.Simplify.MinArea = 50
	cfg.Layout.PixelSize = 0.25
	cfg.Layout.Layer = 1
	cfg.Layout.Datatype = 2
	cfg.ColorLayers = []ColorLayer{{Color: "#00ff00", Tolerance: 0.2, Layer: 30, Datatype: 3}}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}

	if opts.Threshold != 128 || !opts.MaskText || opts.OCR.Language != "deu" {
		t.Errorf("Mask settings not applied: %+v", opts)
	}
	if opts.Detection.Filter.MinArea != 50 || opts.Detection.Tolerance != 0.01 {
		t.Errorf("Detection settings not applied: %+v", opts.Detection)
	}
	if opts.Quantizer != (layout.Quantizer{Scale: 0.25, Grid: 0.001}) {
		t.Errorf("Unexpected quantizer: %+v", opts.Quantizer)
	}
	if opts.Layer != 1 || opts.Datatype != 2 {
		t.Errorf("Expected layer 1/2, got %d/%d", opts.Layer, opts.Datatype)
	}
	if len(opts.ColorLayers) != 1 || opts.ColorLayers[0].Layer != 30 || opts.ColorLayers[0].Color.Hex() != "#00ff00" {
		t.Errorf("Unexpected colour layers: %+v", opts.ColorLayers)
	}

	// The options must not alias the config's slice.
	opts.Detection.Filter.AllowedVertices[0] = 99
	if cfg.Simplify.AllowedVertices[0] != 4 {
		t.Error("Options shares AllowedVertices with the config")
	}
}

func TestOptions_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Layout.Grid = 0

	if _, err := cfg.Options(); !errs.Is(err, errs.CodeConfig) {
		t.Errorf("Expected a config error, got %v", err)
	}
}

func TestNewLibrary(t *testing.T) {
	cfg := Default()
	cfg.Layout.Library = "CHIP"

	lib := cfg.NewLibrary()
	if lib.Name != "CHIP" || lib.Unit != 1e-6 {
		t.Errorf("Unexpected library: %s unit %v", lib.Name, lib.Unit)
	}
	if math.Abs(lib.Precision-1e-9) > 1e-21 {
		t.Errorf("Expected precision 1e-9, got %v", lib.Precision)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		configured string
		path       string
		want       layout.Format
	}{
		{"", "out.lyt", layout.FormatLYT},
		{"", "out.gds", layout.FormatGDS},
		{"gds", "out.lyt", layout.FormatGDS},
		{"lyt", "out.gds", layout.FormatLYT},
	}

	for _, tt := range tests {
		t.Run(tt.configured+"_"+tt.path, func(t *testing.T) {
			cfg := Default()
			cfg.Layout.Format = tt.configured
			if got := cfg.Format(tt.path); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cfg.ColorLayers = []ColorLayer{{Color: "#ff0000", Layer: 20}}

	clone := cfg.Clone()
	clone.Mask.Threshold = 10
	clone.Simplify.AllowedVertices[0] = 5
	clone.ColorLayers[0].Layer = 21

	if cfg.Mask.Threshold != 240 || cfg.Simplify.AllowedVertices[0] != 4 || cfg.ColorLayers[0].Layer != 20 {
		t.Errorf("Clone shares state with the original: %+v", cfg)
	}
}
