package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image2layout/internal/config"
	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/pipeline"
)

// paletteSize is the number of dominant colours reported by trace.
const paletteSize = 5

type traceOpts struct {
	tuningOpts
	json bool
}

// traceReport is the JSON output of the trace command.
type traceReport struct {
	Path string `json:"path"`
	*pipeline.Result
	Palette []imaging.ColorFrequency `json:"palette"`
}

func newTraceCmd() *cobra.Command {
	var opts traceOpts

	cmd := &cobra.Command{
		Use:   "trace IMAGE",
		Short: "Report the polygons found in an image without writing a layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return runTrace(cmd.Context(), cmd.OutOrStdout(), args[0], cfg, opts.json)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

func runTrace(ctx context.Context, w io.Writer, path string, cfg *config.Config, asJSON bool) error {
	report, err := trace(ctx, path, cfg)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	writeTraceText(w, report)
	return nil
}

// writeTraceText writes the human-readable trace report to w.
func writeTraceText(w io.Writer, report *traceReport) {
	fmt.Fprintln(w, StyleTitle.Render(report.Path))
	fmt.Fprintln(w, keyValueLine("size", fmt.Sprintf("%d x %d px", report.Width, report.Height)))
	fmt.Fprintln(w, keyValueLine("contours", fmt.Sprintf("%d (%d holes)", report.Stats.Contours, report.Stats.Holes)))
	fmt.Fprintln(w, keyValueLine("polygons", fmt.Sprint(len(report.Polygons))))
	if line := countsLine(
		count{report.Stats.RejectedArea, "too small"},
		count{report.Stats.RejectedVertices, "wrong vertex count"},
		count{report.Degenerate, "degenerate"},
		count{report.TextRegions, "text regions masked"},
	); line != "" {
		fmt.Fprintln(w, line)
	}
	for _, p := range report.Polygons {
		kind := "outline"
		if p.Hole {
			kind = "hole"
		}
		fmt.Fprintln(w, detailLine("%d/%d %s: %d vertices, area %.1f px²", p.Layer, p.Datatype, kind, len(p.Vertices), p.Area))
	}
	if len(report.Palette) > 0 {
		fmt.Fprintln(w, infoLine("dominant colours"))
		for _, c := range report.Palette {
			fmt.Fprintln(w, detailLine("%s %5.1f%%", c.Hex, c.Percentage))
		}
	}
	if len(report.Polygons) == 0 {
		fmt.Fprintln(w, warningLine("no polygons found"))
	}
}

// trace runs the pipeline on one image and collects its palette.
func trace(ctx context.Context, path string, cfg *config.Config) (*traceReport, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Logger = loggerFromContext(ctx)

	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInput, err, "failed to read %s", path)
	}

	result, err := pipeline.Run(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	return &traceReport{
		Path:    path,
		Result:  result,
		Palette: imaging.DominantColors(img, paletteSize),
	}, nil
}
