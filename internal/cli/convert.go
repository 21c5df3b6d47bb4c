package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image2layout/internal/config"
	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/imaging"
	"github.com/ironsheep/image2layout/internal/layout"
	"github.com/ironsheep/image2layout/internal/pipeline"
)

// convertOpts holds the flags of the convert command.
type convertOpts struct {
	tuningOpts
	output  string // layout file to write
	format  string // lyt, gds, or empty to follow the output extension
	cell    string // cell name for a single image
	library string // library name
	workers int    // concurrent conversions
}

func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert IMAGE...",
		Short: "Trace images into a layout file",
		Long: `Trace the dark shapes of each image into polygons and write them to one layout
library. A single image goes into one cell (--cell); several images get one cell
each, named after the file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), args, cfg, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: IMAGE with a .lyt extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: lyt, gds (default: from the output extension)")
	cmd.Flags().StringVar(&opts.cell, "cell", config.DefaultName, "cell name when converting a single image")
	cmd.Flags().StringVar(&opts.library, "library", config.DefaultName, "library name")
	cmd.Flags().IntVarP(&opts.workers, "workers", "j", 0, "images converted concurrently (default: one per CPU)")

	return cmd
}

// config loads the tuning flags and applies the convert-only overrides.
func (o *convertOpts) config(changed func(string) bool) (*config.Config, error) {
	cfg, err := o.load(changed)
	if err != nil {
		return nil, err
	}
	if changed("format") {
		cfg.Layout.Format = o.format
	}
	if changed("cell") {
		cfg.Layout.Cell = o.cell
	}
	if changed("library") {
		cfg.Layout.Library = o.library
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runConvert(ctx context.Context, paths []string, cfg *config.Config, opts *convertOpts) error {
	logger := loggerFromContext(ctx)

	output, err := outputPath(paths, opts.output)
	if err != nil {
		return err
	}
	format := cfg.Format(output)

	pipeOpts, err := cfg.Options()
	if err != nil {
		return err
	}
	pipeOpts.Logger = logger
	if format == layout.FormatGDS {
		pipeOpts.MaxVertices = layout.MaxGDSIIVertices
	}

	lib := cfg.NewLibrary()
	jobs := pipeline.Jobs(paths, cfg.Layout.Cell)

	prog := newProgress(logger)
	batch, err := pipeline.RunBatch(ctx, imaging.NewImageCache(), lib, jobs, pipeOpts, opts.workers)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Traced %d image(s)", len(jobs)))

	failed := batch.Failed()
	if failed == len(jobs) {
		return firstError(batch.Errors)
	}
	for i, err := range batch.Errors {
		if err != nil {
			printError("%s: %v", jobs[i].Path, err)
		}
	}

	if err := layout.WriteFile(output, lib, format); err != nil {
		return errs.Wrap(errs.CodeOutput, err, "failed to write %s", output)
	}

	var stats pipeline.Result
	for _, r := range batch.Results {
		if r != nil {
			stats.Stats.Add(r.Stats)
			stats.Degenerate += r.Degenerate
		}
	}

	polygons := lib.PolygonCount()
	printSuccess("Wrote %d polygon(s) in %d cell(s) as %s", polygons, len(lib.Cells()), format)
	printFile(output)
	printCounts(
		count{stats.Stats.Contours, "contours"},
		count{stats.Stats.RejectedArea, "too small"},
		count{stats.Stats.RejectedVertices, "wrong vertex count"},
		count{stats.Degenerate, "degenerate"},
	)
	if polygons == 0 {
		printWarning("no polygons found; the library is empty")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed: %w", failed, len(jobs), firstError(batch.Errors))
	}
	return nil
}

// outputPath returns the explicit output, or the single input with a .lyt extension.
func outputPath(inputs []string, output string) (string, error) {
	if output != "" {
		return output, nil
	}
	if len(inputs) != 1 {
		return "", errs.New(errs.CodeConfig, "--output is required when converting several images")
	}
	in := inputs[0]
	return strings.TrimSuffix(in, filepath.Ext(in)) + ".lyt", nil
}

func firstError(list []error) error {
	for _, err := range list {
		if err != nil {
			return err
		}
	}
	return nil
}
