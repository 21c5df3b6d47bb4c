package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image2layout/internal/ocr"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the build information shown by --version. The main package passes
// values injected with -ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the image2layout command tree. Errors are returned unprinted so the
// caller can map them to an exit status.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "image2layout",
		Short: "Convert raster drawings into polygon layouts",
		Long: `image2layout traces the dark shapes of a raster image, simplifies their outlines
into polygons and writes them as a layout library (native .lyt or GDSII).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("image2layout %s\ncommit: %s\nbuilt: %s\nocr: %s\n", version, commit, date, ocrStatus()))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newTraceCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newServeCmd())

	return root
}

// ocrStatus describes the text detector used by --mask-text.
func ocrStatus() string {
	if ocr.Available() {
		return "tesseract " + ocr.Version()
	}
	return "unavailable, using edge-density detection"
}
