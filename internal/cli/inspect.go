package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	errs "github.com/ironsheep/image2layout/internal/errors"
	"github.com/ironsheep/image2layout/internal/layout"
)

func newInspectCmd() *cobra.Command {
	var (
		asJSON bool
		cell   string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Summarize a .lyt layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.OutOrStdout(), args[0], cell, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().StringVar(&cell, "cell", "", "summarize only this cell")

	return cmd
}

func runInspect(w io.Writer, path, cell string, asJSON bool) error {
	lib, err := layout.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.CodeInput, err, "failed to inspect %s", path)
	}

	s := lib.Summarize()
	if cell != "" {
		var ok bool
		if s, ok = lib.SummarizeCell(cell); !ok {
			return errs.New(errs.CodeInput, "%s has no cell %q", path, cell)
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintln(w, StyleTitle.Render(s.Name))
	fmt.Fprintln(w, keyValueLine("unit", fmt.Sprintf("%g m", s.Unit)))
	fmt.Fprintln(w, keyValueLine("precision", fmt.Sprintf("%g m", s.Precision)))
	fmt.Fprintln(w, keyValueLine("cells", fmt.Sprint(len(s.Cells))))
	fmt.Fprintln(w, keyValueLine("polygons", fmt.Sprint(s.Polygons)))
	fmt.Fprintln(w, keyValueLine("vertices", fmt.Sprint(s.Vertices)))

	for _, c := range s.Cells {
		fmt.Fprintln(w, infoLine("%s: %d polygon(s), %d vertices", c.Name, c.Polygons, c.Vertices))
		keys := make([]string, 0, len(c.Layers))
		for k := range c.Layers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(w, detailLine("layer %s: %d", k, c.Layers[k]))
		}
		if c.Bounds != nil {
			fmt.Fprintln(w, detailLine("bounds (%d, %d) - (%d, %d)", c.Bounds.Min.X, c.Bounds.Min.Y, c.Bounds.Max.X, c.Bounds.Max.Y))
		}
	}
	return nil
}
