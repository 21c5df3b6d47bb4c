package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image2layout/internal/server"
)

func newServeCmd() *cobra.Command {
	var opts tuningOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion tools over MCP on stdin/stdout",
		Long: `Run an MCP (Model Context Protocol) server on stdio. Requests are read from stdin
one JSON-RPC message per line and answered on stdout; logs go to stderr.
Configuration flags set the defaults of every tool call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.Flags().Changed)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			logger.Debug("starting MCP server", "version", version, "commit", commit)
			return server.New(cfg, logger).Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}

	opts.register(cmd)

	return cmd
}
