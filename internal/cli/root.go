package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/b4wexport/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version.
// Builds normally inject these values into buildinfo via ldflags; SetVersion
// exists for embedders that know them only at run time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2026-01-20T14:32:01Z")
func SetVersion(v, c, d string) {
	buildinfo.Version = v
	buildinfo.Commit = c
	buildinfo.Date = d
}

// RootCommand creates the root cobra command with all subcommands registered.
//
// The persistent pre-run applies --verbose, loads the config file and
// attaches the logger to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "b4wexport exports scene graphs for a WebGL runtime",
		Long: `b4wexport walks a scene file and writes the document the runtime loads:
a JSON file with one collection per data-block kind, a binary sidecar with the
packed vertex and animation buffers, and any packed images or sounds.`,
		Version:       buildinfo.Read().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ./"+configName+" if present)")

	// Register all subcommands
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.messagesCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.nodetreeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
