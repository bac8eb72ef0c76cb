package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/b4wexport/pkg/document"
	"github.com/matzehuels/b4wexport/pkg/errors"
	"github.com/matzehuels/b4wexport/pkg/observability"
	"github.com/matzehuels/b4wexport/pkg/pipeline"
)

// exportFlags holds the command-line flags for the export command.
type exportFlags struct {
	output        string // document path, defaults to the input with .json
	formatVersion string // b4w_format_version and sidecar header version
	strict        bool   // withhold output when any message was recorded
	pretty        bool   // indent the JSON document
	noPacked      bool   // skip writing extracted packed media
	noCache       bool   // cook all geometry without the cache
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export [scene.yaml]",
		Short: "Export a scene file to a JSON document and binary sidecar",
		Long: `Export a scene file to a JSON document and binary sidecar.

The document is written to the --output path (default: the scene file with a
.json extension). The sidecar takes the same base name with a .bin extension
and is omitted when the scene has no binary data. Packed images and sounds
are written next to the document under content-hash names.

Problems local to one data block are recorded in the document's
b4w_export_warnings and b4w_export_errors lists. With --strict any recorded
message withholds the output.

Cooked geometry is cached between runs (see 'b4wexport cache').`,
		ValidArgsFunction: completeScene,
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.exportOptions(cmd, args[0])
			if err := opts.Validate(); err != nil {
				return err
			}
			return c.runExport(cmd.Context(), opts, f.noCache)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output document path (default: <scene>.json)")
	cmd.Flags().StringVar(&f.formatVersion, "format-version", pipeline.DefaultFormatVersion, "document format version")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail instead of writing when messages were recorded")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent the JSON document")
	cmd.Flags().BoolVar(&f.noPacked, "no-packed", false, "do not write extracted packed media")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the geometry cache")

	return cmd
}

// exportOptions layers defaults, the config file and explicitly set flags.
func (c *CLI) exportOptions(cmd *cobra.Command, input string) pipeline.Options {
	flags := cmd.Flags()
	output, _ := flags.GetString("output")

	opts := pipeline.Options{Input: input, Output: output, Logger: c.Logger}
	c.Config().Apply(&opts)

	if flags.Changed("format-version") {
		opts.FormatVersion, _ = flags.GetString("format-version")
	}
	if flags.Changed("strict") {
		opts.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("pretty") {
		opts.Pretty, _ = flags.GetBool("pretty")
	}
	if flags.Changed("no-packed") {
		opts.NoPacked, _ = flags.GetBool("no-packed")
	}
	return opts
}

// runExport executes the pipeline and reports the written files.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, fmt.Sprintf("Exporting %s", filepath.Base(opts.Input)))
	spinner.Start()

	hooks := observability.Fanout(spinner, stageLogger{logger: c.Logger})
	result, err := runner.Execute(observability.WithPipelineHooks(ctx, hooks), opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		reportExportError(err)
		return err
	}
	spinner.Stop()

	w := result.Written
	printSuccess("Exported %s", opts.Input)
	printFile(w.JSON)
	if w.Sidecar != "" {
		printFile(w.Sidecar)
	}
	for _, p := range w.Packed {
		printFile(p)
	}
	printStats(result.Stats)

	if n := result.Stats.Warnings + result.Stats.Errors; n > 0 {
		printNewline()
		printWarning("%d warnings and %d errors recorded", result.Stats.Warnings, result.Stats.Errors)
		printNextStep("Browse them", appName+" messages "+w.JSON)
	}
	prog.done("Exported " + filepath.Base(opts.Input))
	return nil
}

// reportExportError prints the details a fatal error carries.
func reportExportError(err error) {
	var strict *document.StrictError
	if stderrors.As(err, &strict) {
		printWarning("Strict mode: %d warnings and %d errors recorded, nothing written",
			len(strict.Warnings), len(strict.Errors))
		printNewline()
		fmt.Println(messageTable(strict.Warnings, strict.Errors))
		return
	}

	var ee *errors.ExportError
	if stderrors.As(err, &ee) {
		printKeyValue("Component", ee.Component)
		printKeyValue("Type", ee.ComponentType)
		if ee.Comment != "" {
			printDetail("%s", ee.Comment)
		}
		return
	}

	if errors.IsFatalFile(err) {
		printDetail("%s", errors.UserMessage(err))
	}
}
