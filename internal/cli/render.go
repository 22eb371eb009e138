package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rytunyn/timeline/pkg/patch"
	"github.com/rytunyn/timeline/pkg/pipeline"
)

// renderCommand creates the render command, which writes a standalone SVG
// document instead of patching a page.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the outline as a standalone SVG document",
		Long: `Render the outline as a standalone SVG document for previewing.

The document carries its own background, axis line and styles. Without -o
it is written to stdout.`,
		Example: `  timeline render -o preview.svg
  timeline render --input notes.txt > preview.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, flags)
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			doc, res, err := runner.RenderDocument(cmd.Context(), opts)
			if errors.Is(err, pipeline.ErrNothingToDo) {
				c.Logger.Warn("No stages parsed.", "input", opts.Input)
				return nil
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := patch.WriteFileAtomic(output, doc); err != nil {
				return err
			}
			printSuccess("Rendered %s", output)
			printStats(res.Stats, false)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
