package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rytunyn/timeline/pkg/outline"
)

// parseCommand creates the parse command, which prints the outline as the
// renderer sees it.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		flags  sourceFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the stages and items of an outline",
		Long: `Print the stages and items of an outline.

A line starting with "Stage" opens a new stage; every other non-blank line
is an item of the current stage. Lines before the first stage are ignored.`,
		Example: `  timeline parse
  timeline parse --input notes.txt --json | jq '.stages[].title'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, flags)
			if err != nil {
				return err
			}

			o, err := outline.ParseFile(opts.Input)
			if err != nil {
				return err
			}
			c.Logger.Debug("parsed outline", "path", opts.Input, "stages", len(o.Stages), "items", o.ItemCount())

			if asJSON {
				return writeOutlineJSON(cmd.OutOrStdout(), o)
			}
			writeOutline(cmd.OutOrStdout(), o)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outline as JSON")

	return cmd
}

func writeOutlineJSON(w io.Writer, o *outline.Outline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}

// writeOutline prints one heading per stage followed by its items. The
// number in front of each item is its position on the timeline.
func writeOutline(w io.Writer, o *outline.Outline) {
	if o.Empty() {
		fmt.Fprintln(w, StyleWarning.Render("No stages parsed."))
		return
	}

	n := 0
	for i, s := range o.Stages {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", StyleTitle.Render(s.Title), StyleDim.Render(fmt.Sprintf("(%d items)", len(s.Items))))
		for _, item := range s.Items {
			n++
			fmt.Fprintf(w, "  %s %s\n", StyleNumber.Render(fmt.Sprintf("%3d", n)), StyleValue.Render(item))
		}
	}
	if o.Discarded > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d lines before the first stage were ignored", o.Discarded)))
	}
}
