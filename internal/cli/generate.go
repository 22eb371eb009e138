package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rytunyn/timeline/pkg/config"
	"github.com/rytunyn/timeline/pkg/pipeline"
)

// generateFlags holds flags for the generate command.
type generateFlags struct {
	sourceFlags
	output  string
	noCache bool
	refresh bool
	dryRun  bool
	watch   bool
}

// generateCommand creates the generate command, which patches the timeline
// into the output page.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the outline into the timeline of an HTML page",
		Long: `Render the outline into the <svg id="main-svg"> element of an HTML page.

Generated stage groups and the footer from a previous run are replaced, so
running generate repeatedly always leaves exactly one copy of the timeline.
The page is rewritten only when its content changes.`,
		Example: `  # Defaults: doc/eng.key into index.html
  timeline generate

  # Preview without writing
  timeline generate --dry-run -v

  # Regenerate whenever the outline changes
  timeline generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			load := func() (pipeline.Options, error) {
				return c.generateOptions(cmd, flags)
			}
			if flags.watch {
				return c.watch(cmd.Context(), runner, load, flags.sourceFlags)
			}

			opts, err := load()
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), runner, opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", config.DefaultOutput, "HTML page to patch")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the fragment cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even when cached fragments exist")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "compute the patched page without writing it")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate when the outline or config file changes")

	return cmd
}

func (c *CLI) generateOptions(cmd *cobra.Command, flags generateFlags) (pipeline.Options, error) {
	opts, err := c.loadOptions(cmd, flags.sourceFlags)
	if err != nil {
		return opts, err
	}
	if cmd.Flags().Changed("output") {
		opts.Output = flags.output
	}
	opts.DryRun = flags.dryRun
	opts.Refresh = flags.refresh
	return opts, nil
}

// runGenerate executes one full pipeline run and reports the outcome.
func (c *CLI) runGenerate(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) error {
	res, err := runner.Execute(ctx, opts)
	if errors.Is(err, pipeline.ErrNothingToDo) {
		printWarning("No stages parsed.")
		if res != nil && res.Stats.Discarded > 0 {
			printDetail("%d lines before the first stage were ignored", res.Stats.Discarded)
		}
		printNextStep("Start a stage with a line like", "Stage One")
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case opts.DryRun && res.Changed:
		printInfo("Would update %s", opts.Output)
	case opts.DryRun:
		printInfo("%s is up to date (dry run)", opts.Output)
	case res.Changed:
		printSuccess("Updated %s", opts.Output)
	default:
		printInfo("%s is up to date", opts.Output)
	}
	printFile(opts.Output)
	printStats(res.Stats, res.CacheInfo.RenderHit)
	return nil
}
