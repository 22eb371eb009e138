// Package pipeline runs the outline → layout → markup → patch sequence.
//
// The CLI drives everything through a [Runner]:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.OptionsFromConfig(config.Defaults())
//	result, err := runner.Execute(ctx, opts)
//	if errors.Is(err, pipeline.ErrNothingToDo) {
//	    // no stages in the outline; the page was not touched
//	}
//
// Individual stages can be run on their own:
//
//	o, err := runner.Parse(ctx, opts)
//	l := runner.ComputeLayout(ctx, o, opts)
//	f, hit, err := runner.Render(ctx, o, l, opts)
//
// The output page is written only after every stage succeeded, and only
// when its content changes.
package pipeline

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rytunyn/timeline/pkg/config"
	terrors "github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/outline"
	"github.com/rytunyn/timeline/pkg/patch"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

// ErrNothingToDo is returned when the outline has no stages. The output
// page is left untouched.
var ErrNothingToDo = errors.New("no stages parsed")

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one run.
type Options struct {
	Input  string `json:"input"`
	Output string `json:"output"`

	Layout  layout.Options `json:"layout"`
	Summary sink.Summary   `json:"summary"`
	Footer  sink.Footer    `json:"footer"`
	Patch   patch.Options  `json:"patch"`

	// DryRun computes the patched page without writing it.
	DryRun bool `json:"dry_run,omitempty"`

	// Refresh ignores cached fragments (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// DefaultOptions returns the options of a run without a config file.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Defaults())
}

// OptionsFromConfig maps a loaded config onto pipeline options.
func OptionsFromConfig(c config.Config) Options {
	return Options{
		Input:   c.Input,
		Output:  c.Output,
		Layout:  c.Layout,
		Summary: c.Summary,
		Footer:  c.Footer,
		Patch:   c.Patch,
	}
}

// Validate checks the options before any stage runs.
func (o Options) Validate() error {
	if err := terrors.ValidatePath(o.Input); err != nil {
		return terrors.Wrap(terrors.ErrCodeInvalidInput, err, "input")
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if err := terrors.ValidatePath(o.Output); err != nil {
		return terrors.Wrap(terrors.ErrCodeInvalidInput, err, "output")
	}
	return o.Patch.Validate()
}

// ValidateForRender checks only what layout and rendering need.
func (o Options) ValidateForRender() error {
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	return terrors.ValidateEmail(o.Footer.Email)
}

// renderOptions returns the sink options for o.
func (o Options) renderOptions() []sink.Option {
	return []sink.Option{
		sink.WithSummary(o.Summary),
		sink.WithFooter(o.Footer),
		sink.WithIDs(o.Patch.GeneratedPrefix, o.Patch.FooterID),
	}
}

// fragmentKeyOpts is everything besides the outline that shapes the markup.
type fragmentKeyOpts struct {
	Layout   layout.Options `json:"layout"`
	Summary  sink.Summary   `json:"summary"`
	Footer   sink.Footer    `json:"footer"`
	Prefix   string         `json:"prefix"`
	FooterID string         `json:"footer_id"`
}

func (o Options) fragmentKeyOpts() fragmentKeyOpts {
	return fragmentKeyOpts{
		Layout:   o.Layout,
		Summary:  o.Summary,
		Footer:   o.Footer,
		Prefix:   o.Patch.GeneratedPrefix,
		FooterID: o.Patch.FooterID,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Outline   *outline.Outline
	Layout    layout.Layout
	Fragments sink.Fragments

	// Changed reports whether the output page differs from what was on
	// disk. Without DryRun the page was rewritten.
	Changed bool

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Stages      int
	Items       int
	Elements    int
	Discarded   int
	OutputBytes int
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
	PatchTime   time.Duration
}

// Total returns the summed stage durations.
func (s Stats) Total() time.Duration {
	return s.ParseTime + s.LayoutTime + s.RenderTime + s.PatchTime
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether the fragments came from cache
}
