package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rytunyn/timeline/pkg/cache"
	terrors "github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/observability"
	"github.com/rytunyn/timeline/pkg/outline"
	"github.com/rytunyn/timeline/pkg/patch"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

const keyTypeFragments = "fragments"

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs parse → layout → render → patch. An outline without stages
// returns ErrNothingToDo together with the parse result. A panic in any
// stage is recovered and returned as an ErrCodeInternal error carrying the
// stack trace.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	logger := r.logger(opts)
	defer func() {
		if v := recover(); v != nil {
			trace := debug.Stack()
			logger.Debug("recovered panic", "panic", v, "trace", string(trace))
			result, err = nil, terrors.Panic(v, trace)
		}
	}()

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result = &Result{}

	// Stage 1: Parse
	start := time.Now()
	o, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Outline = o
	result.Stats.ParseTime = time.Since(start)
	result.Stats.Stages = len(o.Stages)
	result.Stats.Items = o.ItemCount()
	result.Stats.Discarded = o.Discarded

	logger.Info("parsed outline",
		"stages", result.Stats.Stages,
		"items", result.Stats.Items,
		"duration", result.Stats.ParseTime)
	if o.Discarded > 0 {
		logger.Warn("dropped lines before the first stage", "lines", o.Discarded)
	}
	if o.Empty() {
		return result, ErrNothingToDo
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: Layout
	start = time.Now()
	l := r.ComputeLayout(ctx, o, opts)
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Elements = l.Elements()

	logger.Info("computed layout",
		"elements", result.Stats.Elements,
		"height", l.Height,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	f, hit, err := r.Render(ctx, o, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Fragments = f
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	logger.Info("rendered fragments",
		"bytes", len(f.Content)+len(f.Footer),
		"cached", hit,
		"duration", result.Stats.RenderTime)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: Patch
	start = time.Now()
	fr, err := r.Patch(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("patch: %w", err)
	}
	result.Changed = fr.Changed
	result.Stats.OutputBytes = fr.Size
	result.Stats.PatchTime = time.Since(start)

	logger.Info("patched document",
		"path", opts.Output,
		"changed", fr.Changed,
		"dry_run", opts.DryRun,
		"duration", result.Stats.PatchTime)

	return result, nil
}

// Parse reads the outline at opts.Input.
func (r *Runner) Parse(ctx context.Context, opts Options) (*outline.Outline, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Input)
	start := time.Now()

	o, err := outline.ParseFile(opts.Input)
	stages, items := 0, 0
	if err == nil {
		stages, items = len(o.Stages), o.ItemCount()
	}
	hooks.OnParseComplete(ctx, opts.Input, stages, items, time.Since(start), err)
	return o, err
}

// ComputeLayout positions o with opts.Layout.
func (r *Runner) ComputeLayout(ctx context.Context, o *outline.Outline, opts Options) layout.Layout {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(o.Stages))
	start := time.Now()

	l := layout.Compute(o, opts.Layout)

	hooks.OnLayoutComplete(ctx, l.Elements(), l.Height, time.Since(start))
	return l
}

// Render returns the fragments for l, reusing cached fragments rendered
// from the same outline and options. It reports whether the cache was hit.
func (r *Runner) Render(ctx context.Context, o *outline.Outline, l layout.Layout, opts Options) (sink.Fragments, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, l.Elements())
	start := time.Now()

	key, err := r.fragmentKey(o, opts)
	if err != nil {
		return sink.Fragments{}, false, err
	}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var f sink.Fragments
			if err := json.Unmarshal(data, &f); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeFragments)
				hooks.OnRenderComplete(ctx, len(f.Content)+len(f.Footer), time.Since(start))
				return f, true, nil
			}
			// Undecodable entry: fall through and overwrite it
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeFragments)
	}

	f := sink.RenderFragments(l, opts.renderOptions()...)

	if data, err := json.Marshal(f); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLFragments); err != nil {
			r.logger(opts).Debug("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeFragments, len(data))
		}
	}

	hooks.OnRenderComplete(ctx, len(f.Content)+len(f.Footer), time.Since(start))
	return f, false, nil
}

// RenderDocument parses opts.Input and renders a standalone svg document.
// It does not touch opts.Output.
func (r *Runner) RenderDocument(ctx context.Context, opts Options) ([]byte, *Result, error) {
	if err := terrors.ValidatePath(opts.Input); err != nil {
		return nil, nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, nil, err
	}

	o, err := r.Parse(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	result := &Result{Outline: o}
	result.Stats.Stages, result.Stats.Items = len(o.Stages), o.ItemCount()
	if o.Empty() {
		return nil, result, ErrNothingToDo
	}

	l := r.ComputeLayout(ctx, o, opts)
	result.Layout = l
	result.Stats.Elements = l.Elements()

	doc := sink.RenderDocument(l, opts.renderOptions()...)
	result.Stats.OutputBytes = len(doc)
	return doc, result, nil
}

// Patch splices f into opts.Output.
func (r *Runner) Patch(ctx context.Context, f sink.Fragments, opts Options) (patch.FileResult, error) {
	hooks := observability.Pipeline()
	hooks.OnPatchStart(ctx, opts.Output)
	start := time.Now()

	res, err := patch.PatchFile(opts.Output, f, opts.Patch, opts.DryRun)

	hooks.OnPatchComplete(ctx, opts.Output, res.Changed, time.Since(start), err)
	return res, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) fragmentKey(o *outline.Outline, opts Options) (string, error) {
	h, err := cache.HashJSON(o.Stages)
	if err != nil {
		return "", fmt.Errorf("hash outline for cache key: %w", err)
	}
	return r.Keyer.FragmentKey(h, opts.fragmentKeyOpts()), nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
