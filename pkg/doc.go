// Package pkg provides the libraries behind the timeline generator.
//
// # Overview
//
// Timeline turns a plain-text outline of stages and items into a vertical
// SVG timeline and splices it into an existing HTML page. The pkg directory
// is organized into these areas:
//
//  1. [outline] - Parsing the outline text into stages and items
//  2. [render] - Layout and SVG markup
//  3. [patch] - Replacing generated elements inside the host page
//  4. [pipeline] - Orchestration (parse → layout → render → patch)
//  5. [cache], [config], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
//	doc/eng.key
//	     ↓
//	[outline] package (stages and items)
//	     ↓
//	[render/timeline/layout] package (coordinates, sides, emphasis)
//	     ↓
//	[render/timeline/sink] package (stage groups, terminal node, footer)
//	     ↓
//	[patch] package (svg#main-svg in index.html)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.DefaultOptions())
//	if errors.Is(err, pipeline.ErrNothingToDo) {
//	    // the outline had no stages
//	}
//
// # Error Handling
//
// Errors carry a code from [errors] so callers can tell a missing input
// file (ErrCodeFileNotFound) from a page without a timeline container
// (ErrCodeNotFound). In both cases the page is left untouched.
package pkg
