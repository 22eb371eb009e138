// Package layout assigns coordinates to a parsed outline.
//
// The timeline runs top to bottom along a vertical axis at [Options.CenterX].
// Each stage is a group translated to a running vertical cursor; inside the
// group items are spaced [Options.ItemGap] apart starting at
// [Options.ItemOffset]. After a stage the cursor moves past its last item
// plus [Options.StageGap].
//
// # Placement
//
// Items alternate sides using a running counter that is never reset between
// stages: the j-th item overall (1-based) sits right of the axis when j is
// even and left otherwise. Adding or removing an item in one stage therefore
// flips every item after it.
//
// Emphasis uses the 0-based index within the stage: every
// [Options.EmphasisEvery]-th item starting with the first, plus the final
// item of each stage.
//
// # Vertical extent
//
// A terminal summary node closes the timeline [Options.TerminalGap] below
// the end of the last stage. The footer sits [Options.FooterGap] below the
// terminal node and the document height adds [Options.BottomMargin] to that.
//
//	l := layout.Compute(o, layout.DefaultOptions())
//	fmt.Println(l.Elements(), l.Height)
package layout
