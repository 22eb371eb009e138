// Package render groups the timeline renderers.
//
// Rendering happens in two steps, each in its own subpackage:
//
//   - [timeline/layout]: coordinates for every stage, item and the terminal
//     node, plus the overall document height
//   - [timeline/sink]: SVG markup for a computed layout, either as fragments
//     for an existing page or as a standalone document
//
// Neither step does any I/O.
//
//	l := layout.Compute(o, layout.DefaultOptions())
//	f := sink.RenderFragments(l)
//	svg := sink.RenderDocument(l)
package render
