// Package sink turns a timeline layout into SVG markup.
//
// [RenderFragments] produces the pieces that are spliced into an existing
// page: one group per stage (id "stage-N"), the terminal summary node
// (id "stage-terminal") and the footer group. Every generated group carries
// an id with a fixed prefix so a later run can remove it before inserting
// fresh markup.
//
// [RenderDocument] wraps the same fragments in a standalone svg document
// for previews.
package sink
