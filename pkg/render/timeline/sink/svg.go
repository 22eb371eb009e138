package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
)

const (
	// IDPrefix marks every generated group so a later run can find and
	// replace it.
	IDPrefix = "stage-"

	// FooterID is the id of the generated footer group.
	FooterID = "footer-group"

	// ContainerID is the id of the root svg element.
	ContainerID = "main-svg"

	// AxisID is the id of the vertical guide line.
	AxisID = "axis-line"

	// AxisInset is how far above the bottom edge the guide line stops.
	AxisInset = 100
)

const (
	connectorLen = 50
	labelOffset  = 60
	labelBaseY   = 8
	rBold        = 4
	rPlain       = 3
	ringR        = 60
	discR        = 50
)

const documentStyle = `
    .font-sans { font-family: "Helvetica Neue", Arial, sans-serif; }
    .font-serif { font-family: Georgia, "Times New Roman", serif; }
    .text-stage { fill: #DDD; font-size: 14px; letter-spacing: 0.2em; }
    .text-item { fill: #999; font-size: 13px; }
    .text-item-bold { fill: #FFF; font-size: 14px; font-weight: bold; }
    .sequence-item line { stroke: #555; stroke-width: 1; }
    .sequence-item circle { fill: #FFF; }
    .footer-link { text-decoration: underline; }`

// Summary is the two-line label of the terminal node.
type Summary struct {
	Title    string `json:"title" toml:"title" yaml:"title"`
	Subtitle string `json:"subtitle" toml:"subtitle" yaml:"subtitle"`
}

// DefaultSummary returns the label of the published page.
func DefaultSummary() Summary {
	return Summary{Title: "HAPPINESS", Subtitle: "NARRATIVE INTELLIGENCE"}
}

// Footer is the closing block below the terminal node. An empty Email
// omits the contact link.
type Footer struct {
	Caption string `json:"caption" toml:"caption" yaml:"caption"`
	Email   string `json:"email" toml:"email" yaml:"email"`
}

// DefaultFooter returns the footer of the published page.
func DefaultFooter() Footer {
	return Footer{Caption: "RYTUNYN 2026", Email: "rytunyn@rytunyn.com"}
}

// Fragments is generated markup ready to splice into a host document.
type Fragments struct {
	// Content holds the stage groups followed by the terminal node.
	Content []byte `json:"content"`
	Footer  []byte `json:"footer"`
	FooterY int    `json:"footer_y"`
	Height  int    `json:"height"`
	Width   int    `json:"width"`
	CenterX int    `json:"center_x"`
}

type Option func(*renderer)

type renderer struct {
	summary  Summary
	footer   Footer
	prefix   string
	footerID string
}

func WithSummary(s Summary) Option { return func(r *renderer) { r.summary = s } }
func WithFooter(f Footer) Option   { return func(r *renderer) { r.footer = f } }

// WithIDs overrides the generated id prefix and footer id.
func WithIDs(prefix, footerID string) Option {
	return func(r *renderer) {
		if prefix != "" {
			r.prefix = prefix
		}
		if footerID != "" {
			r.footerID = footerID
		}
	}
}

func newRenderer(opts ...Option) renderer {
	r := renderer{
		summary:  DefaultSummary(),
		footer:   DefaultFooter(),
		prefix:   IDPrefix,
		footerID: FooterID,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderFragments emits the stage groups, the terminal node and the footer
// for l.
func RenderFragments(l layout.Layout, opts ...Option) Fragments {
	r := newRenderer(opts...)

	var content, footer bytes.Buffer
	for _, s := range l.Stages {
		r.renderStage(&content, l.CenterX, s)
	}
	r.renderTerminal(&content, l.CenterX, l.Terminal)
	r.renderFooter(&footer, l.CenterX, l.FooterY)

	return Fragments{
		Content: content.Bytes(),
		Footer:  footer.Bytes(),
		FooterY: l.FooterY,
		Height:  l.Height,
		Width:   l.Width,
		CenterX: l.CenterX,
	}
}

// RenderDocument wraps the fragments of l in a standalone svg document,
// including the guide line and the gradient the footer refers to.
func RenderDocument(l layout.Layout, opts ...Option) []byte {
	f := RenderFragments(l, opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		ContainerID, l.Width, l.Height, l.Width, l.Height)
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <linearGradient id="grad-gold" x1="0" y1="0" x2="1" y2="0">` + "\n")
	buf.WriteString(`      <stop offset="0" stop-color="#C9A227" stop-opacity="0"></stop>` + "\n")
	buf.WriteString(`      <stop offset="0.5" stop-color="#C9A227" stop-opacity="1"></stop>` + "\n")
	buf.WriteString(`      <stop offset="1" stop-color="#C9A227" stop-opacity="0"></stop>` + "\n")
	buf.WriteString("    </linearGradient>\n  </defs>\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", documentStyle)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="#0A0A0A"></rect>`+"\n", l.Width, l.Height)
	fmt.Fprintf(&buf, `  <line id="%s" x1="%d" y1="0" x2="%d" y2="%d" stroke="#333" stroke-width="1"></line>`+"\n",
		AxisID, l.CenterX, l.CenterX, l.Height-AxisInset)
	buf.Write(f.Content)
	buf.Write(f.Footer)
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *renderer) renderStage(buf *bytes.Buffer, cx int, s layout.Stage) {
	fmt.Fprintf(buf, `<g id="%s%d" transform="translate(0, %d)">`+"\n", r.prefix, s.Index, s.Y)
	fmt.Fprintf(buf, `  <line x1="%d" y1="-50" x2="%d" y2="-50" stroke="#333" stroke-width="1" class="stage-line"></line>`+"\n", cx, cx+100)
	fmt.Fprintf(buf, `  <text x="%d" y="-30" text-anchor="middle" class="font-sans text-stage">%s</text>`+"\n", cx, escape(strings.ToUpper(s.Title)))
	fmt.Fprintf(buf, `  <line class="axis-line" x1="%d" y1="-20" x2="%d" y2="0" stroke="#FFF" stroke-width="1"></line>`+"\n", cx, cx)
	for _, it := range s.Items {
		renderItem(buf, cx, it)
	}
	buf.WriteString("</g>\n")
}

func renderItem(buf *bytes.Buffer, cx int, it layout.Item) {
	lineX2, textX, anchor := cx-connectorLen, cx-labelOffset, "end"
	if it.Side == layout.Right {
		lineX2, textX, anchor = cx+connectorLen, cx+labelOffset, "start"
	}
	class, r := "text-item", rPlain
	if it.Emphasized {
		class, r = "text-item-bold", rBold
	}

	fmt.Fprintf(buf, `  <g class="sequence-item %s-side" data-index="%d" data-y="%d">`+"\n", it.Side, it.Global, it.Y)
	fmt.Fprintf(buf, `    <line x1="%d" y1="%d" x2="%d" y2="%d"></line>`+"\n", cx, it.Y, lineX2, it.Y)
	fmt.Fprintf(buf, `    <circle cx="%d" cy="%d" r="%d"></circle>`+"\n", cx, it.Y, r)
	fmt.Fprintf(buf, `    <text x="%d" y="%d" text-anchor="%s" class="font-sans %s">%s</text>`+"\n",
		textX, it.Y+labelBaseY, anchor, class, escape(it.Label))
	buf.WriteString("  </g>\n")
}

func (r *renderer) renderTerminal(buf *bytes.Buffer, cx int, t layout.Terminal) {
	fmt.Fprintf(buf, `<g id="%sterminal" class="sequence-item center-side" transform="translate(0, %d)" data-index="%d" data-y="%d">`+"\n",
		r.prefix, t.Y, t.Index, t.Y)
	fmt.Fprintf(buf, `  <circle cx="%d" cy="0" r="%d" fill="none" stroke="#FFF" stroke-width="0.5" class="breathe"></circle>`+"\n", cx, ringR)
	fmt.Fprintf(buf, `  <circle cx="%d" cy="0" r="%d" fill="#111"></circle>`+"\n", cx, discR)
	fmt.Fprintf(buf, `  <text x="%d" y="5" text-anchor="middle" fill="#FFF" class="font-serif text-item-bold" font-size="20">%s</text>`+"\n",
		cx, escape(r.summary.Title))
	fmt.Fprintf(buf, `  <text x="%d" y="45" text-anchor="middle" fill="#888" class="font-sans" font-size="14" letter-spacing="0.2em">%s</text>`+"\n",
		cx, escape(r.summary.Subtitle))
	buf.WriteString("</g>\n")
}

func (r *renderer) renderFooter(buf *bytes.Buffer, cx, y int) {
	fmt.Fprintf(buf, `<g id="%s" transform="translate(0, %d)">`+"\n", r.footerID, y)
	fmt.Fprintf(buf, `  <line x1="%d" y1="0" x2="%d" y2="0" stroke="url(#grad-gold)" stroke-width="1" opacity="0.6"></line>`+"\n", cx-200, cx+200)
	fmt.Fprintf(buf, `  <text x="%d" y="45" text-anchor="middle" fill="#555" font-size="11" class="font-sans footer-text" letter-spacing="0.15em">%s</text>`+"\n",
		cx, escape(r.footer.Caption))
	if r.footer.Email != "" {
		fmt.Fprintf(buf, `  <a href="mailto:%s" class="footer-email">`+"\n", escape(r.footer.Email))
		fmt.Fprintf(buf, `    <text x="%d" y="75" text-anchor="middle" fill="#666" font-size="10" class="font-sans footer-text footer-link" letter-spacing="0.1em">%s</text>`+"\n",
			cx, escape(r.footer.Email))
		buf.WriteString("  </a>\n")
	}
	fmt.Fprintf(buf, `  <line x1="%d" y1="100" x2="%d" y2="100" stroke="#333" stroke-width="1" opacity="0.4"></line>`+"\n", cx-80, cx+80)
	buf.WriteString("</g>\n")
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
