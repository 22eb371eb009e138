// Package patch splices generated timeline markup into an existing HTML page.
//
// The page must contain an svg container (by default svg#main-svg). Each
// run removes the groups a previous run generated, identified by an id
// prefix and the footer id, appends the new fragments, resizes the
// container's viewBox and stretches the guide line to the new height.
// Patching is idempotent: applying the same fragments to an already patched
// page reproduces it byte for byte.
package patch

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

// Options locates the elements the patcher touches.
type Options struct {
	ContainerID     string `json:"container_id" toml:"container_id" yaml:"container_id"`
	AxisID          string `json:"axis_id" toml:"axis_id" yaml:"axis_id"`
	GeneratedPrefix string `json:"generated_prefix" toml:"generated_prefix" yaml:"generated_prefix"`
	FooterID        string `json:"footer_id" toml:"footer_id" yaml:"footer_id"`
	AxisInset       int    `json:"axis_inset" toml:"axis_inset" yaml:"axis_inset"`
}

// DefaultOptions matches the ids the sink package generates.
func DefaultOptions() Options {
	return Options{
		ContainerID:     sink.ContainerID,
		AxisID:          sink.AxisID,
		GeneratedPrefix: sink.IDPrefix,
		FooterID:        sink.FooterID,
		AxisInset:       sink.AxisInset,
	}
}

// Validate checks that every id is usable in a selector.
func (o Options) Validate() error {
	for _, id := range []string{o.ContainerID, o.AxisID, o.GeneratedPrefix, o.FooterID} {
		if err := errors.ValidateElementID(id); err != nil {
			return err
		}
	}
	if o.AxisInset < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "axis_inset must not be negative, got %d", o.AxisInset)
	}
	return nil
}

// Patch parses the page from r and returns it with f spliced into the
// container. A page without the container yields an ErrCodeNotFound error.
func Patch(r io.Reader, f sink.Fragments, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse document")
	}

	svg := doc.Find("svg#" + opts.ContainerID).First()
	if svg.Length() == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "could not find svg with id %q", opts.ContainerID)
	}

	svg.Find(fmt.Sprintf("g[id^=%q]", opts.GeneratedPrefix)).Remove()
	svg.Find("g#" + opts.FooterID).Remove()

	container := svg.Get(0)
	content, err := parseElements(f.Content, container)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated content")
	}
	footer, err := parseElements(f.Footer, container)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse generated footer")
	}
	svg.AppendNodes(content...)
	svg.AppendNodes(footer...)

	svg.SetAttr("viewBox", fmt.Sprintf("0 0 %d %d", f.Width, f.Height))
	if axis := svg.Find("line#" + opts.AxisID).First(); axis.Length() > 0 {
		axis.SetAttr("x2", fmt.Sprint(f.CenterX))
		axis.SetAttr("y2", fmt.Sprint(f.Height-opts.AxisInset))
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Get(0)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render document")
	}
	return buf.Bytes(), nil
}

// parseElements parses markup in the context of parent and keeps only the
// top-level elements, so no stray whitespace accumulates across runs.
func parseElements(markup []byte, parent *html.Node) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(markup), parent)
	if err != nil {
		return nil, err
	}
	elems := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			elems = append(elems, n)
		}
	}
	return elems, nil
}
