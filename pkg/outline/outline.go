// Package outline parses the plain-text stage outline that drives the
// timeline.
//
// The format is line oriented. Blank lines are ignored and every line is
// trimmed. A line starting with the literal "Stage" opens a new stage and
// becomes its title; every other line is an item of the most recently opened
// stage. Lines that appear before the first stage are dropped.
//
//	Stage One
//	First event
//	Second event
//	Stage Two
//	Third event
package outline

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/rytunyn/timeline/pkg/errors"
)

// StageMarker is the prefix that opens a new stage.
const StageMarker = "Stage"

// maxLineSize bounds a single outline line.
const maxLineSize = 1 << 20

var bom = []byte{0xEF, 0xBB, 0xBF}

// Stage is a titled group of items. Order of Items is display order.
type Stage struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Outline is the parsed form of an outline file.
type Outline struct {
	Stages []Stage `json:"stages"`

	// Discarded counts non-blank lines dropped because no stage was open.
	Discarded int `json:"discarded,omitempty"`
}

// Empty reports whether the outline has no stages.
func (o *Outline) Empty() bool {
	return o == nil || len(o.Stages) == 0
}

// ItemCount returns the number of items across all stages.
func (o *Outline) ItemCount() int {
	if o == nil {
		return 0
	}
	n := 0
	for _, s := range o.Stages {
		n += len(s.Items)
	}
	return n
}

// Parse reads an outline from r.
func Parse(r io.Reader) (*Outline, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	o := &Outline{}
	var cur *Stage
	first := true
	for sc.Scan() {
		raw := sc.Bytes()
		if first {
			raw = bytes.TrimPrefix(raw, bom)
			first = false
		}
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, StageMarker) {
			o.Stages = append(o.Stages, Stage{Title: line})
			cur = &o.Stages[len(o.Stages)-1]
			continue
		}
		if cur == nil {
			o.Discarded++
			continue
		}
		cur.Items = append(cur.Items, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read outline")
	}
	return o, nil
}

// ParseFile reads the outline at path. A missing file yields an
// ErrCodeFileNotFound error.
func ParseFile(path string) (*Outline, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}
