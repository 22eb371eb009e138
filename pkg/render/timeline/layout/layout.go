package layout

import (
	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/outline"
)

// Side is the placement of an item relative to the center axis.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Options holds the spacing constants of the timeline. All values are in
// SVG user units.
type Options struct {
	CenterX       int `json:"center_x" toml:"center_x" yaml:"center_x"`
	Width         int `json:"width" toml:"width" yaml:"width"`
	StartY        int `json:"start_y" toml:"start_y" yaml:"start_y"`
	ItemGap       int `json:"item_gap" toml:"item_gap" yaml:"item_gap"`
	StageGap      int `json:"stage_gap" toml:"stage_gap" yaml:"stage_gap"`
	ItemOffset    int `json:"item_offset" toml:"item_offset" yaml:"item_offset"`
	EmphasisEvery int `json:"emphasis_every" toml:"emphasis_every" yaml:"emphasis_every"`
	TerminalGap   int `json:"terminal_gap" toml:"terminal_gap" yaml:"terminal_gap"`
	FooterGap     int `json:"footer_gap" toml:"footer_gap" yaml:"footer_gap"`
	BottomMargin  int `json:"bottom_margin" toml:"bottom_margin" yaml:"bottom_margin"`
}

// DefaultOptions returns the spacing used by the published page.
func DefaultOptions() Options {
	return Options{
		CenterX:       500,
		Width:         1000,
		StartY:        700,
		ItemGap:       100,
		StageGap:      300,
		ItemOffset:    50,
		EmphasisEvery: 5,
		TerminalGap:   200,
		FooterGap:     400,
		BottomMargin:  300,
	}
}

// Validate rejects options that cannot produce a readable timeline.
func (o Options) Validate() error {
	switch {
	case o.Width <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "width must be positive, got %d", o.Width)
	case o.CenterX < 0 || o.CenterX > o.Width:
		return errors.New(errors.ErrCodeInvalidInput, "center_x %d outside of [0, %d]", o.CenterX, o.Width)
	case o.ItemGap <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "item_gap must be positive, got %d", o.ItemGap)
	case o.StageGap <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "stage_gap must be positive, got %d", o.StageGap)
	case o.TerminalGap <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "terminal_gap must be positive, got %d", o.TerminalGap)
	case o.FooterGap <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "footer_gap must be positive, got %d", o.FooterGap)
	case o.BottomMargin <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "bottom_margin must be positive, got %d", o.BottomMargin)
	case o.EmphasisEvery <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "emphasis_every must be positive, got %d", o.EmphasisEvery)
	case o.StartY < 0 || o.ItemOffset < 0:
		return errors.New(errors.ErrCodeInvalidInput, "start_y and item_offset must not be negative")
	}
	return nil
}

// Item is a positioned outline item.
type Item struct {
	Label string `json:"label"`

	// Global is the 1-based running index across all stages.
	Global int `json:"global"`

	// Local is the 0-based index within the stage.
	Local int `json:"local"`

	// Y is relative to the enclosing stage group.
	Y          int  `json:"y"`
	Side       Side `json:"side"`
	Emphasized bool `json:"emphasized"`
}

// Stage is a positioned stage header with its items.
type Stage struct {
	Index int    `json:"index"` // 1-based
	Title string `json:"title"`
	Y     int    `json:"y"` // absolute
	Items []Item `json:"items"`
}

// Terminal is the closing summary node below the last stage.
type Terminal struct {
	Index int `json:"index"`
	Y     int `json:"y"` // absolute
}

// Layout is the complete set of coordinates for one outline.
type Layout struct {
	Width    int      `json:"width"`
	CenterX  int      `json:"center_x"`
	Stages   []Stage  `json:"stages"`
	Terminal Terminal `json:"terminal"`
	FooterY  int      `json:"footer_y"`
	Height   int      `json:"height"`
}

// Items returns the total number of items.
func (l Layout) Items() int {
	n := 0
	for _, s := range l.Stages {
		n += len(s.Items)
	}
	return n
}

// Elements returns the number of positioned elements: one per stage header,
// one per item and the terminal node.
func (l Layout) Elements() int {
	return len(l.Stages) + l.Items() + 1
}

// Compute lays out o. It is a pure function of its arguments; the options
// are assumed to be valid.
func Compute(o *outline.Outline, opts Options) Layout {
	l := Layout{
		Width:   opts.Width,
		CenterX: opts.CenterX,
	}

	cursor := opts.StartY
	global := 0
	if o != nil {
		l.Stages = make([]Stage, 0, len(o.Stages))
		for i, s := range o.Stages {
			var st Stage
			st, global = placeStage(i+1, s, cursor, global, opts)
			l.Stages = append(l.Stages, st)
			cursor += localEnd(len(s.Items), opts) + opts.StageGap
		}
	}

	l.Terminal = Terminal{
		Index: global + 1,
		Y:     cursor - opts.StageGap + opts.TerminalGap,
	}
	l.FooterY = l.Terminal.Y + opts.FooterGap
	l.Height = l.FooterY + opts.BottomMargin
	return l
}

// placeStage positions one stage at absolute y. global is the number of
// items emitted so far; the updated count is returned.
func placeStage(index int, s outline.Stage, y, global int, opts Options) (Stage, int) {
	st := Stage{
		Index: index,
		Title: s.Title,
		Y:     y,
		Items: make([]Item, len(s.Items)),
	}
	last := len(s.Items) - 1
	for i, label := range s.Items {
		global++
		side := Left
		if global%2 == 0 {
			side = Right
		}
		st.Items[i] = Item{
			Label:      label,
			Global:     global,
			Local:      i,
			Y:          opts.ItemOffset + i*opts.ItemGap,
			Side:       side,
			Emphasized: i%opts.EmphasisEvery == 0 || i == last,
		}
	}
	return st, global
}

// localEnd is the stage-local cursor after n items.
func localEnd(n int, opts Options) int {
	return opts.ItemOffset + n*opts.ItemGap
}
