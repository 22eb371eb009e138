package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rytunyn/timeline/pkg/cache"
	terrors "github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/observability"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
)

const (
	testOutline = "Stage One\nA\nB\nC\nD\nE\nStage Two\nF\n"
	testPage    = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<svg id="main-svg" viewBox="0 0 1000 100">
  <line id="axis-line" x1="500" y1="0" x2="500" y2="0"></line>
</svg>
</body></html>
`
)

type fixture struct {
	opts   Options
	runner *Runner
	cache  *cache.MemoryCache
}

func newFixture(t *testing.T, outlineText, page string) fixture {
	t.Helper()
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Input = filepath.Join(dir, "eng.key")
	opts.Output = filepath.Join(dir, "index.html")
	if outlineText != "" {
		if err := os.WriteFile(opts.Input, []byte(outlineText), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(opts.Output, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}
	c := cache.NewMemoryCache()
	return fixture{
		opts:   opts,
		runner: NewRunner(c, nil, log.New(io.Discard)),
		cache:  c,
	}
}

func (f fixture) output(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.opts.Output)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestExecute(t *testing.T) {
	f := newFixture(t, testOutline, testPage)

	res, err := f.runner.Execute(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Stats.Stages != 2 || res.Stats.Items != 6 {
		t.Errorf("stats = %+v, want 2 stages, 6 items", res.Stats)
	}
	if res.Stats.Elements != 9 {
		t.Errorf("Elements = %d, want 9", res.Stats.Elements)
	}
	if !res.Changed {
		t.Error("first run should change the page")
	}
	if res.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	out := f.output(t)
	if res.Stats.OutputBytes != len(out) {
		t.Errorf("OutputBytes = %d, file has %d", res.Stats.OutputBytes, len(out))
	}
	for _, want := range []string{`id="stage-1"`, `id="stage-2"`, `id="stage-terminal"`, `id="footer-group"`, `viewBox="0 0 1000 2600"`, `y2="2500"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExecuteTwiceIsStable(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	ctx := context.Background()

	if _, err := f.runner.Execute(ctx, f.opts); err != nil {
		t.Fatal(err)
	}
	first := f.output(t)

	res, err := f.runner.Execute(ctx, f.opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Error("second run should not change the page")
	}
	if !res.CacheInfo.RenderHit {
		t.Error("second run should reuse cached fragments")
	}
	if second := f.output(t); second != first {
		t.Error("generated page differs between runs")
	}
	if n := strings.Count(first, `id="stage-1"`); n != 1 {
		t.Errorf("stage-1 appears %d times", n)
	}
}

func TestExecuteMissingInput(t *testing.T) {
	f := newFixture(t, "", testPage)

	res, err := f.runner.Execute(context.Background(), f.opts)
	if res != nil {
		t.Errorf("result = %+v, want nil", res)
	}
	if !terrors.Is(err, terrors.ErrCodeFileNotFound) {
		t.Errorf("Execute() error = %v, want %s", err, terrors.ErrCodeFileNotFound)
	}
	if f.output(t) != testPage {
		t.Error("page must not be written when the outline is missing")
	}
}

func TestExecuteNoStages(t *testing.T) {
	f := newFixture(t, "only\nloose\nlines\n", testPage)

	res, err := f.runner.Execute(context.Background(), f.opts)
	if !errors.Is(err, ErrNothingToDo) {
		t.Fatalf("Execute() error = %v, want ErrNothingToDo", err)
	}
	if res == nil || res.Stats.Discarded != 3 {
		t.Errorf("result = %+v, want parse stats with 3 discarded lines", res)
	}
	if f.output(t) != testPage {
		t.Error("page must not be written when there is nothing to do")
	}
}

func TestExecuteMissingContainer(t *testing.T) {
	page := "<html><body><p>no timeline</p></body></html>"
	f := newFixture(t, testOutline, page)

	_, err := f.runner.Execute(context.Background(), f.opts)
	if !terrors.Is(err, terrors.ErrCodeNotFound) {
		t.Errorf("Execute() error = %v, want %s", err, terrors.ErrCodeNotFound)
	}
	if f.output(t) != page {
		t.Error("page must not be modified when the container is missing")
	}
}

func TestExecuteDryRun(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	f.opts.DryRun = true

	res, err := f.runner.Execute(context.Background(), f.opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed || res.Stats.OutputBytes == 0 {
		t.Errorf("dry run should report the pending change: %+v", res)
	}
	if f.output(t) != testPage {
		t.Error("dry run must not write the page")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	f.opts.Layout.ItemGap = 0

	_, err := f.runner.Execute(context.Background(), f.opts)
	if !terrors.Is(err, terrors.ErrCodeInvalidInput) {
		t.Errorf("Execute() error = %v, want %s", err, terrors.ErrCodeInvalidInput)
	}
}

func TestExecuteCanceled(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.runner.Execute(ctx, f.opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if f.output(t) != testPage {
		t.Error("canceled run must not write the page")
	}
}

type panicKeyer struct{}

func (panicKeyer) FragmentKey(string, any) string { panic("keyer exploded") }

func TestExecuteRecoversPanic(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	r := NewRunner(nil, panicKeyer{}, log.New(io.Discard))

	res, err := r.Execute(context.Background(), f.opts)
	if res != nil {
		t.Error("result should be nil after a panic")
	}
	if !terrors.Is(err, terrors.ErrCodeInternal) {
		t.Fatalf("Execute() error = %v, want %s", err, terrors.ErrCodeInternal)
	}
	if !strings.Contains(err.Error(), "keyer exploded") {
		t.Errorf("error should carry the panic value: %v", err)
	}
	if len(terrors.StackTrace(err)) == 0 {
		t.Error("error should carry a stack trace")
	}
	if f.output(t) != testPage {
		t.Error("page must not be written after a panic")
	}
}

func TestRenderCacheKeyTracksOptions(t *testing.T) {
	f := newFixture(t, testOutline, testPage)
	ctx := context.Background()

	o, err := f.runner.Parse(ctx, f.opts)
	if err != nil {
		t.Fatal(err)
	}
	l := f.runner.ComputeLayout(ctx, o, f.opts)

	if _, hit, _ := f.runner.Render(ctx, o, l, f.opts); hit {
		t.Error("first render should miss")
	}
	if _, hit, _ := f.runner.Render(ctx, o, l, f.opts); !hit {
		t.Error("second render should hit")
	}

	changed := f.opts
	changed.Summary.Title = "JOY"
	frag, hit, _ := f.runner.Render(ctx, o, l, changed)
	if hit {
		t.Error("changed summary should miss the cache")
	}
	if !strings.Contains(string(frag.Content), ">JOY</text>") {
		t.Error("changed summary not rendered")
	}

	refresh := f.opts
	refresh.Refresh = true
	if _, hit, _ := f.runner.Render(ctx, o, l, refresh); hit {
		t.Error("Refresh should bypass the cache")
	}
	if f.cache.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", f.cache.Len())
	}
}

func TestRenderDocument(t *testing.T) {
	f := newFixture(t, testOutline, testPage)

	doc, res, err := f.runner.RenderDocument(context.Background(), f.opts)
	if err != nil {
		t.Fatalf("RenderDocument() error: %v", err)
	}
	if !strings.HasPrefix(string(doc), "<svg ") {
		t.Errorf("document should start with <svg, got %.40q", doc)
	}
	if res.Stats.Elements != 9 || res.Stats.OutputBytes != len(doc) {
		t.Errorf("stats = %+v", res.Stats)
	}
	if f.output(t) != testPage {
		t.Error("RenderDocument must not touch the output page")
	}
}

func TestRenderDocumentNoStages(t *testing.T) {
	f := newFixture(t, "nothing here\n", testPage)
	_, _, err := f.runner.RenderDocument(context.Background(), f.opts)
	if !errors.Is(err, ErrNothingToDo) {
		t.Errorf("RenderDocument() error = %v, want ErrNothingToDo", err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	h.events = append(h.events, e)
	h.mu.Unlock()
}

func (h *recordingHooks) OnParseStart(context.Context, string) { h.record("parse") }
func (h *recordingHooks) OnLayoutStart(context.Context, int)   { h.record("layout") }
func (h *recordingHooks) OnRenderStart(context.Context, int)   { h.record("render") }
func (h *recordingHooks) OnPatchComplete(_ context.Context, _ string, changed bool, _ time.Duration, err error) {
	if err == nil && changed {
		h.record("patched")
	}
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	f := newFixture(t, testOutline, testPage)
	if _, err := f.runner.Execute(context.Background(), f.opts); err != nil {
		t.Fatal(err)
	}

	want := []string{"parse", "layout", "render", "patched"}
	if strings.Join(hooks.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"empty input", func(o *Options) { o.Input = "" }, true},
		{"empty output", func(o *Options) { o.Output = "" }, true},
		{"bad layout", func(o *Options) { o.Layout = layout.Options{} }, true},
		{"bad email", func(o *Options) { o.Footer.Email = "nobody" }, true},
		{"bad container id", func(o *Options) { o.Patch.ContainerID = "#main" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			if err := opts.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatsTotal(t *testing.T) {
	s := Stats{ParseTime: 1, LayoutTime: 2, RenderTime: 3, PatchTime: 4}
	if s.Total() != 10 {
		t.Errorf("Total() = %v, want 10ns", s.Total())
	}
}
