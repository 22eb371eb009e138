package patch

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/outline"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

const hostPage = `<!DOCTYPE html>
<html>
<head><title>Timeline</title></head>
<body>
<header><h1>Narrative</h1></header>
<svg id="main-svg" viewBox="0 0 1000 500" xmlns="http://www.w3.org/2000/svg">
  <defs><linearGradient id="grad-gold"><stop offset="0"></stop></linearGradient></defs>
  <line id="axis-line" x1="500" y1="0" x2="480" y2="400" stroke="#333"></line>
  <g id="intro"><text x="500" y="300">INTRO</text><g id="stage-99"><text>NESTED OLD</text></g></g>
  <g id="stage-1" transform="translate(0, 700)"><text>OLD STAGE</text></g>
  <g id="stage-terminal"><text>OLD TERMINAL</text></g>
  <g id="footer-group"><text>OLD FOOTER</text></g>
</svg>
<p>after</p>
</body>
</html>
`

func fragments(stages ...outline.Stage) sink.Fragments {
	if len(stages) == 0 {
		stages = []outline.Stage{
			{Title: "Stage One", Items: []string{"A", "B", "C", "D", "E"}},
			{Title: "Stage Two", Items: []string{"F"}},
		}
	}
	l := layout.Compute(&outline.Outline{Stages: stages}, layout.DefaultOptions())
	return sink.RenderFragments(l)
}

func mustPatch(t *testing.T, page string, f sink.Fragments) string {
	t.Helper()
	out, err := Patch(strings.NewReader(page), f, DefaultOptions())
	if err != nil {
		t.Fatalf("Patch() error: %v", err)
	}
	return string(out)
}

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestPatchReplacesGeneratedContent(t *testing.T) {
	out := mustPatch(t, hostPage, fragments())

	for _, stale := range []string{"OLD STAGE", "OLD TERMINAL", "OLD FOOTER", "NESTED OLD"} {
		if strings.Contains(out, stale) {
			t.Errorf("stale content %q survived", stale)
		}
	}
	for _, kept := range []string{"INTRO", "<h1>Narrative</h1>", "<p>after</p>", `id="grad-gold"`} {
		if !strings.Contains(out, kept) {
			t.Errorf("unrelated content %q was lost", kept)
		}
	}

	svg := mustDoc(t, out).Find("svg#main-svg")
	if got := svg.Find("g[id^='stage-']").Length(); got != 3 {
		t.Errorf("generated groups = %d, want 3 (2 stages + terminal)", got)
	}
	if got := svg.Find("g.sequence-item").Length(); got != 7 {
		t.Errorf("sequence items = %d, want 7 (6 items + terminal)", got)
	}
	if got := svg.Find("g#footer-group").Length(); got != 1 {
		t.Errorf("footer groups = %d, want 1", got)
	}
}

func TestPatchUpdatesGeometry(t *testing.T) {
	out := mustPatch(t, hostPage, fragments())
	svg := mustDoc(t, out).Find("svg#main-svg")

	if got, _ := svg.Attr("viewBox"); got != "0 0 1000 2600" {
		t.Errorf("viewBox = %q, want %q", got, "0 0 1000 2600")
	}
	axis := svg.Find("line#axis-line")
	if got, _ := axis.Attr("x2"); got != "500" {
		t.Errorf("axis x2 = %q, want 500", got)
	}
	if got, _ := axis.Attr("y2"); got != "2500" {
		t.Errorf("axis y2 = %q, want 2500", got)
	}
}

func TestPatchAppendsInOrder(t *testing.T) {
	out := mustPatch(t, hostPage, fragments())

	order := []string{`id="intro"`, `id="stage-1"`, `id="stage-2"`, `id="stage-terminal"`, `id="footer-group"`, "</svg>"}
	last := -1
	for _, marker := range order {
		i := strings.Index(out, marker)
		if i < 0 {
			t.Fatalf("output missing %q", marker)
		}
		if i < last {
			t.Errorf("%q is out of order", marker)
		}
		last = i
	}
}

func TestPatchIdempotent(t *testing.T) {
	f := fragments()
	first := mustPatch(t, hostPage, f)
	second := mustPatch(t, first, f)
	if first != second {
		t.Errorf("patching twice changed the document:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	third := mustPatch(t, second, f)
	if second != third {
		t.Error("patching a third time changed the document")
	}
}

func TestPatchShrinkingOutline(t *testing.T) {
	big := mustPatch(t, hostPage, fragments())
	small := mustPatch(t, big, fragments(outline.Stage{Title: "Stage Only", Items: []string{"X"}}))

	if strings.Contains(small, `id="stage-2"`) {
		t.Error("stage from previous run survived")
	}
	if got := mustDoc(t, small).Find("g.sequence-item").Length(); got != 2 {
		t.Errorf("sequence items = %d, want 2", got)
	}
}

func TestPatchMissingContainer(t *testing.T) {
	page := `<html><body><svg id="other"></svg></body></html>`
	_, err := Patch(strings.NewReader(page), fragments(), DefaultOptions())
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Patch() error = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestPatchWithoutAxisLine(t *testing.T) {
	page := `<html><body><svg id="main-svg"></svg></body></html>`
	out := mustPatch(t, page, fragments())
	if mustDoc(t, out).Find("line#axis-line").Length() != 0 {
		t.Error("patcher should not invent an axis line")
	}
	if !strings.Contains(out, `viewBox="0 0 1000 2600"`) {
		t.Error("viewBox should be added when absent")
	}
}

func TestPatchInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.ContainerID = "main-svg, body"
	_, err := Patch(strings.NewReader(hostPage), fragments(), opts)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Patch() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}

	opts = DefaultOptions()
	opts.AxisInset = -1
	if err := opts.Validate(); err == nil {
		t.Error("negative axis inset should be rejected")
	}
}

func TestPatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(hostPage), 0600); err != nil {
		t.Fatal(err)
	}
	f := fragments()

	res, err := PatchFile(path, f, DefaultOptions(), false)
	if err != nil {
		t.Fatalf("PatchFile() error: %v", err)
	}
	if !res.Changed {
		t.Error("first PatchFile() should rewrite the file")
	}
	first, _ := os.ReadFile(path)
	if res.Size != len(first) {
		t.Errorf("Size = %d, file has %d bytes", res.Size, len(first))
	}

	res, err = PatchFile(path, f, DefaultOptions(), false)
	if err != nil {
		t.Fatalf("PatchFile() error: %v", err)
	}
	if res.Changed {
		t.Error("second PatchFile() with the same fragments should be a no-op")
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Error("file changed on the second run")
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", st.Mode().Perm())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestPatchFileDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(hostPage), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := PatchFile(path, fragments(), DefaultOptions(), true)
	if err != nil {
		t.Fatalf("PatchFile() error: %v", err)
	}
	if !res.Changed || res.Size == 0 {
		t.Errorf("dry run result = %+v, want a pending change", res)
	}
	got, _ := os.ReadFile(path)
	if string(got) != hostPage {
		t.Error("dry run must not write the file")
	}
}

func TestPatchFileMissingContainerLeavesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	page := []byte("<html><body><p>no svg here</p></body></html>")
	if err := os.WriteFile(path, page, 0644); err != nil {
		t.Fatal(err)
	}

	res, err := PatchFile(path, fragments(), DefaultOptions(), false)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("PatchFile() error = %v, want %s", err, errors.ErrCodeNotFound)
	}
	if res.Changed {
		t.Error("PatchFile() should report no change")
	}
	got, _ := os.ReadFile(path)
	if !bytes.Equal(got, page) {
		t.Error("document was modified despite the error")
	}
}

func TestPatchFileMissing(t *testing.T) {
	_, err := PatchFile(filepath.Join(t.TempDir(), "index.html"), fragments(), DefaultOptions(), false)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("PatchFile() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
