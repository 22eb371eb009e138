package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Input != "doc/eng.key" || cfg.Output != "index.html" {
		t.Errorf("paths = %q, %q", cfg.Input, cfg.Output)
	}
	if cfg.Layout != layout.DefaultOptions() {
		t.Error("layout should default to layout.DefaultOptions()")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "timeline.toml", `
input = "outline.txt"

[layout]
start_y = 800
emphasis_every = 3

[summary]
title = "JOY"

[footer]
email = ""
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Input != "outline.txt" {
		t.Errorf("Input = %q", cfg.Input)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, want default", cfg.Output)
	}
	if cfg.Layout.StartY != 800 || cfg.Layout.EmphasisEvery != 3 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.ItemGap != 100 {
		t.Errorf("unset layout keys should keep defaults, ItemGap = %d", cfg.Layout.ItemGap)
	}
	if cfg.Summary.Title != "JOY" || cfg.Summary.Subtitle != "NARRATIVE INTELLIGENCE" {
		t.Errorf("Summary = %+v", cfg.Summary)
	}
	if cfg.Footer.Email != "" || cfg.Footer.Caption != "RYTUNYN 2026" {
		t.Errorf("Footer = %+v", cfg.Footer)
	}
}

func TestLoadYAML(t *testing.T) {
	for _, name := range []string{"timeline.yaml", "timeline.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, `
output: site/index.html
layout:
  item_gap: 80
patch:
  container_id: timeline-svg
`)
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Output != "site/index.html" {
				t.Errorf("Output = %q", cfg.Output)
			}
			if cfg.Layout.ItemGap != 80 || cfg.Layout.StageGap != 300 {
				t.Errorf("Layout = %+v", cfg.Layout)
			}
			if cfg.Patch.ContainerID != "timeline-svg" || cfg.Patch.FooterID != "footer-group" {
				t.Errorf("Patch = %+v", cfg.Patch)
			}
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "timeline.yaml", ""))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Error("empty file should yield defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		code errors.Code
	}{
		{"unknown toml key", "timeline.toml", "inptu = \"x\"\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", "timeline.yaml", "layuot:\n  start_y: 1\n", errors.ErrCodeInvalidConfig},
		{"bad toml", "timeline.toml", "input = \n", errors.ErrCodeInvalidConfig},
		{"invalid layout", "timeline.toml", "[layout]\nitem_gap = 0\n", errors.ErrCodeInvalidConfig},
		{"invalid email", "timeline.yaml", "footer:\n  email: nobody\n", errors.ErrCodeInvalidConfig},
		{"invalid id", "timeline.yaml", "patch:\n  footer_id: \"a b\"\n", errors.ErrCodeInvalidConfig},
		{"unsupported", "timeline.json", "{}", errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "timeline.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Find(dir); ok {
		t.Error("Find() in empty dir should report nothing")
	}

	if err := os.WriteFile(filepath.Join(dir, "timeline.yml"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got, ok := Find(dir); !ok || filepath.Base(got) != "timeline.yml" {
		t.Errorf("Find() = %q, %v", got, ok)
	}

	if err := os.WriteFile(filepath.Join(dir, "timeline.toml"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got, _ := Find(dir); filepath.Base(got) != "timeline.toml" {
		t.Errorf("Find() = %q, toml should take precedence", got)
	}
}
