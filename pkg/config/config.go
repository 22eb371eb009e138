// Package config loads the optional timeline configuration file.
//
// The file is TOML (timeline.toml) or YAML (timeline.yaml / timeline.yml),
// chosen by extension. Values present in the file override the built-in
// defaults; command-line flags override both.
//
//	input  = "doc/eng.key"
//	output = "index.html"
//
//	[layout]
//	start_y   = 700
//	stage_gap = 300
//
//	[footer]
//	caption = "RYTUNYN 2026"
//	email   = ""            # no contact link
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/rytunyn/timeline/pkg/errors"
	"github.com/rytunyn/timeline/pkg/patch"
	"github.com/rytunyn/timeline/pkg/render/timeline/layout"
	"github.com/rytunyn/timeline/pkg/render/timeline/sink"
)

const (
	// DefaultInput is the outline read when no path is configured.
	DefaultInput = "doc/eng.key"

	// DefaultOutput is the page patched when no path is configured.
	DefaultOutput = "index.html"
)

// Names lists the file names Find looks for, in order.
var Names = []string{"timeline.toml", "timeline.yaml", "timeline.yml"}

// Config is the complete configuration of a run.
type Config struct {
	Input   string         `toml:"input" yaml:"input"`
	Output  string         `toml:"output" yaml:"output"`
	Layout  layout.Options `toml:"layout" yaml:"layout"`
	Summary sink.Summary   `toml:"summary" yaml:"summary"`
	Footer  sink.Footer    `toml:"footer" yaml:"footer"`
	Patch   patch.Options  `toml:"patch" yaml:"patch"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() Config {
	return Config{
		Input:   DefaultInput,
		Output:  DefaultOutput,
		Layout:  layout.DefaultOptions(),
		Summary: sink.DefaultSummary(),
		Footer:  sink.DefaultFooter(),
		Patch:   patch.DefaultOptions(),
	}
}

// Load reads the file at path over the defaults. Unknown keys are an error
// so that typos do not silently fall back to a default.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, errors.New(errors.ErrCodeUnsupported, "unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid config %s", path)
	}
	return cfg, nil
}

// Find returns the first config file from Names present in dir.
func Find(dir string) (string, bool) {
	for _, name := range Names {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := errors.ValidatePath(c.Input); err != nil {
		return err
	}
	if err := errors.ValidatePath(c.Output); err != nil {
		return err
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateEmail(c.Footer.Email); err != nil {
		return err
	}
	return c.Patch.Validate()
}
