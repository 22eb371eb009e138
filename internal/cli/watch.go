package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/rytunyn/timeline/pkg/pipeline"
)

const watchDebounce = 300 * time.Millisecond

// fileWatcher calls run after any of a fixed set of files changes. Bursts
// of events within the debounce window collapse into a single call. Calls
// happen on the goroutine running Run, one at a time.
type fileWatcher struct {
	files    map[string]bool
	watcher  *fsnotify.Watcher
	debounce time.Duration
	run      func(context.Context)
	logger   *log.Logger
}

// newFileWatcher watches the directories containing files. Watching the
// directory keeps working when an editor replaces a file by renaming.
func newFileWatcher(logger *log.Logger, run func(context.Context), files ...string) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	fw := &fileWatcher{
		files:    make(map[string]bool),
		watcher:  w,
		debounce: watchDebounce,
		run:      run,
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		fw.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return fw, nil
}

// Run blocks until ctx is done or the watcher fails, then closes the watcher.
func (fw *fileWatcher) Run(ctx context.Context) error {
	defer fw.watcher.Close()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if !fw.relevant(ev) {
				continue
			}
			fw.logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			fire = time.After(fw.debounce)

		case <-fire:
			fire = nil
			fw.run(ctx)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", "err", err)
		}
	}
}

func (fw *fileWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return fw.files[abs]
}

// watch runs generate once and again after every change to the outline or
// the config file. A failed run is logged and watching continues. Options
// are reloaded on each run so config edits take effect.
func (c *CLI) watch(ctx context.Context, runner *pipeline.Runner, load func() (pipeline.Options, error), src sourceFlags) error {
	opts, err := load()
	if err != nil {
		return err
	}

	files := []string{opts.Input}
	if path := src.configPath(); path != "" {
		files = append(files, path)
	}

	regenerate := func(ctx context.Context) {
		prog := newProgress(c.Logger)
		opts, err := load()
		if err == nil {
			err = c.runGenerate(ctx, runner, opts)
		}
		if err != nil {
			c.Logger.Error("generate failed", "err", err)
			return
		}
		prog.done("regenerated " + opts.Output)
	}

	fw, err := newFileWatcher(c.Logger, regenerate, files...)
	if err != nil {
		return err
	}

	regenerate(ctx)
	printInfo("Watching %d file(s) for changes, press Ctrl+C to stop", len(files))
	for _, f := range files {
		printFile(f)
	}
	return fw.Run(ctx)
}
