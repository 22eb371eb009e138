package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/rytunyn/timeline/pkg/observability"
)

// logHooks writes pipeline and cache events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("trace")}
}

func (h *logHooks) OnParseStart(_ context.Context, path string) {
	h.logger.Debug("parse start", "path", path)
}

func (h *logHooks) OnParseComplete(_ context.Context, path string, stages, items int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("parse failed", "path", path, "err", err, "duration", d)
		return
	}
	h.logger.Debug("parse done", "path", path, "stages", stages, "items", items, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, stages int) {
	h.logger.Debug("layout start", "stages", stages)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, elements, height int, d time.Duration) {
	h.logger.Debug("layout done", "elements", elements, "height", height, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, elements int) {
	h.logger.Debug("render start", "elements", elements)
}

func (h *logHooks) OnRenderComplete(_ context.Context, bytes int, d time.Duration) {
	h.logger.Debug("render done", "bytes", bytes, "duration", d)
}

func (h *logHooks) OnPatchStart(_ context.Context, path string) {
	h.logger.Debug("patch start", "path", path)
}

func (h *logHooks) OnPatchComplete(_ context.Context, path string, changed bool, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("patch failed", "path", path, "err", err, "duration", d)
		return
	}
	h.logger.Debug("patch done", "path", path, "changed", changed, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", size)
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
)
