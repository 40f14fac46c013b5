package site

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gerunddev/orgweave/internal/cache"
	"github.com/gerunddev/orgweave/internal/logger"
	"github.com/gerunddev/orgweave/internal/meta"
)

var imageExts = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webm": true,
	"gif":  true,
}

// CopyHandler passes files through to the output tree unchanged. Image
// files additionally register their URL so pages can reference them.
type CopyHandler struct {
	log   *logger.Logger
	cache *cache.Cache
	opts  Options
}

// NewCopyHandler returns the fallback handler for unrecognized files.
func NewCopyHandler(log *logger.Logger, c *cache.Cache, opts Options) *CopyHandler {
	return &CopyHandler{log: log, cache: c, opts: opts}
}

func (h *CopyHandler) Extract(ctx FileContext) (*Record, error) {
	if imageExts[ctx.Ext] {
		return &Record{Image: ctx.URL("")}, nil
	}
	return nil, nil
}

func (h *CopyHandler) Render(ctx FileContext, _ []meta.Article) (Status, error) {
	if !h.opts.Force && !h.cache.Changed(ctx.RelPath, ctx.SourcePath, ctx.OutputPath) {
		h.log.FileSkipped(ctx.RelPath, "up to date")
		return StatusSkipped, nil
	}

	data, err := os.ReadFile(ctx.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", ctx.SourcePath, err)
	}

	// An identical file on disk only needs its cache entry refreshed.
	if existing, err := os.ReadFile(ctx.OutputPath); err == nil && bytes.Equal(existing, data) {
		if !h.opts.DryRun {
			if err := h.cache.Update(ctx.RelPath, ctx.SourcePath); err != nil {
				return 0, err
			}
		}
		return StatusSkipped, nil
	}

	if h.opts.DryRun {
		return StatusCopied, nil
	}

	if err := writeFile(ctx.OutputPath, data); err != nil {
		return 0, err
	}
	if err := h.cache.Update(ctx.RelPath, ctx.SourcePath); err != nil {
		return 0, err
	}

	h.log.FileCopied(ctx.RelPath, ctx.OutputPath)
	return StatusCopied, nil
}
