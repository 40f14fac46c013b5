package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gerunddev/orgweave/internal/cache"
	"github.com/gerunddev/orgweave/internal/diff"
	"github.com/gerunddev/orgweave/internal/logger"
	"github.com/gerunddev/orgweave/internal/meta"
	"github.com/gerunddev/orgweave/internal/org"
)

// OrgHandler renders org documents to HTML pages and publishes the source
// alongside them.
type OrgHandler struct {
	log   *logger.Logger
	cache *cache.Cache
	opts  Options
}

// NewOrgHandler returns the handler for .org sources.
func NewOrgHandler(log *logger.Logger, c *cache.Cache, opts Options) *OrgHandler {
	return &OrgHandler{log: log, cache: c, opts: opts}
}

// Extract reads the document's keyword map without expanding macros and
// turns it into an article record.
func (h *OrgHandler) Extract(ctx FileContext) (*Record, error) {
	content, err := os.ReadFile(ctx.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ctx.SourcePath, err)
	}

	md, err := org.ExtractMetadata(string(content), ctx.RelPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(ctx.SourcePath)
	if err != nil {
		return nil, err
	}

	title := md["title"]
	if title == "" {
		// Fall back to the output filename stem.
		base := filepath.Base(ctx.OutputPath)
		title = base[:len(base)-len(filepath.Ext(base))]
	}

	return &Record{Article: &meta.Article{
		Title:       title,
		Description: md["desc"],
		Author:      md["author"],
		Tags:        splitTags(md["tags"]),
		Modified:    info.ModTime().UTC(),
		URL:         ctx.URL(".html"),
	}}, nil
}

// Render parses the document against the article snapshot, pushes the
// fragment through the template cascade, and writes the page plus a copy of
// the source. Up-to-date outputs are skipped unless the build is forced.
func (h *OrgHandler) Render(ctx FileContext, articles []meta.Article) (Status, error) {
	htmlOut := withExt(ctx.OutputPath, ".html")
	srcOut := withExt(ctx.OutputPath, ".org")

	if !h.opts.Force && !h.cache.Changed(ctx.RelPath, ctx.SourcePath, htmlOut, srcOut) {
		h.log.FileSkipped(ctx.RelPath, "up to date")
		return StatusSkipped, nil
	}

	content, err := os.ReadFile(ctx.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", ctx.SourcePath, err)
	}

	doc, err := org.Parse(string(content), ctx.RelPath, org.MacroContext{
		SiteURL:  ctx.SiteURL,
		Articles: articles,
	})
	if err != nil {
		return 0, err
	}

	fragment, err := doc.HTML()
	if err != nil {
		return 0, err
	}

	page, err := ctx.Templates.Render(filepath.Dir(ctx.SourcePath), fragment, doc.Metadata)
	if err != nil {
		return 0, err
	}

	if h.opts.DryRun {
		h.printDiff(htmlOut, page)
		return StatusRendered, nil
	}

	if err := writeFile(htmlOut, []byte(page)); err != nil {
		return 0, err
	}
	if err := writeFile(srcOut, content); err != nil {
		return 0, err
	}
	if err := h.cache.Update(ctx.RelPath, ctx.SourcePath); err != nil {
		return 0, err
	}

	h.log.FileRendered(ctx.RelPath, htmlOut)
	return StatusRendered, nil
}

func (h *OrgHandler) printDiff(htmlOut, page string) {
	if h.opts.DiffOut == nil {
		return
	}
	old := ""
	if existing, err := os.ReadFile(htmlOut); err == nil {
		old = string(existing)
	}
	if unified := diff.Unified(htmlOut, htmlOut, old, page); unified != "" {
		fmt.Fprint(h.opts.DiffOut, unified)
	}
}
