package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gerunddev/orgweave/internal/cache"
	"github.com/gerunddev/orgweave/internal/config"
	"github.com/gerunddev/orgweave/internal/logger"
	"github.com/gerunddev/orgweave/internal/meta"
	"github.com/gerunddev/orgweave/internal/org"
	"github.com/gerunddev/orgweave/internal/tmpl"
)

// Options controls a build run.
type Options struct {
	// DryRun renders everything but writes nothing, printing diffs of the
	// pages that would change to DiffOut.
	DryRun bool
	// Force rebuilds every file regardless of the cache.
	Force bool
	// DiffOut receives unified diffs during dry runs. Nil silences them.
	DiffOut io.Writer
}

// Result summarizes a completed build.
type Result struct {
	Rendered int
	Copied   int
	Skipped  int
	// Errors holds per-document failures. The build itself still succeeds.
	Errors []error
}

// Dispatcher walks the source tree and routes each file to the handler for
// its extension. The build runs in two phases: every file's metadata is
// extracted and merged first, then every file renders against the frozen
// article collection.
type Dispatcher struct {
	log  *logger.Logger
	cfg  *config.Config
	opts Options
}

// NewDispatcher creates a dispatcher for one configuration.
func NewDispatcher(log *logger.Logger, cfg *config.Config, opts Options) *Dispatcher {
	return &Dispatcher{log: log, cfg: cfg, opts: opts}
}

// Build generates the site from sourceDir into outputDir.
func (d *Dispatcher) Build(sourceDir, outputDir string) (*Result, error) {
	d.log.BuildStarted(sourceDir, outputDir)

	c, err := cache.Load(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load build cache: %w", err)
	}

	templates := tmpl.New(sourceDir)
	orgHandler := NewOrgHandler(d.log, c, d.opts)
	copyHandler := NewCopyHandler(d.log, c, d.opts)

	files, err := d.collect(sourceDir, outputDir, templates)
	if err != nil {
		return nil, err
	}

	collection := meta.NewCollection()
	result := &Result{}

	if err := d.runPhase(files, func(ctx FileContext) error {
		rec, err := d.handlerFor(ctx, orgHandler, copyHandler).Extract(ctx)
		if err != nil {
			return err
		}
		if rec == nil {
			return nil
		}
		if rec.Article != nil {
			collection.AddArticle(*rec.Article)
		}
		if rec.Image != "" {
			collection.AddImage(rec.Image)
		}
		return nil
	}, result); err != nil {
		return nil, err
	}

	articles := collection.Snapshot()

	var mu sync.Mutex
	if err := d.runPhase(files, func(ctx FileContext) error {
		status, err := d.handlerFor(ctx, orgHandler, copyHandler).Render(ctx, articles)
		if err != nil {
			return err
		}
		mu.Lock()
		switch status {
		case StatusRendered:
			result.Rendered++
		case StatusCopied:
			result.Copied++
		case StatusSkipped:
			result.Skipped++
		}
		mu.Unlock()
		return nil
	}, result); err != nil {
		return nil, err
	}

	if !d.opts.DryRun {
		if len(articles) > 0 {
			if err := d.writeSitemap(outputDir, articles, collection.Images()); err != nil {
				return nil, err
			}
		}
		if d.cfg.RSS != nil {
			if err := d.writeFeed(outputDir, articles); err != nil {
				return nil, err
			}
		}
		if err := c.Save(); err != nil {
			return nil, fmt.Errorf("failed to save build cache: %w", err)
		}
	}

	return result, nil
}

// runPhase fans the file list out over a bounded worker pool. Per-document
// errors are recorded and the phase continues; a block mismatch aborts the
// whole build.
func (d *Dispatcher) runPhase(files []FileContext, fn func(FileContext) error, result *Result) error {
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	var mu sync.Mutex
	var fatal error

	for _, ctx := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(ctx FileContext) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := fn(ctx); err != nil {
				mu.Lock()
				defer mu.Unlock()
				var mismatch *org.BlockMismatchError
				if errors.As(err, &mismatch) && fatal == nil {
					fatal = err
					return
				}
				d.log.DocumentError(ctx.RelPath, err)
				result.Errors = append(result.Errors, fmt.Errorf("%s: %w", ctx.RelPath, err))
			}
		}(ctx)
	}

	wg.Wait()
	return fatal
}

func (d *Dispatcher) handlerFor(ctx FileContext, orgHandler, copyHandler Handler) Handler {
	if ctx.Ext == "org" {
		return orgHandler
	}
	return copyHandler
}

// collect walks the source tree and builds the file contexts, skipping
// editor droppings, version control, templates, and the generator's own
// files.
func (d *Dispatcher) collect(sourceDir, outputDir string, templates *tmpl.Templates) ([]FileContext, error) {
	var files []FileContext
	err := filepath.WalkDir(sourceDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if entry.IsDir() {
			if name == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if skipName(name) {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		files = append(files, FileContext{
			RelPath:    rel,
			SourcePath: path,
			OutputPath: filepath.Join(outputDir, rel),
			Ext:        ext,
			SiteURL:    d.cfg.SiteURL,
			Templates:  templates,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", sourceDir, err)
	}
	return files, nil
}

// skipName reports whether a filename never belongs in the output tree.
func skipName(name string) bool {
	if strings.HasSuffix(name, "~") {
		return true
	}
	if strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") {
		return true
	}
	switch name {
	case config.FileName, cache.FileName, tmpl.RootTemplate:
		return true
	}
	return false
}
