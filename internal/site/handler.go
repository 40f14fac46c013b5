package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerunddev/orgweave/internal/meta"
	"github.com/gerunddev/orgweave/internal/tmpl"
)

// FileContext carries everything a handler needs to process one source
// file.
type FileContext struct {
	// RelPath is the path relative to the source root.
	RelPath    string
	SourcePath string
	OutputPath string
	// Ext is the lower-cased extension without the dot.
	Ext       string
	SiteURL   string
	Templates *tmpl.Templates
}

// Record is what metadata extraction yields for one file. At most one field
// is set; a nil record means the file contributes nothing.
type Record struct {
	Article *meta.Article
	// Image is the absolute URL of an image asset.
	Image string
}

// Status reports what the render phase did with a file.
type Status int

const (
	StatusRendered Status = iota
	StatusCopied
	StatusSkipped
)

// Handler processes files of one extension. Extract runs in phase one,
// before the shared collection is complete; Render runs in phase two with
// the frozen article snapshot.
type Handler interface {
	Extract(ctx FileContext) (*Record, error)
	Render(ctx FileContext, articles []meta.Article) (Status, error)
}

// URL builds the absolute URL of the file's published form, swapping the
// extension when the output format differs from the source.
func (ctx FileContext) URL(ext string) string {
	rel := ctx.RelPath
	if ext != "" {
		rel = withExt(rel, ext)
	}
	return ctx.SiteURL + "/" + filepath.ToSlash(rel)
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// writeFile creates the parent directory as needed and writes the file.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// splitTags splits a tags keyword on commas when any comma is present,
// otherwise on whitespace.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}
	var tags []string
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
