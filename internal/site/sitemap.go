package site

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/gerunddev/orgweave/internal/meta"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// writeSitemap writes sitemap.xml at the output root: one entry per article
// with its last-modified stamp, then one bare entry per image asset.
func (d *Dispatcher) writeSitemap(outputDir string, articles []meta.Article, images []string) error {
	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, article := range articles {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     article.URL,
			LastMod: article.Modified.Format(time.RFC3339),
		})
	}

	// The walk order is nondeterministic under parallel extraction.
	sorted := make([]string, len(images))
	copy(sorted, images)
	sort.Strings(sorted)
	for _, url := range sorted {
		set.URLs = append(set.URLs, sitemapURL{Loc: url})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sitemap: %w", err)
	}

	path := filepath.Join(outputDir, "sitemap.xml")
	if err := writeFile(path, append([]byte(xml.Header), data...)); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	d.log.SitemapGenerated(path, len(set.URLs))
	return nil
}
