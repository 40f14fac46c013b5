// Package meta holds the cross-document article metadata shared between the
// extraction and render phases of a build.
package meta

import (
	"sort"
	"sync"
	"time"
)

// Article is the per-document record extracted during phase one and consumed
// by listing macros, the sitemap, and the RSS feed.
type Article struct {
	Title       string
	Description string
	Author      string
	Tags        []string
	Modified    time.Time
	URL         string
}

// Collection accumulates records while documents are extracted in parallel.
// Writers must finish before the first Snapshot call; renders only ever see
// the frozen snapshot.
type Collection struct {
	mu       sync.Mutex
	articles []Article
	images   []string
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// AddArticle records one article. Safe for concurrent use.
func (c *Collection) AddArticle(a Article) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.articles = append(c.articles, a)
}

// AddImage records the absolute URL of an image asset. Safe for concurrent
// use.
func (c *Collection) AddImage(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = append(c.images, url)
}

// Snapshot returns a copy of the article records sorted newest first. The
// copy is what render-phase consumers read, so later mutation of the
// collection cannot race with them.
func (c *Collection) Snapshot() []Article {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Article, len(c.articles))
	copy(out, c.articles)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Modified.Equal(out[j].Modified) {
			return out[i].Modified.After(out[j].Modified)
		}
		return out[i].URL < out[j].URL
	})
	return out
}

// Images returns the recorded image URLs.
func (c *Collection) Images() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.images))
	copy(out, c.images)
	return out
}
