package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/gerunddev/orgweave/internal/meta"
)

// writeFeed writes an RSS 2.0 feed at the output root under the name
// "feed", one item per article.
func (d *Dispatcher) writeFeed(outputDir string, articles []meta.Article) error {
	rssCfg := d.cfg.RSS

	feed := &feeds.Feed{
		Title:       rssCfg.Title,
		Link:        &feeds.Link{Href: rssCfg.Link},
		Description: rssCfg.Description,
		Updated:     time.Now().UTC(),
	}
	for _, article := range articles {
		item := &feeds.Item{
			Title:       article.Title,
			Link:        &feeds.Link{Href: article.URL},
			Description: article.Description,
			Id:          article.URL,
			Created:     article.Modified,
		}
		if article.Author != "" {
			item.Author = &feeds.Author{Name: article.Author}
		}
		feed.Items = append(feed.Items, item)
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = rssCfg.Language
	rss.Copyright = rssCfg.Copyright
	rss.Ttl = rssCfg.TTL
	rss.Generator = "orgweave (https://github.com/gerunddev/orgweave)"
	rss.Docs = "https://www.rssboard.org/rss-specification"
	for i, item := range rss.Items {
		item.Guid = &feeds.RssGuid{Id: articles[i].URL, IsPermaLink: "true"}
		if len(articles[i].Tags) > 0 {
			item.Category = strings.Join(articles[i].Tags, ",")
		}
	}

	out, err := feeds.ToXML(rss)
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}

	path := filepath.Join(outputDir, "feed")
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}

	d.log.FeedGenerated(path, len(rss.Items))
	return nil
}
