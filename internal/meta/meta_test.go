package meta

import (
	"reflect"
	"testing"
	"time"
)

func TestSnapshotSortsNewestFirst(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCollection()
	c.AddArticle(Article{Title: "old", Modified: base.Add(-time.Hour), URL: "https://example.com/old.html"})
	c.AddArticle(Article{Title: "new", Modified: base, URL: "https://example.com/new.html"})
	c.AddArticle(Article{Title: "tie-b", Modified: base, URL: "https://example.com/b.html"})

	got := c.Snapshot()
	want := []string{"b.html", "new.html", "old.html"}
	for i, suffix := range want {
		if got[i].URL != "https://example.com/"+suffix {
			t.Errorf("snapshot[%d].URL = %q, want suffix %q", i, got[i].URL, suffix)
		}
	}
}

func TestImagesReturnsCopy(t *testing.T) {
	c := NewCollection()
	c.AddImage("https://example.com/a.png")
	c.AddImage("https://example.com/b.png")

	got := c.Images()
	want := []string{"https://example.com/a.png", "https://example.com/b.png"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Images() = %v, want %v", got, want)
	}

	got[0] = "clobbered"
	if again := c.Images(); again[0] != want[0] {
		t.Error("Images() must return a copy, not the backing slice")
	}
}
