package org

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/orgweave/internal/meta"
)

func mustParse(t *testing.T, filename, content string) *Document {
	t.Helper()
	doc, err := Parse(content, filename, MacroContext{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

func TestParseTitleKeyword(t *testing.T) {
	doc := mustParse(t, "hello.org", "#+TITLE: hello")

	if got := doc.Metadata["title"]; got != "hello" {
		t.Errorf("metadata title = %q, want hello", got)
	}
	if len(doc.Sections) != 1 {
		t.Fatalf("section count = %d, want just the preamble", len(doc.Sections))
	}
	if len(doc.Sections[0].Nodes) != 0 {
		t.Errorf("preamble nodes = %+v, want none", doc.Sections[0].Nodes)
	}
}

func TestParseKeywordLastWriteWins(t *testing.T) {
	doc := mustParse(t, "dup.org", "#+TITLE: first\n#+TITLE: second")
	if got := doc.Metadata["title"]; got != "second" {
		t.Errorf("metadata title = %q, want second", got)
	}
}

func TestParseHeadingOpensSection(t *testing.T) {
	doc := mustParse(t, "heading.org", "* test")

	if len(doc.Sections) != 2 {
		t.Fatalf("section count = %d, want preamble + 1", len(doc.Sections))
	}
	if len(doc.Sections[0].Nodes) != 0 {
		t.Errorf("preamble should stay empty, got %+v", doc.Sections[0].Nodes)
	}
	want := HeadingNode{Level: 1, Title: "test"}
	if !reflect.DeepEqual(doc.Sections[1].Nodes[0], want) {
		t.Errorf("heading node = %+v, want %+v", doc.Sections[1].Nodes[0], want)
	}
}

func TestParseSectionCountMatchesHeadings(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		headings int
	}{
		{"no headings", "just text\n\nmore text", 0},
		{"one heading", "* a", 1},
		{"three headings", "intro\n* a\ntext\n** b\n* c", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, "count.org", tt.content)
			if got := len(doc.Sections); got != 1+tt.headings {
				t.Errorf("section count = %d, want %d", got, 1+tt.headings)
			}
		})
	}
}

func TestParseCommentedHeading(t *testing.T) {
	doc := mustParse(t, "comment_heading.org", "* TODO COMMENT something\n\nsome text")

	if len(doc.Sections) != 2 {
		t.Fatalf("section count = %d, want 2", len(doc.Sections))
	}
	if !doc.Sections[1].Commented {
		t.Error("section below a COMMENT heading must be commented")
	}

	html, err := doc.HTML()
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if html != `<div class="article"></div>` {
		t.Errorf("commented section leaked into output: %q", html)
	}
}

func TestParsePythonSrcBlock(t *testing.T) {
	doc := mustParse(t, "py_hello.org", "#+BEGIN_SRC python\nprint('Hello, world!')\n#+END_SRC")

	if len(doc.Sections) != 1 || len(doc.Sections[0].Nodes) != 1 {
		t.Fatalf("unexpected shape: %+v", doc.Sections)
	}
	want := BlockNode{Type: "src", Args: []string{"python"}, Contents: "print('Hello, world!')"}
	if !reflect.DeepEqual(doc.Sections[0].Nodes[0], want) {
		t.Errorf("node = %+v, want %+v", doc.Sections[0].Nodes[0], want)
	}
}

func TestParseDropsCommentsDrawersPlanning(t *testing.T) {
	doc := mustParse(t, "asides.org", `# just a comment
* heading
    SCHEDULED: soon
    :props:
    key: value
    :end:
body`)

	if len(doc.Sections) != 2 {
		t.Fatalf("section count = %d, want 2", len(doc.Sections))
	}
	nodes := doc.Sections[1].Nodes
	if len(nodes) != 2 {
		t.Fatalf("nodes = %+v, want heading + paragraph only", nodes)
	}
	if _, ok := nodes[1].(ParagraphNode); !ok {
		t.Errorf("node 1 = %T, want paragraph", nodes[1])
	}
}

func TestParseUndefinedMacro(t *testing.T) {
	_, err := Parse("#+BEGIN: frobnicate\n#+END", "macro.org", MacroContext{})
	if err == nil {
		t.Fatal("expected an undefined macro error")
	}
	if !strings.Contains(err.Error(), "undefined macro") {
		t.Errorf("error = %q, want it to mention the undefined macro", err)
	}
}

func TestParseListingMacro(t *testing.T) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := MacroContext{
		SiteURL: "https://example.org",
		Articles: []meta.Article{
			{
				Title:       "First post",
				Description: "about things",
				Author:      "kaz",
				Tags:        []string{"go", "web"},
				Modified:    modified,
				URL:         "https://example.org/articles/first.html",
			},
			{
				Title:    "Unrelated page",
				Modified: modified,
				URL:      "https://example.org/about.html",
			},
		},
	}

	doc, err := Parse("#+BEGIN: listing /articles/\n#+END", "index.org", ctx)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("section count = %d, want preamble + listing", len(doc.Sections))
	}
	sec := doc.Sections[1]
	if sec.Commented {
		t.Error("listing section must not be commented")
	}
	heading, ok := sec.Nodes[0].(HeadingNode)
	if !ok || heading.Title != "Articles" || heading.Level != 1 {
		t.Errorf("node 0 = %+v, want the Articles heading", sec.Nodes[0])
	}
	block, ok := sec.Nodes[1].(BlockNode)
	if !ok || block.Type != "export" || !reflect.DeepEqual(block.Args, []string{"html"}) {
		t.Fatalf("node 1 = %+v, want an export/html block", sec.Nodes[1])
	}

	if !strings.Contains(block.Contents, `href="https://example.org/articles/first.html"`) {
		t.Errorf("card for the matching article is missing: %q", block.Contents)
	}
	if strings.Contains(block.Contents, "Unrelated page") {
		t.Errorf("article outside the prefix leaked in: %q", block.Contents)
	}
	for _, want := range []string{
		`data-title="First post"`,
		`data-last-modified="2024-03-01T12:00:00Z"`,
		`data-description="about things"`,
		`data-author="kaz"`,
		`data-tags="go, web"`,
		`<span class="card-time">2024-03-01T12:00:00Z</span>`,
		`<span class="card-author">kaz</span>`,
	} {
		if !strings.Contains(block.Contents, want) {
			t.Errorf("listing output missing %q in %q", want, block.Contents)
		}
	}
}

func TestParseListingMacroOptionalFields(t *testing.T) {
	ctx := MacroContext{
		SiteURL: "https://example.org",
		Articles: []meta.Article{{
			Title:    "Bare",
			Modified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			URL:      "https://example.org/articles/bare.html",
		}},
	}
	doc, err := Parse("#+BEGIN: listing /articles/\n#+END", "index.org", ctx)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	block := doc.Sections[1].Nodes[1].(BlockNode)
	for _, banned := range []string{"data-description", "data-author", "data-tags", "card-author"} {
		if strings.Contains(block.Contents, banned) {
			t.Errorf("optional field %q rendered for an article without it", banned)
		}
	}
}

func TestExtractMetadataSkipsMacros(t *testing.T) {
	md, err := ExtractMetadata("#+TITLE: index\n#+BEGIN: listing /articles/\n#+END", "index.org")
	if err != nil {
		t.Fatalf("ExtractMetadata failed: %v", err)
	}
	if md["title"] != "index" {
		t.Errorf("title = %q, want index", md["title"])
	}
}
