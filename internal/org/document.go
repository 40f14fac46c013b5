package org

import (
	"fmt"
	"strings"
	"time"

	"github.com/gerunddev/orgweave/internal/meta"
)

// Node is one renderable element of a section.
type Node interface{ node() }

// HeadingNode opens a section.
type HeadingNode struct {
	Level     int
	Title     string
	TodoState string
	Tags      []string
	Commented bool
}

// ParagraphNode is running text; embedded newlines are soft breaks.
type ParagraphNode struct {
	Text string
}

// BlockNode is a BEGIN/END block. Greater blocks share the shape; the
// renderer rejects their types.
type BlockNode struct {
	Type     string
	Args     []string
	Contents string
}

// TableNode is a row matrix. Rows keep the leading and trailing empty cells
// produced by splitting a |-delimited line.
type TableNode struct {
	Rows [][]string
}

func (HeadingNode) node()   {}
func (ParagraphNode) node() {}
func (BlockNode) node()     {}
func (TableNode) node()     {}

// Section is a heading and everything below it, up to the next heading.
type Section struct {
	Nodes     []Node
	Commented bool
}

// Document is a fully assembled source file. Sections always has at least
// one entry: the preamble created before any heading is seen.
type Document struct {
	Metadata map[string]string
	Sections []Section
}

// MacroContext is the read-only snapshot handed to macro expansion. It is
// an explicit argument rather than ambient state so the caller's
// extract-before-render ordering stays a visible precondition.
type MacroContext struct {
	SiteURL  string
	Articles []meta.Article
}

// Parse lexes and assembles one source file. Macro expansion reads ctx;
// an unrecognized macro name fails the parse.
func Parse(content, filename string, ctx MacroContext) (*Document, error) {
	tokens, err := NewLexer(filename).Lex(content)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Metadata: make(map[string]string),
		Sections: []Section{{}},
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case KindHeading:
			h := tok.Heading
			doc.Sections = append(doc.Sections, Section{
				Nodes: []Node{HeadingNode{
					Level:     h.Level,
					Title:     h.Title,
					TodoState: h.TodoState,
					Tags:      h.Tags,
					Commented: h.Commented,
				}},
				Commented: h.Commented,
			})

		case KindParagraph:
			doc.appendNode(ParagraphNode{Text: tok.Text})

		case KindTable:
			doc.appendNode(TableNode{Rows: tok.Rows})

		case KindLesserBlock, KindGreaterBlock:
			doc.appendNode(BlockNode{
				Type:     tok.Name,
				Args:     tok.Args,
				Contents: strings.Join(tok.Lines, "\n"),
			})

		case KindKeyword:
			doc.Metadata[tok.Name] = tok.Text

		case KindComment, KindDrawer, KindPlanning:
			// Comments never render. Drawers and planning lines are
			// metadata asides with no output of their own.

		case KindMacro:
			switch tok.Name {
			case "listing":
				prefix := ""
				if len(tok.Args) > 0 {
					prefix = tok.Args[0]
				}
				doc.Sections = append(doc.Sections, listingSection(ctx, prefix))
			default:
				return nil, fmt.Errorf("%s: undefined macro %q", tok.Loc, tok.Name)
			}
		}
	}

	return doc, nil
}

// ExtractMetadata lexes one source file and returns only its keyword map.
// Macros are left unexpanded, which is what makes it safe to run before the
// cross-document collection is populated.
func ExtractMetadata(content, filename string) (map[string]string, error) {
	tokens, err := NewLexer(filename).Lex(content)
	if err != nil {
		return nil, err
	}
	md := make(map[string]string)
	for _, tok := range tokens {
		if tok.Kind == KindKeyword {
			md[tok.Name] = tok.Text
		}
	}
	return md, nil
}

func (d *Document) appendNode(n Node) {
	last := len(d.Sections) - 1
	d.Sections[last].Nodes = append(d.Sections[last].Nodes, n)
}

// listingSection expands the listing macro: a synthetic "Articles" heading
// followed by a pre-rendered export block of article cards, filtered to
// URLs under siteURL+prefix.
func listingSection(ctx MacroContext, prefix string) Section {
	var b strings.Builder
	b.WriteString(`<div class="articles">`)
	want := ctx.SiteURL + prefix
	for _, a := range ctx.Articles {
		if strings.HasPrefix(a.URL, want) {
			writeArticleCard(&b, a)
		}
	}
	b.WriteString(`</div>`)

	return Section{Nodes: []Node{
		HeadingNode{Level: 1, Title: "Articles"},
		BlockNode{Type: "export", Args: []string{"html"}, Contents: b.String()},
	}}
}

func writeArticleCard(b *strings.Builder, a meta.Article) {
	stamp := a.Modified.UTC().Format(time.RFC3339)

	b.WriteString(`<a href="` + escapeHTML(a.URL) + `" class="article-card">`)
	b.WriteString(`<div data-title="` + escapeHTML(a.Title) + `" data-last-modified="` + stamp + `"`)
	if a.Description != "" {
		b.WriteString(` data-description="` + escapeHTML(a.Description) + `"`)
	}
	if a.Author != "" {
		b.WriteString(` data-author="` + escapeHTML(a.Author) + `"`)
	}
	if len(a.Tags) > 0 {
		b.WriteString(` data-tags="` + escapeHTML(strings.Join(a.Tags, ", ")) + `"`)
	}
	b.WriteString(`>`)

	b.WriteString(`<p class="card-title">` + escapeHTML(a.Title) + `</p>`)
	if a.Description != "" {
		b.WriteString(`<p>` + escapeHTML(a.Description) + `</p>`)
	}

	b.WriteString(`<div><span class="card-time">` + escapeHTML(stamp) + `</span>`)
	if a.Author != "" {
		b.WriteString(`<span class="card-author">` + escapeHTML(a.Author) + `</span>`)
	}
	b.WriteString(`</div></div></a>`)
}
