package org

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTML renders the document as one article fragment. Commented sections are
// skipped entirely, heading included. Block types the generator cannot
// render fail loudly rather than vanish from the output.
func (d *Document) HTML() (string, error) {
	var b strings.Builder
	b.WriteString(`<div class="article">`)
	for _, sec := range d.Sections {
		if sec.Commented {
			continue
		}
		for _, node := range sec.Nodes {
			if err := renderNode(&b, node); err != nil {
				return "", err
			}
		}
	}
	b.WriteString(`</div>`)
	return b.String(), nil
}

func renderNode(b *strings.Builder, node Node) error {
	switch n := node.(type) {
	case HeadingNode:
		fmt.Fprintf(b, "<h%d>%s</h%d>", n.Level, escapeHTML(n.Title), n.Level)
	case ParagraphNode:
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(escapeHTML(n.Text), "\n", "<br />"))
		b.WriteString("</p>")
	case TableNode:
		renderTable(b, n.Rows)
	case BlockNode:
		return renderBlock(b, n)
	default:
		return fmt.Errorf("rendering %T nodes is not implemented", node)
	}
	return nil
}

func renderBlock(b *strings.Builder, n BlockNode) error {
	switch n.Type {
	case "src":
		if len(n.Args) > 0 {
			fmt.Fprintf(b, `<pre><code class="language-%s">%s</code></pre>`,
				escapeHTML(n.Args[0]), escapeHTML(n.Contents))
		} else {
			b.WriteString("<pre><code>")
			b.WriteString(escapeHTML(n.Contents))
			b.WriteString("</code></pre>")
		}
	case "export":
		// Only HTML exports are injected; other export targets have no
		// place in an HTML page.
		if len(n.Args) > 0 && n.Args[len(n.Args)-1] == "html" {
			b.WriteString(n.Contents)
		}
	default:
		return fmt.Errorf("rendering %q blocks is not implemented", n.Type)
	}
	return nil
}

// renderTable writes the row matrix verbatim: each source row of N
// pipe-delimited cells arrives with the leading and trailing empty cells
// the split produced, and they are kept for output compatibility.
func renderTable(b *strings.Builder, rows [][]string) {
	b.WriteString("<table><thead></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(escapeHTML(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
}
