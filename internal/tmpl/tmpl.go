// Package tmpl renders page fragments through the site's cascading
// templates. A document picks up the nearest root.html above it in the
// source tree, so a subtree can override the site-wide layout.
package tmpl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// RootTemplate is the layout file looked up for every rendered page.
const RootTemplate = "root.html"

// ContentKey is the reserved context key bound to the rendered fragment.
const ContentKey = "content"

// Templates resolves layouts relative to one source root.
type Templates struct {
	root string
}

// New returns a template resolver rooted at the source directory.
func New(root string) *Templates {
	return &Templates{root: root}
}

// Render executes the nearest root.html above fromDir with the document
// metadata plus the rendered fragment under the "content" key. The
// fragment is trusted HTML; nothing is re-escaped.
func (t *Templates) Render(fromDir, content string, metadata map[string]string) (string, error) {
	path, err := t.findUpwards(fromDir, RootTemplate)
	if err != nil {
		return "", err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}

	tpl, err := template.New(RootTemplate).Parse(string(raw))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	data := make(map[string]string, len(metadata)+1)
	for key, value := range metadata {
		data[key] = value
	}
	data[ContentKey] = content

	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", path, err)
	}
	return b.String(), nil
}

// findUpwards walks from dir towards the source root looking for name,
// nearest directory first.
func (t *Templates) findUpwards(dir, name string) (string, error) {
	root := filepath.Clean(t.root)
	dir = filepath.Clean(dir)
	start := dir

	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("no %s found between %s and the source root", name, start)
}
