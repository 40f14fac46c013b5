// Package diff produces unified diffs for dry-run builds: what the
// generator would write versus what is on disk.
package diff

import (
	"fmt"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified returns a unified diff from old to new. An empty string means the
// contents already match.
func Unified(oldName, newName, old, new string) string {
	if old == new {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath(oldName), old, new)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, old, edits))
}
