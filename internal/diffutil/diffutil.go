// Package diffutil renders unified diffs for the write and edit tools.
package diffutil

import (
	diff "github.com/shogoki/gotextdiff"
)

// MaxSize bounds the content length: the write tool renders a diff only
// when both old and new content are shorter than this, and otherwise
// reports the update without a diff. The edit tool does not apply it.
const MaxSize = 256 * 1024

// Unified returns a unified diff of oldContent -> newContent labeled
// with path, or "" if the contents are identical.
func Unified(path, oldContent, newContent string) string {
	if oldContent == newContent {
		return ""
	}
	return string(diff.Diff(path, []byte(oldContent), path, []byte(newContent)))
}
