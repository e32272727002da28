package tools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// normalizeRoot lexically normalizes workingDir to an absolute path
// without touching the filesystem (no symlink resolution).
func normalizeRoot(workingDir string) (string, error) {
	if workingDir == "" {
		return "", fmt.Errorf("pathguard: working_dir must not be empty")
	}
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return "", fmt.Errorf("pathguard: normalize working_dir: %w", err)
	}
	return filepath.Clean(abs), nil
}

// ResolvePath implements the path-guard contract (§4.2): normalize the
// requested path, join it to the containment root if relative, and
// reject any result that escapes the root.
func (c *ToolContext) ResolvePath(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("pathguard: path must not be empty")
	}

	var candidate string
	if filepath.IsAbs(input) {
		candidate = filepath.Clean(input)
	} else {
		candidate = filepath.Clean(filepath.Join(c.WorkingDir, input))
	}

	if !isWithin(c.WorkingDir, candidate) {
		return "", fmt.Errorf(
			"path %q resolves to %q, which is outside the working directory %q; use a relative path instead",
			input, candidate, c.WorkingDir,
		)
	}
	return candidate, nil
}

// isWithin reports whether candidate is root or a descendant of root.
func isWithin(root, candidate string) bool {
	if candidate == root {
		return true
	}
	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}
