package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const globDefaultMaxResults = 200

// GlobTool implements the glob tool: find files by name pattern.
type GlobTool struct{}

func NewGlobTool() *GlobTool { return &GlobTool{} }

func (t *GlobTool) ID() string { return "glob" }
func (t *GlobTool) Description() string {
	return "Find files matching a glob pattern (supports ** for recursive matching). Results are sorted lexicographically and capped at 200."
}

func (t *GlobTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern": map[string]any{"type": "string", "description": "Glob pattern, e.g. **/*.go"},
			"path":    map[string]any{"type": "string", "description": "Directory to search from (defaults to working_dir)"},
		},
		"required":             []any{"pattern"},
		"additionalProperties": false,
	}
}

type globArgs struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

func (t *GlobTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a globArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}
	if a.Pattern == "" {
		return Result{}, NewToolError(ErrInvalidParams, "pattern is required")
	}

	searchRoot := ctx.WorkingDir
	if a.Path != "" {
		resolved, err := ctx.ResolvePath(a.Path)
		if err != nil {
			return Result{}, NewToolError(ErrInvalidParams, err.Error())
		}
		searchRoot = resolved
	}

	ignore := loadGitIgnore(searchRoot)

	var matches []string
	err := filepath.WalkDir(searchRoot, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == searchRoot {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.Match(path, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if ignore != nil && ignore.Match(path, false) {
			return nil
		}

		rel, err := filepath.Rel(searchRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		ok, err := doublestar.Match(a.Pattern, rel)
		if err != nil {
			return fmt.Errorf("bad pattern: %w", err)
		}
		if ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "glob %q: %v", a.Pattern, err)
	}

	sort.Strings(matches)
	truncated := false
	if len(matches) > globDefaultMaxResults {
		matches = matches[:globDefaultMaxResults]
		truncated = true
	}

	if len(matches) == 0 {
		return Result{Title: "glob", Output: "No files matched."}, nil
	}

	output := strings.Join(matches, "\n")
	if truncated {
		output += fmt.Sprintf("\n[Results truncated at %d files]", globDefaultMaxResults)
	}

	return Result{
		Title:  "glob",
		Output: output,
		Metadata: map[string]any{
			"count":     len(matches),
			"truncated": truncated,
		},
	}, nil
}
