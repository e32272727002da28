package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/monochromegane/go-gitignore"
)

const grepDefaultMaxResults = 100

// GrepTool implements the grep tool: regex search over a directory tree.
type GrepTool struct{}

func NewGrepTool() *GrepTool { return &GrepTool{} }

func (t *GrepTool) ID() string          { return "grep" }
func (t *GrepTool) Description() string { return "Search file contents with a regular expression (RE2 syntax)." }

func (t *GrepTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern":          map[string]any{"type": "string", "description": "RE2 regular expression"},
			"path":             map[string]any{"type": "string", "description": "File or directory to search (defaults to working_dir)"},
			"case_sensitive":   map[string]any{"type": "boolean", "description": "Defaults to true"},
			"include_patterns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Glob patterns to include, e.g. *.go"},
			"exclude_patterns": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Glob patterns to exclude"},
			"max_results":      map[string]any{"type": "integer", "description": "Default 100"},
		},
		"required":             []any{"pattern"},
		"additionalProperties": false,
	}
}

type grepArgs struct {
	Pattern         string   `json:"pattern"`
	Path            string   `json:"path"`
	CaseSensitive   *bool    `json:"case_sensitive"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`
	MaxResults      int      `json:"max_results"`
}

type grepMatch struct {
	FilePath   string
	LineNumber int
	Line       string
}

func (t *GrepTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a grepArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}

	pattern := a.Pattern
	if a.CaseSensitive != nil && !*a.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid regex pattern: %v", err)
	}

	searchRoot := ctx.WorkingDir
	if a.Path != "" {
		resolved, err := ctx.ResolvePath(a.Path)
		if err != nil {
			return Result{}, NewToolError(ErrInvalidParams, err.Error())
		}
		searchRoot = resolved
	}

	maxResults := a.MaxResults
	if maxResults <= 0 {
		maxResults = grepDefaultMaxResults
	}

	files, err := walkMatchingFiles(searchRoot, a.IncludePatterns, a.ExcludePatterns)
	if err != nil {
		return Result{}, NewToolErrorf(ErrExecutionFailed, "walk %s: %v", searchRoot, err)
	}
	sort.Strings(files)

	var matches []grepMatch
	for _, file := range files {
		if len(matches) >= maxResults {
			break
		}
		fileMatches, err := grepFile(file, re, maxResults-len(matches))
		if err != nil {
			continue
		}
		matches = append(matches, fileMatches...)
	}

	if len(matches) == 0 {
		return Result{Title: "grep", Output: "No matches found."}, nil
	}

	var sb strings.Builder
	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("%s:%d:%s\n", m.FilePath, m.LineNumber, m.Line))
	}
	truncated := len(matches) >= maxResults
	output := strings.TrimSuffix(sb.String(), "\n")
	if truncated {
		output += "\n[Results truncated at limit]"
	}

	return Result{
		Title:  "grep",
		Output: output,
		Metadata: map[string]any{
			"count":     len(matches),
			"truncated": truncated,
		},
	}, nil
}

// walkMatchingFiles applies include_patterns (whitelist) and
// exclude_patterns (negated) against each file's path relative to root
// (so patterns like "gen/**" can match), honors the root .gitignore,
// and excludes dotfiles/dot-directories.
func walkMatchingFiles(root string, include, exclude []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	ignore := loadGitIgnore(root)

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if path == root {
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

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if len(include) > 0 && !matchesAny(include, rel) {
			return nil
		}
		if matchesAny(exclude, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// loadGitIgnore parses root's top-level .gitignore, if present, so walks
// skip whatever the repository itself ignores. A missing or unreadable
// file simply disables ignore-matching.
func loadGitIgnore(root string) *gitignore.GitIgnore {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.NewGitIgnoreFromReader(root, f)
}

func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func grepFile(path string, re *regexp.Regexp, maxMatches int) ([]grepMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	for _, b := range head[:n] {
		if b == 0 {
			return nil, fmt.Errorf("binary file")
		}
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	var matches []grepMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if re.MatchString(line) {
			matches = append(matches, grepMatch{FilePath: path, LineNumber: lineNum, Line: line})
			if len(matches) >= maxMatches {
				break
			}
		}
	}
	return matches, nil
}
