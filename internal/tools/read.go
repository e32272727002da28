package tools

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	readMaxLineChars = 2000
	readMaxBytes     = 50 * 1024
)

// ReadTool implements the read tool.
type ReadTool struct{}

func NewReadTool() *ReadTool { return &ReadTool{} }

func (t *ReadTool) ID() string          { return "read" }
func (t *ReadTool) Description() string { return "Read a file's contents with line numbers." }

func (t *ReadTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{"type": "string", "description": "Path to the file to read"},
			"offset":    map[string]any{"type": "integer", "description": "1-indexed line to start from (default: 1)"},
			"limit":     map[string]any{"type": "integer", "description": "Maximum number of lines to return"},
		},
		"required":             []any{"file_path"},
		"additionalProperties": false,
	}
}

type readArgs struct {
	FilePath string `json:"file_path"`
	Offset   int    `json:"offset"`
	Limit    int    `json:"limit"`
}

func (t *ReadTool) Execute(ctx *ToolContext, input json.RawMessage) (Result, *ToolError) {
	var a readArgs
	if err := json.Unmarshal(input, &a); err != nil {
		return Result{}, NewToolErrorf(ErrInvalidParams, "invalid arguments: %v", err)
	}

	path, err := ctx.ResolvePath(a.FilePath)
	if err != nil {
		return Result{}, NewToolError(ErrInvalidParams, err.Error())
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return Result{}, NewToolError(ErrNotFound, path)
		}
		return Result{}, NewToolErrorf(ErrExecutionFailed, "read error: %v", readErr)
	}

	if looksBinary(data, path) {
		return Result{}, NewToolErrorf(ErrBinaryFile, "%s appears to be a binary file", path)
	}

	lines := strings.Split(string(data), "\n")
	total := len(lines)

	start := 0
	if a.Offset > 1 {
		start = a.Offset - 1
	}
	if start > total {
		start = total
	}
	end := total
	if a.Limit > 0 && start+a.Limit < end {
		end = start + a.Limit
	}

	var outputLines []string
	truncatedLines := false
	bytesCount := 0
	truncatedByBytes := false
	for i := start; i < end; i++ {
		line := lines[i]
		if len(line) > readMaxLineChars {
			line = line[:readMaxLineChars] + " …[line truncated]"
			truncatedLines = true
		}
		formatted := fmt.Sprintf("%5d→%s", i+1, line)
		lineBytes := len(formatted) + 1 // +1 for the newline joining it
		if bytesCount+lineBytes > readMaxBytes {
			truncatedByBytes = true
			break
		}
		outputLines = append(outputLines, formatted)
		bytesCount += lineBytes
	}

	lastLine := start + len(outputLines)

	var sb strings.Builder
	sb.WriteString(strings.Join(outputLines, "\n"))
	sb.WriteString("\n\n")
	switch {
	case truncatedByBytes:
		sb.WriteString(fmt.Sprintf("(Output truncated at %d bytes. Use offset=%d to read beyond line %d)", readMaxBytes, lastLine, lastLine))
	case lastLine < total:
		sb.WriteString(fmt.Sprintf("(File has more lines. Use offset=%d to read beyond line %d)", lastLine, lastLine))
	default:
		sb.WriteString(fmt.Sprintf("(End of file - %d lines total)", total))
	}

	return Result{
		Title:  "read",
		Output: sb.String(),
		Metadata: map[string]any{
			"total_lines": total,
			"lines_read":  len(outputLines),
			"truncated":   truncatedLines || truncatedByBytes || lastLine < total,
		},
	}, nil
}

var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".pdf": true, ".zip": true, ".tar": true, ".gz": true,
	".exe": true, ".dll": true, ".so": true, ".bin": true, ".woff": true, ".woff2": true,
}

// looksBinary follows the spec's simple rule: a known binary extension,
// or a null byte in the first 4 KB.
func looksBinary(data []byte, path string) bool {
	for ext := range binaryExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	for _, b := range sample {
		if b == 0 {
			return true
		}
	}
	return false
}
