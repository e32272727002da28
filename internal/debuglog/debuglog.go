// Package debuglog writes redacted, rotated debug logs of model traffic
// for offline troubleshooting. It never writes secrets to disk: every
// line is scanned for API-key-shaped substrings before being written.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ok-agent/ok/internal/config"
)

// secretPattern matches API-key-shaped tokens ("sk-" followed by at
// least 8 alphanumeric/underscore/hyphen characters) so they can be
// redacted before a line reaches disk.
var secretPattern = regexp.MustCompile(`sk-[A-Za-z0-9_-]{8,}`)

// Redact replaces any API-key-shaped substring in s with a fixed marker.
func Redact(s string) string {
	return secretPattern.ReplaceAllString(s, "sk-***REDACTED***")
}

// Logger appends redacted, newline-delimited entries to a rotated log
// file. It is safe for concurrent use.
type Logger struct {
	mu       sync.Mutex
	path     string
	rotation config.DebugLogRotation
	keep     int
	file     *os.File
}

// Open resolves the log path (expanding "~" and applying the default
// under the data directory when unset) and opens it for appending,
// rotating stale files first according to cfg.Rotation.
func Open(cfg config.DebugLogConfig) (*Logger, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	path, err := resolvePath(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve debug log path: %w", err)
	}

	rotation := cfg.Rotation
	if rotation == "" {
		rotation = config.DebugLogRotationDaily
	}
	keep := cfg.Keep
	if keep <= 0 {
		keep = defaultKeep(rotation)
	}

	l := &Logger{path: path, rotation: rotation, keep: keep}
	if err := l.rotate(); err != nil {
		return nil, err
	}
	return l, nil
}

func defaultKeep(rotation config.DebugLogRotation) int {
	switch rotation {
	case config.DebugLogRotationDaily:
		return 7
	case config.DebugLogRotationSession:
		return 20
	default:
		return 1
	}
}

func resolvePath(configured string) (string, error) {
	if configured == "" {
		dir, err := config.GetDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "ok-debug.log"), nil
	}
	if strings.HasPrefix(configured, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, configured[2:]), nil
	}
	return configured, nil
}

// rotate opens the file for the current rotation policy, deleting the
// oldest siblings beyond the retention count.
func (l *Logger) rotate() error {
	target := l.path
	base := filepath.Base(l.path)
	dir := filepath.Dir(l.path)

	switch l.rotation {
	case config.DebugLogRotationDaily:
		target = filepath.Join(dir, fmt.Sprintf("%s.%s", base, time.Now().Format("2006-01-02")))
	case config.DebugLogRotationSession:
		target = filepath.Join(dir, fmt.Sprintf("%s.session-%s", base, time.Now().Format("20060102-150405")))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	l.file = f

	if l.rotation != config.DebugLogRotationNone {
		cleanup(dir, base, l.keep)
	}
	return nil
}

// cleanup deletes rotated siblings of base beyond the keep count,
// newest first by lexicographic filename order (rotation suffixes are
// zero-padded dates/timestamps, so this sorts chronologically too).
func cleanup(dir, base string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var matches []string
	prefix := base + "."
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			matches = append(matches, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for _, name := range matches[minInt(keep, len(matches)):] {
		os.Remove(filepath.Join(dir, name))
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Write appends a redacted line to the log, prefixed with a timestamp.
func (l *Logger) Write(line string) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.RFC3339), Redact(line))
	_, err := l.file.WriteString(entry)
	return err
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
