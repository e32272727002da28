// Package store persists the agent's per-session artifacts as one JSON
// file per key: todo lists keyed by session id, and sub-agent session
// snapshots keyed by agent id. There is no shared database and no
// cross-file transaction; every write is a whole-file rewrite.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ok-agent/ok/internal/config"
)

// writeJSONFile writes v as pretty-printed JSON to path, first writing to
// a temporary sibling file and renaming it into place so a crash mid-write
// never leaves a truncated file behind.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

func removeFile(path string) error {
	return os.Remove(path)
}

// sanitizeKey rejects path separators so a key can never escape the
// store directory it's joined against.
func sanitizeKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: empty key")
	}
	if key != filepath.Base(key) {
		return fmt.Errorf("store: invalid key %q", key)
	}
	return nil
}

// baseDir returns <user-config-dir>/ok/<sub>.
func baseDir(sub string) (string, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, sub), nil
}

func listJSONKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		const ext = ".json"
		if filepath.Ext(name) == ext {
			keys = append(keys, name[:len(name)-len(ext)])
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clock is injected so callers can stamp deterministic times; production
// code passes time.Now.
type Clock func() time.Time
