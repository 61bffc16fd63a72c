package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LocalCache is the single on-disk file holding the last full player
// directory. Freshness is judged by the file's modification time.
type LocalCache struct {
	Path string
	Now  func() time.Time
}

func NewLocalCache(path string) *LocalCache {
	return &LocalCache{Path: path, Now: time.Now}
}

// Write replaces the cache file. Errors are returned, not swallowed.
func (c *LocalCache) Write(v any) error {
	return WriteJSONFile(c.Path, v)
}

// Fresh reports whether the file exists and is at most ttl old.
func (c *LocalCache) Fresh(ttl time.Duration) bool {
	fi, err := os.Stat(c.Path)
	if err != nil {
		return false
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Sub(fi.ModTime()) <= ttl
}

func (c *LocalCache) Read(out any) error {
	b, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read %s: %w", c.Path, ErrNotFound)
		}
		return fmt.Errorf("read %s: %w", c.Path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", c.Path, err)
	}
	return nil
}

// WriteJSONFile encodes v to path, creating parent directories.
func WriteJSONFile(path string, v any) error {
	body, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return WriteFile(path, body)
}

func WriteFile(path string, body []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
