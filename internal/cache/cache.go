// Package cache tracks which source files already produced up-to-date
// output, so unchanged documents are skipped on rebuilds.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the cache file written under the output directory.
const FileName = ".orgweave-cache.json"

// Entry records what a source file looked like when it was last built.
type Entry struct {
	MTime int64  `json:"mtime"`
	Hash  string `json:"hash"`
}

// Cache maps source paths (relative to the source root) to build entries.
// Safe for concurrent use during the render phase.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]*Entry
}

// Load reads the cache from the output directory. A missing file yields an
// empty cache, not an error.
func Load(outputDir string) (*Cache, error) {
	c := &Cache{
		path:    filepath.Join(outputDir, FileName),
		entries: make(map[string]*Entry),
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to parse build cache: %w", err)
	}
	if c.entries == nil {
		c.entries = make(map[string]*Entry)
	}
	return c, nil
}

// Save writes the cache back to the output directory.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

// Changed reports whether the source file differs from its recorded entry
// or any of the expected outputs is missing. Unknown files always count as
// changed.
func (c *Cache) Changed(rel, sourcePath string, outputs ...string) bool {
	for _, out := range outputs {
		if _, err := os.Stat(out); err != nil {
			return true
		}
	}

	c.mu.Lock()
	entry, ok := c.entries[rel]
	c.mu.Unlock()
	if !ok {
		return true
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return true
	}
	if info.ModTime().Unix() == entry.MTime {
		return false
	}

	// The timestamp moved; only the content decides.
	hash, err := hashFile(sourcePath)
	if err != nil {
		return true
	}
	return hash != entry.Hash
}

// Update records the current state of a source file after a successful
// build.
func (c *Cache) Update(rel, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}
	hash, err := hashFile(sourcePath)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[rel] = &Entry{MTime: info.ModTime().Unix(), Hash: hash}
	c.mu.Unlock()
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
