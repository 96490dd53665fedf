package swift

import (
	"crypto/sha256"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of scanned files kept in memory.
const DefaultCacheSize = 512

// Source is a scanned file: its path, raw content and outline.
type Source struct {
	Path    string
	Content string
	Unit    *Unit
}

type cacheEntry struct {
	sum    [sha256.Size]byte
	source *Source
}

// Cache memoises Scan results by path. An entry is reused only while the
// file content hashes the same, so edits between passes are picked up.
type Cache struct {
	entries *lru.Cache[string, cacheEntry]
}

// NewCache returns a cache holding at most size files. size <= 0 selects
// DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating scan cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Load reads and scans path.
func (c *Cache) Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c.Parse(path, data), nil
}

// Parse scans data for path, reusing a previous result when the content is
// unchanged.
func (c *Cache) Parse(path string, data []byte) *Source {
	sum := sha256.Sum256(data)
	if e, ok := c.entries.Get(path); ok && e.sum == sum {
		return e.source
	}

	content := string(data)
	src := &Source{Path: path, Content: content, Unit: Scan(content)}
	c.entries.Add(path, cacheEntry{sum: sum, source: src})
	return src
}

// Len returns the number of cached files.
func (c *Cache) Len() int { return c.entries.Len() }
