package cache

import (
	"fmt"
	"os"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PayloadCache keeps the bytes of recently loaded local files in memory.
// Entries are keyed by path, size and modification time, so an edited file
// is read again on its next use.
type PayloadCache struct {
	entries *lru.Cache[string, []byte]
	hits    int64 // atomic
	misses  int64 // atomic
}

// NewPayloadCache creates a cache holding at most size payloads
func NewPayloadCache(size int) (*PayloadCache, error) {
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create payload cache: %w", err)
	}
	return &PayloadCache{entries: entries}, nil
}

func payloadKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

// Load returns the contents of path, from memory when the file is unchanged.
// The returned slice is shared and must not be modified.
func (c *PayloadCache) Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	key := payloadKey(path, info)
	if data, ok := c.entries.Get(key); ok {
		atomic.AddInt64(&c.hits, 1)
		return data, nil
	}
	atomic.AddInt64(&c.misses, 1)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c.entries.Add(key, data)
	return data, nil
}

// Resize changes the capacity, evicting the oldest payloads if needed
func (c *PayloadCache) Resize(size int) {
	if size > 0 {
		c.entries.Resize(size)
	}
}

// Stats returns cache statistics
func (c *PayloadCache) Stats() (entries int, hits int64, misses int64) {
	return c.entries.Len(), atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Clear removes all cached payloads
func (c *PayloadCache) Clear() {
	c.entries.Purge()
}
