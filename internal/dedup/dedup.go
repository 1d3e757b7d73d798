// Cross-run memory of listings already reported, so a crawl scheduled
// daily does not re-emit the same postings. Persisted as JSON next to the
// cache dir; entries expire after 30 days because postings recycle.

package dedup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const retention = 30 * 24 * time.Hour

type entry struct {
	Key    string    `json:"key"`
	SeenAt time.Time `json:"seen_at"`
}

// Cache remembers which job keys have been reported before. Safe for
// concurrent use.
type Cache struct {
	mu   sync.Mutex
	path string
	seen map[string]time.Time
}

// Open loads the cache file under dir, dropping expired entries. A
// missing file starts an empty cache.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	c := &Cache{
		path: filepath.Join(dir, "seen_jobs.json"),
		seen: make(map[string]time.Time),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Seen reports whether key was already recorded.
func (c *Cache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[key]
	return ok
}

// Add records keys as seen now and persists the cache.
func (c *Cache) Add(keys []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	changed := false
	for _, key := range keys {
		if _, ok := c.seen[key]; !ok {
			c.seen[key] = now
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.save()
}

// Len returns how many live entries the cache holds.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read seen cache: %w", err)
	}
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse seen cache: %w", err)
	}
	cutoff := time.Now().Add(-retention)
	for _, e := range entries {
		if e.SeenAt.After(cutoff) {
			c.seen[e.Key] = e.SeenAt
		}
	}
	return nil
}

// save writes the cache; callers hold c.mu.
func (c *Cache) save() error {
	entries := make([]entry, 0, len(c.seen))
	for key, at := range c.seen {
		entries = append(entries, entry{Key: key, SeenAt: at})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write seen cache: %w", err)
	}
	return nil
}
