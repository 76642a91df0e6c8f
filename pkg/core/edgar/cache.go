package edgar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FilingCache provides file-based caching for fetched filing HTML.
// Entries older than the TTL are treated as misses. A TTL of zero or
// less disables expiry.
type FilingCache struct {
	cacheDir string
	ttl      time.Duration
}

// NewFilingCache creates a cache rooted at dir.
func NewFilingCache(dir string, ttl time.Duration) *FilingCache {
	os.MkdirAll(dir, 0755)
	return &FilingCache{cacheDir: dir, ttl: ttl}
}

// cacheKey generates a unique key for a filing
func (c *FilingCache) cacheKey(cik, accession string) string {
	// Normalize accession number (remove dashes)
	accession = strings.ReplaceAll(accession, "-", "")
	return fmt.Sprintf("%s_%s", cik, accession)
}

// filePath returns the file path for a cache entry
func (c *FilingCache) filePath(key string) string {
	return filepath.Join(c.cacheDir, key+".html")
}

// Get retrieves cached filing HTML.
// Returns empty string if not cached or expired.
func (c *FilingCache) Get(cik, accession string) string {
	path := c.filePath(c.cacheKey(cik, accession))

	if c.ttl > 0 {
		info, err := os.Stat(path)
		if err != nil || time.Since(info.ModTime()) > c.ttl {
			return ""
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// Set stores filing HTML in the cache
func (c *FilingCache) Set(cik, accession, html string) error {
	path := c.filePath(c.cacheKey(cik, accession))
	return os.WriteFile(path, []byte(html), 0644)
}

// Dir returns the cache directory path
func (c *FilingCache) Dir() string {
	return c.cacheDir
}
