package artwork

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DiskCache is a content-addressed on-disk artwork store. One PNG file per
// cache key, written once and never expired; a key is assumed immutable once
// populated. Unbounded growth is an accepted limitation.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the cache directory if needed and returns the store.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artwork cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Get returns the cached artwork for key, or nil on a miss. A file that
// exists but no longer decodes is treated as a miss; the next Put silently
// overwrites it.
func (c *DiskCache) Get(key string) *Artwork {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	art, err := Decode(data)
	if err != nil {
		log.Debug().Str("path", path).Err(err).Msg("Cached artwork file undecodable, treating as miss")
		return nil
	}

	// Keep the bytes as stored; Decode re-encodes but the file is already PNG.
	art.Data = data

	log.Debug().Str("key", key).Int("size", len(data)).Msg("Disk cache hit")
	return art
}

// Put writes PNG-encoded artwork for key. Write failures are logged and
// swallowed; artwork is a best-effort enhancement, never a blocking
// requirement.
func (c *DiskCache) Put(key string, art *Artwork) {
	if art == nil || len(art.Data) == 0 {
		return
	}

	path := c.path(key)
	if err := os.WriteFile(path, art.Data, 0644); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("Failed to write artwork file")
		return
	}

	log.Debug().Str("key", key).Str("path", path).Int("size", len(art.Data)).Msg("Cached artwork on disk")
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, Filename(key))
}
