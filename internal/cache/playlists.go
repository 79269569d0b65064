package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

// DefaultPlaylistTTL is how long a cached program-log snapshot stays fresh.
const DefaultPlaylistTTL = 24 * time.Hour

// PlaylistCache stores one program-log snapshot per broadcast date as a JSON
// file named YYYY-MM-DD.json under its directory.
type PlaylistCache struct {
	dir string
	ttl time.Duration
}

// NewPlaylistCache creates a snapshot store rooted at dir. A ttl of zero
// falls back to [DefaultPlaylistTTL]; a negative ttl disables expiry.
func NewPlaylistCache(dir string, ttl time.Duration) *PlaylistCache {
	if ttl == 0 {
		ttl = DefaultPlaylistTTL
	}
	return &PlaylistCache{dir: dir, ttl: ttl}
}

// Dir returns the snapshot directory.
func (c *PlaylistCache) Dir() string {
	return c.dir
}

func (c *PlaylistCache) snapshotPath(date string) (string, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("%w: invalid date %q: expected YYYY-MM-DD", shared.ErrInvalidArgument, date)
	}
	return filepath.Join(c.dir, date+".json"), nil
}

// Get returns the cached snapshot for a date, or nil when absent, expired,
// or unreadable. Corrupt snapshot files surface an error wrapping
// [shared.ErrCacheCorrupt] alongside the nil snapshot.
func (c *PlaylistCache) Get(date string) (*models.PlaylistSnapshot, error) {
	path, err := c.snapshotPath(date)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", shared.ErrCacheCorrupt, path, err)
	}

	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", shared.ErrCacheCorrupt, path, err)
	}

	var snapshot models.PlaylistSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", shared.ErrCacheCorrupt, path, err)
	}
	return &snapshot, nil
}

// Put stores a snapshot for a date, overwriting any existing one
// unconditionally.
func (c *PlaylistCache) Put(date string, snapshot *models.PlaylistSnapshot) error {
	path, err := c.snapshotPath(date)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding snapshot for %s: %v", shared.ErrCacheWrite, date, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrCacheWrite, path, err)
	}
	return nil
}

// Clear removes the snapshot for a date. Reports whether one existed.
func (c *PlaylistCache) Clear(date string) (bool, error) {
	path, err := c.snapshotPath(date)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove snapshot %s: %w", path, err)
	}
	return true, nil
}

// ClearAll removes every cached snapshot and returns how many were deleted.
func (c *PlaylistCache) ClearAll() (int, error) {
	paths, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			return count, fmt.Errorf("failed to remove snapshot %s: %w", path, err)
		}
		count++
	}
	return count, nil
}
