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

// ResolutionsFile is the filename of the resolution store inside the cache directory.
const ResolutionsFile = "resolutions.json"

// ResolutionEntry is one adjudicated decision for a song fingerprint.
//
// Either TrackID is set or Skip is true, never both. Tier records the match
// tier at the time the decision was saved, for display only.
type ResolutionEntry struct {
	TrackID    string    `json:"track_id,omitempty"`
	Skip       bool      `json:"skip,omitempty"`
	Tier       string    `json:"tier,omitempty"`
	Note       string    `json:"note,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// TrackResolution builds an entry binding a fingerprint to a catalog track.
func TrackResolution(trackID string, tier models.MatchTier) ResolutionEntry {
	return ResolutionEntry{TrackID: trackID, Tier: tier.String()}
}

// SkipResolution builds an explicit "never match this song" entry.
func SkipResolution() ResolutionEntry {
	return ResolutionEntry{Skip: true}
}

// ResolutionCache is a persistent fingerprint → decision store backed by a
// single JSON file.
//
// Single-writer, single-reader per process. Load once at startup; Record is
// durable before it returns.
type ResolutionCache struct {
	path    string
	entries map[string]ResolutionEntry
}

// NewResolutionCache creates a cache backed by the file at path. Call
// [ResolutionCache.Load] before the first Lookup.
func NewResolutionCache(path string) *ResolutionCache {
	return &ResolutionCache{
		path:    path,
		entries: map[string]ResolutionEntry{},
	}
}

// Path returns the backing file path.
func (c *ResolutionCache) Path() string {
	return c.path
}

// Load reads the whole store into memory.
//
// A missing file yields an empty cache and no error. A malformed file also
// yields an empty cache but returns an error wrapping [shared.ErrCacheCorrupt]
// so the caller can log a warning; the run itself must continue.
func (c *ResolutionCache) Load() error {
	c.entries = map[string]ResolutionEntry{}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", shared.ErrCacheCorrupt, c.path, err)
	}

	var entries map[string]ResolutionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", shared.ErrCacheCorrupt, c.path, err)
	}

	c.entries = entries
	if c.entries == nil {
		c.entries = map[string]ResolutionEntry{}
	}
	return nil
}

// Save writes the whole store back to disk atomically.
//
// The file is written to a temp file in the same directory and renamed into
// place, so an interrupt mid-write never truncates the store.
func (c *ResolutionCache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", shared.ErrCacheWrite, c.path, err)
	}

	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrCacheWrite, c.path, err)
	}
	return nil
}

// Lookup returns the stored decision for a fingerprint. Pure read.
func (c *ResolutionCache) Lookup(fingerprint string) (ResolutionEntry, bool) {
	entry, ok := c.entries[fingerprint]
	return entry, ok
}

// Record stores a decision for a fingerprint, overwriting any prior entry,
// and flushes the store before returning. A nil return means the decision is
// durable on disk.
func (c *ResolutionCache) Record(fingerprint string, entry ResolutionEntry) error {
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now().UTC()
	}
	prior, hadPrior := c.entries[fingerprint]
	c.entries[fingerprint] = entry

	if err := c.Save(); err != nil {
		// Roll back the in-memory state so a retried Save cannot silently
		// persist a decision the caller was told failed.
		if hadPrior {
			c.entries[fingerprint] = prior
		} else {
			delete(c.entries, fingerprint)
		}
		return err
	}
	return nil
}

// Remove deletes the decision for a fingerprint. Reports whether an entry
// existed.
func (c *ResolutionCache) Remove(fingerprint string) (bool, error) {
	if _, ok := c.entries[fingerprint]; !ok {
		return false, nil
	}
	delete(c.entries, fingerprint)
	return true, c.Save()
}

// Clear deletes every stored decision and returns how many were removed.
func (c *ResolutionCache) Clear() (int, error) {
	count := len(c.entries)
	c.entries = map[string]ResolutionEntry{}
	return count, c.Save()
}

// Len returns the number of stored decisions.
func (c *ResolutionCache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the store for listing.
func (c *ResolutionCache) Entries() map[string]ResolutionEntry {
	out := make(map[string]ResolutionEntry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
