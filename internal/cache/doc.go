// Package cache implements the two local file stores backing repeated runs.
//
// # Resolution Cache
//
// [ResolutionCache] is the durable resolution memory: a single JSON file
// mapping song fingerprints to adjudicated decisions (a Spotify track id or
// an explicit skip). Entries are trusted unconditionally on later runs and
// never expire; correcting one means recording a new decision for the same
// fingerprint (last write wins).
//
// Every Record call rewrites the whole file with a write-to-temp-then-rename
// discipline, so an interrupted process can never leave a truncated store. A
// corrupt store degrades to an empty cache and surfaces a warning, never a
// failed run; a failed write is fatal because a resolution reported as saved
// must not be lost.
//
// # Playlist Cache
//
// [PlaylistCache] snapshots a fetched day of the program log to one JSON
// file per date, so re-runs work offline. Snapshots expire by file age and
// are overwritten wholesale on re-fetch, never merged. The two stores are
// independent and share no schema.
package cache
