// package tasks implements the daily playlist build pipeline.
//
// The core abstraction is Engine, which orchestrates fetching a day's KUTX
// broadcast log, matching each song against the Spotify catalog, applying
// manual resolution overrides, and publishing the result as a Spotify
// playlist. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/services"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

// SongSource fetches a day's broadcast log.
type SongSource interface {
	FetchDay(ctx context.Context, date string) ([]models.Song, error)
}

// TrackResolver matches a single song against the Spotify catalog.
type TrackResolver interface {
	Resolve(ctx context.Context, song models.Song) (models.Match, error)
}

// PlaylistPublisher creates playlists and fills them with tracks.
type PlaylistPublisher interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*services.SpotifyPlaylist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) (int, error)
}

// SnapshotStore caches fetched broadcast logs by date.
type SnapshotStore interface {
	Get(date string) (*models.PlaylistSnapshot, error)
	Put(date string, snapshot *models.PlaylistSnapshot) error
}

// ResolutionStore records durable manual match decisions.
type ResolutionStore interface {
	Record(fingerprint string, entry cache.ResolutionEntry) error
}

// RunOptions controls a single pipeline run.
type RunOptions struct {
	Date        string         // Broadcast date, YYYY-MM-DD
	Start       string         // Optional window start, HH:MM
	End         string         // Optional window end, HH:MM
	Name        string         // Playlist name; defaults to "KUTX <date>"
	Description string         // Playlist description
	Public      bool           // Playlist visibility
	CachedOnly  bool           // Fail instead of fetching when no snapshot exists
	Preview     bool           // Match only, skip playlist creation
	Overrides   map[int]string // 1-based song index -> choice ("skip", alternative number, or track ID)
}

// PublishResult describes the playlist created by a run.
type PublishResult struct {
	Playlist *services.SpotifyPlaylist
	URL      string
	Added    int
}

// RunResult contains all data from a full pipeline run.
type RunResult struct {
	Date      string
	Songs     []models.Song
	Matches   *models.MatchList
	FromCache bool           // Songs came from the snapshot cache
	Published *PublishResult // nil in preview mode or when nothing matched
}

// Engine wires the song source, matcher, publisher, and caches together.
type Engine struct {
	source      SongSource
	resolver    TrackResolver
	publisher   PlaylistPublisher
	snapshots   SnapshotStore
	resolutions ResolutionStore
}

// NewEngine creates an Engine. snapshots and resolutions may be nil, which
// disables the corresponding caching behavior.
func NewEngine(source SongSource, resolver TrackResolver, publisher PlaylistPublisher, snapshots SnapshotStore, resolutions ResolutionStore) *Engine {
	return &Engine{
		source:      source,
		resolver:    resolver,
		publisher:   publisher,
		snapshots:   snapshots,
		resolutions: resolutions,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// FetchSongs returns the day's songs, preferring a cached snapshot. A fresh
// fetch overwrites the snapshot for that date. The time window, when set,
// filters the returned songs but never what is cached.
func (e *Engine) FetchSongs(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) ([]models.Song, bool, error) {
	fromCache := false
	var songs []models.Song

	if e.snapshots != nil {
		snap, err := e.snapshots.Get(opts.Date)
		if err != nil {
			// A corrupt snapshot is treated as a miss; the fetch below
			// overwrites it with a fresh one.
			if !errors.Is(err, shared.ErrCacheCorrupt) {
				return nil, false, err
			}
			e.sendProgress(progress, corruptSnapshotUpdate(opts.Date))
			snap = nil
		}
		if snap != nil {
			songs = snap.Songs
			fromCache = true
			e.sendProgress(progress, cachedSongsUpdate(opts.Date, len(songs)))
		}
	}

	if !fromCache {
		if opts.CachedOnly {
			return nil, false, fmt.Errorf("%w: no cached playlist for %s", shared.ErrNoSongs, opts.Date)
		}
		if e.source == nil {
			return nil, false, fmt.Errorf("%w: song source not configured", shared.ErrInvalidConfig)
		}

		e.sendProgress(progress, fetchingSongsUpdate(opts.Date))
		fetched, err := e.source.FetchDay(ctx, opts.Date)
		if err != nil {
			return nil, false, err
		}
		songs = fetched
		e.sendProgress(progress, songsFetchedUpdate(opts.Date, len(songs)))

		if e.snapshots != nil {
			if err := e.snapshots.Put(opts.Date, &models.PlaylistSnapshot{Date: opts.Date, Songs: songs}); err != nil {
				return nil, false, err
			}
		}
	}

	if opts.Start != "" || opts.End != "" {
		filtered, err := services.FilterByTime(songs, opts.Start, opts.End)
		if err != nil {
			return nil, false, err
		}
		songs = filtered
	}

	if len(songs) == 0 {
		return nil, fromCache, fmt.Errorf("%w: no songs for %s", shared.ErrNoSongs, opts.Date)
	}
	return songs, fromCache, nil
}

// MatchSongs resolves every song in broadcast order. A failed search marks
// that song unmatched and the loop continues; only context cancellation
// aborts the run.
func (e *Engine) MatchSongs(ctx context.Context, songs []models.Song, progress chan<- ProgressUpdate) (*models.MatchList, error) {
	if e.resolver == nil {
		return nil, fmt.Errorf("%w: resolver not configured", shared.ErrInvalidConfig)
	}

	total := len(songs)
	e.sendProgress(progress, searchTracksUpdate(0, total, nil))

	list := &models.MatchList{}
	for i, song := range songs {
		if err := ctx.Err(); err != nil {
			return list, err
		}

		e.sendProgress(progress, searchTracksUpdate(i+1, total, &song))
		match, err := e.resolver.Resolve(ctx, song)
		if err != nil && match.Err == nil {
			match = models.Match{Song: song, Tier: models.TierNone, Err: err}
		}
		list.Add(match)
		e.sendProgress(progress, matchedUpdate(i+1, total, match))
	}
	return list, nil
}

// ApplyOverrides applies manual choices to matched songs and records each
// decision in the resolution cache. Indices are 1-based positions in the
// match list. A choice is "skip", a 1-based alternative number, or a raw
// Spotify track ID.
func (e *Engine) ApplyOverrides(list *models.MatchList, overrides map[int]string) error {
	for idx, choice := range overrides {
		if idx < 1 || idx > list.Total() {
			return fmt.Errorf("%w: song index %d out of range 1-%d", shared.ErrInvalidArgument, idx, list.Total())
		}
		match := &list.Matches[idx-1]

		if strings.EqualFold(choice, "skip") {
			if err := e.record(match.Song, cache.SkipResolution()); err != nil {
				return err
			}
			match.Track = nil
			match.Tier = models.TierNone
			match.Err = nil
			continue
		}

		track, err := pickChoice(*match, choice)
		if err != nil {
			return err
		}
		if err := e.record(match.Song, cache.TrackResolution(track.ID, models.TierExact)); err != nil {
			return err
		}
		match.Track = &track
		match.Tier = models.TierExact
		match.Err = nil
	}
	return nil
}

// pickChoice resolves an override string against a match's alternatives.
func pickChoice(match models.Match, choice string) (models.SpotifyTrack, error) {
	if n, err := strconv.Atoi(choice); err == nil {
		if n < 1 || n > len(match.Alternatives) {
			return models.SpotifyTrack{}, fmt.Errorf("%w: alternative %d out of range 1-%d for %q",
				shared.ErrInvalidArgument, n, len(match.Alternatives), match.Song.Title)
		}
		return match.Alternatives[n-1], nil
	}

	for _, alt := range match.Alternatives {
		if alt.ID == choice {
			return alt, nil
		}
	}
	if match.Track != nil && match.Track.ID == choice {
		return *match.Track, nil
	}

	// Unlisted track IDs are accepted as-is; the user knows best.
	return models.SpotifyTrack{
		ID:     choice,
		URI:    "spotify:track:" + choice,
		Title:  match.Song.Title,
		Artist: match.Song.Artist,
		Album:  match.Song.Album,
	}, nil
}

func (e *Engine) record(song models.Song, entry cache.ResolutionEntry) error {
	if e.resolutions == nil {
		return nil
	}
	return e.resolutions.Record(song.Fingerprint(), entry)
}

// Publish creates the playlist and adds every chosen track in broadcast order.
func (e *Engine) Publish(ctx context.Context, list *models.MatchList, opts RunOptions, progress chan<- ProgressUpdate) (*PublishResult, error) {
	if e.publisher == nil {
		return nil, fmt.Errorf("%w: Spotify client not configured", shared.ErrNotAuthenticated)
	}

	uris := list.TrackURIs()
	if len(uris) == 0 {
		return nil, fmt.Errorf("%w: no matched tracks to publish", shared.ErrNoTracks)
	}

	name := opts.Name
	if name == "" {
		name = "KUTX " + opts.Date
	}
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Songs played on KUTX on %s", opts.Date)
	}

	e.sendProgress(progress, creatingPlaylistUpdate(name))
	playlist, err := e.publisher.CreatePlaylist(ctx, name, description, opts.Public)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, createPlaylistUpdate(playlist))

	added, err := e.publisher.AddTracks(ctx, playlist.ID, uris)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, addTracksUpdate(added, len(uris)))

	return &PublishResult{
		Playlist: playlist,
		URL:      services.PlaylistURL(playlist.ID),
		Added:    added,
	}, nil
}

// Run executes the full pipeline: fetch, match, apply overrides, publish.
// In preview mode the publish step is skipped and Published stays nil.
func (e *Engine) Run(ctx context.Context, opts RunOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	songs, fromCache, err := e.FetchSongs(ctx, opts, progress)
	if err != nil {
		return nil, err
	}

	matches, err := e.MatchSongs(ctx, songs, progress)
	if err != nil {
		return nil, err
	}

	if len(opts.Overrides) > 0 {
		if err := e.ApplyOverrides(matches, opts.Overrides); err != nil {
			return nil, err
		}
	}

	result := &RunResult{
		Date:      opts.Date,
		Songs:     songs,
		Matches:   matches,
		FromCache: fromCache,
	}

	if opts.Preview {
		return result, nil
	}

	published, err := e.Publish(ctx, matches, opts, progress)
	if err != nil {
		return result, err
	}
	result.Published = published
	return result, nil
}
