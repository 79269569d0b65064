// Package matcher implements the resolution engine that turns an ambiguous
// (artist, title, album, duration) tuple into a confident Spotify track
// decision.
//
// The algorithm runs in strict order, short-circuiting on the first decisive
// tier:
//
//  1. Resolution cache: a stored decision for the song's fingerprint is
//     trusted unconditionally, skipping search entirely. Stale bindings never
//     expire; that is intentional, not a bug.
//  2. Exact search with the album, keeping only candidates whose normalized
//     album equals the song's.
//  3. Album-fallback search without the album, only when step 2 found
//     nothing.
//  4. Duration filter: candidates within ±10 s of the song's duration win
//     out, when the duration is known.
//  5. Popularity tie-break, with search-result order deciding residual ties
//     deterministically; only a popularity tie across an unfiltered
//     candidate set is surfaced as ambiguous for human review.
//
// The matcher never writes to the resolution cache; persisting a decision is
// the caller's job, which keeps Resolve a pure function of the song, the
// search response, and the cache snapshot.
package matcher

import (
	"context"
	"fmt"

	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

// DurationToleranceMS is the accepted deviation between the program log's
// duration and a candidate's, in milliseconds.
const DurationToleranceMS = 10_000

// Searcher is the read-only catalog search capability. An empty album means
// search without an album constraint. Candidate order must be deterministic
// for a fixed upstream state; it feeds the tie-break.
type Searcher interface {
	Search(ctx context.Context, artist, title, album string) ([]models.SpotifyTrack, error)
}

// ResolutionSource is the read side of the resolution cache.
// [*cache.ResolutionCache] satisfies it.
type ResolutionSource interface {
	Lookup(fingerprint string) (cache.ResolutionEntry, bool)
}

// Matcher resolves program-log songs against the Spotify catalog.
type Matcher struct {
	search      Searcher
	resolutions ResolutionSource
}

// New creates a Matcher. The resolution source may be nil, in which case
// every song goes to search.
func New(search Searcher, resolutions ResolutionSource) *Matcher {
	return &Matcher{search: search, resolutions: resolutions}
}

// Resolve matches a single song to at most one Spotify track.
//
// A search failure is returned as an error wrapping
// [shared.ErrSearchUnavailable] together with a TierNone match; the caller
// decides whether to keep processing the rest of the playlist (it should).
func (m *Matcher) Resolve(ctx context.Context, song models.Song) (models.Match, error) {
	if match, ok := m.fromCache(song); ok {
		return match, nil
	}

	active, tier, err := m.findCandidates(ctx, song)
	if err != nil {
		return models.Match{Song: song, Tier: models.TierNone, Err: err}, err
	}
	if len(active) == 0 {
		return models.Match{Song: song, Tier: models.TierNone}, nil
	}

	considered := active
	active, filtered := filterDuration(active, song)
	winner, tied := pickByPopularity(active)

	if len(tied) > 1 && !filtered {
		// A popularity tie across a set the duration filter never narrowed
		// has no deterministic winner; hand it to the user.
		return models.Match{
			Song:         song,
			Tier:         models.TierAmbiguous,
			Alternatives: tied,
		}, nil
	}

	// Alternatives come from the pre-filter set so manual review still sees
	// candidates the duration window dropped.
	return models.Match{
		Song:         song,
		Track:        &winner,
		Tier:         tier,
		Alternatives: rejected(considered, winner),
	}, nil
}

// fromCache synthesizes a match from a stored resolution, bypassing search.
func (m *Matcher) fromCache(song models.Song) (models.Match, bool) {
	if m.resolutions == nil {
		return models.Match{}, false
	}

	entry, ok := m.resolutions.Lookup(song.Fingerprint())
	if !ok {
		return models.Match{}, false
	}

	if entry.Skip {
		return models.Match{Song: song, Tier: models.TierNone}, true
	}

	// Only the id survives in the store; fill the rest from the song so the
	// display stays meaningful.
	track := &models.SpotifyTrack{
		ID:         entry.TrackID,
		URI:        "spotify:track:" + entry.TrackID,
		Title:      song.Title,
		Artist:     song.Artist,
		Album:      song.Album,
		DurationMS: song.DurationMS,
	}
	return models.Match{Song: song, Track: track, Tier: models.TierExact}, true
}

// findCandidates runs the exact and album-fallback searches and returns the
// active candidate set with the tier it came from.
func (m *Matcher) findCandidates(ctx context.Context, song models.Song) ([]models.SpotifyTrack, models.MatchTier, error) {
	if song.Album != "" {
		candidates, err := m.search.Search(ctx, song.Artist, song.Title, song.Album)
		if err != nil {
			return nil, models.TierNone, fmt.Errorf("%w: %s - %s: %v", shared.ErrSearchUnavailable, song.Artist, song.Title, err)
		}

		exact := filterAlbum(candidates, song.Album)
		if len(exact) > 0 {
			return exact, models.TierExact, nil
		}
	}

	candidates, err := m.search.Search(ctx, song.Artist, song.Title, "")
	if err != nil {
		return nil, models.TierNone, fmt.Errorf("%w: %s - %s: %v", shared.ErrSearchUnavailable, song.Artist, song.Title, err)
	}
	return candidates, models.TierAlbumFallback, nil
}

// filterAlbum keeps candidates whose normalized album equals the song's.
func filterAlbum(candidates []models.SpotifyTrack, album string) []models.SpotifyTrack {
	want := models.Normalize(album)
	var kept []models.SpotifyTrack
	for _, c := range candidates {
		if models.Normalize(c.Album) == want {
			kept = append(kept, c)
		}
	}
	return kept
}

// filterDuration narrows candidates to those within tolerance of the song's
// duration. Reports whether the filter actually narrowed the set to a single
// duration class: false when the duration is unknown or no candidate fell
// inside the window.
func filterDuration(candidates []models.SpotifyTrack, song models.Song) ([]models.SpotifyTrack, bool) {
	if !song.HasDuration() {
		return candidates, false
	}

	var within []models.SpotifyTrack
	for _, c := range candidates {
		diff := song.DurationMS - c.DurationMS
		if diff < 0 {
			diff = -diff
		}
		if diff <= DurationToleranceMS {
			within = append(within, c)
		}
	}

	if len(within) == 0 {
		return candidates, false
	}
	return within, true
}

// pickByPopularity returns the first candidate with the highest popularity
// and the full set sharing that popularity, both in search order.
func pickByPopularity(candidates []models.SpotifyTrack) (models.SpotifyTrack, []models.SpotifyTrack) {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Popularity > best.Popularity {
			best = c
		}
	}

	var tied []models.SpotifyTrack
	for _, c := range candidates {
		if c.Popularity == best.Popularity {
			tied = append(tied, c)
		}
	}
	return best, tied
}

// rejected returns every candidate except the winner, in search order.
func rejected(candidates []models.SpotifyTrack, winner models.SpotifyTrack) []models.SpotifyTrack {
	var rest []models.SpotifyTrack
	for _, c := range candidates {
		if c.ID != winner.ID {
			rest = append(rest, c)
		}
	}
	return rest
}
