// package models defines the data model for the KUTX playlist resolver
package models

import (
	"fmt"
	"time"
)

// Song is a single play from the KUTX program log.
//
// Air order is semantically meaningful: a PlaylistSnapshot preserves the
// broadcast sequence exactly as fetched.
type Song struct {
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album,omitempty"`
	DurationMS int       `json:"duration_ms,omitempty"`
	PlayedAt   time.Time `json:"played_at"`
}

// Fingerprint returns the normalized (artist, title, album) cache key for
// this song. Two songs with equal fingerprints are the same song for
// resolution purposes even when their durations differ.
func (s Song) Fingerprint() string {
	return Fingerprint(s.Artist, s.Title, s.Album)
}

// HasDuration reports whether the program log supplied a duration for this play.
func (s Song) HasDuration() bool {
	return s.DurationMS > 0
}

// DurationSeconds returns the song duration in whole seconds.
func (s Song) DurationSeconds() int {
	return s.DurationMS / 1000
}

// DurationDisplay returns a human-readable M:SS duration.
func (s Song) DurationDisplay() string {
	secs := s.DurationSeconds()
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// SpotifyTrack is a candidate track from the Spotify catalog.
// Immutable once fetched.
type SpotifyTrack struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMS int    `json:"duration_ms"`
	Popularity int    `json:"popularity"`
}

// DurationSeconds returns the track duration in whole seconds.
func (t SpotifyTrack) DurationSeconds() int {
	return t.DurationMS / 1000
}

// URL returns the public open.spotify.com link for the track.
func (t SpotifyTrack) URL() string {
	return "https://open.spotify.com/track/" + t.ID
}

// MatchTier classifies the confidence of a match decision.
type MatchTier int

const (
	// TierNone means no catalog track was chosen.
	TierNone MatchTier = iota
	// TierExact means the candidate's album matched the song's album, or the
	// decision came from the resolution cache.
	TierExact
	// TierAlbumFallback means the candidate was found without an album
	// constraint after the exact search came up empty.
	TierAlbumFallback
	// TierAmbiguous means multiple candidates tied on every criterion and a
	// human has to pick one.
	TierAmbiguous
)

func (t MatchTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierAlbumFallback:
		return "album_fallback"
	case TierAmbiguous:
		return "ambiguous"
	case TierNone:
		return "none"
	default:
		return "unknown"
	}
}

// Match links a source Song to at most one chosen SpotifyTrack.
//
// A Match with TierNone carries no track. Alternatives holds the rejected or
// tied candidates in search order, for manual-resolution display.
type Match struct {
	Song         Song
	Track        *SpotifyTrack
	Tier         MatchTier
	Alternatives []SpotifyTrack
	Err          error
}

// Pending reports whether this match still needs a human decision.
func (m Match) Pending() bool {
	return m.Tier == TierAmbiguous || m.Tier == TierNone
}

// MatchList aggregates the matches for one run, in broadcast order.
type MatchList struct {
	Matches []Match
}

// Add appends a match to the list.
func (l *MatchList) Add(m Match) {
	l.Matches = append(l.Matches, m)
}

// Total returns the number of songs processed.
func (l *MatchList) Total() int {
	return len(l.Matches)
}

// Found returns the number of songs with a chosen track.
func (l *MatchList) Found() int {
	n := 0
	for _, m := range l.Matches {
		if m.Track != nil {
			n++
		}
	}
	return n
}

// NotFound returns the number of songs without a chosen track.
func (l *MatchList) NotFound() int {
	return len(l.Matches) - l.Found()
}

// ExactCount returns the number of exact-tier matches.
func (l *MatchList) ExactCount() int {
	n := 0
	for _, m := range l.Matches {
		if m.Tier == TierExact {
			n++
		}
	}
	return n
}

// Pending returns the matches awaiting manual resolution.
func (l *MatchList) Pending() []Match {
	var pending []Match
	for _, m := range l.Matches {
		if m.Pending() {
			pending = append(pending, m)
		}
	}
	return pending
}

// TrackURIs returns the Spotify URIs of all chosen tracks, in broadcast order.
func (l *MatchList) TrackURIs() []string {
	var uris []string
	for _, m := range l.Matches {
		if m.Track != nil {
			uris = append(uris, m.Track.URI)
		}
	}
	return uris
}

// PlaylistSnapshot is the fetched program log for one broadcast date.
//
// One snapshot exists per date; a re-fetch overwrites it, never merges.
type PlaylistSnapshot struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Songs []Song `json:"songs"`
}
