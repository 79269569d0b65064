package matcher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

// scriptedSearcher returns canned candidates keyed by whether an album
// constraint was supplied, and counts calls.
type scriptedSearcher struct {
	withAlbum    []models.SpotifyTrack
	withoutAlbum []models.SpotifyTrack
	err          error
	calls        int
}

func (s *scriptedSearcher) Search(ctx context.Context, artist, title, album string) ([]models.SpotifyTrack, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if album != "" {
		return s.withAlbum, nil
	}
	return s.withoutAlbum, nil
}

func track(id, album string, durationMS, popularity int) models.SpotifyTrack {
	return models.SpotifyTrack{
		ID:         id,
		URI:        "spotify:track:" + id,
		Title:      "Come Together",
		Artist:     "The Beatles",
		Album:      album,
		DurationMS: durationMS,
		Popularity: popularity,
	}
}

func abbeyRoadSong(durationMS int) models.Song {
	return models.Song{
		Title:      "Come Together",
		Artist:     "The Beatles",
		Album:      "Abbey Road",
		DurationMS: durationMS,
	}
}

func loadedCache(t *testing.T) *cache.ResolutionCache {
	t.Helper()
	c := cache.NewResolutionCache(filepath.Join(t.TempDir(), cache.ResolutionsFile))
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestResolveCacheShortCircuit(t *testing.T) {
	song := abbeyRoadSong(259_000)

	t.Run("Stored Track Trusted Unconditionally", func(t *testing.T) {
		rc := loadedCache(t)
		if err := rc.Record(song.Fingerprint(), cache.TrackResolution("track123", models.TierExact)); err != nil {
			t.Fatalf("record: %v", err)
		}

		// The searcher would return a different, better candidate; it must
		// never be asked.
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{track("other", "Abbey Road", 259_000, 99)}}
		m := New(search, rc)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierExact {
			t.Errorf("expected exact tier, got %s", match.Tier)
		}
		if match.Track == nil || match.Track.ID != "track123" {
			t.Errorf("expected stored track123, got %+v", match.Track)
		}
		if match.Track.URI != "spotify:track:track123" {
			t.Errorf("unexpected URI %s", match.Track.URI)
		}
		if search.calls != 0 {
			t.Errorf("search must not run on a cache hit, ran %d times", search.calls)
		}
	})

	t.Run("Stored Skip Returns None", func(t *testing.T) {
		rc := loadedCache(t)
		if err := rc.Record(song.Fingerprint(), cache.SkipResolution()); err != nil {
			t.Fatalf("record: %v", err)
		}

		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{track("t1", "Abbey Road", 259_000, 80)}}
		m := New(search, rc)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierNone {
			t.Errorf("expected none tier, got %s", match.Tier)
		}
		if match.Track != nil {
			t.Error("skip must carry no track")
		}
		if search.calls != 0 {
			t.Error("search must not run for a stored skip")
		}
	})

	t.Run("Nil Resolution Source", func(t *testing.T) {
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{track("t1", "Abbey Road", 259_000, 80)}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track == nil || match.Track.ID != "t1" {
			t.Errorf("expected search to run without a cache, got %+v", match.Track)
		}
	})
}

func TestResolveExactMatch(t *testing.T) {
	song := abbeyRoadSong(259_000)

	t.Run("Single Album Match Is Exact", func(t *testing.T) {
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("right", "Abbey Road", 259_000, 60),
			track("wrong", "1967-1970", 259_000, 95),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierExact {
			t.Errorf("expected exact, got %s", match.Tier)
		}
		if match.Track.ID != "right" {
			t.Errorf("non-matching-album candidate must never be selected, got %s", match.Track.ID)
		}
	})

	t.Run("Album Comparison Is Normalized", func(t *testing.T) {
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("t1", "  abbey   road ", 259_000, 60),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierExact {
			t.Errorf("expected normalized album equality, got tier %s", match.Tier)
		}
	})

	t.Run("Alternatives Retained In Search Order", func(t *testing.T) {
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("a", "Abbey Road", 259_000, 50),
			track("b", "Abbey Road", 258_000, 90),
			track("c", "Abbey Road", 260_000, 70),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "b" {
			t.Fatalf("expected most popular candidate b, got %s", match.Track.ID)
		}
		if len(match.Alternatives) != 2 || match.Alternatives[0].ID != "a" || match.Alternatives[1].ID != "c" {
			t.Errorf("expected alternatives [a c], got %+v", match.Alternatives)
		}
	})
}

func TestResolveAlbumFallback(t *testing.T) {
	song := abbeyRoadSong(259_000)

	t.Run("Fallback Only When Exact Yields Zero", func(t *testing.T) {
		search := &scriptedSearcher{
			withAlbum:    []models.SpotifyTrack{track("wrong", "Live at the BBC", 259_000, 95)},
			withoutAlbum: []models.SpotifyTrack{track("fb", "1967-1970", 259_000, 80)},
		}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierAlbumFallback {
			t.Errorf("expected album_fallback, got %s", match.Tier)
		}
		if match.Track.ID != "fb" {
			t.Errorf("expected fallback candidate, got %s", match.Track.ID)
		}
		if search.calls != 2 {
			t.Errorf("expected two searches, got %d", search.calls)
		}
	})

	t.Run("Song Without Album Goes Straight To Fallback", func(t *testing.T) {
		noAlbum := models.Song{Title: "Come Together", Artist: "The Beatles", DurationMS: 259_000}
		search := &scriptedSearcher{withoutAlbum: []models.SpotifyTrack{track("fb", "Abbey Road", 259_000, 80)}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), noAlbum)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierAlbumFallback {
			t.Errorf("expected album_fallback, got %s", match.Tier)
		}
		if search.calls != 1 {
			t.Errorf("expected a single search, got %d", search.calls)
		}
	})

	t.Run("No Candidates Anywhere Is None", func(t *testing.T) {
		search := &scriptedSearcher{}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierNone {
			t.Errorf("expected none, got %s", match.Tier)
		}
		if match.Track != nil {
			t.Error("none tier must carry no track")
		}
	})
}

func TestResolveDurationFilter(t *testing.T) {
	t.Run("Within Window Preferred", func(t *testing.T) {
		song := abbeyRoadSong(205_000)
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("long", "Abbey Road", 260_000, 95),
			track("close", "Abbey Road", 200_000, 40),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "close" {
			t.Errorf("expected the 200s candidate within the ±10s window, got %s", match.Track.ID)
		}
	})

	t.Run("Filtered Candidates Remain As Alternatives", func(t *testing.T) {
		song := abbeyRoadSong(205_000)
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("long", "Abbey Road", 260_000, 95),
			track("close", "Abbey Road", 200_000, 40),
			track("other", "Abbey Road", 199_000, 30),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "close" {
			t.Fatalf("expected the in-window candidate, got %s", match.Track.ID)
		}
		if len(match.Alternatives) != 2 || match.Alternatives[0].ID != "long" || match.Alternatives[1].ID != "other" {
			t.Errorf("expected alternatives [long other] including the out-of-window candidate, got %+v", match.Alternatives)
		}
	})

	t.Run("Unknown Duration Skips Filter", func(t *testing.T) {
		song := models.Song{Title: "Come Together", Artist: "The Beatles", Album: "Abbey Road"}
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("long", "Abbey Road", 260_000, 95),
			track("short", "Abbey Road", 200_000, 40),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "long" {
			t.Errorf("expected popularity to decide with no duration, got %s", match.Track.ID)
		}
	})

	t.Run("Empty Window Keeps Full Set", func(t *testing.T) {
		song := abbeyRoadSong(100_000)
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("a", "Abbey Road", 260_000, 95),
			track("b", "Abbey Road", 200_000, 40),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "a" {
			t.Errorf("expected popularity to decide when no candidate is in window, got %s", match.Track.ID)
		}
	})
}

func TestResolveTieBreak(t *testing.T) {
	t.Run("Higher Popularity Wins", func(t *testing.T) {
		song := abbeyRoadSong(259_000)
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("a", "Abbey Road", 259_000, 80),
			track("b", "Abbey Road", 259_000, 95),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Track.ID != "b" {
			t.Errorf("expected popularity 95 to win, got %s", match.Track.ID)
		}
		if match.Tier != models.TierExact {
			t.Errorf("expected exact, got %s", match.Tier)
		}
	})

	t.Run("Popularity Tie After Duration Filter Is Deterministic", func(t *testing.T) {
		song := abbeyRoadSong(259_000)
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("first", "Abbey Road", 259_000, 80),
			track("second", "Abbey Road", 258_000, 80),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier == models.TierAmbiguous {
			t.Fatal("a tie within the duration window must not be ambiguous")
		}
		if match.Track.ID != "first" {
			t.Errorf("expected search order to break the tie, got %s", match.Track.ID)
		}
	})

	t.Run("Full Tie Without Duration Is Ambiguous", func(t *testing.T) {
		song := models.Song{Title: "Come Together", Artist: "The Beatles", Album: "Abbey Road"}
		search := &scriptedSearcher{withAlbum: []models.SpotifyTrack{
			track("a", "Abbey Road", 259_000, 80),
			track("b", "Abbey Road", 200_000, 80),
			track("c", "Abbey Road", 220_000, 40),
		}}
		m := New(search, nil)

		match, err := m.Resolve(context.Background(), song)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if match.Tier != models.TierAmbiguous {
			t.Fatalf("expected ambiguous, got %s", match.Tier)
		}
		if match.Track != nil {
			t.Error("ambiguous match must not choose a track")
		}
		if len(match.Alternatives) != 2 || match.Alternatives[0].ID != "a" || match.Alternatives[1].ID != "b" {
			t.Errorf("expected the tied candidates [a b] retained, got %+v", match.Alternatives)
		}
	})
}

func TestResolveSearchFailure(t *testing.T) {
	song := abbeyRoadSong(259_000)
	search := &scriptedSearcher{err: errors.New("connection refused")}
	m := New(search, nil)

	match, err := m.Resolve(context.Background(), song)
	if err == nil {
		t.Fatal("expected search failure to surface")
	}
	if !errors.Is(err, shared.ErrSearchUnavailable) {
		t.Errorf("expected ErrSearchUnavailable, got %v", err)
	}
	if match.Tier != models.TierNone {
		t.Errorf("expected none tier on failure, got %s", match.Tier)
	}
	if match.Err == nil {
		t.Error("expected the error note attached to the match")
	}
}
