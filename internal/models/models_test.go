package models

import (
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	t.Run("Case And Whitespace Insensitive", func(t *testing.T) {
		a := Fingerprint(" The Beatles ", "Hey Jude", "")
		b := Fingerprint("the beatles", "HEY JUDE", "")

		if a != b {
			t.Errorf("expected equal fingerprints, got %q and %q", a, b)
		}
	})

	t.Run("Punctuation Insensitive", func(t *testing.T) {
		a := Fingerprint("Sharon Van Etten", "I Don't Want to Let You Down", "")
		b := Fingerprint("Sharon Van Etten", "I Dont Want to Let You Down", "")

		if a != b {
			t.Errorf("expected equal fingerprints, got %q and %q", a, b)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := Fingerprint("Khruangbin  &  Leon Bridges", "Texas Sun", "Texas Sun EP")
		again := Fingerprint("khruangbin leon bridges", "texas sun", "texas sun ep")
		if once != again {
			t.Errorf("fingerprint not idempotent: %q vs %q", once, again)
		}
	})

	t.Run("Distinct Songs Distinct Keys", func(t *testing.T) {
		a := Fingerprint("Spoon", "The Underdog", "Ga Ga Ga Ga Ga")
		b := Fingerprint("Spoon", "The Way We Get By", "Kill the Moonlight")

		if a == b {
			t.Error("expected different fingerprints for different songs")
		}
	})

	t.Run("Album Included In Key", func(t *testing.T) {
		a := Fingerprint("Wilco", "Jesus, Etc.", "Yankee Hotel Foxtrot")
		b := Fingerprint("Wilco", "Jesus, Etc.", "Kicking Television")

		if a == b {
			t.Error("expected album to differentiate fingerprints")
		}
	})

	t.Run("Duration Ignored", func(t *testing.T) {
		fast := Song{Title: "Harvest Moon", Artist: "Neil Young", Album: "Harvest Moon", DurationMS: 180_000}
		slow := Song{Title: "Harvest Moon", Artist: "Neil Young", Album: "Harvest Moon", DurationMS: 305_000}

		if fast.Fingerprint() != slow.Fingerprint() {
			t.Error("duration must not affect the fingerprint")
		}
	})
}

func TestSong(t *testing.T) {
	song := Song{
		Title:      "Tezeta (Nostalgia)",
		Artist:     "Mulatu Astatke",
		DurationMS: 194_000,
		PlayedAt:   time.Date(2024, 1, 15, 14, 32, 0, 0, time.UTC),
	}

	t.Run("DurationSeconds", func(t *testing.T) {
		if song.DurationSeconds() != 194 {
			t.Errorf("expected 194 seconds, got %d", song.DurationSeconds())
		}
	})

	t.Run("DurationDisplay", func(t *testing.T) {
		if song.DurationDisplay() != "3:14" {
			t.Errorf("expected 3:14, got %s", song.DurationDisplay())
		}
	})

	t.Run("HasDuration", func(t *testing.T) {
		if !song.HasDuration() {
			t.Error("expected HasDuration true")
		}

		if (Song{Title: "x", Artist: "y"}).HasDuration() {
			t.Error("expected HasDuration false for zero duration")
		}
	})
}

func TestMatchTier(t *testing.T) {
	cases := map[MatchTier]string{
		TierExact:         "exact",
		TierAlbumFallback: "album_fallback",
		TierAmbiguous:     "ambiguous",
		TierNone:          "none",
		MatchTier(99):     "unknown",
	}

	for tier, want := range cases {
		if tier.String() != want {
			t.Errorf("expected %q, got %q", want, tier.String())
		}
	}
}

func TestMatchList(t *testing.T) {
	track := &SpotifyTrack{ID: "t1", URI: "spotify:track:t1"}

	var list MatchList
	list.Add(Match{Song: Song{Title: "a"}, Track: track, Tier: TierExact})
	list.Add(Match{Song: Song{Title: "b"}, Track: track, Tier: TierAlbumFallback})
	list.Add(Match{Song: Song{Title: "c"}, Tier: TierNone})
	list.Add(Match{Song: Song{Title: "d"}, Tier: TierAmbiguous, Alternatives: []SpotifyTrack{{ID: "x"}, {ID: "y"}}})

	t.Run("Counts", func(t *testing.T) {
		if list.Total() != 4 {
			t.Errorf("expected total 4, got %d", list.Total())
		}
		if list.Found() != 2 {
			t.Errorf("expected found 2, got %d", list.Found())
		}
		if list.NotFound() != 2 {
			t.Errorf("expected not found 2, got %d", list.NotFound())
		}
		if list.ExactCount() != 1 {
			t.Errorf("expected 1 exact, got %d", list.ExactCount())
		}
	})

	t.Run("Pending", func(t *testing.T) {
		pending := list.Pending()
		if len(pending) != 2 {
			t.Fatalf("expected 2 pending matches, got %d", len(pending))
		}
		if pending[0].Song.Title != "c" || pending[1].Song.Title != "d" {
			t.Error("pending matches out of order")
		}
	})

	t.Run("TrackURIs Preserve Order", func(t *testing.T) {
		uris := list.TrackURIs()
		if len(uris) != 2 {
			t.Fatalf("expected 2 URIs, got %d", len(uris))
		}
		for _, uri := range uris {
			if uri != "spotify:track:t1" {
				t.Errorf("unexpected URI %s", uri)
			}
		}
	})
}
