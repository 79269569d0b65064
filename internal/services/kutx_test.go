package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

const dayPayload = `{
  "playlist": [
    {
      "trackName": "Texas Sun",
      "artistName": "Khruangbin",
      "collectionName": "Texas Sun EP",
      "_duration": 254000,
      "_start_time": "01-15-2024 06:12:30"
    },
    {
      "trackName": "Broken Record",
      "artistName": "Dayglow",
      "collectionName": "",
      "_duration": 0,
      "_start_time": "01-15-2024 09:45:00"
    },
    {
      "trackName": "",
      "artistName": "Station ID",
      "_start_time": "01-15-2024 10:00:00"
    },
    {
      "trackName": "No Start Time",
      "artistName": "Somebody",
      "_start_time": ""
    },
    {
      "trackName": "Harvest Moon",
      "artistName": "Neil Young",
      "collectionName": "Harvest Moon",
      "_duration": 305000,
      "_start_time": "01-15-2024 14:30:15"
    }
  ]
}`

func kutxTestServer(t *testing.T, status int, payload string) (*httptest.Server, *KUTXClient) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("expected format=json, got %s", r.URL.RawQuery)
		}
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	return srv, NewKUTXClient(srv.URL, "testwidget", srv.Client())
}

func TestKUTXClient(t *testing.T) {
	t.Run("FetchDay Parses And Skips", func(t *testing.T) {
		_, client := kutxTestServer(t, http.StatusOK, dayPayload)

		songs, err := client.FetchDay(context.Background(), "2024-01-15")
		if err != nil {
			t.Fatalf("fetch day: %v", err)
		}

		// Two entries are skipped: missing title, missing start time.
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}

		first := songs[0]
		if first.Title != "Texas Sun" || first.Artist != "Khruangbin" {
			t.Errorf("unexpected first song %+v", first)
		}
		if first.Album != "Texas Sun EP" {
			t.Errorf("expected album, got %q", first.Album)
		}
		if first.DurationMS != 254000 {
			t.Errorf("expected duration 254000, got %d", first.DurationMS)
		}

		want := time.Date(2024, 1, 15, 6, 12, 30, 0, time.UTC)
		if !first.PlayedAt.Equal(want) {
			t.Errorf("expected air time %v, got %v", want, first.PlayedAt)
		}

		// Air order preserved.
		if songs[1].Title != "Broken Record" || songs[2].Title != "Harvest Moon" {
			t.Error("songs out of air order")
		}
	})

	t.Run("FetchDay Invalid Date", func(t *testing.T) {
		client := NewKUTXClient("http://unused", "w", nil)
		if _, err := client.FetchDay(context.Background(), "15-01-2024"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("FetchDay Upstream Error", func(t *testing.T) {
		_, client := kutxTestServer(t, http.StatusBadGateway, "oops")

		if _, err := client.FetchDay(context.Background(), "2024-01-15"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("FetchRange Applies Window", func(t *testing.T) {
		_, client := kutxTestServer(t, http.StatusOK, dayPayload)

		songs, err := client.FetchRange(context.Background(), "2024-01-15", "09:00", "12:00")
		if err != nil {
			t.Fatalf("fetch range: %v", err)
		}
		if len(songs) != 1 || songs[0].Title != "Broken Record" {
			t.Errorf("expected only the 09:45 play, got %+v", songs)
		}
	})
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:30", 390, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFilterByTime(t *testing.T) {
	at := func(hour, minute int) models.Song {
		return models.Song{
			Title:    "x",
			Artist:   "y",
			PlayedAt: time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC),
		}
	}
	songs := []models.Song{at(6, 0), at(9, 30), at(14, 0), at(23, 45)}

	t.Run("No Bounds Returns All", func(t *testing.T) {
		kept, err := FilterByTime(songs, "", "")
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if len(kept) != 4 {
			t.Errorf("expected all songs, got %d", len(kept))
		}
	})

	t.Run("Inclusive Bounds", func(t *testing.T) {
		kept, err := FilterByTime(songs, "09:30", "14:00")
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if len(kept) != 2 {
			t.Errorf("expected 2 songs at the inclusive bounds, got %d", len(kept))
		}
	})

	t.Run("Open Ended", func(t *testing.T) {
		kept, err := FilterByTime(songs, "14:00", "")
		if err != nil {
			t.Fatalf("filter: %v", err)
		}
		if len(kept) != 2 {
			t.Errorf("expected 2 songs from 14:00 on, got %d", len(kept))
		}
	})

	t.Run("Invalid Bound", func(t *testing.T) {
		if _, err := FilterByTime(songs, "25:00", ""); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
