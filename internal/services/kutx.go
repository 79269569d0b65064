// KUTX program-log client
//
// The NPR composer widget API serves one day of plays per request:
// GET {base}/{widget}/day?date=YYYY-MM-DD&format=json
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

const (
	// DefaultKUTXBaseURL is the NPR composer widget API root.
	DefaultKUTXBaseURL = "https://api.composer.nprstations.org/v1/widget"
	// DefaultKUTXWidgetID identifies the KUTX station widget.
	DefaultKUTXWidgetID = "50ef24ebe1c8a1369593d032"

	// startTimeLayout is the composer API's _start_time format.
	startTimeLayout = "01-02-2006 15:04:05"
)

// kutxTrack is one raw play entry in the composer day response.
type kutxTrack struct {
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	DurationMS     int    `json:"_duration"`
	StartTime      string `json:"_start_time"`
}

type kutxDayResponse struct {
	Playlist []kutxTrack `json:"playlist"`
}

// KUTXClient fetches KUTX program-log data.
type KUTXClient struct {
	baseURL    string
	widgetID   string
	httpClient *http.Client
}

// NewKUTXClient creates a client for the composer widget API. Empty baseURL
// or widgetID fall back to the KUTX defaults; a nil http.Client falls back
// to [http.DefaultClient].
func NewKUTXClient(baseURL, widgetID string, client *http.Client) *KUTXClient {
	if baseURL == "" {
		baseURL = DefaultKUTXBaseURL
	}
	if widgetID == "" {
		widgetID = DefaultKUTXWidgetID
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &KUTXClient{
		baseURL:    baseURL,
		widgetID:   widgetID,
		httpClient: client,
	}
}

// FetchDay fetches every song played on a date (YYYY-MM-DD), in air order.
// Entries without a title, artist, or parseable start time are skipped.
func (k *KUTXClient) FetchDay(ctx context.Context, date string) ([]models.Song, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: invalid date %q: expected YYYY-MM-DD", shared.ErrInvalidArgument, date)
	}

	endpoint := fmt.Sprintf("%s/%s/day?date=%s&format=json", k.baseURL, k.widgetID, url.QueryEscape(date))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: composer API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var day kutxDayResponse
	if err := json.NewDecoder(resp.Body).Decode(&day); err != nil {
		return nil, fmt.Errorf("failed to decode composer response: %w", err)
	}

	var songs []models.Song
	for _, entry := range day.Playlist {
		if song, ok := parseSong(entry); ok {
			songs = append(songs, song)
		}
	}
	return songs, nil
}

// FetchRange fetches songs played on a date within an inclusive time-of-day
// window. Empty start or end leave that side unbounded.
func (k *KUTXClient) FetchRange(ctx context.Context, date, start, end string) ([]models.Song, error) {
	songs, err := k.FetchDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return FilterByTime(songs, start, end)
}

func parseSong(entry kutxTrack) (models.Song, bool) {
	if entry.TrackName == "" || entry.ArtistName == "" || entry.StartTime == "" {
		return models.Song{}, false
	}

	playedAt, err := time.Parse(startTimeLayout, entry.StartTime)
	if err != nil {
		return models.Song{}, false
	}

	return models.Song{
		Title:      entry.TrackName,
		Artist:     entry.ArtistName,
		Album:      entry.CollectionName,
		DurationMS: entry.DurationMS,
		PlayedAt:   playedAt,
	}, true
}

// ParseClock parses an HH:MM clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: invalid time %q: expected HH:MM", shared.ErrInvalidArgument, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: invalid hour in %q", shared.ErrInvalidArgument, s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: invalid minute in %q", shared.ErrInvalidArgument, s)
	}

	return hours*60 + minutes, nil
}

// FilterByTime keeps songs whose air time falls inside the inclusive
// [start, end] HH:MM window. Empty bounds are unbounded. Air order is
// preserved.
func FilterByTime(songs []models.Song, start, end string) ([]models.Song, error) {
	if start == "" && end == "" {
		return songs, nil
	}

	lo, hi := -1, -1
	var err error
	if start != "" {
		if lo, err = ParseClock(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if hi, err = ParseClock(end); err != nil {
			return nil, err
		}
	}

	var kept []models.Song
	for _, song := range songs {
		at := song.PlayedAt.Hour()*60 + song.PlayedAt.Minute()
		if lo >= 0 && at < lo {
			continue
		}
		if hi >= 0 && at > hi {
			continue
		}
		kept = append(kept, song)
	}
	return kept, nil
}
