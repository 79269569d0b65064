package tasks

import (
	"fmt"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSongs Phase = iota
	SearchTracks
	CreatePlaylist
	AddTracks
)

func (p Phase) String() string {
	switch p {
	case FetchSongs:
		return "fetch_songs"
	case SearchTracks:
		return "search_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	default:
		return ""
	}
}

func fetchingSongsUpdate(date string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching KUTX playlist for %s...", date),
	}
}

func cachedSongsUpdate(date string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Using cached playlist for %s (%d songs)", date, count),
	}
}

func corruptSnapshotUpdate(date string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Cached playlist for %s is unreadable, refetching", date),
	}
}

func songsFetchedUpdate(date string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d songs for %s", count, date),
	}
}

func searchTracksUpdate(step, total int, song *models.Song) ProgressUpdate {
	if song == nil {
		return ProgressUpdate{
			Phase:   SearchTracks,
			Step:    step,
			Total:   total,
			Message: "Matching songs against the Spotify catalog...",
		}
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.Artist, song.Title),
	}
}

func matchedUpdate(step, total int, match models.Match) ProgressUpdate {
	msg := ""
	switch {
	case match.Err != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s - %s: %v", step, total, match.Song.Artist, match.Song.Title, match.Err)
	case match.Track != nil:
		msg = fmt.Sprintf("[%d/%d] ✓ %s - %s", step, total, match.Track.Artist, match.Track.Title)
	default:
		msg = fmt.Sprintf("[%d/%d] ✗ %s - %s: no match", step, total, match.Song.Artist, match.Song.Title)
	}
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    match,
	}
}

func creatingPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q on Spotify...", name),
	}
}

func createPlaylistUpdate(pl *services.SpotifyPlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func addTracksUpdate(added, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    added,
		Total:   total,
		Message: fmt.Sprintf("Added %d/%d tracks", added, total),
	}
}
