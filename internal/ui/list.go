package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

var (
	_ list.Item = songItem{}
	_ list.Item = candidateItem{}
)

// songItem wraps a pending [models.Match] to implement [list.Item].
type songItem struct {
	match models.Match
}

func (i songItem) FilterValue() string { return i.match.Song.Title }
func (i songItem) Title() string {
	return fmt.Sprintf("%s - %s", i.match.Song.Artist, i.match.Song.Title)
}
func (i songItem) Description() string {
	if i.match.Tier == models.TierAmbiguous {
		return fmt.Sprintf("%d candidates tied", len(i.match.Alternatives))
	}
	if i.match.Err != nil {
		return fmt.Sprintf("search failed: %v", i.match.Err)
	}
	return "no match found"
}

// candidateItem wraps [models.SpotifyTrack] to implement [list.Item].
type candidateItem struct {
	track models.SpotifyTrack
}

func (i candidateItem) FilterValue() string { return i.track.Title }
func (i candidateItem) Title() string {
	return fmt.Sprintf("%s - %s", i.track.Artist, i.track.Title)
}
func (i candidateItem) Description() string {
	desc := fmt.Sprintf("%s • pop %d", shared.FormatDuration(i.track.DurationSeconds()), i.track.Popularity)
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", i.track.Album, desc)
	}
	return desc
}
