// package formatter renders match results to various formats (plain text, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
)

// SearchURL returns an open.spotify.com search link for manually locating a
// song that could not be matched automatically.
func SearchURL(song models.Song) string {
	return "https://open.spotify.com/search/" + url.PathEscape(song.Artist+" "+song.Title)
}

// tierBadge returns the short status marker shown next to each song.
func tierBadge(m models.Match) string {
	switch m.Tier {
	case models.TierExact:
		return "✓"
	case models.TierAlbumFallback:
		return "~"
	case models.TierAmbiguous:
		return "?"
	default:
		return "✗"
	}
}

// RenderReport converts a match list to the plain text run report: every song
// in air order with its match status, followed by an issues section for songs
// needing attention and a summary line.
func RenderReport(list *models.MatchList, date string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("KUTX %s\n\n", date))

	for i, m := range list.Matches {
		buf.WriteString(fmt.Sprintf("%2d. %s %s - %s", i+1, tierBadge(m), m.Song.Artist, m.Song.Title))
		if m.Song.HasDuration() {
			buf.WriteString(fmt.Sprintf(" [%s]", m.Song.DurationDisplay()))
		}
		buf.WriteString("\n")

		if m.Track != nil && m.Tier != models.TierAmbiguous {
			buf.WriteString(fmt.Sprintf("      → %s - %s", m.Track.Artist, m.Track.Title))
			if m.Track.Album != "" {
				buf.WriteString(fmt.Sprintf(" (%s)", m.Track.Album))
			}
			buf.WriteString("\n")
		}
	}

	pending := list.Pending()
	if len(pending) > 0 {
		buf.WriteString("\nNeeds attention:\n\n")
		for _, m := range pending {
			if m.Tier == models.TierAmbiguous {
				buf.WriteString(fmt.Sprintf("  %s - %s: %d candidates tied\n", m.Song.Artist, m.Song.Title, len(m.Alternatives)))
				for j, alt := range m.Alternatives {
					buf.WriteString(fmt.Sprintf("    %d) %s - %s (%s) [%s] pop %d\n",
						j+1, alt.Artist, alt.Title, alt.Album, shared.FormatDuration(alt.DurationSeconds()), alt.Popularity))
				}
				continue
			}
			reason := "no match"
			if m.Err != nil {
				reason = m.Err.Error()
			}
			buf.WriteString(fmt.Sprintf("  %s - %s: %s\n", m.Song.Artist, m.Song.Title, reason))
			buf.WriteString(fmt.Sprintf("    search: %s\n", SearchURL(m.Song)))
		}
	}

	buf.WriteString(fmt.Sprintf("\nMatched %d/%d songs (%d exact)\n", list.Found(), list.Total(), list.ExactCount()))
	return buf.Bytes()
}

// ExportToCSV converts a match list to CSV with one row per song in air order.
func ExportToCSV(list *models.MatchList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "Status", "Artist", "Title", "Album", "Aired At", "Track ID", "Track Artist", "Track Title", "Track URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, m := range list.Matches {
		record := []string{
			strconv.Itoa(i + 1),
			m.Tier.String(),
			m.Song.Artist,
			m.Song.Title,
			m.Song.Album,
			m.Song.PlayedAt.Format("15:04"),
			"", "", "", "",
		}
		if m.Track != nil {
			record[6] = m.Track.ID
			record[7] = m.Track.Artist
			record[8] = m.Track.Title
			record[9] = m.Track.URL()
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a match list to a Markdown run report.
func ExportToMarkdown(list *models.MatchList, date, playlistURL string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# KUTX %s\n\n", date))
	if playlistURL != "" {
		buf.WriteString(fmt.Sprintf("[Open playlist](%s)\n\n", playlistURL))
	}
	buf.WriteString(fmt.Sprintf("**Matched**: %d/%d (%d exact)\n\n", list.Found(), list.Total(), list.ExactCount()))

	buf.WriteString("## Songs\n\n")
	for i, m := range list.Matches {
		if m.Track != nil && m.Tier != models.TierAmbiguous {
			buf.WriteString(fmt.Sprintf("%d. [%s - %s](%s)\n", i+1, m.Track.Artist, m.Track.Title, m.Track.URL()))
			continue
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s *(unmatched, [search](%s))*\n", i+1, m.Song.Artist, m.Song.Title, SearchURL(m.Song)))
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes the CSV report to disk.
//
// Defaults to kutx_{date}.csv as the filename.
func WriteCSVExport(list *models.MatchList, date, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("kutx_%s.csv", date)
	}

	csvData, err := ExportToCSV(list)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport writes the Markdown report to disk.
//
// Defaults to kutx_{date}.md as the filename.
func WriteMarkdownExport(list *models.MatchList, date, playlistURL, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("kutx_%s.md", date)
	}

	mdData, err := ExportToMarkdown(list, date, playlistURL)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}
