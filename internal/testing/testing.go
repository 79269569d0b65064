// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/sundowner/kutx2spotify/internal/models"
)

// MockResolver is a test double for the match pipeline's resolver. Matches
// are keyed by song title.
type MockResolver struct {
	Matches map[string]models.Match
	Err     error
}

func (m *MockResolver) Resolve(ctx context.Context, song models.Song) (models.Match, error) {
	if m.Err != nil {
		return models.Match{Song: song, Tier: models.TierNone, Err: m.Err}, m.Err
	}
	if match, ok := m.Matches[song.Title]; ok {
		match.Song = song
		return match, nil
	}
	return models.Match{Song: song, Tier: models.TierNone}, nil
}

// MockSource is a test double for the broadcast log source.
type MockSource struct {
	Songs []models.Song
	Err   error
	Calls int
}

func (m *MockSource) FetchDay(ctx context.Context, date string) ([]models.Song, error) {
	m.Calls++
	return m.Songs, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
