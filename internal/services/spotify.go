// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sundowner/kutx2spotify/internal/models"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// searchLimit caps how many candidates one search returns to the matcher.
	searchLimit = 10
	// addTracksLimit is the API's per-request cap on playlist additions.
	addTracksLimit = 100
)

// TokenFile is the filename of the persisted OAuth token inside the cache
// directory.
const TokenFile = "spotify_token.json"

// SpotifyTrackResponse represents a Spotify track object.
type SpotifyTrackResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylist represents a created Spotify playlist.
type SpotifyPlaylist struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
	URI    string `json:"uri"`
}

type searchResponse struct {
	Tracks struct {
		Items []SpotifyTrackResponse `json:"items"`
	} `json:"tracks"`
}

// SpotifyClient wraps the Spotify Web API with OAuth2 authentication and
// client-side rate limiting.
type SpotifyClient struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyClient creates a Spotify client from credentials. The client is
// unauthenticated until [SpotifyClient.Authenticate] is called with a token.
func NewSpotifyClient(creds shared.SpotifyConfig) (*SpotifyClient, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret required", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
		baseURL:    spotifyBaseURL,
	}, nil
}

// OAuthConfig returns the underlying OAuth2 config, for the callback server.
func (s *SpotifyClient) OAuthConfig() *oauth2.Config {
	return s.config
}

// AuthURL returns the authorization URL for the user-login flow.
func (s *SpotifyClient) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticate installs a token. The resulting HTTP client refreshes the
// token automatically when a refresh token is present.
func (s *SpotifyClient) Authenticate(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
}

// Authenticated reports whether a token has been installed.
func (s *SpotifyClient) Authenticated() bool {
	return s.token != nil
}

// doRequest performs a rate-limited, authenticated request against the API.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Search queries the catalog with field filters and returns candidates in
// the API's order. An empty album omits the album filter. Implements the
// matcher's search capability.
func (s *SpotifyClient) Search(ctx context.Context, artist, title, album string) ([]models.SpotifyTrack, error) {
	query := fmt.Sprintf("track:%q artist:%q", title, artist)
	if album != "" {
		query += fmt.Sprintf(" album:%q", album)
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=%d", url.QueryEscape(query), searchLimit)

	var response searchResponse
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.SpotifyTrack, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, parseTrack(item))
	}
	return tracks, nil
}

// UserProfile retrieves the authenticated user's profile.
func (s *SpotifyClient) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePlaylist creates an empty playlist for the authenticated user.
func (s *SpotifyClient) CreatePlaylist(ctx context.Context, name, description string, public bool) (*SpotifyPlaylist, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var playlist SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// AddTracks appends track URIs to a playlist, batching at the API's limit of
// 100 per request. Returns the number of tracks added.
func (s *SpotifyClient) AddTracks(ctx context.Context, playlistID string, uris []string) (int, error) {
	if len(uris) == 0 {
		return 0, nil
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	added := 0
	for start := 0; start < len(uris); start += addTracksLimit {
		end := min(start+addTracksLimit, len(uris))
		body := map[string]any{"uris": uris[start:end]}

		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return added, err
		}
		added += end - start
	}
	return added, nil
}

// PlaylistURL returns the public open.spotify.com link for a playlist.
func PlaylistURL(playlistID string) string {
	return "https://open.spotify.com/playlist/" + playlistID
}

func parseTrack(item SpotifyTrackResponse) models.SpotifyTrack {
	artist := ""
	if len(item.Artists) > 0 {
		artist = item.Artists[0].Name
	}

	return models.SpotifyTrack{
		ID:         item.ID,
		URI:        item.URI,
		Title:      item.Name,
		Artist:     artist,
		Album:      item.Album.Name,
		DurationMS: item.DurationMS,
		Popularity: item.Popularity,
	}
}

// LoadToken reads a persisted OAuth token from disk. A missing file returns
// a nil token and no error.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// SaveToken persists an OAuth token to disk with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
