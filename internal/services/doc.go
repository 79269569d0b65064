// Package services implements the two upstream HTTP API clients.
//
// # KUTX Client
//
// [KUTXClient] fetches a day of the KUTX program log from the NPR composer
// widget API and parses it into [models.Song] values in air order. Entries
// missing a title, artist, or start time are skipped. A time-of-day window
// can be applied on top of a full day, inclusive at both ends.
//
// # Spotify Client
//
// [SpotifyClient] wraps the Spotify Web API with OAuth2 authorization-code
// authentication and a client-side rate limiter.
//
// [SpotifyClient.Search] is the search capability consumed by the matcher:
// it issues a field-filtered query (track, artist, optional album) and
// returns candidates in the API's order, which the tie-break relies on being
// deterministic. Retry and rate-limit policy live here, never in the
// matcher.
//
// Playlist creation ([SpotifyClient.CreatePlaylist], [SpotifyClient.AddTracks])
// batches track additions at the API's limit of 100 URIs per request.
//
// # Error Handling
//
// Clients wrap failures in sentinels from the shared package:
//   - [shared.ErrNotAuthenticated] : no token set before a call
//   - [shared.ErrAPIRequest] : HTTP request failed or non-2xx status
//   - [shared.ErrSearchUnavailable] : surfaced by the matcher per song
package services
