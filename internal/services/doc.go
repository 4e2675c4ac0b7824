// Package services implements the [Destination] interface for Spotify.
//
// # Destination Interface
//
// The transfer engine only talks to a [Destination], so tests and future providers can stand in for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps the github.com/zmb3/spotify/v2 client. Authentication uses the authorization code flow from
// [server.Flow] and keeps the resulting token in a [TokenCache] file between runs. The [oauth2] transport refreshes expired
// tokens automatically.
//
// # Search Policy
//
// [SpotifyService.SearchTrack] tries three progressively looser queries ([SearchQueries]) and returns the first hit of the
// first query with results. Metadata differs between catalogs, so a wrong match is possible and not detected.
//
// # Retries and Rate Limiting
//
// Every API call waits on a [rate.Limiter] and is retried with exponential backoff when Spotify answers 429 or 5xx, or the
// request fails at the network level. Other errors are returned immediately.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : authorization or token verification failed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrTrackNotFound] : no search query returned results
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrCreatePlaylist] : playlist creation rejected
package services
