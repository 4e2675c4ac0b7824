// Package server provides the temporary HTTP server used for the OAuth authorization code flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] is applied so the first one added is the outermost wrapper.
//
// The [BasicRouter] implementation relies on [http.ServeMux] method patterns.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens through an
// [Exchanger], and sends the result through a channel. It only processes one callback to prevent replay attacks.
//
// # Flow
//
// [Flow] owns the server lifecycle: it listens on the host and port of the redirect URI, opens the browser on the
// authorization URL, waits for the callback, a timeout or cancellation, and shuts the server down.
package server
