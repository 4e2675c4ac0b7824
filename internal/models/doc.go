// Package models defines the records that move through a playlist transfer.
//
// The package contains three groups of types:
//
// 1. Source records
//   - [Track] : the minimal title/artist/album unit produced by the importer
//
// 2. Destination metadata
//   - [User] : the authenticated Spotify account
//   - [PlaylistInfo] : read-only playlist metadata
//
// 3. Run results
//   - [ItemResult] : the outcome of a single track search and append
//   - [TransferOutcome] : per-run counters and per-item results
//
// A [Track] has no identity beyond its title and artist; duplicates are kept as-is.
package models
