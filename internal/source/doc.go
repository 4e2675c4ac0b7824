// Package source produces the ordered list of tracks to transfer.
//
// An [Importer] reads tracks from one of three places:
//   - the built-in sample playlist ([Importer.Sample])
//   - an HTML page parsed with configurable CSS selectors ([Importer.FromURL])
//   - a JSON or CSV export on disk ([Importer.FromFile], [Importer.ParseText])
//
// Apple Music offers no public API for user playlists, so the sample list stands in for real data and the HTML parser is a
// generic "extract rows given field selectors" utility rather than a scraper for a specific site.
//
// Failures are returned as errors wrapping the shared sentinels:
//   - [shared.ErrMalformedInput] : content could not be parsed as JSON, CSV or HTML
//   - [shared.ErrInvalidInput] : the file could not be read
//   - [shared.ErrAPIRequest] : the page could not be fetched
package source
