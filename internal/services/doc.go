// Package services contains clients for the external collaborators of the
// download engine: the Spotify catalog API (track and playlist metadata,
// client-credentials token cache) and the YouTube Music proxy (in-process
// track search used by the streaming backend).
//
// The engine core never talks to these APIs directly; it consumes them
// through the [Catalog] and [TrackSearcher] interfaces so tests can
// substitute doubles.
package services
