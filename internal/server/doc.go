// Package server provides HTTP routing, middleware, and the download API for the track download service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Download API
//
// [DownloadHandler] exposes POST /api/download: the request body is a JSON
// download request (title, artist, optional album and duration), and the
// response is a newline-delimited JSON stream of progress events ending in
// exactly one terminal event. The complete event carries the suggested
// filename and a data URL holding the audio, so no artifact ever rests on
// the server's disk. Closing the connection cancels the acquisition through
// the request context.
//
// GET /health reports liveness for deployment probes.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
