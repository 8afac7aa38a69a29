// Package strategies implements the acquisition backends behind the download
// engine. Each backend is one [Strategy]: a cheap availability probe plus an
// execute call that writes the acquired audio into a caller-owned scratch
// directory. Two shapes exist today: an external yt-dlp process whose textual
// output is parsed for percentages, and an in-process YouTube stream with
// byte-accurate progress. The engine only ever talks through the interface.
package strategies

import (
	"context"
	"errors"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
)

// ProgressFunc receives a strategy's native transfer progress in [0,100]
// with a short status message. Strategies call it only once bytes start
// moving; the first call therefore marks the search-to-download transition.
type ProgressFunc func(percent float64, message string)

// Output describes a successful acquisition: the produced file inside the
// scratch directory and its media type.
type Output struct {
	Path     string
	MimeType string
	Ext      string
}

// Strategy is one self-contained method of acquiring a track.
type Strategy interface {
	// Name identifies the backend in logs, config, and history records.
	Name() string

	// Probe reports whether the backend can run on this host. It must be
	// cheap (an existence check at most) and side-effect-free; it is
	// re-run for every request.
	Probe(ctx context.Context) bool

	// Execute acquires audio for the query into destDir, forwarding
	// native progress through fn. It must not outlive its configured
	// timeout budget: on expiry it kills the subprocess or aborts the
	// stream and returns an error wrapping [shared.ErrTimeout].
	Execute(ctx context.Context, req models.DownloadRequest, query, destDir string, fn ProgressFunc) (*Output, error)
}

// Retryable reports whether a failed attempt is worth retrying with the
// alternate query form before falling through to the next strategy.
// Unavailability is a skip, never a retry.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, shared.ErrTimeout),
		errors.Is(err, shared.ErrTransferFailed),
		errors.Is(err, shared.ErrNoMatchFound):
		return true
	default:
		return false
	}
}
