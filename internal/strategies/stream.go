package strategies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/services"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/kkdai/youtube/v2"
)

// StreamOpener opens a byte stream for a resolved video ID, returning the
// reader and the total expected size (zero when unknown).
type StreamOpener interface {
	Open(ctx context.Context, videoID string) (io.ReadCloser, int64, error)
}

// StreamStrategy acquires audio in-process: a search call resolves the query
// into a video ID, then the stream is copied into the scratch directory with
// byte-accurate progress when the total size is known.
type StreamStrategy struct {
	search  services.TrackSearcher
	opener  StreamOpener
	timeout time.Duration
}

// NewStreamStrategy constructs the embedded-library strategy. A nil opener
// falls back to the YouTube stream client.
func NewStreamStrategy(search services.TrackSearcher, opener StreamOpener, timeout time.Duration) *StreamStrategy {
	if opener == nil {
		opener = &youtubeOpener{}
	}
	return &StreamStrategy{
		search:  search,
		opener:  opener,
		timeout: timeout,
	}
}

func (s *StreamStrategy) Name() string { return "youtube-stream" }

// Probe reports whether a searcher is wired up. The stream client itself is
// in-process and always present; reachability of the search proxy is only
// discovered during execute, where it classifies as a transfer failure.
func (s *StreamStrategy) Probe(ctx context.Context) bool {
	return s.search != nil
}

const streamChunkSize = 64 * 1024

// heuristicStep is how many progress points each 256 KiB advances when the
// stream's total size is unknown.
const heuristicStep = 5

// Execute searches for the query, opens the first result's audio stream, and
// copies it into destDir. Empty search results map to [shared.ErrNoMatchFound];
// an unreachable search backend and mid-transfer errors to
// [shared.ErrTransferFailed]; budget expiry aborts the stream and maps to
// [shared.ErrTimeout].
func (s *StreamStrategy) Execute(ctx context.Context, req models.DownloadRequest, query, destDir string, fn ProgressFunc) (*Output, error) {
	if s.search == nil {
		return nil, fmt.Errorf("%w: no track searcher configured", shared.ErrBackendUnavailable)
	}
	if destDir == "" {
		return nil, fmt.Errorf("%w: destination directory required", shared.ErrInvalidArgument)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	track, err := s.search.SearchTrack(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: search exceeded budget", shared.ErrTimeout)
		}
		if errors.Is(err, shared.ErrNoMatchFound) {
			return nil, err
		}
		// A search that never reached the backend is a transfer problem,
		// not evidence the track doesn't exist.
		return nil, fmt.Errorf("%w: search via %s: %v", shared.ErrTransferFailed, s.search.Name(), err)
	}

	stream, total, err := s.opener.Open(ctx, track.ID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: stream open exceeded budget", shared.ErrTimeout)
		}
		return nil, fmt.Errorf("%w: open stream for %s: %v", shared.ErrTransferFailed, track.ID, err)
	}
	defer stream.Close()

	outPath := filepath.Join(destDir, "track.m4a")
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create output file: %v", shared.ErrTransferFailed, err)
	}
	defer out.Close()

	if err := s.copyWithProgress(ctx, out, stream, total, fn); err != nil {
		return nil, err
	}

	return &Output{Path: outPath, MimeType: "audio/mp4", Ext: ".m4a"}, nil
}

// copyWithProgress copies the stream in chunks, reporting percentage from
// received/total when the total is known, else advancing heuristically on a
// fixed byte cadence. The copy aborts as soon as the context is done.
func (s *StreamStrategy) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, fn ProgressFunc) error {
	buf := make([]byte, streamChunkSize)
	var received int64
	lastReported := -1

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: stream aborted after %d bytes", shared.ErrTimeout, received)
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return fmt.Errorf("%w: write stream: %v", shared.ErrTransferFailed, err)
			}
			received += int64(n)

			percent := s.percentFor(received, total)
			if percent > lastReported {
				lastReported = percent
				if fn != nil {
					fn(float64(percent), fmt.Sprintf("streamed %d KiB", received/1024))
				}
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: stream aborted after %d bytes", shared.ErrTimeout, received)
			}
			return fmt.Errorf("%w: read stream: %v", shared.ErrTransferFailed, readErr)
		}
	}
}

func (s *StreamStrategy) percentFor(received, total int64) int {
	if total > 0 {
		percent := int(float64(received) / float64(total) * 100)
		if percent > 100 {
			percent = 100
		}
		return percent
	}
	// Unknown total: creep forward, never claiming completion.
	percent := int(received/(256*1024)) * heuristicStep
	if percent > 99 {
		percent = 99
	}
	return percent
}

// youtubeOpener resolves a video and opens its best audio-only format using
// the pure-Go YouTube client.
type youtubeOpener struct {
	client youtube.Client
}

func (o *youtubeOpener) Open(ctx context.Context, videoID string) (io.ReadCloser, int64, error) {
	video, err := o.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve video: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	var format *youtube.Format
	for i := range formats {
		if strings.HasPrefix(formats[i].MimeType, "audio/mp4") {
			format = &formats[i]
			break
		}
	}
	if format == nil && len(formats) > 0 {
		format = &formats[0]
	}
	if format == nil {
		return nil, 0, fmt.Errorf("no audio format for video %s", videoID)
	}

	return o.client.GetStreamContext(ctx, video, format)
}
