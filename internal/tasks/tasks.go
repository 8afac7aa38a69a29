// Package tasks contains the download engine: the orchestrator that walks a
// priority-ordered chain of acquisition strategies for a single track,
// translating each backend's native progress into one staged, monotonic
// event sequence and guaranteeing that every scratch directory is removed
// before a request returns.
package tasks

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/strategies"
)

// Attempt records one entry in a request's failure trail. Skipped entries
// mark backends whose probe failed; they never carry a transfer error.
type Attempt struct {
	Strategy string
	Query    string
	Err      error
	Skipped  bool
}

// Result is the outcome of a successful acquisition.
type Result struct {
	Artifact *models.Artifact
	Strategy string
	Trail    []Attempt
	Elapsed  time.Duration
}

// Engine runs acquisitions against an ordered strategy chain. It is safe for
// concurrent use; per-request state lives on the stack of Run.
type Engine struct {
	chain  []strategies.Strategy
	store  *ArtifactStore
	logger *log.Logger
}

// NewEngine builds an engine over the given chain, tried in slice order.
func NewEngine(chain []strategies.Strategy, store *ArtifactStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{chain: chain, store: store, logger: logger}
}

// ProbeResult reports one backend's availability.
type ProbeResult struct {
	Strategy  string
	Available bool
}

// Probe checks every strategy in the chain, in priority order.
func (e *Engine) Probe(ctx context.Context) []ProbeResult {
	results := make([]ProbeResult, 0, len(e.chain))
	for _, st := range e.chain {
		results = append(results, ProbeResult{Strategy: st.Name(), Available: st.Probe(ctx)})
	}
	return results
}

// Run acquires one track, emitting progress events on the given channel.
//
// Strategies are tried in priority order. A failed probe skips the backend;
// a retryable failure earns one retry with the alternate query form before
// falling through to the next backend. Exactly one terminal event is emitted
// per call, always last, whether the acquisition succeeds, fails, or panics.
// The progress channel may be nil; when set it should be buffered, since
// intermediate events are dropped when it is full but terminal events block
// until delivered.
func (e *Engine) Run(ctx context.Context, req models.DownloadRequest, progress chan<- ProgressEvent) (*Result, error) {
	start := time.Now()
	em := newEmitter(progress)

	if err := req.Validate(); err != nil {
		em.emit(errorEvent(err.Error()))
		return nil, err
	}

	logger := shared.WithLogger(e.logger, "title", req.Title, "artist", req.Artist)
	em.emit(searchingEvent(2, "Searching for %q", req.PrimaryQuery()))

	queries := []string{req.PrimaryQuery()}
	if alt := req.AlternateQuery(); alt != "" && alt != queries[0] {
		queries = append(queries, alt)
	}

	var trail []Attempt
	for i, st := range e.chain {
		if err := ctx.Err(); err != nil {
			return e.fail(em, trail, start, fmt.Errorf("download canceled: %w", err))
		}

		em.emit(searchingEvent(4+i*5, "Checking %s", st.Name()))
		if !st.Probe(ctx) {
			logger.Info("backend unavailable, skipping", "strategy", st.Name())
			trail = append(trail, Attempt{Strategy: st.Name(), Skipped: true})
			continue
		}

		for _, query := range queries {
			artifact, err := e.runAttempt(ctx, st, req, query, em)
			if err == nil {
				em.emit(completeEvent(dataURI(artifact), artifact.SuggestedFilename))
				logger.Info("download complete",
					"strategy", st.Name(),
					"bytes", artifact.Size(),
					"elapsed", time.Since(start))
				return &Result{
					Artifact: artifact,
					Strategy: st.Name(),
					Trail:    trail,
					Elapsed:  time.Since(start),
				}, nil
			}

			trail = append(trail, Attempt{Strategy: st.Name(), Query: query, Err: err})
			logger.Warn("attempt failed", "strategy", st.Name(), "query", query, "error", err)

			if ctx.Err() != nil {
				return e.fail(em, trail, start, fmt.Errorf("download canceled: %w", ctx.Err()))
			}
			if !strategies.Retryable(err) {
				break
			}
		}
	}

	return e.fail(em, trail, start, exhaustedError(req, e.chain, trail))
}

// runAttempt executes one strategy against one query inside a fresh scratch
// directory. The directory is removed on every exit path; a panicking
// strategy is contained and surfaces as a transfer failure.
func (e *Engine) runAttempt(ctx context.Context, st strategies.Strategy, req models.DownloadRequest, query string, em *emitter) (artifact *models.Artifact, err error) {
	dir, release, err := e.store.Acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransferFailed, err)
	}
	defer release()
	defer func() {
		if r := recover(); r != nil {
			artifact = nil
			err = fmt.Errorf("%w: strategy %s panicked: %v", shared.ErrTransferFailed, st.Name(), r)
		}
	}()

	out, err := st.Execute(ctx, req, query, dir, func(percent float64, message string) {
		em.emit(downloadingEvent(rescaleTransfer(percent), message))
	})
	if err != nil {
		return nil, err
	}

	em.emit(convertingEvent(convertFloor, "Processing audio"))
	artifact, err = e.store.Collect(out, req)
	if err != nil {
		return nil, err
	}
	em.emit(convertingEvent(convertCeil, "Preparing file"))
	return artifact, nil
}

// fail emits the terminal error event and returns the trail alongside the
// error so callers can record the history row.
func (e *Engine) fail(em *emitter, trail []Attempt, start time.Time, err error) (*Result, error) {
	em.emit(errorEvent(err.Error()))
	return &Result{Trail: trail, Elapsed: time.Since(start)}, err
}

// exhaustedError builds the terminal failure for a request no strategy could
// satisfy. The message prefers the most actionable cause in the trail: a
// confirmed no-match beats a timeout, which beats a generic transfer
// failure. When a backend was skipped as unavailable, the message names the
// highest-priority missing one so the user knows what to install.
func exhaustedError(req models.DownloadRequest, chain []strategies.Strategy, trail []Attempt) error {
	var sawNoMatch, sawTimeout, sawFailure bool
	var firstSkipped string
	for _, a := range trail {
		if a.Skipped {
			if firstSkipped == "" {
				firstSkipped = a.Strategy
			}
			continue
		}
		switch {
		case errors.Is(a.Err, shared.ErrNoMatchFound):
			sawNoMatch = true
		case errors.Is(a.Err, shared.ErrTimeout):
			sawTimeout = true
		default:
			sawFailure = true
		}
	}

	var msg string
	switch {
	case sawNoMatch:
		msg = fmt.Sprintf("no results found for %q", req.PrimaryQuery())
	case sawTimeout:
		msg = fmt.Sprintf("download timed out for %q", req.PrimaryQuery())
	case sawFailure:
		msg = fmt.Sprintf("download failed for %q", req.PrimaryQuery())
	case len(chain) == 0:
		msg = "no download backends configured"
	default:
		msg = "no download backend is available"
	}
	if firstSkipped != "" {
		msg = fmt.Sprintf("%s (install %s to enable more sources)", msg, firstSkipped)
	}
	return fmt.Errorf("%w: %s", shared.ErrAllStrategiesExhausted, msg)
}

// dataURI encodes the artifact as a data URL so a browser client can save
// the file straight from the terminal event without a second request.
func dataURI(a *models.Artifact) string {
	return "data:" + a.MimeType + ";base64," + base64.StdEncoding.EncodeToString(a.Bytes)
}

// HistoryRecord builds the download history row for a finished acquisition,
// successful or not. res may carry only a trail when runErr is set.
func HistoryRecord(req models.DownloadRequest, res *Result, runErr error) *models.PersistedDownload {
	record := models.NewPersistedDownload(req)
	if runErr != nil {
		record.Status = "error"
		record.Failure = runErr.Error()
	} else {
		record.Status = "complete"
	}
	if res != nil {
		record.ElapsedMS = res.Elapsed.Milliseconds()
		record.Strategy = res.Strategy
		if record.Strategy == "" && len(res.Trail) > 0 {
			record.Strategy = res.Trail[len(res.Trail)-1].Strategy
		}
		if res.Artifact != nil {
			record.Filename = res.Artifact.SuggestedFilename
			record.SizeBytes = res.Artifact.Size()
		}
	}
	return record
}
