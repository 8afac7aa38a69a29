package tasks

import (
	"encoding/json"
	"fmt"
)

// Stage is the orchestration state machine position reflected in every
// progress event. Complete and Error are terminal.
type Stage int

const (
	StageSearching Stage = iota
	StageDownloading
	StageConverting
	StageComplete
	StageError
)

func (s Stage) String() string {
	switch s {
	case StageSearching:
		return "searching"
	case StageDownloading:
		return "downloading"
	case StageConverting:
		return "converting"
	case StageComplete:
		return "complete"
	case StageError:
		return "error"
	default:
		return ""
	}
}

// Terminal reports whether the stage ends a request's event sequence.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageError
}

// MarshalJSON renders the stage as its wire name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a wire name back into a stage.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for _, candidate := range []Stage{StageSearching, StageDownloading, StageConverting, StageComplete, StageError} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}

// ProgressEvent represents one progress record during an acquisition.
//
// Within one request's sequence, Progress is non-decreasing and bounded to
// [0,100]; exactly one terminal event is emitted and it is always the last.
type ProgressEvent struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`

	// DownloadURL and Filename are set only on the terminal complete event.
	DownloadURL string `json:"downloadUrl,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// Progress sub-ranges reserved per stage: search and availability probing own
// [0,20), transfer owns [20,90), finalization [90,98], completion 100.
const (
	searchCeil    = 19
	downloadFloor = 20
	downloadCeil  = 90
	convertFloor  = 90
	convertCeil   = 98
)

// rescaleTransfer maps a strategy's native progress [0,100] onto the global
// transfer window [20,90].
func rescaleTransfer(native float64) int {
	if native < 0 {
		native = 0
	}
	if native > 100 {
		native = 100
	}
	return downloadFloor + int(native*float64(downloadCeil-downloadFloor)/100)
}

func searchingEvent(progress int, format string, args ...any) ProgressEvent {
	if progress > searchCeil {
		progress = searchCeil
	}
	return ProgressEvent{
		Stage:    StageSearching,
		Progress: progress,
		Message:  fmt.Sprintf(format, args...),
	}
}

func downloadingEvent(progress int, message string) ProgressEvent {
	return ProgressEvent{
		Stage:    StageDownloading,
		Progress: progress,
		Message:  message,
	}
}

func convertingEvent(progress int, message string) ProgressEvent {
	if progress < convertFloor {
		progress = convertFloor
	}
	if progress > convertCeil {
		progress = convertCeil
	}
	return ProgressEvent{
		Stage:    StageConverting,
		Progress: progress,
		Message:  message,
	}
}

func completeEvent(downloadURL, filename string) ProgressEvent {
	return ProgressEvent{
		Stage:       StageComplete,
		Progress:    100,
		Message:     fmt.Sprintf("Downloaded %s", filename),
		DownloadURL: downloadURL,
		Filename:    filename,
	}
}

func errorEvent(message string) ProgressEvent {
	return ProgressEvent{
		Stage:   StageError,
		Message: message,
	}
}

// emitter enforces the event-sequence invariants on the way out: progress
// never regresses (later values are clamped up to the previous maximum),
// values stay within [0,100], and nothing is emitted after a terminal event.
// Intermediate events are dropped when the channel is full so progress
// reporting never blocks an acquisition; terminal events always deliver.
type emitter struct {
	ch   chan<- ProgressEvent
	last int
	done bool
}

func newEmitter(ch chan<- ProgressEvent) *emitter {
	return &emitter{ch: ch}
}

func (m *emitter) emit(ev ProgressEvent) {
	if m.done {
		return
	}

	if ev.Progress > 100 {
		ev.Progress = 100
	}
	if ev.Progress < m.last {
		ev.Progress = m.last
	} else {
		m.last = ev.Progress
	}

	if ev.Stage.Terminal() {
		m.done = true
		if m.ch != nil {
			m.ch <- ev
		}
		return
	}

	if m.ch == nil {
		return
	}
	select {
	case m.ch <- ev:
	default:
		// Channel full, skip this update
	}
}
