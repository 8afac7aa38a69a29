package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Acquisition errors, one per failure class in the download chain.
	// ErrBackendUnavailable marks a skipped strategy, not a failed one.
	ErrBackendUnavailable     = fmt.Errorf("backend unavailable")
	ErrNoMatchFound           = fmt.Errorf("no match found")
	ErrTransferFailed         = fmt.Errorf("transfer failed")
	ErrTimeout                = fmt.Errorf("operation timed out")
	ErrAllStrategiesExhausted = fmt.Errorf("all download strategies exhausted")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTrackNotFound      = fmt.Errorf("track not found")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
