// Package models defines the data model for the track download service.
//
// Request, track, and artifact types are plain data with no behavior beyond
// validation and derivation helpers. The [Model] and [Repository] interfaces
// define the persistence contract used by internal/repositories for the
// download history.
package models
