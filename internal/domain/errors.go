package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfLoop is returned when both pipe endpoints are on one node.
	ErrSelfLoop = errors.New("both endpoints are on the same node")
	// ErrDuplicateConnection is returned when the node pair is already connected.
	ErrDuplicateConnection = errors.New("nodes are already connected")
	// ErrInvalidPortReference is returned for a port index outside 0..3.
	ErrInvalidPortReference = errors.New("invalid port reference")
	// ErrFileFormat is returned for unsupported versions or malformed records.
	ErrFileFormat = errors.New("file format error")
	// ErrSpatialResolution is returned when no node is found at a stored coordinate.
	ErrSpatialResolution = errors.New("no node at stored coordinate")
	// ErrIO wraps underlying read/write failures.
	ErrIO = errors.New("i/o error")

	ErrNodeNotFound     = errors.New("node not found")
	ErrPipeNotFound     = errors.New("pipe not found")
	ErrInvalidAttribute = errors.New("invalid attribute value")
	// ErrJobInFlight is returned when an export or import is already pending.
	ErrJobInFlight = errors.New("a job of this kind is already running")
)

// FileFormatError describes why a document was rejected.
type FileFormatError struct {
	Field  string
	Reason string
}

func (e *FileFormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("file format error: %s", e.Reason)
	}
	return fmt.Sprintf("file format error: %s: %s", e.Field, e.Reason)
}

func (e *FileFormatError) Unwrap() error { return ErrFileFormat }

// SpatialResolutionError reports the pipe record whose endpoint could not be
// matched to a node.
type SpatialResolutionError struct {
	Record   int
	Endpoint string // "a" or "b"
	X, Y     float64
}

func (e *SpatialResolutionError) Error() string {
	return fmt.Sprintf("pipe %d endpoint %s: no node at (%g, %g)", e.Record, e.Endpoint, e.X, e.Y)
}

func (e *SpatialResolutionError) Unwrap() error { return ErrSpatialResolution }

// InvalidPortReferenceError reports a port index outside 0..3. Record is -1
// when the reference did not come from a document.
type InvalidPortReferenceError struct {
	Record int
	Index  int
}

func (e *InvalidPortReferenceError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("invalid port reference %d", e.Index)
	}
	return fmt.Sprintf("pipe %d: invalid port reference %d", e.Record, e.Index)
}

func (e *InvalidPortReferenceError) Unwrap() error { return ErrInvalidPortReference }

// IOError wraps a failed read or write of a storage location.
type IOError struct {
	Op       string
	Location string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
}

// Unwrap exposes both ErrIO and the underlying cause to errors.Is.
func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }
