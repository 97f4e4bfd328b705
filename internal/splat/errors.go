package splat

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat reports a .splat stream whose length is not a whole number of records.
	ErrFormat = errors.New("splat: invalid stream size")

	// ErrMissingField reports a source point set lacking a required property.
	ErrMissingField = errors.New("splat: missing required field")

	// ErrDegenerateQuaternion reports a rotation whose norm is zero or not finite.
	ErrDegenerateQuaternion = errors.New("splat: degenerate quaternion")

	// ErrInvalidLimit reports an unusable ratio or max-points setting.
	ErrInvalidLimit = errors.New("splat: invalid limit")
)

// FormatError describes a stream that is not a multiple of RecordSize bytes.
type FormatError struct {
	Path string
	Size int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("file size not a multiple of %d: %s (%d bytes)", RecordSize, e.Path, e.Size)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// MissingFieldError names the first required vertex property absent from a source.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("%s: missing required field %q", e.Path, e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

// PointError attaches a point index to a per-point encoding failure.
type PointError struct {
	Index int
	Err   error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("point %d: %v", e.Index, e.Err)
}

func (e *PointError) Unwrap() error { return e.Err }
