package vector

import (
	"errors"
	"fmt"
)

// Fault taxonomy. Every public operation reports failures through one of
// these sentinels; typed errors below unwrap to them so callers can use
// errors.Is for the category and errors.As for detail.
var (
	// ErrVectorUndefined is returned when the handle is nil or destroyed.
	ErrVectorUndefined = errors.New("undefined or destroyed vector")
	// ErrIndexOutOfBound is returned when an index falls outside the occupied range.
	ErrIndexOutOfBound = errors.New("index out of bound")
	// ErrOutOfMemory is returned when growth would exceed the memory budget.
	ErrOutOfMemory = errors.New("not enough memory to allocate space for the vector")
	// ErrVectorCorrupted is returned when the cursor invariant begin <= end is violated.
	ErrVectorCorrupted = errors.New("vector corrupted")
	// ErrRaceCondition is returned when a primitive cannot take the gate without blocking.
	ErrRaceCondition = errors.New("race condition detected")
	// ErrVectorTooSmall is returned when a destination vector is smaller than the source.
	ErrVectorTooSmall = errors.New("destination vector is smaller than source")
	// ErrVectorDataSize is returned when an operation requires matching element sizes.
	ErrVectorDataSize = errors.New("operation requires vectors with the same element size")
	// ErrVectorEmpty is returned when an operation needs at least one element.
	ErrVectorEmpty = errors.New("vector is empty")
)

// IndexError reports the offending index and the size it was checked against.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of bound: %d (size %d)", e.Index, e.Size)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfBound }

// DataSizeError reports an element size mismatch.
type DataSizeError struct {
	Want int
	Got  int
}

func (e *DataSizeError) Error() string {
	return fmt.Sprintf("element size mismatch: want %d, got %d", e.Want, e.Got)
}

func (e *DataSizeError) Unwrap() error { return ErrVectorDataSize }
