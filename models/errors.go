package models

import "fmt"

// ValidationError reports malformed or empty input before any write
// happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}

// StorageError wraps connectivity, constraint or transaction failures
// from the persistent store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// EmbeddingError reports an unavailable embedding function or a vector
// of unexpected dimension.
type EmbeddingError struct {
	Op  string
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding error: %s: %v", e.Op, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// TimeoutError reports an operation that exceeded its deadline rather
// than silently truncating results.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// SearchError is fatal only when every search backend has failed; a
// single backend failure degrades to the other backend instead.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search error: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
