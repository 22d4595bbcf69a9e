// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "fmt"

// ValidationError means the caller's input was rejected before any
// external call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// SearchError wraps a failure of the search backend. A run that fails with
// a SearchError made no progress; nothing was processed or persisted.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure on a feedback or preference
// operation. The in-memory state already carries the mutation; only the
// durable write failed.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
