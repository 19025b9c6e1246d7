package models

import "errors"

// Error taxonomy shared across the storage, repository and reminder layers.
// Callers match with errors.Is; the underlying cause is wrapped alongside.
var (
	// ErrNotFound indicates a record id absent on update or fetch.
	ErrNotFound = errors.New("record not found")

	// ErrStorage indicates an I/O or integrity failure from the store.
	ErrStorage = errors.New("storage failure")

	// ErrSchedulingUnavailable indicates the alarm facility cannot arm
	// exact one-shot timers (capability not granted).
	ErrSchedulingUnavailable = errors.New("scheduling unavailable")

	// ErrInvalidReference indicates a dangling subtask/task relationship
	// detected on read.
	ErrInvalidReference = errors.New("invalid task reference")

	// ErrNotInitialized indicates a component was used before startup
	// wiring completed.
	ErrNotInitialized = errors.New("not initialized")
)
