package entity

import "errors"

// Structural failures end the current cycle. Rejections stay inside the item's outcome.
var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrDispatchRejected   = errors.New("dispatch rejected")
	ErrPersistenceFailure = errors.New("tracker persistence failure")
)

// ErrRecordNotFound is returned by tracker stores that do not hold the requested tracker.
var ErrRecordNotFound = errors.New("record not found")
