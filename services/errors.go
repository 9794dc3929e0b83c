package services

import "errors"

// Business-rule violations checked before any mutation. Handlers map these
// to flash messages and redirect back to the originating form.
var (
	ErrEmptyName               = errors.New("name must not be empty")
	ErrDuplicatePlate          = errors.New("plate already registered")
	ErrHasDependents           = errors.New("record has dependent rows")
	ErrAlreadyReturned         = errors.New("utilization already returned")
	ErrFutureReturnDate        = errors.New("return date is in the future")
	ErrReturnKmBelowDelivery   = errors.New("return km below delivery km")
	ErrReturnKmBelowCheckpoint = errors.New("return km below last checkpoint")
	ErrCheckpointKmOrder       = errors.New("end km below start km")
	ErrInvalidMonth            = errors.New("month must use the YYYY-MM format")
	ErrLastAdmin               = errors.New("cannot remove the last active admin")
)
