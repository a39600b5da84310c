package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) and services translate them into coded domain errors.
//
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: a uniqueness constraint would be broken
//   - ErrInvalidState: entity in the wrong state for the requested transition,
//     e.g. a verify that would modify zero rows
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
