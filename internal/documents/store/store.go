// Package store persists per-user document records.
//
// Errors: sentinel.ErrNotFound when the user or record is missing,
// sentinel.ErrConflict when Init runs twice for a user, sentinel.ErrInvalidState
// when a conditional transition matches no row.
package store
