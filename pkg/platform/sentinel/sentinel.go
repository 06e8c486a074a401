package sentinel

import "errors"

// Sentinel errors for persistence facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: row does not exist
//   - ErrAlreadyUsed: a unique key (gestion year, evidence path) is taken
//   - ErrInvalidState: row is in the wrong state for the requested mutation
//   - ErrConflict: concurrent writer won a race on the same row
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)
