package catalog

import "errors"

var (
	// ErrUnknownField is returned when a merge names a column that is not
	// one of the enrichable fields.
	ErrUnknownField = errors.New("unknown enrichable field")
	// ErrNotFound is returned when a movie id does not exist.
	ErrNotFound = errors.New("movie not found")
)
