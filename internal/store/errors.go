package store

import "errors"

// Sentinel errors every Store implementation must return so callers can
// branch on failure kind without depending on the backing driver.
var (
	ErrNotFound            = errors.New("store: not found")
	ErrDuplicateName       = errors.New("store: duplicate name")
	ErrForeignKeyViolation = errors.New("store: foreign key violation")
)
