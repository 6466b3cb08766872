package repos

import "errors"

// Client-facing failures. The messages are part of the HTTP contract.
var (
	ErrInvalidID    = errors.New("Invalid ID")
	ErrNotFound     = errors.New("ID not found")
	ErrInvalidTechs = errors.New("Invalid techs scheme")
)

// ErrDuplicateID is returned when a generated id is already taken.
var ErrDuplicateID = errors.New("duplicate id")
