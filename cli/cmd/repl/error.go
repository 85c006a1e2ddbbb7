package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds    = errors.New("index out of range")
	ErrEditDeclined   = errors.New("decline edit")
	ErrNoSource       = errors.New("no source declaration")
	ErrNoImplicitPart = errors.New("snippet has no implicit part")
	ErrUnknownPart    = errors.New("unknown part")
)
