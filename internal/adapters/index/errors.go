package index

import "errors"

// Sentinel kinds for index errors.
var (
	ErrUnknownKind = errors.New("unknown index kind")
)
