package common

import "errors"

// ErrContent marks an import that cannot be processed at all: an unreadable
// or empty file, an unsupported shape, or a missing group name.
// Nothing is written to the store when it is returned.
var ErrContent = errors.New("invalid import content")
