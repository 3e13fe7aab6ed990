package entitystore

import "errors"

// The repository surfaces these as distinct, programmatically
// distinguishable failures so callers can render distinct states
// ("offline, no data" vs "server error"). They are never collapsed into a
// generic error.
var (
	// ErrInvalidID means the id failed validation; no I/O was attempted.
	ErrInvalidID = errors.New("entitystore: invalid entity id")
	// ErrRemoteUnavailable means the device was connected but the remote
	// call failed. The classified remote kind remains inspectable through
	// errors.Is on the wrapped error.
	ErrRemoteUnavailable = errors.New("entitystore: remote unavailable")
	// ErrCacheMiss means the device was offline and no usable cached record
	// exists.
	ErrCacheMiss = errors.New("entitystore: no cached entity")
)
