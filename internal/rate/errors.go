package rate

import "errors"

// ErrLimited is returned by Allow when the caller's window is over the
// configured ceiling.
var ErrLimited = errors.New("rate limited")
