package domain

import "errors"

// ErrFetch indicates the downstream entity API was unreachable or returned a
// malformed dataset. It is recovered locally by the refresher (the previous
// snapshot keeps serving) and never reaches the request path as a failure.
var ErrFetch = errors.New("downstream fetch failed")
