// Package manifold provides a cgo geometry kernel bound to the Manifold
// library. Without the "manifold" build tag New reports ErrUnavailable and
// callers fall back to another kernel.
//
// Build with: go build -tags=manifold
package manifold

import "errors"

// DefaultSegments is the circumference resolution used when New is given
// fewer than three segments.
const DefaultSegments = 32

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")
