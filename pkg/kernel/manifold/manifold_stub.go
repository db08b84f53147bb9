//go:build !manifold

package manifold

import "github.com/perryiv/cadkit-sub042/pkg/kernel"

// New reports ErrUnavailable; build with -tags=manifold to enable.
func New(segments int) (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
