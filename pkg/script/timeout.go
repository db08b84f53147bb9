package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// DefaultTimeout bounds an evaluation when the configuration sets none.
const DefaultTimeout = 5 * time.Second

// ErrSuperseded is returned to an Evaluate call overtaken by a newer one.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

type evalResult struct {
	root   scene.Node
	errors []EvalError
	err    error
}

// waitWithTimeout waits for ch, giving up after timeout or when ctx is done.
// A result whose generation is no longer current is discarded.
//
// On timeout the evaluating goroutine keeps running; its result lands in the
// buffered channel and is never read.
func waitWithTimeout(
	ctx context.Context,
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
	timeout time.Duration,
) (scene.Node, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.root, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation canceled: %w", ctx.Err())
	}
}
