// Package script evaluates scene scripts: a small Lisp, run in a sandboxed
// zygomys interpreter, whose builtins build scene graphs through the
// primitive factory.
//
//	(def leg (cylinder :radius 0.5 :height 10 :segments 16))
//	(scene
//	  (group "table"
//	    (transform "top" :position (vec3 0 0 10) (box :dimensions (vec3 20 10 1)))
//	    (transform "leg" :position (vec3 9 4 5) leg)))
package script

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/perryiv/cadkit-sub042/pkg/config"
	"github.com/perryiv/cadkit-sub042/pkg/factory"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// RootName names the group returned for scripts that build no scene.
const RootName = "scene"

// EvalError is a non-fatal problem in user code, such as a parse error or a
// bad builtin argument.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates scene scripts. It is safe for concurrent use; every call
// to Evaluate runs in a fresh sandbox, and only the newest call's result is
// delivered.
type Engine struct {
	factory *factory.Factory
	log     *slog.Logger
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine returns an engine that builds primitives with f. A zero
// cfg.Timeout means DefaultTimeout.
func NewEngine(f *factory.Factory, cfg config.Script, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if f == nil {
		f = factory.New(config.Default().Factory, log)
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{factory: f, log: log, timeout: timeout}
}

// Timeout returns the per-evaluation limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate runs source and returns the scene it builds.
//
// The root is the node passed to (scene ...); failing that, the value of the
// last top-level form if it is a node; failing that, an empty group named
// RootName.
//
// Return semantics:
//   - success: root, nil, nil
//   - parse or runtime error in the script: nil, errors, nil
//   - timeout, cancellation, panic or a newer call: nil, nil, error
func (e *Engine) Evaluate(ctx context.Context, source string) (scene.Node, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		root, evalErrs, err := e.evaluate(source)
		ch <- evalResult{root: root, errors: evalErrs, err: err}
	}()

	root, evalErrs, err := waitWithTimeout(ctx, ch, gen, &e.mu, &e.generation, e.timeout)
	switch {
	case err != nil:
		e.log.Warn("script evaluation failed", "generation", gen, "err", err)
	case len(evalErrs) > 0:
		e.log.Debug("script has errors", "generation", gen, "errors", len(evalErrs))
	default:
		e.log.Debug("script evaluated", "generation", gen, "nodes", scene.Count(root))
	}
	return root, evalErrs, err
}

func (e *Engine) evaluate(source string) (scene.Node, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return scene.NewGroup(RootName), nil, nil
	}

	// The sandbox keeps scripts away from the filesystem and system calls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	b := &builder{factory: e.factory, log: e.log}
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if b.root != nil {
		return b.root, nil, nil
	}
	if n, ok := last.(*sexpNode); ok && n.node.Parent() == nil {
		return n.node, nil, nil
	}
	return scene.NewGroup(RootName), nil, nil
}

var (
	// linePattern matches "Error on line N: ..." as zygomys reports it.
	linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	// linePatternShort matches "line N: ...".
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError turns a zygomys error into EvalErrors, pulling out the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
