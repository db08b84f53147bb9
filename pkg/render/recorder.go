package render

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Op is one recorded backend call.
type Op struct {
	Kind   string // "push", "pop" or "draw"
	Matrix mgl64.Mat4
	Draw   DrawCall
}

func (o Op) String() string {
	if o.Kind == "draw" {
		return "draw " + o.Draw.Path
	}
	return o.Kind
}

// Recorder is a Backend that keeps every call. It can fail a draw on
// request.
type Recorder struct {
	Ops []Op
	// FailOn makes Draw return an error for this path.
	FailOn string

	depth, maxDepth int
}

func (r *Recorder) PushMatrix(m mgl64.Mat4) {
	r.Ops = append(r.Ops, Op{Kind: "push", Matrix: m})
	r.depth++
	r.maxDepth = max(r.maxDepth, r.depth)
}

func (r *Recorder) PopMatrix() {
	r.Ops = append(r.Ops, Op{Kind: "pop"})
	r.depth--
}

func (r *Recorder) Draw(c DrawCall) error {
	if c.Path == r.FailOn {
		return fmt.Errorf("backend refused %s", c.Path)
	}
	r.Ops = append(r.Ops, Op{Kind: "draw", Draw: c})
	return nil
}

// Depth returns the current matrix stack depth; zero after a balanced run.
func (r *Recorder) Depth() int { return r.depth }

// MaxDepth returns the deepest matrix nesting seen.
func (r *Recorder) MaxDepth() int { return r.maxDepth }

// Draws returns the recorded draw calls in order.
func (r *Recorder) Draws() []DrawCall {
	var out []DrawCall
	for _, op := range r.Ops {
		if op.Kind == "draw" {
			out = append(out, op.Draw)
		}
	}
	return out
}

// Triangles returns the total triangle count drawn.
func (r *Recorder) Triangles() int {
	n := 0
	for _, d := range r.Draws() {
		n += d.Geometry.TriangleCount()
	}
	return n
}

// Script returns the calls as one line each, for logs and tests.
func (r *Recorder) Script() string {
	lines := make([]string, len(r.Ops))
	for i, op := range r.Ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}
