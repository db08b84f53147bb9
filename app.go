package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/perryiv/cadkit-sub042/pkg/bounds"
	"github.com/perryiv/cadkit-sub042/pkg/config"
	"github.com/perryiv/cadkit-sub042/pkg/factory"
	"github.com/perryiv/cadkit-sub042/pkg/kernel"
	"github.com/perryiv/cadkit-sub042/pkg/kernel/manifold"
	"github.com/perryiv/cadkit-sub042/pkg/kernel/sdfx"
	"github.com/perryiv/cadkit-sub042/pkg/logging"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
	"github.com/perryiv/cadkit-sub042/pkg/script"
	"github.com/perryiv/cadkit-sub042/pkg/tessellate"
)

// colorPalette assigns distinct colors to shapes in traversal order.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the scene pipeline: script, validation, tessellation, bounds.
type App struct {
	cfg     config.Config
	log     *slog.Logger
	factory *factory.Factory
	engine  *script.Engine
	kernel  kernel.Kernel
}

// MeshData is one shape's triangles in world space.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Path     string    `json:"path"`
	Color    string    `json:"color"`
}

// Message is an error or warning tied, where known, to a script line or a
// node path.
type Message struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (m Message) String() string {
	switch {
	case m.Line > 0:
		return fmt.Sprintf("line %d: %s", m.Line, m.Message)
	case m.Path != "":
		return fmt.Sprintf("%s: %s", m.Path, m.Message)
	}
	return m.Message
}

// Result is everything one evaluation produces. Slices are never nil.
type Result struct {
	Root     scene.Node  `json:"-"`
	Meshes   []MeshData  `json:"meshes"`
	Errors   []Message   `json:"errors"`
	Warnings []Message   `json:"warnings"`
	Bounds   bounds.Box3 `json:"-"`
}

// OK reports whether the evaluation produced no errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// NewApp wires the pipeline from cfg.
func NewApp(cfg config.Config, log *slog.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	f := factory.New(cfg.Factory, log.With("component", "factory"))
	return &App{
		cfg:     cfg,
		log:     log,
		factory: f,
		engine:  script.NewEngine(f, cfg.Script, log.With("component", "script")),
		kernel:  newKernel(cfg, log),
	}
}

// newKernel returns the configured geometry kernel. Manifold needs a cgo
// build; without it the sdfx kernel is used.
func newKernel(cfg config.Config, log *slog.Logger) kernel.Kernel {
	if cfg.Mesh.Kernel == "manifold" {
		k, err := manifold.New(cfg.Factory.Segments)
		if err == nil {
			return k
		}
		log.Warn("manifold kernel unavailable, using sdfx", "err", err)
	}
	return sdfx.New(cfg.Mesh.Cells)
}

// Factory returns the primitive factory the app builds with.
func (a *App) Factory() *factory.Factory { return a.factory }

func (a *App) tessellateOptions() tessellate.Options {
	if a.cfg.Mesh.Source == "geometry" {
		return tessellate.Options{Source: tessellate.SourceGeometry}
	}
	return tessellate.Options{Source: tessellate.SourceKernel}
}

// Load evaluates source and validates the scene without meshing it.
func (a *App) Load(ctx context.Context, source string) Result {
	result := Result{
		Meshes:   []MeshData{},
		Errors:   []Message{},
		Warnings: []Message{},
		Bounds:   bounds.Empty(),
	}

	root, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		a.log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, Message{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(evalErrs) > 0 {
		return result
	}

	result.Root = root
	checked := scene.ValidateAll(root)
	for _, w := range checked.Warnings {
		result.Warnings = append(result.Warnings, findingMessage(w))
	}
	for _, e := range checked.Errors {
		result.Errors = append(result.Errors, findingMessage(e))
	}
	return result
}

// Evaluate runs the whole pipeline on source.
func (a *App) Evaluate(ctx context.Context, source string) Result {
	result := a.Load(ctx, source)
	if !result.OK() {
		return result
	}

	box, err := bounds.Compute(result.Root)
	if err != nil {
		result.Errors = append(result.Errors, Message{Message: "bounds: " + err.Error()})
		return result
	}
	result.Bounds = box

	meshes, err := tessellate.Tessellate(result.Root, a.kernel, a.tessellateOptions())
	if err != nil {
		a.log.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, Message{Message: "tessellation failed: " + err.Error()})
		return result
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Path:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	a.log.Info("scene evaluated",
		"shapes", len(meshes),
		"warnings", len(result.Warnings),
		"bounds", box.String(),
	)
	return result
}

func findingMessage(v scene.ValidationError) Message {
	m := Message{Message: v.Message}
	if v.Node != nil {
		m.Path = scene.Path(v.Node)
	}
	return m
}
