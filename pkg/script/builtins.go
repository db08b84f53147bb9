package script

import (
	"fmt"
	"log/slog"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/factory"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// builder collects the state one evaluation's builtins share.
type builder struct {
	factory *factory.Factory
	log     *slog.Logger
	root    scene.Node
	made    int
}

type builtinFunc func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the scene builtins into env. Source must have
// been run through preprocessSource so that keywords are recognizable.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	env.AddFunction("vec3", b.vec3)
	env.AddFunction("rotation", b.rotation)
	env.AddFunction("group", b.group)
	env.AddFunction("transform", b.transform)
	env.AddFunction("scene", b.scene)
	for _, kind := range []factory.Kind{factory.Cube, factory.Box, factory.Sphere, factory.Cylinder, factory.Cone} {
		env.AddFunction(kind.String(), b.primitive(kind))
	}
}

// (vec3 1 2 3)
func (b *builder) vec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var v mgl64.Vec3
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
		}
		v[i] = f
	}
	return &sexpVec3{v: v}, nil
}

// (rotation :z 90)
// (rotation (vec3 1 1 0) :radians 0.5)
// (rotation :axis :x :degrees 45)
//
// A bare angle is in degrees.
func (b *builder) rotation(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	// A leading :x/:y/:z is an axis, not a keyword with a value.
	if len(args) > 0 {
		if k, ok := keyword(args[0]); ok && (k == "x" || k == "y" || k == "z") {
			args = append([]zygo.Sexp{&zygo.SexpStr{S: kwPrefix + "axis"}}, args...)
		}
	}
	pa := parseArgs(args)
	if err := pa.only("axis", "degrees", "radians"); err != nil {
		return zygo.SexpNull, fmt.Errorf("rotation: %w", err)
	}

	axisArg, ok := pa.kw["axis"]
	if !ok {
		if len(pa.positional) == 0 {
			return zygo.SexpNull, fmt.Errorf("rotation: missing axis")
		}
		axisArg, pa.positional = pa.positional[0], pa.positional[1:]
	}
	axis, err := toAxis(axisArg)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("rotation: %w", err)
	}

	var radians float64
	_, hasDeg := pa.kw["degrees"]
	_, hasRad := pa.kw["radians"]
	switch {
	case hasDeg && hasRad:
		return zygo.SexpNull, fmt.Errorf("rotation: give :degrees or :radians, not both")
	case hasRad:
		if radians, err = toFloat64(pa.kw["radians"]); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotation: radians: %w", err)
		}
	case hasDeg:
		d, err := toFloat64(pa.kw["degrees"])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotation: degrees: %w", err)
		}
		radians = mgl64.DegToRad(d)
	case len(pa.positional) > 0:
		d, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotation: angle: %w", err)
		}
		pa.positional = pa.positional[1:]
		radians = mgl64.DegToRad(d)
	default:
		return zygo.SexpNull, fmt.Errorf("rotation: missing angle")
	}
	if len(pa.positional) > 0 {
		return zygo.SexpNull, fmt.Errorf("rotation: unexpected argument %s", describe(pa.positional[0]))
	}
	return &sexpRotation{r: axis.Vec4(radians)}, nil
}

// (group "legs" child ...)
func (b *builder) group(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.only("name"); err != nil {
		return zygo.SexpNull, fmt.Errorf("group: %w", err)
	}
	n, err := pa.name()
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
	}
	g := scene.NewGroup(n)
	if err := appendChildren(g, pa.positional); err != nil {
		return zygo.SexpNull, fmt.Errorf("group %q: %w", n, err)
	}
	b.made++
	return &sexpNode{node: g}, nil
}

// (transform "leg" :position (vec3 1 0 0) :rotation (rotation :z 90)
//
//	:pivot (vec3 0 0 0) :type "joint" child ...)
func (b *builder) transform(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := pa.only("name", "position", "rotation", "pivot", "type"); err != nil {
		return zygo.SexpNull, fmt.Errorf("transform: %w", err)
	}
	n, err := pa.name()
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("transform: name: %w", err)
	}
	t := scene.NewTransform(n)

	if v, ok := pa.kw["position"]; ok {
		p, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: position: %w", err)
		}
		t.SetPosition(p)
	}
	if v, ok := pa.kw["rotation"]; ok {
		r, err := toRotation(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: rotation: %w", err)
		}
		t.SetRotation(r)
	}
	if v, ok := pa.kw["pivot"]; ok {
		p, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: pivot: %w", err)
		}
		t.SetPivot(p)
	}
	if v, ok := pa.kw["type"]; ok {
		typ, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("transform: type: %w", err)
		}
		t.SetType(typ)
	}

	if err := appendChildren(t, pa.positional); err != nil {
		return zygo.SexpNull, fmt.Errorf("transform %q: %w", n, err)
	}
	b.made++
	return &sexpNode{node: t}, nil
}

// (scene root) makes root the result of the evaluation.
func (b *builder) scene(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("scene requires exactly 1 argument, got %d", len(args))
	}
	n, ok := args[0].(*sexpNode)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("scene: expected scene node, got %s", describe(args[0]))
	}
	if n.node.Parent() != nil {
		return zygo.SexpNull, fmt.Errorf("scene: %s already has a parent", scene.Label(n.node))
	}
	if b.root != nil {
		b.log.Warn("scene root replaced", "old", scene.Label(b.root), "new", scene.Label(n.node))
	}
	b.root = n.node
	return n, nil
}

// paramSetter reads one keyword value into factory parameters.
type paramSetter func(p *factory.Params, v zygo.Sexp) error

func floatParam(field func(p *factory.Params) *float64) paramSetter {
	return func(p *factory.Params, v zygo.Sexp) error {
		f, err := toFloat64(v)
		*field(p) = f
		return err
	}
}

func intParam(field func(p *factory.Params) *int) paramSetter {
	return func(p *factory.Params, v zygo.Sexp) error {
		n, err := toInt(v)
		*field(p) = n
		return err
	}
}

func vecParam(field func(p *factory.Params) *mgl64.Vec3) paramSetter {
	return func(p *factory.Params, v zygo.Sexp) error {
		vec, err := toVec3(v)
		*field(p) = vec
		return err
	}
}

var (
	centerParam       = vecParam(func(p *factory.Params) *mgl64.Vec3 { return &p.Center })
	heightParam       = floatParam(func(p *factory.Params) *float64 { return &p.Height })
	radiusParam       = floatParam(func(p *factory.Params) *float64 { return &p.Radius })
	segmentsParam     = intParam(func(p *factory.Params) *int { return &p.Segments })
	subdivisionsParam = intParam(func(p *factory.Params) *int { return &p.Subdivisions })
)

// primitiveKeywords lists the keywords each primitive builtin takes besides
// :name.
var primitiveKeywords = map[factory.Kind]map[string]paramSetter{
	factory.Cube: {
		"center": centerParam,
		"size":   floatParam(func(p *factory.Params) *float64 { return &p.Size }),
	},
	factory.Box: {
		"center":     centerParam,
		"dimensions": vecParam(func(p *factory.Params) *mgl64.Vec3 { return &p.Dimensions }),
	},
	factory.Sphere: {
		"center":       centerParam,
		"radius":       radiusParam,
		"subdivisions": subdivisionsParam,
	},
	factory.Cylinder: {
		"center":   centerParam,
		"height":   heightParam,
		"radius":   radiusParam,
		"segments": segmentsParam,
	},
	factory.Cone: {
		"center":     centerParam,
		"height":     heightParam,
		"radius":     radiusParam,
		"top-radius": floatParam(func(p *factory.Params) *float64 { return &p.TopRadius }),
		"segments":   segmentsParam,
	},
}

// primitive returns the builtin for kind, e.g.
//
//	(sphere "ball" :radius 2 :center (vec3 0 0 5) :subdivisions 4)
//
// Parameters the call leaves out keep the factory's unit defaults.
func (b *builder) primitive(kind factory.Kind) builtinFunc {
	setters := primitiveKeywords[kind]
	allowed := []string{"name"}
	for k := range setters {
		allowed = append(allowed, k)
	}

	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.only(allowed...); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
		}
		p := b.factory.Params()
		n, err := pa.name()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", kind, err)
		}
		p.Name = n
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("%s: unexpected argument %s", kind, describe(pa.positional[0]))
		}
		for _, k := range pa.order {
			set, ok := setters[k]
			if !ok {
				continue
			}
			if err := set(&p, pa.kw[k]); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %s: %w", kind, k, err)
			}
		}

		t, err := b.factory.MakePrimitive(kind, p)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.made++
		return &sexpNode{node: t}, nil
	}
}

func appendChildren(parent scene.Composite, args []zygo.Sexp) error {
	for _, a := range args {
		nodes, err := toNodes(a)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if err := parent.Append(n); err != nil {
				return fmt.Errorf("add %s: %w", scene.Label(n), err)
			}
		}
	}
	return nil
}
