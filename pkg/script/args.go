package script

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// sexpVec3 carries a vector between builtins.
type sexpVec3 struct {
	v mgl64.Vec3
}

func (s *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", s.v[0], s.v[1], s.v[2])
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRotation carries an axis-angle rotation, angle in radians.
type sexpRotation struct {
	r mgl64.Vec4
}

func (s *sexpRotation) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rotation (vec3 %g %g %g) :radians %g)", s.r[0], s.r[1], s.r[2], s.r[3])
}
func (s *sexpRotation) Type() *zygo.RegisteredType { return nil }

// sexpNode carries a scene node so that builtins can nest.
type sexpNode struct {
	node scene.Node
}

func (s *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", s.node.Kind(), scene.Label(s.node))
}
func (s *sexpNode) Type() *zygo.RegisteredType { return nil }

// kwArgs is an argument list split into :keyword values and the rest.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// parseArgs pairs each keyword with the value after it. A trailing keyword
// with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := keyword(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if _, seen := pa.kw[name]; !seen {
			pa.order = append(pa.order, name)
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i++
		} else {
			pa.kw[name] = zygo.SexpNull
		}
	}
	return pa
}

// only reports the first keyword that is not in allowed.
func (pa kwArgs) only(allowed ...string) error {
	for _, name := range pa.order {
		known := false
		for _, a := range allowed {
			if a == name {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown keyword :%s", name)
		}
	}
	return nil
}

// name takes the :name keyword, or a leading positional string, and removes
// the positional form from the list.
func (pa *kwArgs) name() (string, error) {
	if v, ok := pa.kw["name"]; ok {
		return toString(v)
	}
	if len(pa.positional) > 0 {
		if s, ok := pa.positional[0].(*zygo.SexpStr); ok {
			pa.positional = pa.positional[1:]
			return s.S, nil
		}
	}
	return "", nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected whole number, got %g", f)
	}
	return int(f), nil
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toKeywordString accepts both :z and "z".
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %s", describe(s))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

// toAxis accepts a vec3 or one of :x, :y, :z.
func toAxis(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("expected axis vec3 or :x, :y, :z: %w", err)
	}
	switch name {
	case "x":
		return mgl64.Vec3{1, 0, 0}, nil
	case "y":
		return mgl64.Vec3{0, 1, 0}, nil
	case "z":
		return mgl64.Vec3{0, 0, 1}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("invalid axis %q, expected x, y or z", name)
}

func toRotation(s zygo.Sexp) (mgl64.Vec4, error) {
	if r, ok := s.(*sexpRotation); ok {
		return r.r, nil
	}
	return mgl64.Vec4{}, fmt.Errorf("expected rotation, got %s", describe(s))
}

// toNodes flattens nodes, lists and arrays of nodes. Nil entries are
// dropped so that (if ...) without an else branch can sit among children.
func toNodes(s zygo.Sexp) ([]scene.Node, error) {
	switch v := s.(type) {
	case *sexpNode:
		return []scene.Node{v.node}, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, err
		}
		var out []scene.Node
		for _, item := range items {
			nodes, err := toNodes(item)
			if err != nil {
				return nil, err
			}
			out = append(out, nodes...)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected scene node, got %s", describe(s))
}

func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	if name, ok := keyword(s); ok {
		return ":" + name
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}
