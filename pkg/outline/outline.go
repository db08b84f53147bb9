// Package outline describes a scene as a plain tree of entries that can be
// printed as YAML or as an indented listing. It is write-only; nothing reads
// an outline back into a scene.
package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

// Entry describes one node.
type Entry struct {
	Kind      string    `yaml:"kind"`
	Name      string    `yaml:"name,omitempty"`
	ID        string    `yaml:"id"`
	Type      string    `yaml:"type,omitempty"`
	Position  []float64 `yaml:"position,omitempty,flow"`
	Rotation  []float64 `yaml:"rotation,omitempty,flow"`
	Pivot     []float64 `yaml:"pivot,omitempty,flow"`
	Primitive string    `yaml:"primitive,omitempty"`
	Triangles int       `yaml:"triangles,omitempty"`
	Children  []*Entry  `yaml:"children,omitempty"`
}

// builder is the scene.Visitor producing entries. Each Apply fills the
// entry for its node and appends it to the entry of the enclosing composite.
type builder struct {
	parent *Entry
	root   *Entry
}

func (b *builder) add(n scene.Node) *Entry {
	e := &Entry{
		Kind: n.Kind().String(),
		Name: n.Name(),
		ID:   scene.ShortID(n),
	}
	if b.parent == nil {
		b.root = e
	} else {
		b.parent.Children = append(b.parent.Children, e)
	}
	return e
}

func (b *builder) ApplyShape(s *scene.Shape) error {
	e := b.add(s)
	if s.Primitive != nil {
		e.Primitive = s.Primitive.String()
	}
	if s.Geometry != nil {
		e.Triangles = s.Geometry.TriangleCount()
	}
	return nil
}

func (b *builder) descend(e *Entry, c scene.Composite) error {
	saved := b.parent
	b.parent = e
	defer func() { b.parent = saved }()
	return scene.Traverse(b, c)
}

func (b *builder) ApplyGroup(g *scene.Group) error {
	return b.descend(b.add(g), g)
}

func (b *builder) ApplyTransform(t *scene.Transform) error {
	e := b.add(t)
	e.Type = t.Type()
	pos, rot, piv := t.Position(), t.Rotation(), t.Pivot()
	e.Position = nonZero(pos[:])
	e.Rotation = nonZero(rot[:])
	e.Pivot = nonZero(piv[:])
	return b.descend(e, t)
}

func nonZero(v []float64) []float64 {
	if lo.EveryBy(v, func(x float64) bool { return x == 0 }) {
		return nil
	}
	return append([]float64(nil), v...)
}

// Build returns the entry tree for root, or nil for a nil root.
func Build(root scene.Node) (*Entry, error) {
	if root == nil {
		return nil, nil
	}
	b := &builder{}
	if err := root.Accept(b); err != nil {
		return nil, err
	}
	return b.root, nil
}

// Count returns the number of entries in the tree.
func (e *Entry) Count() int {
	if e == nil {
		return 0
	}
	return 1 + lo.SumBy(e.Children, func(c *Entry) int { return c.Count() })
}

// WriteYAML encodes the tree under root as a YAML document.
func WriteYAML(w io.Writer, root scene.Node) error {
	e, err := Build(root)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	return enc.Close()
}

// WriteText prints one line per node, indented two spaces per level.
func WriteText(w io.Writer, root scene.Node) error {
	e, err := Build(root)
	if err != nil || e == nil {
		return err
	}
	var sb strings.Builder
	writeText(&sb, e, 0)
	_, err = io.WriteString(w, sb.String())
	return err
}

func writeText(sb *strings.Builder, e *Entry, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	label := e.Name
	if label == "" {
		label = "(" + e.ID + ")"
	}
	fmt.Fprintf(sb, "%s %s", e.Kind, label)
	if e.Type != "" {
		fmt.Fprintf(sb, " type=%s", e.Type)
	}
	if e.Position != nil {
		fmt.Fprintf(sb, " pos=%s", vec(e.Position))
	}
	if e.Rotation != nil {
		fmt.Fprintf(sb, " rot=%s", vec(e.Rotation))
	}
	if e.Pivot != nil {
		fmt.Fprintf(sb, " pivot=%s", vec(e.Pivot))
	}
	if e.Primitive != "" {
		fmt.Fprintf(sb, " [%s]", e.Primitive)
	}
	if e.Triangles > 0 {
		fmt.Fprintf(sb, " tris=%d", e.Triangles)
	}
	sb.WriteByte('\n')
	for _, c := range e.Children {
		writeText(sb, c, depth+1)
	}
}

func vec(v []float64) string {
	return "(" + strings.Join(lo.Map(v, func(x float64, _ int) string {
		return fmt.Sprintf("%g", x)
	}), ",") + ")"
}
