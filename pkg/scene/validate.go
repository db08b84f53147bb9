package scene

import (
	"fmt"
)

// ValidationSeverity indicates whether a finding makes the scene unusable
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // scene must not be rendered
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Node     Node               // offending node, nil for scene-level findings
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Node == nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, Label(e.Node), e.Message)
}

// ValidationResult bundles blocking errors and advisory warnings from all
// validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the result holds no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks on the tree under root. An empty
// slice means the tree is well formed. It never mutates the tree and
// terminates even on trees corrupted into cycles.
func Validate(root Node) []ValidationError {
	if root == nil {
		return []ValidationError{{Message: "scene has no root", Severity: SeverityError}}
	}
	nodes, errs := collect(root)
	errs = append(errs, validateParents(nodes)...)
	errs = append(errs, validateDuplicateChildren(nodes)...)
	errs = append(errs, validateNames(nodes)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates errors
// from warnings.
func ValidateAll(root Node) ValidationResult {
	var result ValidationResult
	findings := Validate(root)
	if root != nil {
		nodes, _ := collect(root)
		findings = append(findings, validateGeometry(nodes)...)
	}
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}

// collect gathers every node reachable from root exactly once, using DFS
// with 3-color marking. Meeting a gray node means the child lists form a
// cycle; the back edge is reported and not followed.
func collect(root Node) ([]Node, []ValidationError) {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*nodeBase]int)
	var nodes []Node
	var errs []ValidationError

	var visit func(n Node)
	visit = func(n Node) {
		switch color[n.base()] {
		case black:
			return
		case gray:
			errs = append(errs, ValidationError{
				Node:     n,
				Message:  "cycle detected: node is its own ancestor",
				Severity: SeverityError,
			})
			return
		}
		color[n.base()] = gray
		nodes = append(nodes, n)
		if c, ok := n.(Composite); ok {
			for _, child := range c.group().children {
				visit(child)
			}
		}
		color[n.base()] = black
	}
	visit(root)
	return nodes, errs
}

// validateParents checks that every child records its holder as parent.
func validateParents(nodes []Node) []ValidationError {
	var errs []ValidationError
	for _, n := range nodes {
		c, ok := n.(Composite)
		if !ok {
			continue
		}
		for _, child := range c.group().children {
			if child.base().self != child {
				errs = append(errs, ValidationError{
					Node:     child,
					Message:  fmt.Sprintf("child of %s is stored as an embedded group, not as its own kind", Label(n)),
					Severity: SeverityError,
				})
			}
			p := child.Parent()
			if p == nil || p.base() != n.base() {
				errs = append(errs, ValidationError{
					Node:     child,
					Message:  fmt.Sprintf("listed as child of %s but parent link does not match", Label(n)),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateDuplicateChildren checks that no group lists the same node twice.
func validateDuplicateChildren(nodes []Node) []ValidationError {
	var errs []ValidationError
	for _, n := range nodes {
		c, ok := n.(Composite)
		if !ok {
			continue
		}
		seen := make(map[*nodeBase]bool)
		for _, child := range c.group().children {
			if seen[child.base()] {
				errs = append(errs, ValidationError{
					Node:     n,
					Message:  fmt.Sprintf("child %s appears more than once", Label(child)),
					Severity: SeverityError,
				})
			}
			seen[child.base()] = true
		}
	}
	return errs
}

// validateNames warns when two nodes share a non-empty name, since Find and
// Path become ambiguous. A node named like its parent, as a factory shape is
// named like its transform, is not counted.
func validateNames(nodes []Node) []ValidationError {
	var errs []ValidationError
	byName := make(map[string]int)
	var order []string
	for _, n := range nodes {
		if n.Name() == "" {
			continue
		}
		if p := n.Parent(); p != nil && p.Name() == n.Name() {
			continue
		}
		if byName[n.Name()] == 0 {
			order = append(order, n.Name())
		}
		byName[n.Name()]++
	}
	for _, name := range order {
		if count := byName[name]; count > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, count),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateGeometry runs the geometric tier: primitive dimensions, geometry
// indices and degenerate rotations.
func validateGeometry(nodes []Node) []ValidationError {
	var errs []ValidationError
	for _, n := range nodes {
		switch n := n.(type) {
		case *Shape:
			if n.Primitive == nil {
				errs = append(errs, ValidationError{
					Node:     n,
					Message:  "shape has no primitive",
					Severity: SeverityError,
				})
			} else if err := n.Primitive.Validate(); err != nil {
				errs = append(errs, ValidationError{Node: n, Message: err.Error(), Severity: SeverityError})
			}
			if n.Geometry != nil {
				if err := n.Geometry.Check(); err != nil {
					errs = append(errs, ValidationError{Node: n, Message: "geometry: " + err.Error(), Severity: SeverityError})
				}
			}
		case *Transform:
			r := n.Rotation()
			if r.Vec3().Len() == 0 && r.W() != 0 {
				errs = append(errs, ValidationError{
					Node:     n,
					Message:  fmt.Sprintf("rotation angle %g has a zero axis and is ignored", r.W()),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
