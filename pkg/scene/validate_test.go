package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func makeTree(t *testing.T) (*Group, *Transform, *Shape) {
	t.Helper()
	root := NewGroup("root")
	tr := NewTransform("arm")
	s := NewShape("hand", BoxPrimitive{Size: mgl64.Vec3{1, 2, 3}})
	if err := root.Append(tr); err != nil {
		t.Fatal(err)
	}
	if err := tr.Append(s); err != nil {
		t.Fatal(err)
	}
	return root, tr, s
}

func hasFinding(findings []ValidationError, substr string) bool {
	for _, f := range findings {
		if strings.Contains(f.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateCleanTree(t *testing.T) {
	root, _, _ := makeTree(t)
	if errs := Validate(root); len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
	res := ValidateAll(root)
	if !res.OK() || len(res.Warnings) != 0 {
		t.Errorf("expected clean result, got %+v", res)
	}
}

func TestValidateNilRoot(t *testing.T) {
	errs := Validate(nil)
	if len(errs) != 1 || errs[0].Severity != SeverityError {
		t.Fatalf("expected one error for nil root, got %v", errs)
	}
	if ValidateAll(nil).OK() {
		t.Error("ValidateAll(nil) should not be OK")
	}
}

func TestValidateBrokenParentLink(t *testing.T) {
	root, _, s := makeTree(t)
	s.parent = root // corrupt: listed under arm, points at root

	errs := Validate(root)
	if !hasFinding(errs, "parent link does not match") {
		t.Errorf("expected parent mismatch, got %v", errs)
	}
}

func TestValidateDuplicateChild(t *testing.T) {
	root, tr, s := makeTree(t)
	tr.children = append(tr.children, s) // bypasses Append

	errs := Validate(root)
	if !hasFinding(errs, "appears more than once") {
		t.Errorf("expected duplicate child, got %v", errs)
	}
}

func TestValidateCycleTerminates(t *testing.T) {
	root, tr, _ := makeTree(t)
	tr.children = append(tr.children, root) // bypasses the ancestor check

	errs := Validate(root)
	if !hasFinding(errs, "cycle detected") {
		t.Errorf("expected cycle, got %v", errs)
	}
	for _, e := range errs {
		if e.Error() == "" {
			t.Error("empty error text")
		}
	}
}

func TestValidateDuplicateNamesWarn(t *testing.T) {
	root, tr, _ := makeTree(t)
	if err := tr.Append(NewShape("hand", SpherePrimitive{Radius: 1})); err != nil {
		t.Fatal(err)
	}
	res := ValidateAll(root)
	if !res.OK() {
		t.Errorf("duplicate names should not be errors: %v", res.Errors)
	}
	if !hasFinding(res.Warnings, `duplicate name "hand"`) {
		t.Errorf("expected duplicate name warning, got %v", res.Warnings)
	}
}

func TestValidateGeometryTier(t *testing.T) {
	root, tr, s := makeTree(t)
	s.Primitive = CylinderPrimitive{Height: -1, Radius: 1}
	s.Geometry = &Geometry{
		Vertices: []mgl64.Vec3{{0, 0, 0}},
		Indices:  []uint32{0, 0, 4},
	}
	tr.SetRotation(mgl64.Vec4{0, 0, 0, 1})
	if err := root.Append(NewShape("empty", nil)); err != nil {
		t.Fatal(err)
	}

	// Structural tier alone does not look at geometry.
	if errs := Validate(root); len(errs) != 0 {
		t.Errorf("structural tier should be clean, got %v", errs)
	}

	res := ValidateAll(root)
	for _, want := range []string{"cylinder height", "refers to vertex 4", "shape has no primitive"} {
		if !hasFinding(res.Errors, want) {
			t.Errorf("missing error %q in %v", want, res.Errors)
		}
	}
	if !hasFinding(res.Warnings, "zero axis") {
		t.Errorf("expected zero-axis warning, got %v", res.Warnings)
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityError.String() != "error" || SeverityWarning.String() != "warning" {
		t.Error("unexpected severity names")
	}
	if ValidationSeverity(9).String() != "ValidationSeverity(9)" {
		t.Error("unexpected fallback name")
	}
}

func TestValidateNameSharedWithParentIsNotDuplicate(t *testing.T) {
	root := NewGroup("root")
	lid := NewTransform("lid")
	if err := root.Append(lid); err != nil {
		t.Fatal(err)
	}
	if err := lid.Append(NewShape("lid", BoxPrimitive{Size: mgl64.Vec3{1, 1, 1}})); err != nil {
		t.Fatal(err)
	}
	if res := ValidateAll(root); len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
}

func TestValidateEmbeddedGroupChild(t *testing.T) {
	root, tr, _ := makeTree(t)
	root.children[0] = &tr.Group // bypasses Append

	if errs := Validate(root); !hasFinding(errs, "embedded group") {
		t.Errorf("expected embedded group finding, got %v", errs)
	}
}
