package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stderr)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.gsg")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const lampScript = `
(scene
  (group "lamp"
    (transform "shade" :position (vec3 0 0 4)
      (cone :radius 2 :top-radius 1 :height 2 :segments 8))
    (cube "foot" :size 2 :center (vec3 0 0 1))))
`

func TestTreeCommandText(t *testing.T) {
	out, _, err := run(t, "", "tree", "--format", "text", writeScript(t, lampScript))
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	for _, want := range []string{"group lamp\n", "  transform shade pos=(0,0,4)", "    transform cone type=primitive", "      shape cone [cone h=2 r0=2 r1=1] tris=32", "  transform foot"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTreeCommandYAMLFromStdin(t *testing.T) {
	out, _, err := run(t, lampScript, "tree", "-")
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.Contains(out, "name: lamp") || !strings.Contains(out, "kind: group") {
		t.Errorf("unexpected yaml:\n%s", out)
	}
}

func TestBoundsCommand(t *testing.T) {
	out, _, err := run(t, "", "bounds", writeScript(t, lampScript))
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	if !strings.Contains(out, "bounds: [-2 -2 0] .. [2 2 5]") {
		t.Errorf("unexpected bounds:\n%s", out)
	}
	if !strings.Contains(out, "size:   4 4 5") {
		t.Errorf("unexpected size:\n%s", out)
	}
}

func TestMeshCommandGeometrySource(t *testing.T) {
	out, _, err := run(t, "", "mesh", "--source", "geometry", writeScript(t, lampScript))
	if err != nil {
		t.Fatalf("mesh: %v", err)
	}
	if !strings.Contains(out, "/lamp/shade/cone/cone") || !strings.Contains(out, "/lamp/foot/foot") {
		t.Errorf("missing shapes:\n%s", out)
	}
	// Cone with 8 segments and two caps: 4*8 triangles; cube: 12.
	if !strings.Contains(out, "44") {
		t.Errorf("missing triangle total:\n%s", out)
	}

	_, _, err = run(t, "", "mesh", "--source", "voxels", writeScript(t, lampScript))
	if err == nil {
		t.Error("expected an error for an unknown source")
	}
}

func TestValidateCommand(t *testing.T) {
	out, _, err := run(t, "", "validate", writeScript(t, lampScript))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.HasPrefix(out, "ok: 6 nodes") {
		t.Errorf("unexpected output %q", out)
	}

	_, stderr, err := run(t, "", "validate", writeScript(t, `(cylinder :segments 2)`))
	if err == nil {
		t.Fatal("expected validate to fail")
	}
	if !strings.Contains(stderr, "error:") {
		t.Errorf("errors should be reported on stderr, got %q", stderr)
	}
}

func TestDrawCommand(t *testing.T) {
	out, _, err := run(t, "", "draw", writeScript(t, lampScript))
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !strings.Contains(out, "2 draw(s), 44 triangle(s), max depth 2") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestPrimitiveCommand(t *testing.T) {
	out, _, err := run(t, "", "primitive", "sphere", "--radius", "2", "--subdivisions", "1", "-f", "text")
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	if !strings.Contains(out, "sphere r=2") || !strings.Contains(out, "tris=80") {
		t.Errorf("unexpected outline:\n%s", out)
	}

	if _, _, err := run(t, "", "primitive", "torus"); err == nil {
		t.Error("expected an error for an unknown kind")
	}
	if _, _, err := run(t, "", "primitive", "box", "--dimensions", "1,2"); err == nil {
		t.Error("expected an error for two dimensions")
	}
}

func TestConfigFlagAndOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "gsg.toml")
	if err := os.WriteFile(cfgPath, []byte("[factory]\nsegments = 6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := run(t, "", "--config", cfgPath, "primitive", "cylinder", "-f", "text")
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	// 6 segments: 4*6 triangles.
	if !strings.Contains(out, "tris=24") {
		t.Errorf("config segments not applied:\n%s", out)
	}

	if _, _, err := run(t, "", "--log-level", "loud", "primitive", "cube"); err == nil {
		t.Error("expected an error for a bad log level")
	}
}
