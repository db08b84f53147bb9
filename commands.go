package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/spf13/cobra"

	"github.com/perryiv/cadkit-sub042/pkg/bounds"
	"github.com/perryiv/cadkit-sub042/pkg/factory"
	"github.com/perryiv/cadkit-sub042/pkg/outline"
	"github.com/perryiv/cadkit-sub042/pkg/render"
	"github.com/perryiv/cadkit-sub042/pkg/scene"
)

var (
	warnLabel  = color.New(color.FgYellow).Sprint("warning:")
	errorLabel = color.New(color.FgRed).Sprint("error:")
)

// readSource reads a script from path, or from stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

// load evaluates the script at path and prints its warnings and errors.
// It fails when the scene is unusable.
func (c *cli) load(cmd *cobra.Command, path string, full bool) (Result, error) {
	src, err := readSource(cmd, path)
	if err != nil {
		return Result{}, err
	}
	var res Result
	if full {
		res = c.app.Evaluate(cmd.Context(), src)
	} else {
		res = c.app.Load(cmd.Context(), src)
	}
	report(cmd.ErrOrStderr(), res)
	if !res.OK() {
		return res, fmt.Errorf("%s: %d error(s)", path, len(res.Errors))
	}
	return res, nil
}

func report(w io.Writer, res Result) {
	for _, m := range res.Warnings {
		fmt.Fprintln(w, warnLabel, m)
	}
	for _, m := range res.Errors {
		fmt.Fprintln(w, errorLabel, m)
	}
}

func writeOutline(w io.Writer, root scene.Node, format string) error {
	switch format {
	case "yaml":
		return outline.WriteYAML(w, root)
	case "text":
		return outline.WriteText(w, root)
	}
	return fmt.Errorf("unknown format %q, want yaml or text", format)
}

func newTreeCommand(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the scene a script builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load(cmd, args[0], false)
			if err != nil {
				return err
			}
			return writeOutline(cmd.OutOrStdout(), res.Root, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml | text)")
	return cmd
}

func newBoundsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds FILE",
		Short: "Print the world bounding box of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load(cmd, args[0], false)
			if err != nil {
				return err
			}
			box, err := bounds.Compute(res.Root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bounds: %s\n", box)
			if !box.IsEmpty() {
				fmt.Fprintf(out, "center: %s\n", vec3String(box.Center()))
				fmt.Fprintf(out, "size:   %s\n", vec3String(box.Size()))
			}
			return nil
		},
	}
}

func newMeshCommand(c *cli) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "mesh FILE",
		Short: "Tessellate a scene and print per-shape statistics",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("source") {
				return nil
			}
			switch source {
			case "kernel", "geometry":
			default:
				return fmt.Errorf("unknown mesh source %q, want kernel or geometry", source)
			}
			c.cfg.Mesh.Source = source
			c.app = NewApp(c.cfg, c.app.log)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load(cmd, args[0], true)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tVERTICES\tTRIANGLES\tCOLOR")
			var verts, tris int
			for _, m := range res.Meshes {
				v, t := len(m.Vertices)/3, len(m.Indices)/3
				verts += v
				tris += t
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", m.Path, v, t, m.Color)
			}
			fmt.Fprintf(tw, "total\t%d\t%d\t\n", verts, tris)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Override mesh source (kernel | geometry)")
	return cmd
}

func newValidateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a scene for structural and geometric errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load(cmd, args[0], false)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d warning(s)\n", scene.Count(res.Root), len(res.Warnings))
			return nil
		},
	}
}

func newDrawCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "draw FILE",
		Short: "Print the matrix push, draw and pop calls a renderer would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.load(cmd, args[0], false)
			if err != nil {
				return err
			}
			rec := &render.Recorder{}
			if err := render.Traverse(res.Root, rec); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Script())
			fmt.Fprintf(cmd.OutOrStdout(), "%d draw(s), %d triangle(s), max depth %d\n",
				len(rec.Draws()), rec.Triangles(), rec.MaxDepth())
			return nil
		},
	}
}

type primitiveFlags struct {
	name         string
	format       string
	center       []float64
	dimensions   []float64
	size         float64
	radius       float64
	topRadius    float64
	height       float64
	subdivisions int
	segments     int
}

func newPrimitiveCommand(c *cli) *cobra.Command {
	var pf primitiveFlags
	cmd := &cobra.Command{
		Use:       "primitive KIND",
		Short:     "Build one factory primitive and print it",
		Long:      "Build one factory primitive (cube, box, sphere, cylinder or cone) and print its outline.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"cube", "box", "sphere", "cylinder", "cone"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := factory.ParseKind(args[0])
			if err != nil {
				return err
			}
			p, err := pf.params(cmd, c.app.Factory().Params())
			if err != nil {
				return err
			}
			t, err := c.app.Factory().MakePrimitive(kind, p)
			if err != nil {
				return err
			}
			return writeOutline(cmd.OutOrStdout(), t, pf.format)
		},
	}
	f := cmd.Flags()
	f.StringVar(&pf.name, "name", "", "Node name (defaults to the kind)")
	f.StringVarP(&pf.format, "format", "f", "yaml", "Output format (yaml | text)")
	f.Float64SliceVar(&pf.center, "center", nil, "Center as x,y,z")
	f.Float64SliceVar(&pf.dimensions, "dimensions", nil, "Box edge lengths as x,y,z")
	f.Float64Var(&pf.size, "size", 0, "Cube edge length")
	f.Float64Var(&pf.radius, "radius", 0, "Sphere, cylinder or cone bottom radius")
	f.Float64Var(&pf.topRadius, "top-radius", 0, "Cone top radius")
	f.Float64Var(&pf.height, "height", 0, "Cylinder or cone height")
	f.IntVar(&pf.subdivisions, "subdivisions", 0, "Sphere subdivision depth")
	f.IntVar(&pf.segments, "segments", 0, "Cylinder or cone segments")
	return cmd
}

// params overlays the flags the user set on defaults.
func (pf primitiveFlags) params(cmd *cobra.Command, p factory.Params) (factory.Params, error) {
	set := cmd.Flags().Changed
	p.Name = pf.name
	if set("center") {
		v, err := toVec3(pf.center)
		if err != nil {
			return p, fmt.Errorf("--center: %w", err)
		}
		p.Center = v
	}
	if set("dimensions") {
		v, err := toVec3(pf.dimensions)
		if err != nil {
			return p, fmt.Errorf("--dimensions: %w", err)
		}
		p.Dimensions = v
	}
	if set("size") {
		p.Size = pf.size
	}
	if set("radius") {
		p.Radius = pf.radius
	}
	if set("top-radius") {
		p.TopRadius = pf.topRadius
	}
	if set("height") {
		p.Height = pf.height
	}
	if set("subdivisions") {
		p.Subdivisions = pf.subdivisions
	}
	if set("segments") {
		p.Segments = pf.segments
	}
	return p, nil
}

func toVec3(v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want 3 values, got %d", len(v))
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}

func vec3String(v mgl64.Vec3) string {
	return fmt.Sprintf("%g %g %g", v.X(), v.Y(), v.Z())
}
