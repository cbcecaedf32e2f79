package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/internal/engine/picking"
	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/mesh"
	"github.com/Faultbox/midgard-mesh/internal/meshcsg"
	"github.com/Faultbox/midgard-mesh/internal/meshgen"
	"github.com/Faultbox/midgard-mesh/internal/render"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

var errUsage = errors.New("usage")

var out = message.NewPrinter(language.English)

func cmdDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	kind := fs.String("kind", "sphere", "sphere or box")
	lods := fs.Int("lods", 3, "Number of sphere LODs")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.Wrap(errUsage, "meshtool demo [-kind sphere|box] <out>")
	}

	var m *mesh.Mesh
	var err error
	switch *kind {
	case "sphere":
		north := material.New("north", [4]float32{0.85, 0.25, 0.2, 1})
		south := material.New("south", [4]float32{0.2, 0.35, 0.85, 1})
		m, err = meshgen.Sphere("sphere", 1, 32, 64, *lods, north, south)
	case "box":
		m, err = meshgen.Box("box", math.Vec3{}, math.Vec3{X: 1, Y: 1, Z: 1}, material.New("grey", [4]float32{0.7, 0.7, 0.7, 1}))
	default:
		return errors.Errorf("unknown kind %q", *kind)
	}
	if err != nil {
		return err
	}
	if err := m.SaveFile(fs.Arg(0)); err != nil {
		return err
	}
	out.Printf("Wrote %s: %d LODs, %d faces at LOD 0\n", fs.Arg(0), m.LodCount(), m.FaceCount(0))
	return nil
}

func load(path string) (*mesh.Mesh, error) {
	return mesh.LoadFile(path, material.NewRegistry())
}

// cmdConfig writes the effective configuration so it can be edited and
// picked up by later runs.
func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	to := fs.String("o", "", "Write here instead of the user config directory")
	fs.Parse(args)

	path := *to
	var err error
	if path == "" {
		path, err = cfg.Save()
	} else {
		err = cfg.SaveTo(path)
	}
	if err != nil {
		return err
	}
	out.Printf("Wrote config %s\n", path)
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.Wrap(errUsage, "meshtool info <file>")
	}
	m, err := load(args[0])
	if err != nil {
		return err
	}

	volume, err := m.Volume()
	if err != nil {
		return err
	}
	box := m.BoundingBox()
	out.Printf("Mesh:       %s\n", m.Name())
	out.Printf("Vertices:   %d\n", m.VertexCount())
	out.Printf("Normals:    %d\n", m.NormalCount())
	out.Printf("Primitives: %d\n", m.PrimitiveCount())
	out.Printf("Volume:     %.4f\n", volume)
	out.Printf("Bounds:     (%.3f %.3f %.3f) - (%.3f %.3f %.3f)\n",
		box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
	out.Printf("Wire:       %d groups\n", m.Wire().VertexGroupCount())
	fmt.Println()

	for lod := range m.LodCount() {
		out.Printf("LOD %d  accuracy %.3f  faces %d\n", lod, m.Accuracy(lod), m.FaceCount(lod))
		for _, id := range m.MaterialIDsOfLod(lod) {
			name := "?"
			if mat, ok := m.Material(id); ok {
				name = mat.Name()
			}
			out.Printf("  %-12s triangles %-8d strips %-5d fans %d\n",
				name, m.NumberOfTriangles(lod, id), m.NumberOfStrips(lod, id), m.NumberOfFans(lod, id))
		}
	}
	return nil
}

func lodArgs(name string, args []string) (*mesh.Mesh, int, string, error) {
	if len(args) < 3 {
		return nil, 0, "", errors.Wrapf(errUsage, "meshtool %s <file> <index> <out>", name)
	}
	lod, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, 0, "", errors.Wrapf(err, "lod index %q", args[1])
	}
	m, err := load(args[0])
	if err != nil {
		return nil, 0, "", err
	}
	return m, lod, args[2], nil
}

func cmdLod(args []string) error {
	m, lod, path, err := lodArgs("lod", args)
	if err != nil {
		return err
	}
	extracted, err := m.MeshOfLod(lod)
	if err != nil {
		return err
	}
	if err := extracted.SaveFile(path); err != nil {
		return err
	}
	out.Printf("Wrote %s: %d faces, %d vertices (from %d)\n",
		path, extracted.FaceCount(0), extracted.VertexCount(), m.VertexCount())
	return nil
}

func cmdFrom(args []string) error {
	m, lod, path, err := lodArgs("from", args)
	if err != nil {
		return err
	}
	extracted, err := m.MeshFromLod(lod)
	if err != nil {
		return err
	}
	if err := extracted.SaveFile(path); err != nil {
		return err
	}
	out.Printf("Wrote %s: %d LODs, %d vertices (from %d)\n",
		path, extracted.LodCount(), extracted.VertexCount(), m.VertexCount())
	return nil
}

func cmdEdges(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("edges", flag.ExitOnError)
	angle := fs.Float64("angle", cfg.Mesh.SharpEdgeAngle, "Minimum dihedral angle in degrees")
	precision := fs.Float64("precision", cfg.Mesh.SharpEdgePrecision, "Vertex comparison precision")
	workers := fs.Int("workers", cfg.Mesh.Workers, "Worker goroutines (0 = all CPUs)")
	output := fs.String("o", "", "Save the mesh with its sharp edges")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.Wrap(errUsage, "meshtool edges [-angle a] [-precision p] [-o out] <file>")
	}
	m, err := load(fs.Arg(0))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := m.CreateSharpEdges(ctx, *precision, *angle, *workers); err != nil {
		return err
	}
	out.Printf("%d sharp edges above %.1f degrees\n", m.Wire().VertexGroupCount(), *angle)
	if *output != "" {
		return m.SaveFile(*output)
	}
	return nil
}

func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, errors.Errorf("%q: want x,y,z", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, errors.Wrapf(err, "%q", s)
		}
		v[i] = float32(f)
	}
	return v, nil
}

func parseOffset(s string) (math.Mat4, error) {
	v, err := parseVec3(s)
	if err != nil {
		return math.Mat4{}, errors.WithMessage(err, "offset")
	}
	return math.Translate(v[0], v[1], v[2]), nil
}

func cmdPick(args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	from := fs.String("from", "", "Ray origin x,y,z")
	to := fs.String("to", "0,0,0", "Point the ray passes through")
	fs.Parse(args)
	if fs.NArg() < 1 || *from == "" {
		return errors.Wrap(errUsage, "meshtool pick -from x,y,z [-to x,y,z] <file>")
	}
	origin, err := parseVec3(*from)
	if err != nil {
		return errors.WithMessage(err, "from")
	}
	target, err := parseVec3(*to)
	if err != nil {
		return errors.WithMessage(err, "to")
	}
	m, err := load(fs.Arg(0))
	if err != nil {
		return err
	}

	hit, ok, err := picking.PickPrimitive(m, picking.NewRay(origin, target))
	if err != nil {
		return err
	}
	if !ok {
		out.Printf("No primitive hit\n")
		return nil
	}
	name := "?"
	if matID, err := m.MaterialOfPrimitiveID(hit.PrimitiveID, 0); err == nil {
		if mat, ok := m.Material(matID); ok {
			name = mat.Name()
		}
	}
	out.Printf("Primitive %d (%s) at distance %.4f, point (%.3f %.3f %.3f)\n",
		hit.PrimitiveID, name, hit.Distance, hit.Point.X(), hit.Point.Y(), hit.Point.Z())
	return nil
}

func cmdCSG(args []string) error {
	if len(args) < 1 {
		return errors.Wrap(errUsage, "meshtool csg <op> [-offset x,y,z] <a> <b> <out>")
	}
	op, ok := meshcsg.ByName(args[0])
	if !ok {
		return errors.Errorf("unknown csg operation %q", args[0])
	}
	fs := flag.NewFlagSet("csg", flag.ExitOnError)
	offset := fs.String("offset", "0,0,0", "Translation applied to the second mesh")
	fs.Parse(args[1:])
	if fs.NArg() < 3 {
		return errors.Wrap(errUsage, "meshtool csg <op> [-offset x,y,z] <a> <b> <out>")
	}
	mb, err := parseOffset(*offset)
	if err != nil {
		return err
	}

	reg := material.NewRegistry()
	a, err := mesh.LoadFile(fs.Arg(0), reg)
	if err != nil {
		return err
	}
	b, err := mesh.LoadFile(fs.Arg(1), reg)
	if err != nil {
		return err
	}
	result := mesh.New(a.Name() + "-" + args[0] + "-" + b.Name())
	if err := op(result, a, math.Identity(), b, mb); err != nil {
		return err
	}
	if err := result.SaveFile(fs.Arg(2)); err != nil {
		return err
	}
	volume, err := result.Volume()
	if err != nil {
		return err
	}
	out.Printf("Wrote %s: %d faces, %d materials, volume %.4f\n",
		fs.Arg(2), result.FaceCount(0), len(result.MaterialIDs()), volume)
	return nil
}

func cmdRender(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	modeName := fs.String("mode", "normal", "Rendering mode")
	flagName := fs.String("flag", "none", "Render pass flag")
	lod := fs.Int("lod", cfg.Mesh.LodPercent, "LOD percent")
	novbo := fs.Bool("novbo", !cfg.Render.VBO, "Use client arrays")
	selected := fs.Bool("selected", false, "Draw the instance as selected")
	selection := fs.Bool("selection", false, "Render the selection buffer")
	fs.Parse(args)
	if fs.NArg() < 1 {
		return errors.Wrap(errUsage, "meshtool render [-mode m] [-flag f] [-lod p] <file>")
	}
	mode, err := render.ParseMode(*modeName)
	if err != nil {
		return err
	}
	pass, err := render.ParseFlag(*flagName)
	if err != nil {
		return err
	}
	m, err := load(fs.Arg(0))
	if err != nil {
		return err
	}
	m.SetCurrentLod(*lod)

	rec := gpu.NewRecorder(!*novbo)
	frame := render.NewFrame(rec)
	frame.SelectionMode = *selection
	frame.SelectionColor = cfg.Render.SelectionColor
	props := render.NewProperties()
	props.SetSelected(*selected)
	props.SetFlag(pass)
	props.SetMode(mode)
	if mode == render.PrimitiveSelected || mode == render.OverwritePrimitiveMaterial {
		ids := m.PrimitiveIDs()
		if len(ids) > 0 {
			props.AddSelectedPrimitive(ids[0], 0)
			props.AddOverwritePrimitiveMaterial(ids[len(ids)-1], material.New("overwrite", [4]float32{0, 1, 0, 1}), 0)
		}
	}
	defer props.Release()

	decision := render.SelectLoop(props.Axes(frame.SelectionMode, m.CurrentLod()))
	frame.Begin()
	if err := m.Draw(frame, props); err != nil {
		return err
	}

	out.Printf("Loop:      %s\n", decision.Loop)
	out.Printf("LOD:       %d\n", m.CurrentLod())
	out.Printf("Draws:     %d (buffered %v)\n", len(rec.Draws), !*novbo)
	out.Printf("Triangles: %d drawn, %d counted\n", len(rec.Triangles()), frame.Stats.Triangles())
	out.Printf("Buffers:   %d created, %d filled\n", rec.Created, rec.Fills)
	for _, e := range rec.Errors {
		fmt.Fprintf(os.Stderr, "backend: %v\n", e)
	}
	m.Release(rec)
	if len(rec.Errors) > 0 {
		return errors.Errorf("%d backend errors", len(rec.Errors))
	}
	return nil
}
