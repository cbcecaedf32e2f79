package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/render"
)

var (
	redColor  = [4]float32{1, 0, 0, 1}
	blueColor = [4]float32{0, 0, 1, 1}
)

// uploaded draws m once on a buffer-object recorder.
func uploaded(t *testing.T, m *Mesh) *gpu.Recorder {
	t.Helper()
	rec := gpu.NewRecorder(true)
	require.NoError(t, m.Draw(render.NewFrame(rec), render.NewProperties()))
	require.True(t, m.Data().Uploaded())
	return rec
}

func draw(t *testing.T, m *Mesh, rec *gpu.Recorder, f *render.Frame, p *render.Properties) []gpu.Draw {
	t.Helper()
	rec.Reset()
	require.NoError(t, m.Draw(f, p))
	require.Empty(t, rec.Errors)
	return rec.Draws
}

func colors(draws []gpu.Draw) [][4]float32 {
	out := make([][4]float32, len(draws))
	for i, d := range draws {
		out[i] = d.Color
	}
	return out
}

func TestDrawRequiresFinish(t *testing.T) {
	m := New("pending")
	_, err := m.AddTriangles(nil, []uint32{0, 1, 2}, 0, 0)
	require.NoError(t, err)
	rec := gpu.NewRecorder(true)
	assert.ErrorIs(t, m.Draw(render.NewFrame(rec), render.NewProperties()), ErrNotFinished)
	assert.Empty(t, rec.Draws)
}

func TestDrawPathsAreEquivalent(t *testing.T) {
	green := material.New("green", [4]float32{0, 1, 0, 1})
	setups := map[string]func(f *render.Frame, p *render.Properties){
		"normal": func(*render.Frame, *render.Properties) {},
		"lod 2": func(*render.Frame, *render.Properties) {},
		"overwrite material": func(_ *render.Frame, p *render.Properties) {
			p.SetOverwriteMaterial(green)
			p.SetMode(render.OverwriteMaterial)
		},
		"primitive selection": func(f *render.Frame, p *render.Properties) {
			f.SelectionMode = true
			p.SetMode(render.PrimitiveSelection)
		},
		"primitive selected": func(_ *render.Frame, p *render.Properties) {
			p.SetSelected(true)
			p.SetMode(render.PrimitiveSelected)
			p.AddSelectedPrimitive(3, 0)
		},
		"silhouette": func(_ *render.Frame, p *render.Properties) {
			p.SetFlag(render.FlagOutlineSilhouette)
		},
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			r, b := redBlue()
			var results [2][]gpu.Draw
			var tris [2][][3][3]float32
			for i, vbo := range []bool{false, true} {
				m := lodded(t, r, b)
				if name == "lod 2" {
					m.SetCurrentLod(100)
				}
				rec := gpu.NewRecorder(vbo)
				f := render.NewFrame(rec)
				p := render.NewProperties()
				setup(f, p)
				results[i] = draw(t, m, rec, f, p)
				tris[i] = rec.Triangles()
				for _, d := range results[i] {
					assert.Equal(t, vbo, d.Buffered)
				}
			}
			require.NotEmpty(t, results[0])
			assert.Equal(t, tris[0], tris[1])
			assert.Equal(t, colors(results[0]), colors(results[1]))
			for i := range results[0] {
				assert.Equal(t, results[0][i].Indices, results[1][i].Indices)
			}
		})
	}
}

func TestNormalLoopTransparencyPasses(t *testing.T) {
	r, b := redBlue()
	b.SetOpacity(0.5)
	m := cube(t, r, b)
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	p := render.NewProperties()

	opaque := draw(t, m, rec, f, p)
	require.Len(t, opaque, 1)
	assert.Equal(t, redColor, opaque[0].Color)
	assert.Equal(t, cubeTriangles[:18], opaque[0].Indices)

	p.SetFlag(render.FlagTransparent)
	transparent := draw(t, m, rec, f, p)
	require.Len(t, transparent, 1)
	assert.Equal(t, [4]float32{0, 0, 1, 0.5}, transparent[0].Color)

	p.SetSelected(true)
	assert.Empty(t, draw(t, m, rec, f, p), "selected instances draw in the opaque pass")
	p.SetFlag(render.FlagNone)
	selected := draw(t, m, rec, f, p)
	require.Len(t, selected, 2, "selection ignores transparency")
	for _, d := range selected {
		assert.Equal(t, f.SelectionColor, d.Color)
	}
}

func TestOverwriteLoops(t *testing.T) {
	r, b := redBlue()
	m := cube(t, r, b)
	rec := gpu.NewRecorder(false)
	f := render.NewFrame(rec)
	p := render.NewProperties()
	glass := material.New("glass", [4]float32{0.5, 0.5, 0.5, 0.3})

	p.SetOverwriteMaterial(glass)
	p.SetMode(render.OverwriteMaterial)
	assert.Empty(t, draw(t, m, rec, f, p), "transparent overwrite skips the opaque pass")
	p.SetFlag(render.FlagTransparent)
	assert.Equal(t, [][4]float32{glass.Color(), glass.Color()}, colors(draw(t, m, rec, f, p)))

	p.SetOverwriteTransparency(0.25)
	p.SetMode(render.OverwriteTransparency)
	assert.Equal(t, [][4]float32{{1, 0, 0, 0.25}, {0, 0, 1, 0.25}}, colors(draw(t, m, rec, f, p)))
	p.SetFlag(render.FlagNone)
	assert.Empty(t, draw(t, m, rec, f, p))

	p.SetMode(render.OverwriteTransparencyAndMaterial)
	p.SetFlag(render.FlagTransparent)
	want := glass.Color()
	want[3] = 0.25
	assert.Equal(t, [][4]float32{want, want}, colors(draw(t, m, rec, f, p)))

	p.Release()
	assert.True(t, glass.IsUnused())
}

func TestSelectionLoops(t *testing.T) {
	r, b := redBlue()
	m := lodded(t, r, b)
	m.SetCurrentLod(100)
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	f.SelectionMode = true
	p := render.NewProperties()

	p.SetMode(render.BodySelection)
	body := draw(t, m, rec, f, p)
	require.Len(t, body, 1, "current lod 2 holds one triangle")
	assert.Equal(t, render.IDColor(p.ID()), body[0].Color)

	p.SetMode(render.PrimitiveSelection)
	prims := draw(t, m, rec, f, p)
	assert.Equal(t, [][4]float32{
		render.IDColor(1), render.IDColor(4), render.IDColor(2), render.IDColor(3),
	}, colors(prims), "lod 0 primitives in red then blue order")
	assert.Equal(t, cubeTriangles[:12], prims[0].Indices)
	assert.Equal(t, gpu.TriangleStrip, prims[2].Primitive)
	assert.Equal(t, gpu.TriangleFan, prims[3].Primitive)
}

func TestPrimitiveSelectedPinsLod0(t *testing.T) {
	r, b := redBlue()
	m := lodded(t, r, b)
	m.SetCurrentLod(100)
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	p := render.NewProperties()
	p.SetSelected(true)
	p.SetMode(render.PrimitiveSelected)
	p.AddSelectedPrimitive(2, 0)

	draws := draw(t, m, rec, f, p)
	assert.Equal(t, [][4]float32{redColor, redColor, f.SelectionColor, blueColor}, colors(draws))
	assert.Equal(t, []uint32{0, 1, 3, 2}, draws[2].Indices)
	assert.Equal(t, m.FaceCount(0), f.Stats.Triangles())

	p.SetCurrentBody(1)
	draws = draw(t, m, rec, f, p)
	require.Len(t, draws, 1, "no selection in body 1: current lod, unselected")
	assert.Equal(t, blueColor, draws[0].Color)
}

func TestOverwritePrimitiveMaterialLoop(t *testing.T) {
	r, b := redBlue()
	m := lodded(t, r, b)
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	p := render.NewProperties()
	green := material.New("green", [4]float32{0, 1, 0, 1})
	p.AddOverwritePrimitiveMaterial(4, green, 0)
	p.SetMode(render.OverwritePrimitiveMaterial)

	assert.Equal(t, [][4]float32{redColor, green.Color(), blueColor, blueColor}, colors(draw(t, m, rec, f, p)))

	m.SetCurrentLod(50)
	assert.Equal(t, [][4]float32{redColor, blueColor}, colors(draw(t, m, rec, f, p)), "overwrites apply to lod 0 only")

	p.ClearOverwritePrimitiveMaterials()
	assert.True(t, green.IsUnused())
}

func TestSilhouetteLoop(t *testing.T) {
	r, b := redBlue()
	m := cube(t, r, b)
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	p := render.NewProperties()
	p.SetFlag(render.FlagOutlineSilhouette)
	p.SetSelected(true)

	draws := draw(t, m, rec, f, p)
	require.Len(t, draws, 4)
	for i, d := range draws {
		assert.Equal(t, render.IDColor(uint32(i)|0x800000), d.Color)
		assert.Equal(t, i%2 == 0, d.FrontCCW)
		assert.True(t, d.Cull)
		assert.False(t, d.Lighting)
	}

	f.Begin()
	p.SetSelected(false)
	draws = draw(t, m, rec, f, p)
	assert.Equal(t, render.IDColor(0), draws[0].Color)
}

func TestWireAndStats(t *testing.T) {
	r, b := redBlue()
	m := cube(t, r, b)
	require.NoError(t, m.CreateSharpEdgesSerial(DefaultSharpEdgePrecision, 30))
	m.SetWireColor([4]float32{1, 1, 0, 1})
	rec := gpu.NewRecorder(true)
	f := render.NewFrame(rec)
	p := render.NewProperties()

	assert.Len(t, draw(t, m, rec, f, p), 2, "wire is drawn only with the wire flag")

	p.SetFlag(render.FlagWire)
	draws := draw(t, m, rec, f, p)
	require.Len(t, draws, 2+12)
	for _, d := range draws[2:] {
		assert.Equal(t, gpu.LineStrip, d.Primitive)
		assert.Equal(t, [4]float32{1, 1, 0, 1}, d.Color)
		assert.False(t, d.Lighting)
	}
	assert.Equal(t, 2, f.Stats.Bodies())
	assert.Equal(t, 2*12, f.Stats.Triangles())

	m.Release(rec)
	assert.Equal(t, 0, rec.LiveBuffers())
}

func TestColorsOnlyWhenUnselected(t *testing.T) {
	mat := material.New("m", [4]float32{1, 1, 1, 1})
	m := New("colored")
	m.AddVertices([]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	m.AddColors([]float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1})
	_, err := m.AddTriangles(mat, []uint32{0, 1, 2}, 0, 0)
	require.NoError(t, err)
	m.Finish()

	rec := gpu.NewRecorder(false)
	p := render.NewProperties()
	colorsEnabled := 0
	spy := &attributeSpy{Recorder: rec, onDraw: func() {
		if rec.Attribute(gpu.Color) != nil {
			colorsEnabled++
		}
	}}
	f := render.NewFrame(spy)
	require.NoError(t, m.Draw(f, p))
	p.SetSelected(true)
	require.NoError(t, m.Draw(f, p))
	assert.Equal(t, 1, colorsEnabled)
}

type attributeSpy struct {
	*gpu.Recorder
	onDraw func()
}

func (a *attributeSpy) DrawElements(p gpu.Primitive, count int, off gpu.Offset) {
	a.onDraw()
	a.Recorder.DrawElements(p, count, off)
}
