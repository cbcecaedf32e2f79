package mesh

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/primitive"
	"github.com/Faultbox/midgard-mesh/internal/render"
)

// noAlpha executes a material with its own opacity.
const noAlpha = -1

var topology = [...]gpu.Primitive{
	primitive.Triangles: gpu.Triangles,
	primitive.Strip:     gpu.TriangleStrip,
	primitive.Fan:       gpu.TriangleFan,
}

// drawCall is the state of one Draw.
type drawCall struct {
	m     *Mesh
	b     gpu.Backend
	frame *render.Frame
	props *render.Properties
	lod   int

	selected    bool
	transparent bool
}

// Draw renders the current LOD with the loop props and frame select. It
// must run on the goroutine owning the GPU context.
func (m *Mesh) Draw(frame *render.Frame, props *render.Properties) error {
	if !m.finished {
		return errors.Wrapf(ErrNotFinished, "draw mesh %q", m.name)
	}
	if m.data.LodCount() == 0 {
		return nil
	}
	decision := render.SelectLoop(props.Axes(frame.SelectionMode, m.currentLod))
	lod := min(m.currentLod, m.data.LodCount()-1)
	if decision.PinLod0 || decision.Loop == render.LoopPrimitiveSelection {
		lod = 0
	}

	b := frame.Backend
	if m.data.UseVBO(b) {
		m.data.Upload(b)
	}
	withColors := m.colorPerVertex && !decision.Selected && !frame.SelectionMode
	m.data.Bind(b, lod, withColors)

	c := &drawCall{
		m:           m,
		b:           b,
		frame:       frame,
		props:       props,
		lod:         lod,
		selected:    decision.Selected,
		transparent: props.Flag() == render.FlagTransparent,
	}
	switch decision.Loop {
	case render.LoopOutlineSilhouette:
		c.silhouette()
	case render.LoopPrimitiveSelection:
		c.primitiveSelection()
	case render.LoopBodySelection:
		c.bodySelection()
	case render.LoopPrimitiveSelected:
		c.primitiveSelected()
	case render.LoopOverwriteMaterial:
		c.overwriteMaterial()
	case render.LoopOverwriteTransparency:
		c.overwriteTransparency()
	case render.LoopOverwriteTransparencyAndMaterial:
		c.overwriteTransparencyAndMaterial()
	case render.LoopOverwritePrimitiveMaterial:
		c.primitiveMaterials()
	default:
		c.normal()
	}
	m.data.Unbind(b)

	if props.Flag() == render.FlagWire && !m.wire.IsEmpty() {
		m.drawWire(frame)
	}
	if frame.Stats != nil {
		frame.Stats.AddBodies(1)
		frame.Stats.AddTriangles(m.data.TrianglesCount(lod))
	}
	return nil
}

func (m *Mesh) drawWire(frame *render.Frame) {
	b := frame.Backend
	if frame.SelectionMode {
		m.wire.Draw(b)
		return
	}
	b.SetLighting(false)
	b.SetColor(m.wireColor)
	m.wire.Draw(b)
	b.SetLighting(true)
}

func (c *drawCall) groups() []*primitive.Group { return c.m.groupsOf(c.lod) }

func (c *drawCall) material(g *primitive.Group) *material.Material {
	return c.m.materials[g.MaterialID()]
}

func (c *drawCall) renderable(mat *material.Material) bool {
	return mat.IsTransparent() == c.transparent
}

func (c *drawCall) offset(element int) gpu.Offset {
	return c.m.data.Offset(c.b, c.lod, element)
}

// drawGroup draws the triangles of g in one call, then each strip and fan.
func (c *drawCall) drawGroup(g *primitive.Group) {
	if g.ContainsTriangles() {
		c.b.DrawElements(gpu.Triangles, g.TrianglesSize(), c.offset(g.TrianglesOffset()))
	}
	for _, k := range []primitive.Kind{primitive.Strip, primitive.Fan} {
		sizes := g.Sizes(k)
		for i, off := range g.Offsets(k) {
			c.b.DrawElements(topology[k], sizes[i], c.offset(off))
		}
	}
}

func (c *drawCall) drawPrimitive(p primitive.Primitive) {
	c.b.DrawElements(topology[p.Kind], p.Size, c.offset(p.Offset))
}

func (c *drawCall) execute(mat *material.Material, alpha float32) {
	mat.Execute(c.b, alpha)
	if c.selected {
		c.b.SetColor(c.frame.SelectionColor)
	}
}

// normal draws the groups matching the transparency pass with their own
// materials. In selection mode groups are drawn in the body id color.
func (c *drawCall) normal() {
	selMode := c.frame.SelectionMode
	if c.selected && c.transparent && !selMode {
		return
	}
	if selMode {
		c.b.SetColor(render.IDColor(c.props.ID()))
	}
	for _, g := range c.groups() {
		mat := c.material(g)
		renderable := c.renderable(mat)
		if !c.selected && !selMode && !renderable {
			continue
		}
		if !selMode {
			c.execute(mat, noAlpha)
		}
		c.drawGroup(g)
	}
}

func (c *drawCall) overwriteMaterial() {
	ov := c.props.OverwriteMaterial()
	if ov == nil {
		c.normal()
		return
	}
	if !c.selected && !c.renderable(ov) {
		return
	}
	c.execute(ov, noAlpha)
	for _, g := range c.groups() {
		c.drawGroup(g)
	}
}

func (c *drawCall) overwriteTransparency() {
	if !c.transparent && !c.selected {
		return
	}
	alpha := c.props.OverwriteTransparency()
	for _, g := range c.groups() {
		c.execute(c.material(g), alpha)
		c.drawGroup(g)
	}
}

func (c *drawCall) overwriteTransparencyAndMaterial() {
	ov := c.props.OverwriteMaterial()
	if ov == nil {
		c.overwriteTransparency()
		return
	}
	if !c.transparent && !c.selected {
		return
	}
	c.execute(ov, c.props.OverwriteTransparency())
	for _, g := range c.groups() {
		c.drawGroup(g)
	}
}

func (c *drawCall) bodySelection() {
	c.b.SetColor(render.IDColor(c.props.ID()))
	for _, g := range c.groups() {
		c.drawGroup(g)
	}
}

func (c *drawCall) primitiveSelection() {
	for _, g := range c.groups() {
		for _, p := range g.Primitives() {
			c.b.SetColor(render.IDColor(p.ID))
			c.drawPrimitive(p)
		}
	}
}

// primitiveMaterials draws primitives with an overwrite material in that
// material and the others in their group material.
func (c *drawCall) primitiveMaterials() {
	for _, g := range c.groups() {
		mat := c.material(g)
		renderable := c.renderable(mat)
		if renderable {
			mat.Execute(c.b, noAlpha)
		}
		overwritten := false
		for _, p := range g.Primitives() {
			if ov, ok := c.props.OverwritePrimitiveMaterial(p.ID); ok {
				if c.renderable(ov) {
					ov.Execute(c.b, noAlpha)
					overwritten = true
					c.drawPrimitive(p)
				}
				continue
			}
			if !renderable {
				continue
			}
			if overwritten {
				mat.Execute(c.b, noAlpha)
				overwritten = false
			}
			c.drawPrimitive(p)
		}
	}
}

// primitiveSelected draws selected primitives in the selection color on the
// opaque pass and everything else as the unselected instance would.
func (c *drawCall) primitiveSelected() {
	for _, g := range c.groups() {
		mat := c.material(g)
		renderable := c.renderable(mat)
		for _, p := range g.Primitives() {
			if c.props.PrimitiveIsSelected(p.ID) {
				if !c.transparent {
					c.b.SetTexturing(false)
					c.b.SetColor(c.frame.SelectionColor)
					c.drawPrimitive(p)
				}
				continue
			}
			if ov, ok := c.props.OverwritePrimitiveMaterial(p.ID); ok {
				if c.renderable(ov) {
					ov.Execute(c.b, noAlpha)
					c.drawPrimitive(p)
				}
				continue
			}
			if renderable {
				mat.Execute(c.b, noAlpha)
				c.drawPrimitive(p)
			}
		}
	}
}

// silhouette draws every group twice, front faces then back faces, each in
// its own id color so outlines can be found in image space.
func (c *drawCall) silhouette() {
	if c.transparent && !c.frame.SelectionMode {
		return
	}
	c.b.SetLighting(false)
	for _, g := range c.groups() {
		c.b.CullFace(true)
		c.b.SetTexturing(false)

		c.b.FrontFace(true)
		c.b.SetColor(render.IDColor(c.frame.NextSilhouetteID(c.selected)))
		c.drawGroup(g)

		c.b.FrontFace(false)
		c.b.SetColor(render.IDColor(c.frame.NextSilhouetteID(c.selected)))
		c.drawGroup(g)

		c.b.FrontFace(true)
		c.b.CullFace(false)
	}
	c.b.SetLighting(true)
}
