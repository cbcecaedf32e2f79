package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/material"
)

func TestSetModeSavesPrevious(t *testing.T) {
	p := NewProperties()
	p.SetMode(OverwritePrimitiveMaterial)
	p.SetMode(PrimitiveSelected)
	assert.Equal(t, PrimitiveSelected, p.Mode())
	assert.Equal(t, OverwritePrimitiveMaterial, p.SavedMode())
}

func TestSelectedPrimitivesPerBody(t *testing.T) {
	p := NewProperties()
	p.AddSelectedPrimitives([]uint32{1, 2}, 0)
	p.AddSelectedPrimitive(7, 1)

	assert.True(t, p.HasSelectedPrimitives())
	assert.True(t, p.PrimitiveIsSelected(2))
	assert.False(t, p.PrimitiveIsSelected(7))

	p.SetCurrentBody(1)
	assert.True(t, p.PrimitiveIsSelected(7))
	p.SetCurrentBody(2)
	assert.False(t, p.HasSelectedPrimitives())

	p.ClearSelectedPrimitives()
	p.SetCurrentBody(0)
	assert.False(t, p.HasSelectedPrimitives())
}

func TestOverwriteMaterialUsage(t *testing.T) {
	reg := material.NewRegistry()
	a := reg.Add(material.New("a", material.DefaultColor))
	b := reg.Add(material.New("b", material.DefaultColor))

	p := NewProperties()
	p.SetOverwriteMaterial(a)
	assert.Equal(t, 1, a.UsageCount())

	p.SetOverwriteMaterial(b)
	assert.True(t, a.Freed(), "replaced overwrite material with no other owner is freed")
	assert.Equal(t, 1, b.UsageCount())

	c := p.Clone()
	assert.Equal(t, 2, b.UsageCount())
	p.Clear()
	assert.False(t, b.Freed())
	c.Clear()
	assert.True(t, b.Freed())
	assert.Equal(t, 0, reg.Len())
}

func TestOverwritePrimitiveMaterials(t *testing.T) {
	reg := material.NewRegistry()
	red := reg.Add(material.New("red", [4]float32{1, 0, 0, 1}))
	glass := reg.Add(material.New("glass", [4]float32{0, 0, 1, 0.3}))

	p := NewProperties()
	p.SetMode(OverwritePrimitiveMaterial)
	p.SetMode(PrimitiveSelected)
	p.AddOverwritePrimitiveMaterial(1, red, 0)
	p.AddOverwritePrimitiveMaterial(2, red, 0)
	p.AddOverwritePrimitiveMaterial(3, glass, 0)
	assert.Equal(t, 1, red.UsageCount(), "one usage per owner regardless of primitives")
	assert.True(t, p.HasOverwritePrimitiveMaterials())
	assert.True(t, p.NeedToRenderWithTransparency())

	m, ok := p.OverwritePrimitiveMaterial(3)
	require.True(t, ok)
	assert.Same(t, glass, m)

	p.AddOverwritePrimitiveMaterial(3, red, 0)
	assert.True(t, glass.Freed())
	assert.False(t, p.NeedToRenderWithTransparency())

	p.ClearOverwritePrimitiveMaterials()
	assert.True(t, red.Freed())
	assert.False(t, p.HasOverwritePrimitiveMaterials())
	assert.Equal(t, Normal, p.SavedMode(), "saved primitive overwrite mode resets to normal")
	assert.Equal(t, 0, reg.Len())
}

func TestNeedToRenderWithTransparency(t *testing.T) {
	p := NewProperties()
	assert.False(t, p.NeedToRenderWithTransparency())

	p.SetMode(OverwriteTransparency)
	p.SetOverwriteTransparency(0.5)
	assert.True(t, p.NeedToRenderWithTransparency())

	p.SetMode(OverwriteMaterial)
	p.SetOverwriteMaterial(material.New("opaque", material.DefaultColor))
	assert.False(t, p.NeedToRenderWithTransparency())
}

func TestRelease(t *testing.T) {
	p := NewProperties()
	p.SetSelected(true)
	p.SetMode(BodySelection)
	p.SetFlag(FlagWire)
	p.SetOverwriteTransparency(0.2)
	p.Release()

	assert.False(t, p.IsSelected())
	assert.Equal(t, Normal, p.Mode())
	assert.Equal(t, FlagNone, p.Flag())
	assert.Equal(t, UnsetTransparency, p.OverwriteTransparency())
}

func TestSharedOverwriteAndPrimitiveMaterial(t *testing.T) {
	reg := material.NewRegistry()
	m := reg.Add(material.New("shared", material.DefaultColor))

	p := NewProperties()
	p.SetOverwriteMaterial(m)
	p.AddOverwritePrimitiveMaterial(1, m, 0)
	assert.Equal(t, 1, m.UsageCount(), "one owner per properties")

	p.SetOverwriteMaterial(nil)
	got, ok := p.OverwritePrimitiveMaterial(1)
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.False(t, m.Freed(), "still drawn for primitive 1")
	assert.Equal(t, 1, reg.Len())

	p.SetOverwriteMaterial(m)
	p.ClearOverwritePrimitiveMaterials()
	assert.False(t, m.Freed(), "still the overwrite material")

	p.Clear()
	assert.True(t, m.Freed())
	assert.Equal(t, 0, reg.Len())
}
