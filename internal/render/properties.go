package render

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-mesh/internal/ids"
	"github.com/Faultbox/midgard-mesh/internal/material"
)

// UnsetTransparency marks the overwrite transparency as not set.
const UnsetTransparency float32 = -1

// Properties are the per-instance render settings read by mesh drawing.
// Materials referenced by Properties are registered with its uid as owner
// while at least one reference, overwrite or per primitive, remains.
type Properties struct {
	uid uuid.UUID
	id  uint32

	selected  bool
	mode      Mode
	savedMode Mode
	flag      Flag

	overwriteMaterial     *material.Material
	overwriteTransparency float32

	currentBody        int
	selectedPrimitives map[int]map[uint32]struct{}
	primitiveMaterials map[int]map[uint32]*material.Material
	materialsUsage     map[*material.Material]int
}

// NewProperties returns properties in Normal mode with nothing overwritten.
func NewProperties() *Properties {
	return &Properties{
		uid:                   uuid.Must(uuid.NewV7()),
		id:                    ids.Next(),
		overwriteTransparency: UnsetTransparency,
		materialsUsage:        make(map[*material.Material]int),
	}
}

// Clone returns a copy with its own uid. Referenced materials gain the copy
// as an owner.
func (p *Properties) Clone() *Properties {
	c := NewProperties()
	c.selected = p.selected
	c.mode = p.mode
	c.savedMode = p.savedMode
	c.flag = p.flag
	c.overwriteTransparency = p.overwriteTransparency
	c.currentBody = p.currentBody
	if p.overwriteMaterial != nil {
		c.SetOverwriteMaterial(p.overwriteMaterial)
	}
	for body, set := range p.selectedPrimitives {
		for id := range set {
			c.AddSelectedPrimitive(id, body)
		}
	}
	for body, hash := range p.primitiveMaterials {
		for id, m := range hash {
			c.AddOverwritePrimitiveMaterial(id, m, body)
		}
	}
	return c
}

// UID returns the owner id used for material usage.
func (p *Properties) UID() uuid.UUID { return p.uid }

// ID returns the id encoded as color in body selection.
func (p *Properties) ID() uint32 { return p.id }

func (p *Properties) IsSelected() bool     { return p.selected }
func (p *Properties) SetSelected(v bool)   { p.selected = v }
func (p *Properties) Mode() Mode           { return p.mode }
func (p *Properties) SavedMode() Mode      { return p.savedMode }
func (p *Properties) Flag() Flag           { return p.flag }
func (p *Properties) SetFlag(f Flag)       { p.flag = f }
func (p *Properties) CurrentBody() int     { return p.currentBody }
func (p *Properties) SetCurrentBody(b int) { p.currentBody = b }

// SetMode sets the rendering mode and remembers the previous one.
func (p *Properties) SetMode(m Mode) {
	p.savedMode = p.mode
	p.mode = m
}

// OverwriteMaterial returns the material used by the overwrite modes.
func (p *Properties) OverwriteMaterial() *material.Material { return p.overwriteMaterial }

// SetOverwriteMaterial replaces the overwrite material, releasing the old one.
func (p *Properties) SetOverwriteMaterial(m *material.Material) {
	if p.overwriteMaterial == m {
		return
	}
	if m != nil {
		p.useMaterial(m)
	}
	if p.overwriteMaterial != nil {
		p.unuseMaterial(p.overwriteMaterial)
	}
	p.overwriteMaterial = m
}

// OverwriteTransparency returns the alpha override or UnsetTransparency.
func (p *Properties) OverwriteTransparency() float32 { return p.overwriteTransparency }

// SetOverwriteTransparency sets the alpha override.
func (p *Properties) SetOverwriteTransparency(alpha float32) { p.overwriteTransparency = alpha }

// AddSelectedPrimitive marks a primitive of body as selected.
func (p *Properties) AddSelectedPrimitive(id uint32, body int) {
	if p.selectedPrimitives == nil {
		p.selectedPrimitives = make(map[int]map[uint32]struct{})
	}
	set, ok := p.selectedPrimitives[body]
	if !ok {
		set = make(map[uint32]struct{})
		p.selectedPrimitives[body] = set
	}
	set[id] = struct{}{}
}

// AddSelectedPrimitives marks every id as selected in body.
func (p *Properties) AddSelectedPrimitives(ids []uint32, body int) {
	for _, id := range ids {
		p.AddSelectedPrimitive(id, body)
	}
}

// ClearSelectedPrimitives drops every primitive selection.
func (p *Properties) ClearSelectedPrimitives() {
	p.selectedPrimitives = nil
}

// HasSelectedPrimitives reports whether the current body has selected primitives.
func (p *Properties) HasSelectedPrimitives() bool {
	return len(p.selectedPrimitives[p.currentBody]) > 0
}

// PrimitiveIsSelected reports whether id is selected in the current body.
func (p *Properties) PrimitiveIsSelected(id uint32) bool {
	_, ok := p.selectedPrimitives[p.currentBody][id]
	return ok
}

// AddOverwritePrimitiveMaterial draws primitive id of body with m.
func (p *Properties) AddOverwritePrimitiveMaterial(id uint32, m *material.Material, body int) {
	if p.primitiveMaterials == nil {
		p.primitiveMaterials = make(map[int]map[uint32]*material.Material)
	}
	hash, ok := p.primitiveMaterials[body]
	if !ok {
		hash = make(map[uint32]*material.Material)
		p.primitiveMaterials[body] = hash
	}
	if old, ok := hash[id]; ok {
		if old == m {
			return
		}
		p.unuseMaterial(old)
	}
	hash[id] = m
	p.useMaterial(m)
}

// OverwritePrimitiveMaterial returns the material overwriting id in the current body.
func (p *Properties) OverwritePrimitiveMaterial(id uint32) (*material.Material, bool) {
	m, ok := p.primitiveMaterials[p.currentBody][id]
	return m, ok
}

// HasOverwritePrimitiveMaterials reports whether the current body has primitive overwrites.
func (p *Properties) HasOverwritePrimitiveMaterials() bool {
	return len(p.primitiveMaterials[p.currentBody]) > 0
}

// ClearOverwritePrimitiveMaterials releases every primitive overwrite. A saved
// OverwritePrimitiveMaterial mode falls back to Normal.
func (p *Properties) ClearOverwritePrimitiveMaterials() {
	for _, hash := range p.primitiveMaterials {
		for _, m := range hash {
			p.unuseMaterial(m)
		}
	}
	p.primitiveMaterials = nil
	if p.savedMode == OverwritePrimitiveMaterial {
		p.savedMode = Normal
	}
}

func (p *Properties) useMaterial(m *material.Material) {
	if p.materialsUsage[m] == 0 {
		m.AddUsage(p.uid)
	}
	p.materialsUsage[m]++
}

func (p *Properties) unuseMaterial(m *material.Material) {
	n := p.materialsUsage[m]
	if n == 0 {
		return
	}
	if n == 1 {
		delete(p.materialsUsage, m)
		m.DelUsage(p.uid)
		return
	}
	p.materialsUsage[m] = n - 1
}

// NeedToRenderWithTransparency reports whether the current mode draws the
// instance in the transparent pass.
func (p *Properties) NeedToRenderWithTransparency() bool {
	switch {
	case p.mode == OverwriteMaterial:
		return p.overwriteMaterial != nil && p.overwriteMaterial.IsTransparent()
	case p.mode == OverwriteTransparency || p.mode == OverwriteTransparencyAndMaterial:
		return p.overwriteTransparency != UnsetTransparency && p.overwriteTransparency < 1
	case p.mode == OverwritePrimitiveMaterial || (p.mode == PrimitiveSelected && len(p.primitiveMaterials) > 0):
		for _, hash := range p.primitiveMaterials {
			for _, m := range hash {
				if m.IsTransparent() {
					return true
				}
			}
		}
	}
	return false
}

// Clear releases every referenced material and drops selections.
func (p *Properties) Clear() {
	p.SetOverwriteMaterial(nil)
	p.ClearSelectedPrimitives()
	p.ClearOverwritePrimitiveMaterials()
}

// Release clears the properties and resets them to Normal mode.
func (p *Properties) Release() {
	p.Clear()
	p.mode = Normal
	p.savedMode = Normal
	p.flag = FlagNone
	p.selected = false
	p.overwriteTransparency = UnsetTransparency
}
