package render

import "fmt"

// Loop is the render loop a mesh draws its current LOD with.
type Loop int

const (
	LoopNormal Loop = iota
	LoopOverwriteMaterial
	LoopOverwriteTransparency
	LoopOverwriteTransparencyAndMaterial
	LoopOverwritePrimitiveMaterial
	LoopPrimitiveSelected
	LoopPrimitiveSelection
	LoopBodySelection
	LoopOutlineSilhouette
)

var loopNames = [...]string{
	LoopNormal:                           "normal",
	LoopOverwriteMaterial:                "overwrite-material",
	LoopOverwriteTransparency:            "overwrite-transparency",
	LoopOverwriteTransparencyAndMaterial: "overwrite-transparency-and-material",
	LoopOverwritePrimitiveMaterial:       "overwrite-primitive-material",
	LoopPrimitiveSelected:                "primitive-selected",
	LoopPrimitiveSelection:               "primitive-selection",
	LoopBodySelection:                    "body-selection",
	LoopOutlineSilhouette:                "outline-silhouette",
}

func (l Loop) String() string {
	if l >= 0 && int(l) < len(loopNames) {
		return loopNames[l]
	}
	return fmt.Sprintf("Loop(%d)", int(l))
}

// Axes are the inputs of one draw call's loop selection.
type Axes struct {
	SelectionMode                  bool
	Selected                       bool
	Mode                           Mode
	SavedMode                      Mode
	Flag                           Flag
	HasSelectedPrimitives          bool
	HasOverwritePrimitiveMaterials bool
	CurrentLod                     int
}

// Axes builds the selection inputs for p drawn in frame at currentLod.
func (p *Properties) Axes(selectionMode bool, currentLod int) Axes {
	return Axes{
		SelectionMode:                  selectionMode,
		Selected:                       p.selected,
		Mode:                           p.mode,
		SavedMode:                      p.savedMode,
		Flag:                           p.flag,
		HasSelectedPrimitives:          p.HasSelectedPrimitives(),
		HasOverwritePrimitiveMaterials: p.HasOverwritePrimitiveMaterials(),
		CurrentLod:                     currentLod,
	}
}

// Decision is the outcome of SelectLoop.
type Decision struct {
	Loop Loop
	// Selected is the selected flag the loop runs with. It is false when a
	// selected instance falls back to an unselected loop.
	Selected bool
	// PinLod0 forces drawing LOD 0 for primitive picking precision.
	PinLod0 bool
}

// SelectLoop picks the render loop for one draw call. The first matching rule
// wins: outline silhouette, selection mode, selected instance, rendering mode.
func SelectLoop(a Axes) Decision {
	d := Decision{Selected: a.Selected}
	lod := a.CurrentLod
	if a.Selected && a.Mode == PrimitiveSelected && !a.SelectionMode && a.HasSelectedPrimitives {
		d.PinLod0 = true
		lod = 0
	}

	switch {
	case a.Flag == FlagOutlineSilhouette:
		d.Loop = LoopOutlineSilhouette
	case a.SelectionMode:
		switch a.Mode {
		case PrimitiveSelection:
			d.Loop = LoopPrimitiveSelection
		case BodySelection:
			d.Loop = LoopBodySelection
		default:
			d.Loop = LoopNormal
		}
	case a.Selected:
		switch {
		case a.Mode != PrimitiveSelected:
			d.Loop = LoopNormal
		case a.HasSelectedPrimitives:
			d.Loop = LoopPrimitiveSelected
		default:
			d.Selected = false
			if lod == 0 && a.SavedMode == OverwritePrimitiveMaterial && a.HasOverwritePrimitiveMaterials {
				d.Loop = LoopOverwritePrimitiveMaterial
			} else {
				d.Loop = LoopNormal
			}
		}
	default:
		switch a.Mode {
		case OverwriteMaterial:
			d.Loop = LoopOverwriteMaterial
		case OverwriteTransparency:
			d.Loop = LoopOverwriteTransparency
		case OverwriteTransparencyAndMaterial:
			d.Loop = LoopOverwriteTransparencyAndMaterial
		case OverwritePrimitiveMaterial:
			if lod == 0 && a.HasOverwritePrimitiveMaterials {
				d.Loop = LoopOverwritePrimitiveMaterial
			} else {
				d.Loop = LoopNormal
			}
		default:
			d.Loop = LoopNormal
		}
	}
	return d
}
