// Package render holds the per-instance render properties, the per-frame
// render state and the selection of the render loop a mesh draws with.
package render

import (
	"fmt"

	"github.com/pkg/errors"
)

// Mode is the rendering mode of an instance.
type Mode int

const (
	Normal Mode = iota
	OverwriteMaterial
	OverwriteTransparency
	OverwriteTransparencyAndMaterial
	OverwritePrimitiveMaterial
	PrimitiveSelected
	PrimitiveSelection
	BodySelection
)

var modeNames = [...]string{
	Normal:                           "normal",
	OverwriteMaterial:                "overwrite-material",
	OverwriteTransparency:            "overwrite-transparency",
	OverwriteTransparencyAndMaterial: "overwrite-transparency-and-material",
	OverwritePrimitiveMaterial:       "overwrite-primitive-material",
	PrimitiveSelected:                "primitive-selected",
	PrimitiveSelection:               "primitive-selection",
	BodySelection:                    "body-selection",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode named s.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return Normal, errors.Errorf("unknown rendering mode %q", s)
}

// Flag is the pass an instance is drawn in.
type Flag int

const (
	FlagNone Flag = iota
	FlagWire
	FlagTransparent
	FlagOutlineSilhouette
)

var flagNames = [...]string{
	FlagNone:              "none",
	FlagWire:              "wire",
	FlagTransparent:       "transparent",
	FlagOutlineSilhouette: "outline-silhouette",
}

func (f Flag) String() string {
	if f >= 0 && int(f) < len(flagNames) {
		return flagNames[f]
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

// ParseFlag returns the Flag named s.
func ParseFlag(s string) (Flag, error) {
	for i, name := range flagNames {
		if name == s {
			return Flag(i), nil
		}
	}
	return FlagNone, errors.Errorf("unknown render flag %q", s)
}
