package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectLoop(t *testing.T) {
	tests := []struct {
		name string
		in   Axes
		want Decision
	}{
		{
			name: "plain normal",
			in:   Axes{Mode: Normal},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "silhouette wins over selection mode",
			in:   Axes{Flag: FlagOutlineSilhouette, SelectionMode: true, Mode: BodySelection},
			want: Decision{Loop: LoopOutlineSilhouette},
		},
		{
			name: "selection mode primitive",
			in:   Axes{SelectionMode: true, Mode: PrimitiveSelection, Selected: true},
			want: Decision{Loop: LoopPrimitiveSelection, Selected: true},
		},
		{
			name: "selection mode body",
			in:   Axes{SelectionMode: true, Mode: BodySelection},
			want: Decision{Loop: LoopBodySelection},
		},
		{
			name: "selection mode other mode",
			in:   Axes{SelectionMode: true, Mode: OverwriteMaterial},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "selection mode never pins lod",
			in:   Axes{SelectionMode: true, Selected: true, Mode: PrimitiveSelected, HasSelectedPrimitives: true, CurrentLod: 2},
			want: Decision{Loop: LoopNormal, Selected: true},
		},
		{
			name: "selected with primitives pins lod 0",
			in:   Axes{Selected: true, Mode: PrimitiveSelected, HasSelectedPrimitives: true, CurrentLod: 3},
			want: Decision{Loop: LoopPrimitiveSelected, Selected: true, PinLod0: true},
		},
		{
			name: "selected overwrite material mode draws normal",
			in:   Axes{Selected: true, Mode: OverwriteMaterial},
			want: Decision{Loop: LoopNormal, Selected: true},
		},
		{
			name: "selected empty set falls back to primitive overwrite",
			in: Axes{Selected: true, Mode: PrimitiveSelected, SavedMode: OverwritePrimitiveMaterial,
				HasOverwritePrimitiveMaterials: true},
			want: Decision{Loop: LoopOverwritePrimitiveMaterial},
		},
		{
			name: "selected empty set at coarse lod falls back to normal",
			in: Axes{Selected: true, Mode: PrimitiveSelected, SavedMode: OverwritePrimitiveMaterial,
				HasOverwritePrimitiveMaterials: true, CurrentLod: 1},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "selected empty set without overwrites",
			in:   Axes{Selected: true, Mode: PrimitiveSelected, SavedMode: Normal},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "overwrite material",
			in:   Axes{Mode: OverwriteMaterial},
			want: Decision{Loop: LoopOverwriteMaterial},
		},
		{
			name: "overwrite transparency",
			in:   Axes{Mode: OverwriteTransparency},
			want: Decision{Loop: LoopOverwriteTransparency},
		},
		{
			name: "overwrite transparency and material",
			in:   Axes{Mode: OverwriteTransparencyAndMaterial},
			want: Decision{Loop: LoopOverwriteTransparencyAndMaterial},
		},
		{
			name: "primitive overwrite at lod 0",
			in:   Axes{Mode: OverwritePrimitiveMaterial, HasOverwritePrimitiveMaterials: true},
			want: Decision{Loop: LoopOverwritePrimitiveMaterial},
		},
		{
			name: "primitive overwrite needs a map",
			in:   Axes{Mode: OverwritePrimitiveMaterial},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "primitive overwrite needs lod 0",
			in:   Axes{Mode: OverwritePrimitiveMaterial, HasOverwritePrimitiveMaterials: true, CurrentLod: 1},
			want: Decision{Loop: LoopNormal},
		},
		{
			name: "selection modes outside selection draw normal",
			in:   Axes{Mode: BodySelection},
			want: Decision{Loop: LoopNormal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLoop(tt.in))
		})
	}
}

func TestEncodeRGBID(t *testing.T) {
	c := EncodeRGBID(0x123456)
	assert.Equal(t, [4]uint8{0x12, 0x34, 0x56, 0}, c)
	assert.Equal(t, uint32(0x123456), DecodeRGBID(c))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, EncodeRGBID(0x1000000), "bits above 24 are dropped")
}

func TestSilhouetteIDs(t *testing.T) {
	f := NewFrame(nil)
	assert.Equal(t, uint32(0), f.NextSilhouetteID(false))
	assert.Equal(t, uint32(0x800001), f.NextSilhouetteID(true))
	f.silhouette = 0x7FFFFF
	assert.Equal(t, uint32(0x7FFFFF), f.NextSilhouetteID(false))
	assert.Equal(t, uint32(0), f.NextSilhouetteID(false), "ids wrap at 23 bits")
	f.Begin()
	assert.Equal(t, uint32(0), f.NextSilhouetteID(false))
}

func TestModeParse(t *testing.T) {
	for m := Normal; m <= BodySelection; m++ {
		got, err := ParseMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("bogus")
	assert.Error(t, err)

	f, err := ParseFlag("wire")
	assert.NoError(t, err)
	assert.Equal(t, FlagWire, f)
}
