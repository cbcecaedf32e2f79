package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

func TestBoxLines(t *testing.T) {
	assert.Nil(t, BoxLines(math.Box{}, 1))

	b := math.Box{}.Combine(math.Vec3{X: 0, Y: 0, Z: 0}).Combine(math.Vec3{X: 1, Y: 2, Z: 3})
	lines := BoxLines(b, 0.5)
	require.Len(t, lines, BoxVertexCount*3)

	for i := 0; i < len(lines); i += 3 {
		assert.Contains(t, []float32{-0.5, 1.5}, lines[i])
		assert.Contains(t, []float32{-0.5, 2.5}, lines[i+1])
		assert.Contains(t, []float32{-0.5, 3.5}, lines[i+2])
	}

	// Every edge runs along exactly one axis.
	for e := 0; e < BoxVertexCount/2; e++ {
		a, c := lines[e*6:e*6+3], lines[e*6+3:e*6+6]
		differ := 0
		for k := range 3 {
			if a[k] != c[k] {
				differ++
			}
		}
		assert.Equal(t, 1, differ, "edge %d", e)
	}
}

func TestDrawBox(t *testing.T) {
	rec := gpu.NewRecorder(true)
	b := math.Box{}.Combine(math.Vec3{}).Combine(math.Vec3{X: 1, Y: 1, Z: 1})
	DrawBox(rec, b, 0, [4]float32{1, 1, 0, 1})

	require.Len(t, rec.Draws, 1)
	d := rec.Draws[0]
	assert.Equal(t, gpu.Lines, d.Primitive)
	assert.Len(t, d.Indices, BoxVertexCount)
	assert.False(t, d.Lighting)
	assert.Equal(t, [4]float32{1, 1, 0, 1}, d.Color)
	assert.Len(t, d.Positions, BoxVertexCount*3)
	assert.Empty(t, rec.Errors)
	assert.Nil(t, rec.Attribute(gpu.Position))

	rec.Reset()
	DrawBox(rec, math.Box{}, 0, [4]float32{1, 1, 1, 1})
	assert.Empty(t, rec.Draws)
}

func TestImageFromPixels(t *testing.T) {
	// Two rows, bottom row red, top row green.
	pixels := []byte{
		255, 0, 0, 255,
		0, 255, 0, 255,
	}
	img, err := ImageFromPixels(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 0, 255}, img.Pix[0:4])
	assert.Equal(t, []byte{255, 0, 0, 255}, img.Pix[4:8])

	_, err = ImageFromPixels(pixels, 2, 2)
	assert.Error(t, err)
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "mesh")
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 5, 0, time.UTC) }

	name, err := sc.CaptureFromPixels(make([]byte, 4*3*2), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mesh_2024-03-01_12-30-05.png"), name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
}
