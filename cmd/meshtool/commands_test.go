package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

func TestCommandsPipeline(t *testing.T) {
	dir := t.TempDir()
	sphere := filepath.Join(dir, "sphere.mesh")
	box := filepath.Join(dir, "box.mesh")
	cfg := config.Default()

	require.NoError(t, cmdDemo([]string{sphere}))
	require.NoError(t, cmdDemo([]string{"-kind", "box", box}))
	require.NoError(t, cmdInfo([]string{sphere}))

	coarse := filepath.Join(dir, "coarse.mesh")
	require.NoError(t, cmdLod([]string{sphere, "2", coarse}))
	m, err := load(coarse)
	require.NoError(t, err)
	assert.Equal(t, 1, m.LodCount())

	tail := filepath.Join(dir, "tail.mesh")
	require.NoError(t, cmdFrom([]string{sphere, "1", tail}))
	m, err = load(tail)
	require.NoError(t, err)
	assert.Equal(t, 2, m.LodCount())

	edged := filepath.Join(dir, "edged.mesh")
	require.NoError(t, cmdEdges(cfg, []string{"-o", edged, box}))
	m, err = load(edged)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Wire().VertexGroupCount())

	cut := filepath.Join(dir, "cut.mesh")
	require.NoError(t, cmdCSG([]string{"subtract", "-offset", "0.5,0.5,0.5", box, box, cut}))
	m, err = load(cut)
	require.NoError(t, err)
	assert.InDelta(t, 0.875, volumeOf(t, m), 1e-3)

	for _, mode := range []string{"normal", "primitive-selected", "overwrite-primitive-material"} {
		require.NoError(t, cmdRender(cfg, []string{"-mode", mode, sphere}), mode)
	}
	require.NoError(t, cmdRender(cfg, []string{"-novbo", "-flag", "wire", edged}))
	require.NoError(t, cmdRender(cfg, []string{"-selection", "-mode", "primitive-selection", sphere}))

	require.NoError(t, cmdPick([]string{"-from", "0,0,5", sphere}))
	require.NoError(t, cmdPick([]string{"-from", "5,5,5", "-to", "5,5,0", box}))
}

func TestCommandErrors(t *testing.T) {
	cfg := config.Default()
	assert.ErrorIs(t, cmdInfo(nil), errUsage)
	assert.ErrorIs(t, cmdLod([]string{"a"}), errUsage)
	assert.Error(t, cmdLod([]string{"a", "x", "b"}))
	assert.Error(t, cmdCSG([]string{"xor"}))
	assert.ErrorIs(t, cmdPick([]string{"x.mesh"}), errUsage)
	assert.Error(t, cmdPick([]string{"-from", "1,2", "x.mesh"}))
	assert.Error(t, cmdRender(cfg, []string{"-mode", "bogus", "missing.mesh"}))
	assert.Error(t, cmdInfo([]string{filepath.Join(t.TempDir(), "missing.mesh")}))
}

func TestConfigCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Mesh.Workers = 3
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	require.NoError(t, cmdConfig(cfg, []string{"-o", path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workers: 3")

	cfg.Render.Width = 0
	assert.ErrorIs(t, cmdConfig(cfg, []string{"-o", path}), config.ErrInvalid)
}

func TestParseOffset(t *testing.T) {
	m, err := parseOffset("1, 2.5,-3")
	require.NoError(t, err)
	assert.Equal(t, math.Translate(1, 2.5, -3), m)

	_, err = parseOffset("1,2")
	assert.Error(t, err)
	_, err = parseOffset("1,b,3")
	assert.Error(t, err)
}

func volumeOf(t *testing.T, m interface{ Volume() (float64, error) }) float64 {
	t.Helper()
	v, err := m.Volume()
	require.NoError(t, err)
	return v
}
