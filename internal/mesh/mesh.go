// Package mesh implements a multi-LOD triangle mesh. Index batches are
// grouped per LOD and material, packed into one index array per LOD by
// Finish, and drawn through one of the render loops chosen per draw call.
package mesh

import (
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/ids"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/meshdata"
	"github.com/Faultbox/midgard-mesh/internal/primitive"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Mesh errors.
var (
	ErrEmptyIndexList  = errors.New("empty index list")
	ErrIndexCount      = errors.New("invalid index count")
	ErrInvalidLod      = errors.New("invalid lod")
	ErrNotFound        = errors.New("not found")
	ErrNotFinished     = errors.New("mesh not finished")
	ErrMaterialInUse   = errors.New("material already used by mesh")
	ErrUnknownMaterial = errors.New("unknown material")
	ErrChunkID         = errors.New("chunk id mismatch")
	ErrCorrupt         = errors.New("corrupt mesh stream")
)

// DefaultWireColor is the color wire data is drawn with.
var DefaultWireColor = [4]float32{0, 0, 0, 1}

// Mesh owns its primitive groups, keyed by LOD then material id, and the
// bulk vertex store they index into.
type Mesh struct {
	id   uint32
	uid  uuid.UUID
	name string

	data      *meshdata.Data
	groups    map[int]map[uint32]*primitive.Group
	materials map[uint32]*material.Material

	defaultMaterialID uint32
	nextPrimitiveID   uint32
	colorPerVertex    bool
	currentLod        int
	finished          bool

	bbox      *math.Box
	wire      *WireData
	wireColor [4]float32
}

// New returns an empty mesh.
func New(name string) *Mesh {
	return &Mesh{
		id:              ids.Next(),
		uid:             uuid.New(),
		name:            name,
		data:            meshdata.New(),
		groups:          make(map[int]map[uint32]*primitive.Group),
		materials:       make(map[uint32]*material.Material),
		nextPrimitiveID: 1,
		wire:            NewWireData(),
		wireColor:       DefaultWireColor,
	}
}

func (m *Mesh) ID() uint32          { return m.id }
func (m *Mesh) UID() uuid.UUID      { return m.uid }
func (m *Mesh) Name() string        { return m.name }
func (m *Mesh) SetName(name string) { m.name = name }

// Data returns the bulk store.
func (m *Mesh) Data() *meshdata.Data { return m.data }

// Wire returns the wire data of the mesh.
func (m *Mesh) Wire() *WireData { return m.wire }

func (m *Mesh) WireColor() [4]float32     { return m.wireColor }
func (m *Mesh) SetWireColor(c [4]float32) { m.wireColor = c }

// ColorPerVertex reports whether per-vertex colors are drawn.
func (m *Mesh) ColorPerVertex() bool     { return m.colorPerVertex }
func (m *Mesh) SetColorPerVertex(v bool) { m.colorPerVertex = v }

// SetVBOUsage selects the buffer-object draw path.
func (m *Mesh) SetVBOUsage(on bool) { m.data.SetVBOUsage(on) }

// IsFinished reports whether the groups are packed.
func (m *Mesh) IsFinished() bool { return m.finished }

// AddVertices appends xyz positions and returns the index of the first one.
func (m *Mesh) AddVertices(v []float32) uint32 {
	m.geometryChanged()
	return uint32(m.data.AddPositions(v))
}

// AddNormals appends xyz normals and returns the index of the first one.
func (m *Mesh) AddNormals(v []float32) uint32 {
	m.geometryChanged()
	return uint32(m.data.AddNormals(v))
}

// AddTexels appends uv pairs and returns the index of the first one.
func (m *Mesh) AddTexels(v []float32) uint32 {
	m.data.Invalidate()
	return uint32(m.data.AddTexels(v))
}

// AddColors appends rgba colors and turns per-vertex coloring on.
func (m *Mesh) AddColors(v []float32) uint32 {
	m.data.Invalidate()
	m.colorPerVertex = true
	return uint32(m.data.AddColors(v))
}

func (m *Mesh) geometryChanged() {
	m.bbox = nil
	m.data.Invalidate()
}

// AddTriangles adds a batch of triangles and returns its primitive id, which
// is 0 outside LOD 0.
func (m *Mesh) AddTriangles(mat *material.Material, idx []uint32, lod int, accuracy float64) (uint32, error) {
	if len(idx)%3 != 0 {
		return 0, errors.Wrapf(ErrIndexCount, "%d triangle indices", len(idx))
	}
	g, err := m.prepare(mat, idx, lod, accuracy)
	if err != nil {
		return 0, err
	}
	id := m.primitiveID(lod)
	g.AddTriangles(idx, id)
	m.data.TrianglesAdded(lod, len(idx)/3)
	return id, nil
}

// AddTrianglesStrip adds one triangle strip and returns its primitive id.
func (m *Mesh) AddTrianglesStrip(mat *material.Material, idx []uint32, lod int, accuracy float64) (uint32, error) {
	if len(idx) > 0 && len(idx) < 3 {
		return 0, errors.Wrapf(ErrIndexCount, "strip of %d indices", len(idx))
	}
	g, err := m.prepare(mat, idx, lod, accuracy)
	if err != nil {
		return 0, err
	}
	id := m.primitiveID(lod)
	g.AddStrip(idx, id)
	m.data.TrianglesAdded(lod, len(idx)-2)
	return id, nil
}

// AddTrianglesFan adds one triangle fan and returns its primitive id.
func (m *Mesh) AddTrianglesFan(mat *material.Material, idx []uint32, lod int, accuracy float64) (uint32, error) {
	if len(idx) > 0 && len(idx) < 3 {
		return 0, errors.Wrapf(ErrIndexCount, "fan of %d indices", len(idx))
	}
	g, err := m.prepare(mat, idx, lod, accuracy)
	if err != nil {
		return 0, err
	}
	id := m.primitiveID(lod)
	g.AddFan(idx, id)
	m.data.TrianglesAdded(lod, len(idx)-2)
	return id, nil
}

// prepare validates a batch and returns the group it goes to, creating the
// LOD bucket and material association on first use.
func (m *Mesh) prepare(mat *material.Material, idx []uint32, lod int, accuracy float64) (*primitive.Group, error) {
	if len(idx) == 0 {
		return nil, ErrEmptyIndexList
	}
	if lod < 0 {
		return nil, errors.Wrapf(ErrInvalidLod, "%d", lod)
	}
	if err := m.unpack(); err != nil {
		return nil, err
	}
	if mat == nil {
		mat = m.defaultMaterial()
	}
	m.addMaterial(mat)

	byMaterial, ok := m.groups[lod]
	if !ok {
		byMaterial = make(map[uint32]*primitive.Group)
		m.groups[lod] = byMaterial
		m.data.EnsureLod(lod, accuracy)
		if l, err := m.data.Lod(lod); err == nil {
			l.Accuracy = accuracy
		}
	}
	g, ok := byMaterial[mat.ID()]
	if !ok {
		g = primitive.New(mat.ID())
		byMaterial[mat.ID()] = g
	}
	m.bbox = nil
	return g, nil
}

func (m *Mesh) primitiveID(lod int) uint32 {
	if lod != 0 {
		return 0
	}
	id := m.nextPrimitiveID
	m.nextPrimitiveID++
	return id
}

// unpack restores the pending indices of every packed group from the LOD
// arrays so the next Finish can repack them together with new batches.
func (m *Mesh) unpack() error {
	if !m.finished {
		return nil
	}
	for lod, byMaterial := range m.groups {
		packed := m.data.Indices(lod)
		for _, g := range byMaterial {
			for _, k := range primitive.Kinds {
				offsets := g.Offsets(k)
				if len(offsets) == 0 {
					continue
				}
				n := 0
				for _, s := range g.Sizes(k) {
					n += s
				}
				if offsets[0]+n > len(packed) {
					return errors.Wrapf(ErrCorrupt, "lod %d material %d %s run past index array", lod, g.MaterialID(), k)
				}
				if err := g.Restore(k, packed[offsets[0]:offsets[0]+n]); err != nil {
					return err
				}
			}
		}
	}
	m.finished = false
	return nil
}

func (m *Mesh) defaultMaterial() *material.Material {
	if mat, ok := m.materials[m.defaultMaterialID]; ok {
		return mat
	}
	mat := material.Default()
	m.defaultMaterialID = mat.ID()
	return mat
}

func (m *Mesh) addMaterial(mat *material.Material) {
	if _, ok := m.materials[mat.ID()]; ok {
		return
	}
	m.materials[mat.ID()] = mat
	mat.AddUsage(m.uid)
}

func (m *Mesh) removeMaterial(id uint32) {
	if mat, ok := m.materials[id]; ok {
		delete(m.materials, id)
		mat.DelUsage(m.uid)
	}
	if id == m.defaultMaterialID {
		m.defaultMaterialID = 0
	}
}

// Material returns the material with id if the mesh uses it.
func (m *Mesh) Material(id uint32) (*material.Material, bool) {
	mat, ok := m.materials[id]
	return mat, ok
}

// MaterialIDs returns the ids of every material of the mesh in ascending order.
func (m *Mesh) MaterialIDs() []uint32 {
	return slices.Sorted(maps.Keys(m.materials))
}

// ReplaceMaterial moves every group of material oldID, at every LOD, to mat.
func (m *Mesh) ReplaceMaterial(oldID uint32, mat *material.Material) error {
	if _, ok := m.materials[oldID]; !ok {
		return errors.Wrapf(ErrUnknownMaterial, "%d", oldID)
	}
	if mat.ID() == oldID {
		return nil
	}
	if _, ok := m.materials[mat.ID()]; ok {
		return errors.Wrapf(ErrMaterialInUse, "%d", mat.ID())
	}
	for _, byMaterial := range m.groups {
		if g, ok := byMaterial[oldID]; ok {
			delete(byMaterial, oldID)
			g.SetMaterialID(mat.ID())
			byMaterial[mat.ID()] = g
		}
	}
	m.addMaterial(mat)
	m.removeMaterial(oldID)
	logger.Debug("mesh material replaced",
		zap.String("mesh", m.name), zap.Uint32("old", oldID), zap.Uint32("new", mat.ID()))
	return nil
}

// ReplaceMasterMaterial replaces the first material of the mesh with mat, or
// adds mat when the mesh has none.
func (m *Mesh) ReplaceMasterMaterial(mat *material.Material) error {
	matIDs := m.MaterialIDs()
	if len(matIDs) == 0 {
		m.addMaterial(mat)
		return nil
	}
	return m.ReplaceMaterial(matIDs[0], mat)
}

// Clone returns a deep copy with a new identity. Materials are shared; the
// clone registers its own usage.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		id:                ids.Next(),
		uid:               uuid.New(),
		name:              m.name,
		data:              m.data.Clone(),
		groups:            make(map[int]map[uint32]*primitive.Group, len(m.groups)),
		materials:         make(map[uint32]*material.Material, len(m.materials)),
		defaultMaterialID: m.defaultMaterialID,
		nextPrimitiveID:   m.nextPrimitiveID,
		colorPerVertex:    m.colorPerVertex,
		currentLod:        m.currentLod,
		finished:          m.finished,
		wire:              m.wire.Clone(),
		wireColor:         m.wireColor,
	}
	for lod, byMaterial := range m.groups {
		cg := make(map[uint32]*primitive.Group, len(byMaterial))
		for id, g := range byMaterial {
			cg[id] = g.Clone(id)
		}
		c.groups[lod] = cg
	}
	for _, mat := range m.materials {
		c.addMaterial(mat)
	}
	return c
}

// Clear empties the mesh and drops its material usages. The name and
// identity are kept.
func (m *Mesh) Clear() {
	for _, id := range m.MaterialIDs() {
		m.removeMaterial(id)
	}
	m.groups = make(map[int]map[uint32]*primitive.Group)
	m.data.Clear()
	m.wire.Clear()
	m.defaultMaterialID = 0
	m.nextPrimitiveID = 1
	m.colorPerVertex = false
	m.currentLod = 0
	m.finished = false
	m.bbox = nil
}

// Release deletes the GPU buffers of the mesh.
func (m *Mesh) Release(b gpu.Backend) {
	m.data.Release(b)
	m.wire.Release(b)
}

// lods returns the LODs holding groups in ascending order.
func (m *Mesh) lods() []int {
	return slices.Sorted(maps.Keys(m.groups))
}

// groupsOf returns the groups of lod ordered by material id.
func (m *Mesh) groupsOf(lod int) []*primitive.Group {
	byMaterial := m.groups[lod]
	out := make([]*primitive.Group, 0, len(byMaterial))
	for _, id := range slices.Sorted(maps.Keys(byMaterial)) {
		out = append(out, byMaterial[id])
	}
	return out
}
