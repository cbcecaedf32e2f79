package mesh

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/meshdata"
	"github.com/Faultbox/midgard-mesh/internal/primitive"
	"github.com/Faultbox/midgard-mesh/pkg/encoding"
)

// ChunkID leads every serialized mesh.
const ChunkID uint32 = 0xA701

// Save writes the mesh: chunk id, name, wire data, next primitive id, bulk
// data, the LOD list, the groups of each LOD, vertex count and normal count.
func (m *Mesh) Save(w io.Writer) error {
	if !m.finished {
		return errors.Wrapf(ErrNotFinished, "save mesh %q", m.name)
	}
	e := encoding.NewWriter(w)
	e.Uint32(ChunkID)
	e.String(m.name)
	m.wire.Encode(e)
	e.Uint32(m.nextPrimitiveID)
	if err := m.data.Encode(e); err != nil {
		return errors.Wrapf(err, "save mesh %q data", m.name)
	}
	lods := m.lods()
	e.Ints(lods)
	for _, lod := range lods {
		groups := m.groupsOf(lod)
		e.Uint32(uint32(len(groups)))
		for _, g := range groups {
			if err := g.Encode(e); err != nil {
				return errors.Wrapf(err, "save mesh %q lod %d", m.name, lod)
			}
		}
	}
	e.Uint32(uint32(m.VertexCount()))
	e.Uint32(uint32(m.NormalCount()))
	return errors.Wrapf(e.Err(), "save mesh %q", m.name)
}

// Load replaces the mesh with one written by Save. Saved material ids are
// mapped through idMap to keys of materials. On error the mesh is unchanged.
func (m *Mesh) Load(r io.Reader, materials map[uint32]*material.Material, idMap map[uint32]uint32) error {
	d := encoding.NewReader(r)
	if id := d.Uint32(); d.Err() != nil {
		return errors.Wrap(d.Err(), "load mesh")
	} else if id != ChunkID {
		return errors.Wrapf(ErrChunkID, "got %#x, want %#x", id, ChunkID)
	}
	name := d.String()
	wire := NewWireData()
	if err := wire.Decode(d); err != nil {
		return errors.Wrapf(err, "load mesh %q wire", name)
	}
	next := d.Uint32()
	data := meshdata.New()
	if err := data.Decode(d); err != nil {
		return errors.Wrapf(err, "load mesh %q data", name)
	}

	lods := d.Ints()
	groups := make(map[int]map[uint32]*primitive.Group, len(lods))
	used := make(map[uint32]*material.Material)
	for _, lod := range lods {
		if lod < 0 || lod >= data.LodCount() {
			return errors.Wrapf(ErrCorrupt, "mesh %q lists lod %d of %d", name, lod, data.LodCount())
		}
		n := d.Len()
		byMaterial := make(map[uint32]*primitive.Group, n)
		for range n {
			g, err := primitive.Decode(d)
			if err != nil {
				return errors.Wrapf(err, "load mesh %q lod %d", name, lod)
			}
			mat, err := remapMaterial(g.MaterialID(), materials, idMap)
			if err != nil {
				return errors.Wrapf(err, "load mesh %q lod %d", name, lod)
			}
			if err := checkRuns(g, data.IndexSize(lod)); err != nil {
				return errors.Wrapf(err, "load mesh %q lod %d", name, lod)
			}
			g.SetMaterialID(mat.ID())
			byMaterial[mat.ID()] = g
			used[mat.ID()] = mat
		}
		groups[lod] = byMaterial
	}
	vertices, normals := int(d.Uint32()), int(d.Uint32())
	if err := d.Err(); err != nil {
		return errors.Wrapf(err, "load mesh %q", name)
	}
	if vertices != data.VertexCount() || normals != data.NormalCount() {
		return errors.Wrapf(ErrCorrupt, "mesh %q counts %d/%d, data holds %d/%d",
			name, vertices, normals, data.VertexCount(), data.NormalCount())
	}

	// New usages go first so a material shared by both contents is never
	// freed in between.
	previous := m.materials
	m.materials = make(map[uint32]*material.Material, len(used))
	for _, mat := range used {
		m.addMaterial(mat)
	}
	for id, mat := range previous {
		if _, ok := m.materials[id]; !ok {
			mat.DelUsage(m.uid)
		}
	}
	m.name = name
	m.data.Replace(data)
	m.wire.Clear()
	m.wire.positions, m.wire.groups, m.wire.nextID = wire.positions, wire.groups, wire.nextID
	m.groups = groups
	m.defaultMaterialID = 0
	m.nextPrimitiveID = next
	m.colorPerVertex = len(data.Colors()) > 0
	m.currentLod = 0
	m.finished = true
	m.bbox = nil

	logger.Debug("mesh loaded",
		zap.String("mesh", name), zap.Int("lods", m.LodCount()), zap.Int("materials", len(used)))
	return nil
}

func remapMaterial(saved uint32, materials map[uint32]*material.Material, idMap map[uint32]uint32) (*material.Material, error) {
	id, ok := idMap[saved]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMaterial, "saved id %d not in map", saved)
	}
	mat, ok := materials[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMaterial, "id %d", id)
	}
	return mat, nil
}

func checkRuns(g *primitive.Group, size int) error {
	for _, k := range primitive.Kinds {
		sizes := g.Sizes(k)
		for i, off := range g.Offsets(k) {
			if off < 0 || sizes[i] < 0 || off+sizes[i] > size {
				return errors.Wrapf(ErrCorrupt, "material %d %s run [%d,%d) past %d indices",
					g.MaterialID(), k, off, off+sizes[i], size)
			}
		}
	}
	return nil
}

// SaveFile writes the materials of the mesh followed by the mesh to path.
func (m *Mesh) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create mesh file")
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	e := encoding.NewWriter(bw)
	matIDs := m.MaterialIDs()
	e.Uint32(uint32(len(matIDs)))
	for _, id := range matIDs {
		m.materials[id].Encode(e)
	}
	if err := e.Err(); err != nil {
		return errors.Wrapf(err, "write materials of %q", m.name)
	}
	if err := m.Save(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

// LoadFile reads a file written by SaveFile. Its materials get fresh ids and
// are added to reg when reg is not nil.
func LoadFile(path string, reg *material.Registry) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open mesh file")
	}
	defer f.Close()

	br := bufio.NewReader(f)
	d := encoding.NewReader(br)
	n := d.Len()
	materials := make(map[uint32]*material.Material, n)
	idMap := make(map[uint32]uint32, n)
	for range n {
		mat, saved, err := material.Decode(d)
		if err != nil {
			return nil, errors.Wrapf(err, "read materials of %s", path)
		}
		if reg != nil {
			reg.Add(mat)
		}
		materials[mat.ID()] = mat
		idMap[saved] = mat.ID()
	}
	if err := d.Err(); err != nil {
		return nil, errors.Wrapf(err, "read materials of %s", path)
	}

	m := New("")
	if err := m.Load(br, materials, idMap); err != nil {
		return nil, err
	}
	return m, nil
}
