// Package meshdata stores the bulk vertex arrays and the packed per-LOD index
// arrays of a mesh, and mirrors them into GPU buffers on demand.
package meshdata

import (
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/pkg/encoding"
	"github.com/Faultbox/midgard-mesh/pkg/math"
)

// Store errors.
var (
	ErrNoLod      = errors.New("lod does not exist")
	ErrIndexRange = errors.New("index past the last vertex")
)

// Lod is the packed index array of one level of detail.
type Lod struct {
	Accuracy       float64
	Indices        []uint32
	TrianglesCount int

	buffer gpu.Buffer
}

// Data is the bulk store of one mesh.
type Data struct {
	positions []float32
	normals   []float32
	texels    []float32
	colors    []float32
	lods      []*Lod

	vbo      bool
	buffers  [4]gpu.Buffer
	orphans  []gpu.Buffer
	uploaded bool
}

// New returns an empty store using buffer objects when the backend supports them.
func New() *Data {
	return &Data{vbo: true}
}

func appendRun(dst *[]float32, v []float32, stride int) int {
	first := len(*dst) / stride
	*dst = append(*dst, v...)
	return first
}

// AddPositions appends xyz positions and returns the first new vertex index.
func (d *Data) AddPositions(v []float32) int { return appendRun(&d.positions, v, 3) }

// AddNormals appends xyz normals and returns the first new vertex index.
func (d *Data) AddNormals(v []float32) int { return appendRun(&d.normals, v, 3) }

// AddTexels appends uv pairs and returns the first new vertex index.
func (d *Data) AddTexels(v []float32) int { return appendRun(&d.texels, v, 2) }

// AddColors appends rgba colors and returns the first new vertex index.
func (d *Data) AddColors(v []float32) int { return appendRun(&d.colors, v, 4) }

func (d *Data) Positions() []float32 { return d.positions }
func (d *Data) Normals() []float32   { return d.normals }
func (d *Data) Texels() []float32    { return d.texels }
func (d *Data) Colors() []float32    { return d.colors }

// VertexCount returns the number of positions.
func (d *Data) VertexCount() int { return len(d.positions) / 3 }

// NormalCount returns the number of normals.
func (d *Data) NormalCount() int { return len(d.normals) / 3 }

// Position returns the position of vertex i.
func (d *Data) Position(i uint32) math.Vec3 {
	return math.Vec3{X: d.positions[i*3], Y: d.positions[i*3+1], Z: d.positions[i*3+2]}
}

// Normal returns the normal of vertex i, zero when normals are not set.
func (d *Data) Normal(i uint32) math.Vec3 {
	if int(i)*3+2 >= len(d.normals) {
		return math.Vec3{}
	}
	return math.Vec3{X: d.normals[i*3], Y: d.normals[i*3+1], Z: d.normals[i*3+2]}
}

// EnsureLod makes LOD lod exist. A LOD created here takes accuracy; an
// existing one keeps its own.
func (d *Data) EnsureLod(lod int, accuracy float64) {
	for len(d.lods) <= lod {
		d.lods = append(d.lods, &Lod{})
		if len(d.lods)-1 == lod {
			d.lods[lod].Accuracy = accuracy
		}
	}
}

// LodCount returns the number of LODs.
func (d *Data) LodCount() int { return len(d.lods) }

// Lod returns LOD i.
func (d *Data) Lod(i int) (*Lod, error) {
	if i < 0 || i >= len(d.lods) {
		return nil, errors.Wrapf(ErrNoLod, "%d of %d", i, len(d.lods))
	}
	return d.lods[i], nil
}

// Accuracy returns the accuracy of LOD i, 0 when it does not exist.
func (d *Data) Accuracy(i int) float64 {
	if l, err := d.Lod(i); err == nil {
		return l.Accuracy
	}
	return 0
}

// TrianglesAdded adds n to the triangle counter of lod.
func (d *Data) TrianglesAdded(lod, n int) {
	if l, err := d.Lod(lod); err == nil {
		l.TrianglesCount += n
	}
}

// TrianglesCount returns the triangle counter of lod.
func (d *Data) TrianglesCount(lod int) int {
	if l, err := d.Lod(lod); err == nil {
		return l.TrianglesCount
	}
	return 0
}

// Indices returns the packed index array of lod.
func (d *Data) Indices(lod int) []uint32 {
	if l, err := d.Lod(lod); err == nil {
		return l.Indices
	}
	return nil
}

// CheckIndices returns ErrIndexRange for the first packed index of lod that
// addresses no vertex.
func (d *Data) CheckIndices(lod int) error {
	vc := uint32(d.VertexCount())
	for _, idx := range d.Indices(lod) {
		if idx >= vc {
			return errors.Wrapf(ErrIndexRange, "lod %d index %d of %d vertices", lod, idx, vc)
		}
	}
	return nil
}

// IndexSize returns the length of the packed index array of lod.
func (d *Data) IndexSize(lod int) int { return len(d.Indices(lod)) }

// ResetIndices empties every LOD index array before packing.
func (d *Data) ResetIndices() {
	for _, l := range d.lods {
		l.Indices = l.Indices[:0]
	}
	d.uploaded = false
}

// AppendIndices appends idx to the array of lod and returns the element
// offset it starts at.
func (d *Data) AppendIndices(lod int, idx []uint32) int {
	l := d.lods[lod]
	offset := len(l.Indices)
	l.Indices = append(l.Indices, idx...)
	return offset
}

// TransformVertices moves positions by m and rotates normals by its rotation part.
func (d *Data) TransformVertices(m math.Mat4) {
	for i := 0; i+2 < len(d.positions); i += 3 {
		p := m.TransformPoint([3]float32{d.positions[i], d.positions[i+1], d.positions[i+2]})
		copy(d.positions[i:i+3], p[:])
	}
	r := m.RotationMatrix()
	for i := 0; i+2 < len(d.normals); i += 3 {
		n := r.TransformDirection([3]float32{d.normals[i], d.normals[i+1], d.normals[i+2]})
		copy(d.normals[i:i+3], n[:])
	}
	d.uploaded = false
}

// ReverseNormals negates every normal.
func (d *Data) ReverseNormals() {
	for i := range d.normals {
		d.normals[i] = -d.normals[i]
	}
	d.uploaded = false
}

// BoundingBox returns the box of all positions.
func (d *Data) BoundingBox() math.Box {
	return math.Box{}.CombinePoints(d.positions)
}

// IsEmpty reports whether the store holds neither vertices nor LODs.
func (d *Data) IsEmpty() bool {
	return len(d.positions) == 0 && len(d.lods) == 0
}

// Clear empties the store. Attribute buffers are kept for reuse; LOD
// buffers are deleted on the next Upload or Release.
func (d *Data) Clear() {
	d.Replace(&Data{})
}

// Replace moves the content of src into d. d keeps its GPU buffers and
// the buffer-object setting; src must not be used afterwards.
func (d *Data) Replace(src *Data) {
	orphans := d.orphans
	for i, l := range d.lods {
		if l.buffer == 0 {
			continue
		}
		if i < len(src.lods) && src.lods[i].buffer == 0 {
			src.lods[i].buffer = l.buffer
		} else {
			orphans = append(orphans, l.buffer)
		}
	}
	buffers, vbo := d.buffers, d.vbo
	*d = *src
	d.buffers = buffers
	d.orphans = orphans
	d.vbo = vbo
	d.uploaded = false
}

// Clone returns a deep copy without GPU buffers.
func (d *Data) Clone() *Data {
	c := &Data{
		positions: append([]float32(nil), d.positions...),
		normals:   append([]float32(nil), d.normals...),
		texels:    append([]float32(nil), d.texels...),
		colors:    append([]float32(nil), d.colors...),
		vbo:       d.vbo,
	}
	for _, l := range d.lods {
		c.lods = append(c.lods, &Lod{
			Accuracy:       l.Accuracy,
			Indices:        append([]uint32(nil), l.Indices...),
			TrianglesCount: l.TrianglesCount,
		})
	}
	return c
}

// Encode writes the vertex arrays and every LOD.
func (d *Data) Encode(w *encoding.Writer) error {
	w.Floats(d.positions)
	w.Floats(d.normals)
	w.Floats(d.texels)
	w.Floats(d.colors)
	w.Uint32(uint32(len(d.lods)))
	for _, l := range d.lods {
		w.Float64(l.Accuracy)
		w.Int32(int32(l.TrianglesCount))
		w.Uint32s(l.Indices)
	}
	return w.Err()
}

// Decode replaces the store content with data written by Encode.
func (d *Data) Decode(r *encoding.Reader) error {
	nd := Data{vbo: d.vbo}
	nd.positions = r.Floats()
	nd.normals = r.Floats()
	nd.texels = r.Floats()
	nd.colors = r.Floats()
	n := r.Len()
	for i := 0; i < n && r.Err() == nil; i++ {
		l := &Lod{Accuracy: r.Float64(), TrianglesCount: int(r.Int32())}
		l.Indices = r.Uint32s()
		nd.lods = append(nd.lods, l)
	}
	if err := r.Err(); err != nil {
		return err
	}
	for i := range nd.lods {
		if err := nd.CheckIndices(i); err != nil {
			return err
		}
	}
	d.Replace(&nd)
	return nil
}
