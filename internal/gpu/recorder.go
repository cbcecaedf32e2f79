package gpu

import (
	"sync"

	"github.com/pkg/errors"
)

// Draw is one recorded draw call with its indices resolved against the
// state at the time of the call.
type Draw struct {
	Primitive Primitive
	Indices   []uint32
	Color     [4]float32
	Lighting  bool
	FrontCCW  bool
	Cull      bool
	// Buffered is true when indices came from a bound element buffer.
	Buffered bool
	// Positions is the position attribute enabled for the draw.
	Positions []float32
}

type recordedBuffer struct {
	floats  []float32
	indices []uint32
}

// Recorder is a headless Backend. It keeps buffer contents so draws can be
// resolved to the vertex indices they would have consumed.
type Recorder struct {
	mu sync.Mutex

	vbo      bool
	next     Buffer
	buffers  map[Buffer]*recordedBuffer
	bound    map[Target]Buffer
	attrs    map[Attribute][]float32
	color    [4]float32
	lighting bool
	texture  bool
	ccw      bool
	cull     bool

	Draws   []Draw
	Created int
	Deleted int
	Fills   int
	Errors  []error
}

// NewRecorder returns a Recorder. vbo selects the buffer-object path.
func NewRecorder(vbo bool) *Recorder {
	return &Recorder{
		vbo:      vbo,
		buffers:  make(map[Buffer]*recordedBuffer),
		bound:    make(map[Target]Buffer),
		attrs:    make(map[Attribute][]float32),
		lighting: true,
		ccw:      true,
	}
}

func (r *Recorder) fail(format string, args ...any) {
	r.Errors = append(r.Errors, errors.Errorf(format, args...))
}

// Reset drops recorded draws and errors but keeps buffers.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Draws = nil
	r.Errors = nil
}

// LiveBuffers returns the number of created and not yet deleted buffers.
func (r *Recorder) LiveBuffers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffers)
}

// Attribute returns the data last enabled for a.
func (r *Recorder) Attribute(a Attribute) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attrs[a]
}

func (r *Recorder) VBOSupported() bool { return r.vbo }

func (r *Recorder) SetColor(rgba [4]float32) {
	r.mu.Lock()
	r.color = rgba
	r.mu.Unlock()
}

func (r *Recorder) SetLighting(on bool) {
	r.mu.Lock()
	r.lighting = on
	r.mu.Unlock()
}

func (r *Recorder) SetTexturing(on bool) {
	r.mu.Lock()
	r.texture = on
	r.mu.Unlock()
}

func (r *Recorder) FrontFace(ccw bool) {
	r.mu.Lock()
	r.ccw = ccw
	r.mu.Unlock()
}

func (r *Recorder) CullFace(on bool) {
	r.mu.Lock()
	r.cull = on
	r.mu.Unlock()
}

func (r *Recorder) CreateBuffer() Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.buffers[r.next] = &recordedBuffer{}
	r.Created++
	return r.next
}

func (r *Recorder) DeleteBuffer(b Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[b]; !ok {
		r.fail("delete of unknown buffer %d", b)
		return
	}
	delete(r.buffers, b)
	for t, bb := range r.bound {
		if bb == b {
			delete(r.bound, t)
		}
	}
	r.Deleted++
}

func (r *Recorder) BindBuffer(t Target, b Buffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buffers[b]; !ok {
		r.fail("bind of unknown buffer %d", b)
		return
	}
	r.bound[t] = b
}

func (r *Recorder) ReleaseBuffer(t Target) {
	r.mu.Lock()
	delete(r.bound, t)
	r.mu.Unlock()
}

func (r *Recorder) boundBuffer(t Target) *recordedBuffer {
	b, ok := r.bound[t]
	if !ok {
		r.fail("no buffer bound to target %d", t)
		return nil
	}
	return r.buffers[b]
}

func (r *Recorder) FillFloats(t Target, data []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf := r.boundBuffer(t); buf != nil {
		buf.floats = append([]float32(nil), data...)
		r.Fills++
	}
}

func (r *Recorder) FillIndices(t Target, data []uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if buf := r.boundBuffer(t); buf != nil {
		buf.indices = append([]uint32(nil), data...)
		r.Fills++
	}
}

func (r *Recorder) SetAttribute(a Attribute, size int, client []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if size != a.Components() {
		r.fail("attribute %s: size %d", a, size)
	}
	if client != nil {
		r.attrs[a] = client
		return
	}
	if buf := r.boundBuffer(ArrayBuffer); buf != nil {
		r.attrs[a] = buf.floats
	}
}

func (r *Recorder) DisableAttributes() {
	r.mu.Lock()
	clear(r.attrs)
	r.mu.Unlock()
}

func (r *Recorder) record(p Primitive, idx []uint32, buffered bool) {
	r.Draws = append(r.Draws, Draw{
		Primitive: p,
		Indices:   idx,
		Color:     r.color,
		Lighting:  r.lighting,
		FrontCCW:  r.ccw,
		Cull:      r.cull,
		Buffered:  buffered,
		Positions: r.attrs[Position],
	})
}

func (r *Recorder) DrawElements(p Primitive, count int, off Offset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if off.Client != nil {
		if off.Elements < 0 || off.Elements+count > len(off.Client) {
			r.fail("client draw [%d,+%d) out of %d", off.Elements, count, len(off.Client))
			return
		}
		r.record(p, append([]uint32(nil), off.Client[off.Elements:off.Elements+count]...), false)
		return
	}
	buf := r.boundBuffer(ElementArrayBuffer)
	if buf == nil {
		return
	}
	start := int(off.Bytes / 4)
	if off.Bytes%4 != 0 || start+count > len(buf.indices) {
		r.fail("buffered draw at byte %d,+%d out of %d", off.Bytes, count, len(buf.indices))
		return
	}
	r.record(p, append([]uint32(nil), buf.indices[start:start+count]...), true)
}

func (r *Recorder) DrawArrays(p Primitive, first, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := make([]uint32, count)
	for i := range idx {
		idx[i] = uint32(first + i)
	}
	r.record(p, idx, false)
}

// Triangles returns every recorded draw expanded to triangles as vertex
// positions, for comparing what two draw paths rendered.
func (r *Recorder) Triangles() [][3][3]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out [][3][3]float32
	for _, d := range r.Draws {
		pos := d.Positions
		vertex := func(i uint32) [3]float32 {
			if int(i)*3+2 >= len(pos) {
				return [3]float32{}
			}
			return [3]float32{pos[i*3], pos[i*3+1], pos[i*3+2]}
		}
		for _, t := range ExpandTriangles(d.Primitive, d.Indices) {
			out = append(out, [3][3]float32{vertex(t[0]), vertex(t[1]), vertex(t[2])})
		}
	}
	return out
}

// ExpandTriangles converts an index run of the given topology to triangles.
// Strips alternate winding on odd triangles.
func ExpandTriangles(p Primitive, idx []uint32) [][3]uint32 {
	var out [][3]uint32
	switch p {
	case Triangles:
		for i := 0; i+2 < len(idx); i += 3 {
			out = append(out, [3]uint32{idx[i], idx[i+1], idx[i+2]})
		}
	case TriangleStrip:
		for j := 2; j < len(idx); j++ {
			if j%2 == 1 {
				out = append(out, [3]uint32{idx[j], idx[j-1], idx[j-2]})
			} else {
				out = append(out, [3]uint32{idx[j-2], idx[j-1], idx[j]})
			}
		}
	case TriangleFan:
		for j := 1; j+1 < len(idx); j++ {
			out = append(out, [3]uint32{idx[0], idx[j], idx[j+1]})
		}
	}
	return out
}
