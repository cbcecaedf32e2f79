// Package primitive holds the index batches a mesh collects per LOD and
// material before they are packed into the LOD index array.
package primitive

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/pkg/encoding"
)

// Kind is the topology of a batch.
type Kind int

const (
	Triangles Kind = iota
	Strip
	Fan
)

// Kinds lists the topologies in packing order.
var Kinds = [...]Kind{Triangles, Strip, Fan}

func (k Kind) String() string {
	switch k {
	case Triangles:
		return "triangles"
	case Strip:
		return "strip"
	case Fan:
		return "fan"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IndexSize is the size in bytes of one packed index.
const IndexSize = 4

// Group errors.
var (
	ErrNotFinished = errors.New("primitive group not finished")
	ErrCorrupt     = errors.New("corrupt primitive group")
)

type run struct {
	pending []uint32
	sizes   []int
	ids     []uint32
	offsets []int
}

func (r *run) add(idx []uint32, id uint32) {
	r.pending = append(r.pending, idx...)
	r.sizes = append(r.sizes, len(idx))
	r.ids = append(r.ids, id)
}

func (r *run) total() int {
	n := 0
	for _, s := range r.sizes {
		n += s
	}
	return n
}

func (r *run) setBase(element int) {
	r.offsets = make([]int, len(r.sizes))
	for i, s := range r.sizes {
		r.offsets[i] = element
		element += s
	}
}

func (r *run) clone() run {
	return run{
		pending: append([]uint32(nil), r.pending...),
		sizes:   append([]int(nil), r.sizes...),
		ids:     append([]uint32(nil), r.ids...),
		offsets: append([]int(nil), r.offsets...),
	}
}

// Primitive is one batch of a group.
type Primitive struct {
	Kind Kind
	ID   uint32
	// Offset is the element offset in the LOD index array, valid after packing.
	Offset int
	Size   int
}

// ByteOffset returns the offset of the batch in a bound element buffer.
func (p Primitive) ByteOffset() uintptr {
	return ByteOffset(p.Offset)
}

// ByteOffset converts an element offset to a byte offset.
func ByteOffset(element int) uintptr {
	return uintptr(element * IndexSize)
}

// Group collects the triangles, strips and fans of one material at one LOD.
type Group struct {
	materialID uint32
	runs       [3]run
	finished   bool
}

// New returns an empty group for materialID.
func New(materialID uint32) *Group {
	return &Group{materialID: materialID}
}

// MaterialID returns the owning material id.
func (g *Group) MaterialID() uint32 { return g.materialID }

// SetMaterialID re-keys the group.
func (g *Group) SetMaterialID(id uint32) { g.materialID = id }

// AddTriangles appends a triangle batch.
func (g *Group) AddTriangles(idx []uint32, id uint32) { g.add(Triangles, idx, id) }

// AddStrip appends one triangle strip.
func (g *Group) AddStrip(idx []uint32, id uint32) { g.add(Strip, idx, id) }

// AddFan appends one triangle fan.
func (g *Group) AddFan(idx []uint32, id uint32) { g.add(Fan, idx, id) }

func (g *Group) add(k Kind, idx []uint32, id uint32) {
	if g.finished {
		g.unpack()
	}
	g.runs[k].add(idx, id)
}

// unpack drops the packing state. Packed groups have no pending indices, so
// callers adding to one restore them first with Restore.
func (g *Group) unpack() {
	g.finished = false
	for k := range g.runs {
		g.runs[k].offsets = nil
	}
}

func (g *Group) ContainsTriangles() bool { return len(g.runs[Triangles].sizes) > 0 }
func (g *Group) ContainsStrips() bool    { return len(g.runs[Strip].sizes) > 0 }
func (g *Group) ContainsFans() bool      { return len(g.runs[Fan].sizes) > 0 }

// Contains reports whether the group has batches of kind k.
func (g *Group) Contains(k Kind) bool { return len(g.runs[k].sizes) > 0 }

// TrianglesSize returns the number of triangle indices.
func (g *Group) TrianglesSize() int { return g.runs[Triangles].total() }

// StripSizes returns the index count of each strip.
func (g *Group) StripSizes() []int { return g.runs[Strip].sizes }

// FanSizes returns the index count of each fan.
func (g *Group) FanSizes() []int { return g.runs[Fan].sizes }

// Sizes returns the index count of each batch of kind k.
func (g *Group) Sizes(k Kind) []int { return g.runs[k].sizes }

// IDs returns the primitive id of each batch of kind k.
func (g *Group) IDs(k Kind) []uint32 { return g.runs[k].ids }

// IndexCount returns the number of indices over every kind.
func (g *Group) IndexCount() int {
	n := 0
	for k := range g.runs {
		n += g.runs[k].total()
	}
	return n
}

// Pending returns the unpacked indices of kind k.
func (g *Group) Pending(k Kind) []uint32 { return g.runs[k].pending }

// Restore replaces the pending indices of kind k, used to re-pack a finished
// group from its LOD index array. The length must match the recorded sizes.
func (g *Group) Restore(k Kind, idx []uint32) error {
	if len(idx) != g.runs[k].total() {
		return errors.Wrapf(ErrCorrupt, "%s restore of %d indices, want %d", k, len(idx), g.runs[k].total())
	}
	g.runs[k].pending = append(g.runs[k].pending[:0], idx...)
	return nil
}

// SetTrianglesOffset sets the element offset of the triangle run.
func (g *Group) SetTrianglesOffset(element int) { g.runs[Triangles].setBase(element) }

// SetStripsBaseOffset sets the element offset of the first strip.
func (g *Group) SetStripsBaseOffset(element int) { g.runs[Strip].setBase(element) }

// SetFansBaseOffset sets the element offset of the first fan.
func (g *Group) SetFansBaseOffset(element int) { g.runs[Fan].setBase(element) }

// TrianglesOffset returns the element offset of the triangle run.
func (g *Group) TrianglesOffset() int {
	if o := g.runs[Triangles].offsets; len(o) > 0 {
		return o[0]
	}
	return 0
}

// Offsets returns the element offset of each batch of kind k.
func (g *Group) Offsets(k Kind) []int { return g.runs[k].offsets }

// ByteOffsets returns the buffer offset of each batch of kind k.
func (g *Group) ByteOffsets(k Kind) []uintptr {
	o := g.runs[k].offsets
	out := make([]uintptr, len(o))
	for i, e := range o {
		out[i] = ByteOffset(e)
	}
	return out
}

// Finish drops the pending indices. Offsets must have been set.
func (g *Group) Finish() {
	for k := range g.runs {
		g.runs[k].pending = nil
	}
	g.finished = true
}

// IsFinished reports whether the group has been packed.
func (g *Group) IsFinished() bool { return g.finished }

// Primitives returns every batch in packing order: triangles, strips, fans.
func (g *Group) Primitives() []Primitive {
	var out []Primitive
	for _, k := range Kinds {
		r := &g.runs[k]
		for i, s := range r.sizes {
			p := Primitive{Kind: k, ID: r.ids[i], Size: s}
			if i < len(r.offsets) {
				p.Offset = r.offsets[i]
			}
			out = append(out, p)
		}
	}
	return out
}

// ContainsID reports whether a batch carries primitive id.
func (g *Group) ContainsID(id uint32) bool {
	for k := range g.runs {
		for _, v := range g.runs[k].ids {
			if v == id {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy keyed by materialID.
func (g *Group) Clone(materialID uint32) *Group {
	c := &Group{materialID: materialID, finished: g.finished}
	for k := range g.runs {
		c.runs[k] = g.runs[k].clone()
	}
	return c
}

// Encode writes a packed group.
func (g *Group) Encode(w *encoding.Writer) error {
	if !g.finished {
		return ErrNotFinished
	}
	w.Uint32(g.materialID)
	for k := range g.runs {
		r := &g.runs[k]
		w.Ints(r.sizes)
		w.Uint32s(r.ids)
		w.Ints(r.offsets)
	}
	return w.Err()
}

// Decode reads a group written by Encode.
func Decode(r *encoding.Reader) (*Group, error) {
	g := &Group{materialID: r.Uint32(), finished: true}
	for k := range g.runs {
		run := &g.runs[k]
		run.sizes = r.Ints()
		run.ids = r.Uint32s()
		run.offsets = r.Ints()
		if r.Err() != nil {
			return nil, r.Err()
		}
		if len(run.ids) != len(run.sizes) || len(run.offsets) != len(run.sizes) {
			return nil, errors.Wrapf(ErrCorrupt, "%s has %d sizes, %d ids, %d offsets",
				Kind(k), len(run.sizes), len(run.ids), len(run.offsets))
		}
	}
	return g, nil
}
