package meshdata

import "github.com/Faultbox/midgard-mesh/internal/gpu"

// SetVBOUsage selects the buffer-object draw path.
func (d *Data) SetVBOUsage(on bool) { d.vbo = on }

// VBOUsed reports whether the buffer-object path is selected.
func (d *Data) VBOUsed() bool { return d.vbo }

// UseVBO reports whether draws on b go through buffer objects.
func (d *Data) UseVBO(b gpu.Backend) bool { return d.vbo && b.VBOSupported() }

// Uploaded reports whether the GPU copy is current.
func (d *Data) Uploaded() bool { return d.uploaded }

// Invalidate marks the GPU copy stale. The next Upload refills every buffer.
func (d *Data) Invalidate() { d.uploaded = false }

func (d *Data) attribute(a gpu.Attribute) []float32 {
	switch a {
	case gpu.Position:
		return d.positions
	case gpu.Normal:
		return d.normals
	case gpu.Texel:
		return d.texels
	default:
		return d.colors
	}
}

// Upload creates missing buffers and fills them when the GPU copy is stale.
func (d *Data) Upload(b gpu.Backend) {
	d.deleteOrphans(b)
	if d.uploaded {
		return
	}
	for a := gpu.Position; a <= gpu.Color; a++ {
		data := d.attribute(a)
		if len(data) == 0 {
			continue
		}
		if d.buffers[a] == 0 {
			d.buffers[a] = b.CreateBuffer()
		}
		b.BindBuffer(gpu.ArrayBuffer, d.buffers[a])
		b.FillFloats(gpu.ArrayBuffer, data)
	}
	for _, l := range d.lods {
		if l.buffer == 0 {
			l.buffer = b.CreateBuffer()
		}
		b.BindBuffer(gpu.ElementArrayBuffer, l.buffer)
		b.FillIndices(gpu.ElementArrayBuffer, l.Indices)
	}
	b.ReleaseBuffer(gpu.ArrayBuffer)
	b.ReleaseBuffer(gpu.ElementArrayBuffer)
	d.uploaded = true
}

// Bind enables the vertex attributes and, on the buffer path, binds the
// index buffer of lod. Colors are enabled only when withColors is set.
func (d *Data) Bind(b gpu.Backend, lod int, withColors bool) {
	vbo := d.UseVBO(b)
	for a := gpu.Position; a <= gpu.Color; a++ {
		data := d.attribute(a)
		if len(data) == 0 || (a == gpu.Color && !withColors) {
			continue
		}
		if vbo {
			b.BindBuffer(gpu.ArrayBuffer, d.buffers[a])
			b.SetAttribute(a, a.Components(), nil)
		} else {
			b.SetAttribute(a, a.Components(), data)
		}
	}
	if vbo {
		b.ReleaseBuffer(gpu.ArrayBuffer)
		if lod >= 0 && lod < len(d.lods) {
			b.BindBuffer(gpu.ElementArrayBuffer, d.lods[lod].buffer)
		}
	}
}

// Unbind disables attributes and releases bound buffers.
func (d *Data) Unbind(b gpu.Backend) {
	b.DisableAttributes()
	if d.UseVBO(b) {
		b.ReleaseBuffer(gpu.ElementArrayBuffer)
		b.ReleaseBuffer(gpu.ArrayBuffer)
	}
}

// Offset resolves an element offset in lod for the active draw path.
func (d *Data) Offset(b gpu.Backend, lod, element int) gpu.Offset {
	if d.UseVBO(b) {
		return gpu.Offset{Elements: element, Bytes: uintptr(element * 4)}
	}
	return gpu.Offset{Elements: element, Client: d.Indices(lod)}
}

func (d *Data) deleteOrphans(b gpu.Backend) {
	for _, buf := range d.orphans {
		b.DeleteBuffer(buf)
	}
	d.orphans = nil
}

// Release deletes every GPU buffer.
func (d *Data) Release(b gpu.Backend) {
	d.deleteOrphans(b)
	for i, buf := range d.buffers {
		if buf != 0 {
			b.DeleteBuffer(buf)
			d.buffers[i] = 0
		}
	}
	for _, l := range d.lods {
		if l.buffer != 0 {
			b.DeleteBuffer(l.buffer)
			l.buffer = 0
		}
	}
	d.uploaded = false
}
