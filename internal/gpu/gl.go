package gpu

import (
	_ "embed"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"

	"github.com/Faultbox/midgard-mesh/internal/engine/shader"
)

var (
	//go:embed shaders/mesh.vert
	meshVertexShader string
	//go:embed shaders/mesh.frag
	meshFragmentShader string
)

var glTargets = [...]uint32{
	ArrayBuffer:        gl.ARRAY_BUFFER,
	ElementArrayBuffer: gl.ELEMENT_ARRAY_BUFFER,
}

var glPrimitives = [...]uint32{
	Triangles:     gl.TRIANGLES,
	TriangleStrip: gl.TRIANGLE_STRIP,
	TriangleFan:   gl.TRIANGLE_FAN,
	LineStrip:     gl.LINE_STRIP,
	Lines:         gl.LINES,
}

// GL is the OpenGL 4.1 core Backend. Core profiles have no client arrays,
// so the client path streams attributes and indices through scratch
// buffers owned by the backend. Every method must run on the thread owning
// the context.
type GL struct {
	program *shader.Program
	vao     uint32
	white   uint32
	vbo     bool

	streams     [4]uint32
	streamIndex uint32
	bound       [2]Buffer
	vertexColor bool
	light       mgl32.Vec3

	uColor, uLighting, uTexturing, uVertexColor int32
	uMVP, uNormalMatrix, uLightDir              int32
}

// NewGL compiles the mesh program and creates the vertex array. vbo
// enables buffer objects for mesh data.
func NewGL(vbo bool) (*GL, error) {
	program, err := shader.NewProgram(meshVertexShader, meshFragmentShader)
	if err != nil {
		return nil, errors.Wrap(err, "mesh program")
	}
	g := &GL{program: program, vbo: vbo, light: mgl32.Vec3{-0.3, -0.5, -1}.Normalize()}
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(int32(len(g.streams)), &g.streams[0])
	gl.GenBuffers(1, &g.streamIndex)

	gl.GenTextures(1, &g.white)
	gl.BindTexture(gl.TEXTURE_2D, g.white)
	pixel := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixel))

	g.uColor = program.Uniform("uColor")
	g.uLighting = program.Uniform("uLighting")
	g.uTexturing = program.Uniform("uTexturing")
	g.uVertexColor = program.Uniform("uVertexColor")
	g.uMVP = program.Uniform("uMVP")
	g.uNormalMatrix = program.Uniform("uNormalMatrix")
	g.uLightDir = program.Uniform("uLightDir")

	runtime.AddCleanup(g, deleteGLObjects, glObjects{vao: g.vao, streams: g.streams, index: g.streamIndex, white: g.white})

	g.Begin(mgl32.Ident4(), mgl32.Ident4())
	g.SetLighting(true)
	g.SetColor([4]float32{1, 1, 1, 1})
	return g, nil
}

type glObjects struct {
	vao     uint32
	streams [4]uint32
	index   uint32
	white   uint32
}

func deleteGLObjects(o glObjects) {
	mainthread.CallNonBlock(func() {
		gl.DeleteVertexArrays(1, &o.vao)
		gl.DeleteBuffers(int32(len(o.streams)), &o.streams[0])
		gl.DeleteBuffers(1, &o.index)
		gl.DeleteTextures(1, &o.white)
	})
}

// Begin binds the program and vertex array and sets the camera for the
// following draws.
func (g *GL) Begin(projection, modelView mgl32.Mat4) {
	g.program.Use()
	gl.BindVertexArray(g.vao)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, g.white)

	mvp := projection.Mul4(modelView)
	normal := modelView.Mat3().Inv().Transpose()
	gl.UniformMatrix4fv(g.uMVP, 1, false, &mvp[0])
	gl.UniformMatrix3fv(g.uNormalMatrix, 1, false, &normal[0])
	gl.Uniform3f(g.uLightDir, g.light.X(), g.light.Y(), g.light.Z())
}

// SetLight sets the eye space direction light travels in, applied from the
// next Begin.
func (g *GL) SetLight(incident mgl32.Vec3) {
	if incident.Len() == 0 {
		return
	}
	g.light = incident.Normalize()
}

func (g *GL) VBOSupported() bool { return g.vbo }

func (g *GL) SetColor(rgba [4]float32) {
	gl.Uniform4f(g.uColor, rgba[0], rgba[1], rgba[2], rgba[3])
}

func (g *GL) SetLighting(on bool) { gl.Uniform1i(g.uLighting, boolInt(on)) }

func (g *GL) SetTexturing(on bool) { gl.Uniform1i(g.uTexturing, boolInt(on)) }

func (g *GL) FrontFace(ccw bool) {
	if ccw {
		gl.FrontFace(gl.CCW)
	} else {
		gl.FrontFace(gl.CW)
	}
}

func (g *GL) CullFace(on bool) {
	if on {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (g *GL) CreateBuffer() Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return Buffer(b)
}

func (g *GL) DeleteBuffer(b Buffer) {
	name := uint32(b)
	gl.DeleteBuffers(1, &name)
	for t, bb := range g.bound {
		if bb == b {
			g.bound[t] = 0
		}
	}
}

func (g *GL) BindBuffer(t Target, b Buffer) {
	gl.BindBuffer(glTargets[t], uint32(b))
	g.bound[t] = b
}

func (g *GL) ReleaseBuffer(t Target) {
	gl.BindBuffer(glTargets[t], 0)
	g.bound[t] = 0
}

func (g *GL) FillFloats(t Target, data []float32) {
	gl.BufferData(glTargets[t], len(data)*4, ptr(unsafe.Pointer(unsafe.SliceData(data)), len(data)), gl.STATIC_DRAW)
}

func (g *GL) FillIndices(t Target, data []uint32) {
	gl.BufferData(glTargets[t], len(data)*4, ptr(unsafe.Pointer(unsafe.SliceData(data)), len(data)), gl.STATIC_DRAW)
}

func ptr(p unsafe.Pointer, n int) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	return p
}

func (g *GL) SetAttribute(a Attribute, size int, client []float32) {
	loc := uint32(a)
	if client != nil {
		gl.BindBuffer(gl.ARRAY_BUFFER, g.streams[a])
		gl.BufferData(gl.ARRAY_BUFFER, len(client)*4, ptr(unsafe.Pointer(unsafe.SliceData(client)), len(client)), gl.STREAM_DRAW)
	}
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointerWithOffset(loc, int32(size), gl.FLOAT, false, 0, 0)
	if client != nil {
		gl.BindBuffer(gl.ARRAY_BUFFER, uint32(g.bound[ArrayBuffer]))
	}
	if a == Color {
		g.vertexColor = true
		gl.Uniform1i(g.uVertexColor, 1)
	}
}

func (g *GL) DisableAttributes() {
	for a := range len(g.streams) {
		gl.DisableVertexAttribArray(uint32(a))
	}
	if g.vertexColor {
		g.vertexColor = false
		gl.Uniform1i(g.uVertexColor, 0)
	}
}

func (g *GL) DrawElements(p Primitive, count int, off Offset) {
	if count <= 0 {
		return
	}
	if off.Client == nil {
		gl.DrawElementsWithOffset(glPrimitives[p], int32(count), gl.UNSIGNED_INT, off.Bytes)
		return
	}
	if off.Elements < 0 || off.Elements+count > len(off.Client) {
		return
	}
	run := off.Client[off.Elements : off.Elements+count]
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.streamIndex)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, count*4, gl.Ptr(run), gl.STREAM_DRAW)
	gl.DrawElementsWithOffset(glPrimitives[p], int32(count), gl.UNSIGNED_INT, 0)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(g.bound[ElementArrayBuffer]))
}

func (g *GL) DrawArrays(p Primitive, first, count int) {
	gl.DrawArrays(glPrimitives[p], int32(first), int32(count))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
