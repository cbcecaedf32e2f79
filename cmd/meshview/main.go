// meshview opens a mesh file in an SDL2 window and renders it through the
// OpenGL backend.
//
// Controls: drag to orbit, wheel to zoom, right click to select a
// primitive. W toggles the wire, S the instance selection, M cycles the
// rendering mode, L the LOD, O shows the silhouette ids, V the draw path,
// B the bounding box. F12 saves a screenshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/gopxl/mainthread/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-mesh/internal/config"
	"github.com/Faultbox/midgard-mesh/internal/engine/camera"
	"github.com/Faultbox/midgard-mesh/internal/engine/debug"
	"github.com/Faultbox/midgard-mesh/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-mesh/internal/engine/input"
	"github.com/Faultbox/midgard-mesh/internal/engine/lighting"
	"github.com/Faultbox/midgard-mesh/internal/engine/window"
	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/logger"
	"github.com/Faultbox/midgard-mesh/internal/material"
	"github.com/Faultbox/midgard-mesh/internal/mesh"
	"github.com/Faultbox/midgard-mesh/internal/meshgen"
	"github.com/Faultbox/midgard-mesh/internal/render"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mainthread.Run(func() {
		if err := run(cfg, flag.Args()); err != nil {
			logger.Error("viewer failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	})
}

var modes = []render.Mode{
	render.Normal,
	render.OverwriteMaterial,
	render.OverwriteTransparency,
	render.OverwriteTransparencyAndMaterial,
	render.OverwritePrimitiveMaterial,
	render.PrimitiveSelected,
}

var lodSteps = []int{0, 50, 100}

// viewer holds the state of the render loop. Fields touching GL are only
// used inside mainthread.Call.
type viewer struct {
	cfg     *config.Config
	win     *window.Window
	backend *gpu.GL
	mesh    *mesh.Mesh
	cam     *camera.OrbitCamera
	frame   *render.Frame
	props   *render.Properties
	input   *input.Input
	picking *framebuffer.Framebuffer
	shots   *debug.ScreenshotCapture

	mode       int
	lod        int
	wire       bool
	silhouette bool
	bounds     bool
	screenshot bool
	quit       bool
}

func run(cfg *config.Config, args []string) error {
	m, err := loadMesh(args)
	if err != nil {
		return err
	}
	m.SetWireColor(cfg.Mesh.WireColor)
	if err := m.CreateSharpEdges(context.Background(), cfg.Mesh.SharpEdgePrecision, cfg.Mesh.SharpEdgeAngle, cfg.Mesh.Workers); err != nil {
		return err
	}
	m.SetCurrentLod(cfg.Mesh.LodPercent)

	v := &viewer{
		cfg:   cfg,
		mesh:  m,
		cam:   camera.NewOrbitCamera(),
		props: render.NewProperties(),
		input: input.New(),
		shots: debug.NewScreenshotCapture("screenshots", "meshview"),
	}
	v.cam.FitToBounds(m.BoundingBox())
	v.props.SetOverwriteMaterial(material.New("overwrite", [4]float32{0.9, 0.8, 0.2, 0.6}))
	v.props.SetOverwriteTransparency(0.35)
	defer v.props.Release()

	err = mainthread.CallErr(func() error {
		win, err := window.New(window.FromRender(cfg.Render))
		if err != nil {
			return err
		}
		v.win = win
		if err := gl.Init(); err != nil {
			return errors.Wrap(err, "gl init")
		}
		backend, err := gpu.NewGL(cfg.Render.VBO)
		if err != nil {
			return err
		}
		backend.SetLight(lighting.Incident(cfg.Render.LightLongitude, cfg.Render.LightLatitude))
		v.backend = backend
		v.frame = render.NewFrame(backend)
		v.frame.SelectionColor = cfg.Render.SelectionColor
		w, h := win.GetSize()
		picking, err := framebuffer.New(int32(w), int32(h))
		if err != nil {
			return err
		}
		v.picking = picking
		gl.Enable(gl.DEPTH_TEST)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		return nil
	})
	if err != nil {
		return err
	}
	defer mainthread.Call(func() {
		if v.backend != nil {
			v.mesh.Release(v.backend)
		}
		if v.picking != nil {
			v.picking.Destroy()
		}
		if v.win != nil {
			v.win.Close()
		}
	})

	logger.Info("viewing mesh",
		zap.String("mesh", m.Name()),
		zap.Int("lods", m.LodCount()),
		zap.Int("faces", m.FaceCount(0)),
		zap.Int("sharp_edges", m.Wire().VertexGroupCount()))

	var minFrame time.Duration
	if cfg.Render.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(cfg.Render.FPSLimit)
	}
	last := time.Now()
	for !v.quit {
		var frameErr error
		mainthread.Call(func() {
			v.events()
			frameErr = v.draw()
		})
		if frameErr != nil {
			// A failed draw abandons the frame only.
			logger.Warn("frame abandoned", zap.Error(frameErr))
		}
		if minFrame > 0 {
			if d := minFrame - time.Since(last); d > 0 {
				time.Sleep(d)
			}
			last = time.Now()
		}
	}
	return nil
}

func loadMesh(args []string) (*mesh.Mesh, error) {
	if len(args) > 0 {
		return mesh.LoadFile(args[0], material.NewRegistry())
	}
	north := material.New("north", [4]float32{0.85, 0.25, 0.2, 1})
	south := material.New("south", [4]float32{0.2, 0.35, 0.85, 0.7})
	return meshgen.Sphere("sphere", 1, 32, 64, 3, north, south)
}

func (v *viewer) events() {
	for _, a := range v.input.Update() {
		switch a.Kind {
		case input.Quit:
			v.quit = true
		case input.Resize:
			v.picking.Resize(int32(a.Width), int32(a.Height))
		case input.Orbit:
			v.cam.HandleDrag(a.DX, a.DY)
		case input.Zoom:
			v.cam.HandleZoom(a.DY)
		case input.Pick:
			v.pick(a.X, a.Y)
		case input.Screenshot:
			v.screenshot = true
		default:
			v.toggle(a.Kind)
		}
	}
}

func (v *viewer) toggle(k input.Kind) {
	switch k {
	case input.ToggleWire:
		v.wire = !v.wire
	case input.ToggleSelected:
		v.props.SetSelected(!v.props.IsSelected())
	case input.ToggleSilhouette:
		v.silhouette = !v.silhouette
	case input.ToggleBounds:
		v.bounds = !v.bounds
	case input.CycleMode:
		v.mode = (v.mode + 1) % len(modes)
		v.props.SetMode(modes[v.mode])
	case input.CycleLod:
		v.lod = (v.lod + 1) % len(lodSteps)
		v.mesh.SetCurrentLod(lodSteps[v.lod])
	case input.ToggleVBO:
		v.mesh.SetVBOUsage(!v.mesh.Data().VBOUsed())
	default:
		return
	}
	v.win.SetTitle(fmt.Sprintf("%s - %s %s lod %d", v.cfg.Render.Title, v.mesh.Name(), v.props.Mode(), v.mesh.CurrentLod()))
}

func (v *viewer) begin() {
	w, h := v.win.GetSize()
	gl.Viewport(0, 0, int32(w), int32(h))
	v.backend.Begin(v.cam.ProjectionMatrix(v.win.Aspect()), v.cam.ViewMatrix())
	v.frame.Begin()
}

func (v *viewer) draw() error {
	v.begin()
	bg := v.cfg.Render.Background
	gl.ClearColor(bg[0], bg[1], bg[2], bg[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if v.silhouette {
		v.props.SetFlag(render.FlagOutlineSilhouette)
		err := v.mesh.Draw(v.frame, v.props)
		v.present()
		return err
	}

	opaque := render.FlagNone
	if v.wire {
		opaque = render.FlagWire
	}
	v.props.SetFlag(opaque)
	if err := v.mesh.Draw(v.frame, v.props); err != nil {
		return err
	}

	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	v.props.SetFlag(render.FlagTransparent)
	err := v.mesh.Draw(v.frame, v.props)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	if v.bounds {
		debug.DrawBox(v.backend, v.mesh.BoundingBox(), debug.DefaultBoxPadding, v.cfg.Render.SelectionColor)
	}
	v.present()
	return err
}

// present saves a pending screenshot from the back buffer and swaps.
func (v *viewer) present() {
	if v.screenshot {
		v.screenshot = false
		w, h := v.win.GetSize()
		pixels := make([]byte, w*h*4)
		gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
		if name, err := v.shots.CaptureFromPixels(pixels, w, h); err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		} else {
			logger.Info("screenshot saved", zap.String("file", name))
		}
	}
	v.win.SwapBuffers()
}

// pick renders the primitive ids offscreen and selects the primitive under
// the cursor.
func (v *viewer) pick(x, y int) {
	v.begin()
	restore := v.picking.BindWithViewport()
	defer restore()
	v.picking.Clear(0, 0, 0, 0)

	saved := v.props.Mode()
	v.frame.SelectionMode = true
	v.props.SetFlag(render.FlagNone)
	v.props.SetMode(render.PrimitiveSelection)
	v.backend.SetLighting(false)
	err := v.mesh.Draw(v.frame, v.props)
	v.backend.SetLighting(true)
	v.frame.SelectionMode = false
	v.props.SetMode(saved)
	if err != nil {
		logger.Warn("pick failed", zap.Error(err))
		return
	}

	id := render.DecodeRGBID(v.picking.ReadPixel(x, y))
	if id == 0 {
		v.props.ClearSelectedPrimitives()
		return
	}
	v.props.AddSelectedPrimitive(id, 0)
	v.props.SetMode(render.PrimitiveSelected)
	v.props.SetSelected(true)
	logger.Info("primitive picked", zap.Uint32("id", id))
}
