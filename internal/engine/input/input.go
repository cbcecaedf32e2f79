// Package input translates SDL2 events into viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Kind is what an action asks the viewer to do.
type Kind int

const (
	None Kind = iota
	Quit
	Resize
	Orbit
	Zoom
	Pick
	ToggleWire
	ToggleSelected
	CycleMode
	CycleLod
	ToggleSilhouette
	ToggleVBO
	ToggleBounds
	Screenshot
)

// Action is one translated input event.
type Action struct {
	Kind Kind
	// X and Y are window coordinates for Pick.
	X, Y int
	// DX and DY are the drag delta for Orbit. DY is the wheel for Zoom.
	DX, DY float32
	// Width and Height are the new size for Resize.
	Width, Height int
}

// DefaultBindings maps keys to actions.
var DefaultBindings = map[sdl.Keycode]Kind{
	sdl.K_ESCAPE: Quit,
	sdl.K_w:      ToggleWire,
	sdl.K_s:      ToggleSelected,
	sdl.K_m:      CycleMode,
	sdl.K_l:      CycleLod,
	sdl.K_o:      ToggleSilhouette,
	sdl.K_v:      ToggleVBO,
	sdl.K_b:      ToggleBounds,
	sdl.K_F12:    Screenshot,
}

// Translate converts a single SDL event. Events without a meaning return
// an action of Kind None.
func Translate(event sdl.Event, bindings map[sdl.Keycode]Kind) Action {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Action{Kind: Quit}
	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED {
			return Action{Kind: Resize, Width: int(e.Data1), Height: int(e.Data2)}
		}
	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			return Action{Kind: bindings[e.Keysym.Sym]}
		}
	case *sdl.MouseMotionEvent:
		if e.State&sdl.ButtonLMask() != 0 {
			return Action{Kind: Orbit, DX: float32(e.XRel), DY: float32(e.YRel)}
		}
	case *sdl.MouseWheelEvent:
		return Action{Kind: Zoom, DY: float32(e.Y)}
	case *sdl.MouseButtonEvent:
		if e.Type == sdl.MOUSEBUTTONDOWN && e.Button == sdl.BUTTON_RIGHT {
			return Action{Kind: Pick, X: int(e.X), Y: int(e.Y)}
		}
	}
	return Action{}
}

// Input polls SDL and collects the actions of one frame.
type Input struct {
	bindings map[sdl.Keycode]Kind
	actions  []Action
}

// New creates an input handler with DefaultBindings.
func New() *Input {
	return &Input{
		bindings: DefaultBindings,
		actions:  make([]Action, 0, 16),
	}
}

// Update polls pending SDL events and returns their actions. The slice is
// reused by the next call. Must run on the main thread.
func (i *Input) Update() []Action {
	i.actions = i.actions[:0]
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if a := Translate(event, i.bindings); a.Kind != None {
			i.actions = append(i.actions, a)
		}
	}
	return i.actions
}
