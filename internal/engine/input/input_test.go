package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name  string
		event sdl.Event
		want  Action
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Action{Kind: Quit}},
		{
			"resize",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			Action{Kind: Resize, Width: 800, Height: 600},
		},
		{
			"bound key",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_w}},
			Action{Kind: ToggleWire},
		},
		{
			"repeat ignored",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_w}},
			Action{},
		},
		{
			"key up ignored",
			&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_m}},
			Action{},
		},
		{
			"unbound key",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_q}},
			Action{},
		},
		{
			"drag",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, State: sdl.ButtonLMask(), XRel: 4, YRel: -2},
			Action{Kind: Orbit, DX: 4, DY: -2},
		},
		{
			"hover",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, XRel: 4},
			Action{},
		},
		{"wheel", &sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: -1}, Action{Kind: Zoom, DY: -1}},
		{
			"right click",
			&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_RIGHT, X: 10, Y: 20},
			Action{Kind: Pick, X: 10, Y: 20},
		},
		{
			"left click",
			&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 10, Y: 20},
			Action{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.event, DefaultBindings))
		})
	}
}

func TestDefaultBindingsUnique(t *testing.T) {
	seen := map[Kind]sdl.Keycode{}
	for k, kind := range DefaultBindings {
		prev, dup := seen[kind]
		assert.False(t, dup, "%v bound to %d and %d", kind, prev, k)
		seen[kind] = k
		assert.NotEqual(t, None, kind)
	}
}
