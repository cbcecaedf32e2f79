// Package material provides the shared material handles referenced by mesh
// primitive groups and render properties.
//
// A material is shared by usage: every owner registers itself with AddUsage
// and deregisters with DelUsage. The material is freed once, on the call that
// removes its last owner.
package material

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Faultbox/midgard-mesh/internal/gpu"
	"github.com/Faultbox/midgard-mesh/internal/ids"
)

// DefaultColor is the diffuse color of a mesh default material.
var DefaultColor = [4]float32{0.8, 0.8, 0.8, 1}

// Material is a colored, possibly transparent surface description.
type Material struct {
	id   uint32
	name string

	mu     sync.Mutex
	color  [4]float32
	owners map[uuid.UUID]struct{}
	freed  bool
	onFree func(*Material)
}

// New creates a material with a fresh id.
func New(name string, rgba [4]float32) *Material {
	return &Material{
		id:     ids.Next(),
		name:   name,
		color:  rgba,
		owners: make(map[uuid.UUID]struct{}),
	}
}

// Default creates the material used for primitives added without one.
func Default() *Material {
	return New("default", DefaultColor)
}

// ID returns the process-unique material id.
func (m *Material) ID() uint32 { return m.id }

// Name returns the material name.
func (m *Material) Name() string { return m.name }

func (m *Material) String() string {
	return fmt.Sprintf("material %d %q", m.id, m.name)
}

// Color returns the diffuse color.
func (m *Material) Color() [4]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.color
}

// SetColor replaces the diffuse color.
func (m *Material) SetColor(rgba [4]float32) {
	m.mu.Lock()
	m.color = rgba
	m.mu.Unlock()
}

// Opacity returns the alpha component of the color.
func (m *Material) Opacity() float32 {
	return m.Color()[3]
}

// SetOpacity sets the alpha component of the color.
func (m *Material) SetOpacity(alpha float32) {
	m.mu.Lock()
	m.color[3] = alpha
	m.mu.Unlock()
}

// IsTransparent reports whether the material is rendered in the transparent pass.
func (m *Material) IsTransparent() bool {
	return m.Opacity() < 1
}

// AddUsage registers owner. Registering the same owner twice has no effect.
func (m *Material) AddUsage(owner uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.freed {
		return
	}
	m.owners[owner] = struct{}{}
}

// DelUsage removes owner and reports whether this call freed the material.
// Removing an owner that is not registered has no effect.
func (m *Material) DelUsage(owner uuid.UUID) bool {
	m.mu.Lock()
	if _, ok := m.owners[owner]; !ok || m.freed {
		m.mu.Unlock()
		return false
	}
	delete(m.owners, owner)
	if len(m.owners) > 0 {
		m.mu.Unlock()
		return false
	}
	m.freed = true
	hook := m.onFree
	m.mu.Unlock()

	if hook != nil {
		hook(m)
	}
	return true
}

// IsUnused reports whether no owner uses the material.
func (m *Material) IsUnused() bool {
	return m.UsageCount() == 0
}

// UsageCount returns the number of registered owners.
func (m *Material) UsageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.owners)
}

// Freed reports whether the last owner has released the material.
func (m *Material) Freed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.freed
}

// Execute binds the material. A negative alpha keeps the material's own opacity.
func (m *Material) Execute(b gpu.Binder, alpha float32) {
	c := m.Color()
	if alpha >= 0 {
		c[3] = alpha
	}
	b.SetTexturing(false)
	b.SetColor(c)
}
