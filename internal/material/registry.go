package material

import "sync"

// Registry indexes live materials by id. Materials leave the registry when
// they are freed.
type Registry struct {
	mu    sync.RWMutex
	byID  map[uint32]*Material
	freed int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint32]*Material)}
}

// Add registers m and returns it.
func (r *Registry) Add(m *Material) *Material {
	m.mu.Lock()
	m.onFree = r.release
	m.mu.Unlock()

	r.mu.Lock()
	r.byID[m.ID()] = m
	r.mu.Unlock()
	return m
}

// Get returns the material with the given id.
func (r *Registry) Get(id uint32) (*Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	return m, ok
}

// Len returns the number of live materials.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// FreedCount returns how many registered materials have been freed.
func (r *Registry) FreedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.freed
}

func (r *Registry) release(m *Material) {
	r.mu.Lock()
	delete(r.byID, m.ID())
	r.freed++
	r.mu.Unlock()
}
