package switcher

import (
	"errors"
	"fmt"
	"sync"
)

// AutoAdapter selects the first registered adapter that detects its widget.
const AutoAdapter = "auto"

var ErrNoAdapter = errors.New("switcher: no gallery adapter available")

// Adapter renders a filtered media list. Render may be handed a newer event
// before it finished the previous one and must cope with that.
type Adapter interface {
	Name() string
	Render(ev Event) error
}

// Detector is implemented by adapters that can tell whether their gallery
// widget is on the page.
type Detector interface {
	Detect() bool
}

// FuncAdapter builds an Adapter from functions.
type FuncAdapter struct {
	AdapterName string
	RenderFunc  func(Event) error
	DetectFunc  func() bool
}

func (f FuncAdapter) Name() string { return f.AdapterName }

func (f FuncAdapter) Render(ev Event) error {
	if f.RenderFunc == nil {
		return nil
	}
	return f.RenderFunc(ev)
}

func (f FuncAdapter) Detect() bool {
	return f.DetectFunc != nil && f.DetectFunc()
}

// Registry holds the adapters known to a page in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds a or replaces the adapter of the same name.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.Name()]; !exists {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Select returns the adapter configured by name. "auto" and "" detect.
func (r *Registry) Select(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name != "" && name != AutoAdapter {
		a, ok := r.adapters[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoAdapter, name)
		}
		return a, nil
	}
	for _, n := range r.order {
		if d, ok := r.adapters[n].(Detector); ok && d.Detect() {
			return r.adapters[n], nil
		}
	}
	return nil, ErrNoAdapter
}
