package api

import (
	"sync"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gallery.GO/core/registry"
)

// ModuleFunc registers routes on the authenticated /api group.
type ModuleFunc func(g *echo.Group, db *gorm.DB)

// RouteFunc registers routes on the root Echo instance (storefront deep
// links, GraphQL).
type RouteFunc func(e *echo.Echo, db *gorm.DB)

// hooks is an init-time list kept under one GlobalRegistry key. Applying the
// list locks the key.
type hooks[F any] struct {
	mu   *sync.Mutex
	key  string
	kind string
}

var (
	hooksMu = &sync.Mutex{}
	modules = hooks[ModuleFunc]{mu: hooksMu, key: registry.KeyRegistryAPI, kind: "API modules"}
	routes  = hooks[RouteFunc]{mu: hooksMu, key: registry.KeyRegistryRoutes, kind: "routes"}
)

func (h hooks[F]) list() []F {
	if v, ok := registry.GlobalRegistry.GetGlobal(h.key); ok && v != nil {
		return v.([]F)
	}
	return nil
}

func (h hooks[F]) add(fn F) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if registry.GlobalRegistry.IsLocked(h.key) {
		panic("api/registry: " + h.kind + " locked (register only during init)")
	}
	registry.GlobalRegistry.SetGlobal(h.key, append(h.list(), fn))
}

// take returns the registered hooks and locks the key.
func (h hooks[F]) take() []F {
	h.mu.Lock()
	defer h.mu.Unlock()
	registry.GlobalRegistry.Lock(h.key)
	return h.list()
}

// RegisterModule registers an /api module. Call from init() in API packages.
func RegisterModule(fn ModuleFunc) { modules.add(fn) }

// RegisterRoute registers a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) { routes.add(fn) }

// ApplyModules mounts every registered module on g.
func ApplyModules(g *echo.Group, db *gorm.DB) {
	for _, fn := range modules.take() {
		fn(g, db)
	}
}

// ApplyRoutes mounts every registered root-level route module on e.
func ApplyRoutes(e *echo.Echo, db *gorm.DB) {
	for _, fn := range routes.take() {
		fn(e, db)
	}
}
