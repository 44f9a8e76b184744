// Package registry holds the resolvers reachable through the _extension query field.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gallery.GO/core/registry"
)

// ErrUnknownExtension is returned by Resolve for a name nobody registered.
var ErrUnknownExtension = errors.New("unknown extension")

// ResolverFunc resolves one extension. Args is the JSON-decoded args string.
type ResolverFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

var mu sync.Mutex

func entries() map[string]ResolverFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryGraphQL); ok && v != nil {
		return v.(map[string]ResolverFunc)
	}
	return make(map[string]ResolverFunc)
}

// Register adds a resolver from init(). Panics on duplicates or once requests are served.
func Register(name string, resolve ResolverFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryGraphQL) {
		panic("graphql/registry: locked (register only during init before first request)")
	}
	m := entries()
	if _, ok := m[name]; ok {
		panic("graphql/registry: duplicate " + name)
	}
	m[name] = resolve
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Unregister removes a registration and unlocks the registry (tests only).
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryGraphQL)
	m := entries()
	delete(m, name)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Resolve runs the named resolver. The first call freezes the registry.
func Resolve(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	if !registry.GlobalRegistry.IsLocked(registry.KeyRegistryGraphQL) {
		registry.GlobalRegistry.Lock(registry.KeyRegistryGraphQL)
	}
	resolve, ok := entries()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtension, name)
	}
	return resolve(ctx, args)
}

// Names returns the registered names in order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0)
	for n := range entries() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
