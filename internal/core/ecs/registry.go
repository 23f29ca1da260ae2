package ecs

import (
	"reflect"
	"sync"
)

// ComponentID is the small integer slot a component type occupies on every entity.
type ComponentID uint32

// NoComponent is reported by group events that are caused by entity creation or
// destruction rather than by a component change.
const NoComponent = ^ComponentID(0)

// Namer lets a component type choose the name it is registered under.
type Namer interface {
	Name() string
}

// Registry assigns stable ids to component types. Ids are handed out in
// first-use order starting at 0 and never change for the life of the registry.
// A Registry may be shared between contexts and is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	ids   map[reflect.Type]ComponentID
	types []reflect.Type
	names []string
	byKey map[string]ComponentID
}

func NewRegistry() *Registry {
	return &Registry{
		ids:   make(map[reflect.Type]ComponentID, 32),
		types: make([]reflect.Type, 0, 32),
		names: make([]string, 0, 32),
		byKey: make(map[string]ComponentID, 32),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by contexts that are
// not given one explicitly.
func DefaultRegistry() *Registry { return defaultRegistry }

// IDFor returns the id of component type T, registering it on first use.
func IDFor[T any](r *Registry) ComponentID {
	return r.idFor(reflect.TypeFor[T]())
}

func (r *Registry) idFor(t reflect.Type) ComponentID {
	r.mu.RLock()
	id, ok := r.ids[t]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[t]; ok {
		return id
	}
	id = ComponentID(len(r.types))
	name := typeName(t)
	r.ids[t] = id
	r.types = append(r.types, t)
	r.names = append(r.names, name)
	if _, taken := r.byKey[name]; !taken {
		r.byKey[name] = id
	}
	return id
}

func typeName(t reflect.Type) string {
	if t.Implements(reflect.TypeFor[Namer]()) {
		return reflect.Zero(t).Interface().(Namer).Name()
	}
	return t.Name()
}

// Count reports how many distinct component types have been registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Name returns the registered name for id, or "" when id is unknown.
func (r *Registry) Name(id ComponentID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Type returns the Go type registered under id.
func (r *Registry) Type(id ComponentID) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.types) {
		return nil, false
	}
	return r.types[id], true
}

// Lookup finds a component id by registered name. When two types share a name
// the first one registered wins.
func (r *Registry) Lookup(name string) (ComponentID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[name]
	return id, ok
}
