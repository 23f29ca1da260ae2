package ecs

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ComponentChangedFunc observes a component being added to or removed from an entity.
type ComponentChangedFunc func(e *Entity, id ComponentID, c any)

// ComponentReplacedFunc observes a component slot changing from prev to next.
type ComponentReplacedFunc func(e *Entity, id ComponentID, prev, next any)

// Entity is a bag of components keyed by ComponentID. Entities are created,
// destroyed and recycled by a Context; they are never constructed directly.
type Entity struct {
	id         uint32
	slot       uint32
	handle     Handle
	enabled    bool
	destroying bool
	components map[ComponentID]any
	owners     map[any]struct{}

	registry *Registry
	pools    *ComponentPools

	onComponentAdded    Delegate[ComponentChangedFunc]
	onComponentRemoved  Delegate[ComponentChangedFunc]
	onComponentReplaced Delegate[ComponentReplacedFunc]

	// released is set by the owning Context while the entity is live or
	// retained and is called when the last owner lets go.
	released func(e *Entity) error
}

func newEntity(r *Registry, pools *ComponentPools) *Entity {
	return &Entity{
		components: make(map[ComponentID]any, 8),
		owners:     make(map[any]struct{}, 2),
		registry:   r,
		pools:      pools,
	}
}

// ID is the creation index assigned by the Context. It is unique among the
// entities created since the last creation index reset.
func (e *Entity) ID() uint32 { return e.id }

// Handle is a generation-checked reference usable with Context.Lookup.
func (e *Entity) Handle() Handle { return e.handle }

func (e *Entity) IsEnabled() bool { return e.enabled }

func (e *Entity) OnComponentAdded() *Delegate[ComponentChangedFunc]     { return &e.onComponentAdded }
func (e *Entity) OnComponentRemoved() *Delegate[ComponentChangedFunc]   { return &e.onComponentRemoved }
func (e *Entity) OnComponentReplaced() *Delegate[ComponentReplacedFunc] { return &e.onComponentReplaced }

// writable reports whether components may be installed. An entity being
// destroyed still has listeners running but accepts no new components.
func (e *Entity) writable() bool { return e.enabled && !e.destroying }

// AddComponent installs c under id. c must be a non-nil pointer.
func (e *Entity) AddComponent(id ComponentID, c any) error {
	if !e.writable() {
		return eris.Wrapf(ErrEntityDisabled, "add component %s to %s", e.componentName(id), e)
	}
	if err := e.checkComponent(id, c); err != nil {
		return eris.Wrapf(err, "add component %s to %s", e.componentName(id), e)
	}
	if _, ok := e.components[id]; ok {
		return eris.Wrapf(ErrComponentExists, "add component %s to %s", e.componentName(id), e)
	}
	e.components[id] = c
	e.onComponentAdded.each(func(f ComponentChangedFunc) { f(e, id, c) })
	return nil
}

// RemoveComponent retires the component under id to its pool.
func (e *Entity) RemoveComponent(id ComponentID) error {
	if !e.enabled {
		return eris.Wrapf(ErrEntityDisabled, "remove component %s from %s", e.componentName(id), e)
	}
	if _, ok := e.components[id]; !ok {
		return eris.Wrapf(ErrComponentNotFound, "remove component %s from %s", e.componentName(id), e)
	}
	e.replace(id, nil)
	return nil
}

// ReplaceComponent swaps the component under id for c, or adds c when the slot
// is empty. Passing nil for an empty slot is a no-op.
func (e *Entity) ReplaceComponent(id ComponentID, c any) error {
	if !e.writable() {
		return eris.Wrapf(ErrEntityDisabled, "replace component %s on %s", e.componentName(id), e)
	}
	if c != nil {
		if err := e.checkComponent(id, c); err != nil {
			return eris.Wrapf(err, "replace component %s on %s", e.componentName(id), e)
		}
	}
	if _, ok := e.components[id]; ok {
		e.replace(id, c)
		return nil
	}
	if c == nil {
		return nil
	}
	return e.AddComponent(id, c)
}

// Component returns the component installed under id.
func (e *Entity) Component(id ComponentID) (any, error) {
	if !e.enabled {
		return nil, eris.Wrapf(ErrEntityDisabled, "get component %s from %s", e.componentName(id), e)
	}
	c, ok := e.components[id]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotFound, "get component %s from %s", e.componentName(id), e)
	}
	return c, nil
}

func (e *Entity) HasComponent(id ComponentID) bool {
	_, ok := e.components[id]
	return ok
}

// HasComponents reports whether every id is present. An empty list is true.
func (e *Entity) HasComponents(ids ComponentIDList) bool {
	for _, id := range ids {
		if _, ok := e.components[id]; !ok {
			return false
		}
	}
	return true
}

// HasAnyComponent reports whether at least one id is present. An empty list is false.
func (e *Entity) HasAnyComponent(ids ComponentIDList) bool {
	for _, id := range ids {
		if _, ok := e.components[id]; ok {
			return true
		}
	}
	return false
}

func (e *Entity) ComponentCount() int { return len(e.components) }

// ComponentIDs returns the installed ids in ascending order.
func (e *Entity) ComponentIDs() ComponentIDList {
	ids := make(ComponentIDList, 0, len(e.components))
	for id := range e.components {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Components returns the installed components ordered by id.
func (e *Entity) Components() []any {
	ids := e.ComponentIDs()
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = e.components[id]
	}
	return out
}

// RemoveAllComponents removes every component, one removed event each.
func (e *Entity) RemoveAllComponents() error {
	if !e.enabled {
		return eris.Wrapf(ErrEntityDisabled, "remove all components from %s", e)
	}
	e.removeAll()
	return nil
}

// removeAll strips the entity until no slot is left, including anything a
// removal listener touched along the way.
func (e *Entity) removeAll() {
	for len(e.components) > 0 {
		for _, id := range e.ComponentIDs() {
			if _, ok := e.components[id]; ok {
				e.replace(id, nil)
			}
		}
	}
}

// replace is the single path every slot change goes through. Installing the
// instance already in the slot only re-announces it; otherwise the previous
// instance is parked in its pool before listeners run.
func (e *Entity) replace(id ComponentID, next any) {
	prev := e.components[id]
	if next != nil && prev == next {
		e.onComponentReplaced.each(func(f ComponentReplacedFunc) { f(e, id, prev, next) })
		return
	}

	e.pools.push(id, prev)
	if next == nil {
		delete(e.components, id)
		e.onComponentRemoved.each(func(f ComponentChangedFunc) { f(e, id, prev) })
		return
	}
	e.components[id] = next
	e.onComponentReplaced.each(func(f ComponentReplacedFunc) { f(e, id, prev, next) })
}

// destroy strips the entity and disables it. Listeners still see every
// component removal before the delegates are cleared.
func (e *Entity) destroy() {
	e.destroying = true
	e.removeAll()
	e.destroying = false
	e.onComponentAdded.Clear()
	e.onComponentRemoved.Clear()
	e.onComponentReplaced.Clear()
	e.enabled = false
}

// Retain records owner as holding a reference to the entity. A destroyed
// entity is not recycled while any owner holds it. Owners must be comparable,
// typically pointers.
func (e *Entity) Retain(owner any) error {
	if _, ok := e.owners[owner]; ok {
		return eris.Wrapf(ErrAlreadyRetained, "retain %s", e)
	}
	e.owners[owner] = struct{}{}
	return nil
}

// Release drops owner's reference. When the last reference to a destroyed
// entity goes away the entity returns to its Context for reuse. Releasing the
// last owner of a live entity only drops the reference; the Context itself
// keeps live entities and is not counted as an owner.
func (e *Entity) Release(owner any) error {
	if _, ok := e.owners[owner]; !ok {
		return eris.Wrapf(ErrNotRetained, "release %s", e)
	}
	delete(e.owners, owner)
	if len(e.owners) == 0 && !e.enabled && e.released != nil {
		return e.released(e)
	}
	return nil
}

// releaseOwner drops an owner the caller knows is present. The release hook
// only fails for enabled entities, which never reach it here.
func (e *Entity) releaseOwner(owner any) {
	delete(e.owners, owner)
	if len(e.owners) == 0 && !e.enabled && e.released != nil {
		_ = e.released(e)
	}
}

// RetainCount reports how many owners hold the entity besides its Context.
func (e *Entity) RetainCount() int { return len(e.owners) }

func (e *Entity) IsRetainedBy(owner any) bool {
	_, ok := e.owners[owner]
	return ok
}

func (e *Entity) componentName(id ComponentID) string {
	if n := e.registry.Name(id); n != "" {
		return n
	}
	return strconv.FormatUint(uint64(id), 10)
}

// String renders the entity as Entity_<id>(Name, Name, ...).
func (e *Entity) String() string {
	var b strings.Builder
	b.WriteString("Entity_")
	b.WriteString(strconv.FormatUint(uint64(e.id), 10))
	b.WriteByte('(')
	for i, id := range e.ComponentIDs() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.componentName(id))
	}
	b.WriteByte(')')
	return b.String()
}

// checkComponent accepts only a non-nil pointer to the type registered
// under id.
func (e *Entity) checkComponent(id ComponentID, c any) error {
	if c == nil {
		return ErrInvalidComponent
	}
	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrInvalidComponent
	}
	if t, ok := e.registry.Type(id); !ok || v.Type().Elem() != t {
		return ErrInvalidComponent
	}
	return nil
}
