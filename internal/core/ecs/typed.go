package ecs

import "github.com/rotisserie/eris"

// Add installs a pooled copy of v on e.
func Add[T any](e *Entity, v T) error {
	id := IDFor[T](e.registry)
	if !e.writable() {
		return eris.Wrapf(ErrEntityDisabled, "add component %s to %s", e.componentName(id), e)
	}
	if e.HasComponent(id) {
		return eris.Wrapf(ErrComponentExists, "add component %s to %s", e.componentName(id), e)
	}
	c := acquire[T](e.pools, id)
	*c = v
	return e.AddComponent(id, c)
}

// Replace installs a pooled copy of v on e, retiring the previous instance.
// Use Refresh or Update to announce an in-place change without swapping.
func Replace[T any](e *Entity, v T) error {
	id := IDFor[T](e.registry)
	if !e.writable() {
		return eris.Wrapf(ErrEntityDisabled, "replace component %s on %s", e.componentName(id), e)
	}
	c := acquire[T](e.pools, id)
	*c = v
	return e.ReplaceComponent(id, c)
}

// Remove retires the T component of e to its pool.
func Remove[T any](e *Entity) error {
	return e.RemoveComponent(IDFor[T](e.registry))
}

// Get returns the live T component of e. The pointer stays valid until the
// component is removed or replaced.
func Get[T any](e *Entity) (*T, error) {
	c, err := e.Component(IDFor[T](e.registry))
	if err != nil {
		return nil, err
	}
	return c.(*T), nil
}

func Has[T any](e *Entity) bool {
	return e.HasComponent(IDFor[T](e.registry))
}

// Refresh re-announces the current T component as replaced by itself, so
// groups and collectors observe an in-place mutation.
func Refresh[T any](e *Entity) error {
	id := IDFor[T](e.registry)
	c, err := e.Component(id)
	if err != nil {
		return err
	}
	e.replace(id, c)
	return nil
}

// Update mutates the T component in place and then refreshes it.
func Update[T any](e *Entity, fn func(*T)) error {
	c, err := Get[T](e)
	if err != nil {
		return err
	}
	fn(c)
	e.replace(IDFor[T](e.registry), c)
	return nil
}

// ID is shorthand for IDFor on the registry of e.
func ID[T any](e *Entity) ComponentID { return IDFor[T](e.registry) }
