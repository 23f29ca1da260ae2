package prefab

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type factory func(e *ecs.Entity, node *yaml.Node) error

// Builder turns specs into entities. Each component name it understands is
// bound to a Go type with Register.
type Builder struct {
	factories map[string]factory
}

func NewBuilder() *Builder {
	return &Builder{factories: make(map[string]factory)}
}

// Register binds name to component type T. The spec node for name is decoded
// into a T and added to the entity.
func Register[T any](b *Builder, name string) {
	b.factories[name] = func(e *ecs.Entity, node *yaml.Node) error {
		var v T
		if node.Kind != 0 && node.Tag != "!!null" {
			if err := node.Decode(&v); err != nil {
				return err
			}
		}
		return ecs.Add(e, v)
	}
}

// Knows reports whether name has a registered component type.
func (b *Builder) Knows(name string) bool {
	_, ok := b.factories[name]
	return ok
}

// Validate checks that every component named by spec is registered.
func (b *Builder) Validate(spec Spec) error {
	for _, name := range spec.ComponentNames() {
		if !b.Knows(name) {
			return fmt.Errorf("prefab %s: unknown component %q", spec.Name, name)
		}
	}
	return nil
}

// Build creates an entity on ctx from spec. Components are added in name
// order. If any component fails the entity is destroyed again.
func (b *Builder) Build(ctx *ecs.Context, spec Spec) (*ecs.Entity, error) {
	if err := b.Validate(spec); err != nil {
		return nil, err
	}
	e := ctx.CreateEntity()
	for _, name := range spec.ComponentNames() {
		node := spec.Components[name]
		if err := b.factories[name](e, &node); err != nil {
			if derr := ctx.DestroyEntity(e); derr != nil {
				return nil, fmt.Errorf("prefab %s: destroy after failed %s: %w", spec.Name, name, derr)
			}
			return nil, fmt.Errorf("prefab %s: component %s: %w", spec.Name, name, err)
		}
	}
	return e, nil
}
