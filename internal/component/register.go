package component

import (
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/prefab"
)

// Register assigns ids to every demo component in r so they can be looked up
// by name from prefabs, scripts and query expressions.
func Register(r *ecs.Registry) {
	ecs.IDFor[Position](r)
	ecs.IDFor[Velocity](r)
	ecs.IDFor[Lifetime](r)
	ecs.IDFor[Expired](r)
	ecs.IDFor[Label](r)
}

// Bind registers every demo component with b under its component name.
func Bind(b *prefab.Builder) {
	prefab.Register[Position](b, Position{}.Name())
	prefab.Register[Velocity](b, Velocity{}.Name())
	prefab.Register[Lifetime](b, Lifetime{}.Name())
	prefab.Register[Expired](b, Expired{}.Name())
	prefab.Register[Label](b, Label{}.Name())
}
