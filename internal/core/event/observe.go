package event

import "github.com/l1jgo/ecsrt/internal/core/ecs"

// Observe mirrors the lifecycle delegates of ctx onto b. Listeners on the bus
// see the notifications one tick later, after SwapBuffers. The returned
// function detaches the bridge.
func Observe(ctx *ecs.Context, b *Bus) func() {
	r := ctx.Registry()
	components := make(map[*ecs.Entity]int)

	created := ctx.OnEntityCreated().Add(func(c *ecs.Context, e *ecs.Entity) {
		Emit(b, EntityCreated{Context: c.Name(), ID: e.ID(), Handle: e.Handle()})
	})
	willDestroy := ctx.OnEntityWillBeDestroyed().Add(func(_ *ecs.Context, e *ecs.Entity) {
		components[e] = e.ComponentCount()
	})
	destroyed := ctx.OnEntityDestroyed().Add(func(c *ecs.Context, e *ecs.Entity) {
		n := components[e]
		delete(components, e)
		Emit(b, EntityDestroyed{
			Context:    c.Name(),
			ID:         e.ID(),
			Handle:     e.Handle(),
			Components: n,
			Retained:   e.RetainCount() > 0,
		})
	})
	groupCreated := ctx.OnGroupCreated().Add(func(c *ecs.Context, g *ecs.Group) {
		Emit(b, GroupCreated{Context: c.Name(), Matcher: g.Matcher().Format(r), Count: g.Count()})
	})
	groupCleared := ctx.OnGroupCleared().Add(func(c *ecs.Context, g *ecs.Group) {
		Emit(b, GroupCleared{Context: c.Name(), Matcher: g.Matcher().Format(r)})
	})

	return func() {
		ctx.OnEntityCreated().Remove(created)
		ctx.OnEntityWillBeDestroyed().Remove(willDestroy)
		ctx.OnEntityDestroyed().Remove(destroyed)
		ctx.OnGroupCreated().Remove(groupCreated)
		ctx.OnGroupCleared().Remove(groupCleared)
	}
}
