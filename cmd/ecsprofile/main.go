// Profiling:
// go build ./cmd/ecsprofile
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsprofile mem.pprof

package main

import (
	"github.com/pkg/profile"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

func main() {
	rounds := 50
	iters := 200
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		r := ecs.NewRegistry()
		component.Register(r)
		ctx := ecs.NewContext(ecs.WithRegistry(r))
		movers := ctx.GetGroup(ecs.AllOf(ecs.IDFor[component.Position](r), ecs.IDFor[component.Velocity](r)))
		collector := movers.CreateCollector(ecs.GroupEventAdded)
		collector.Activate()

		for range iters {
			for i := range numEntities {
				e := ctx.CreateEntity()
				_ = ecs.Add(e, component.Position{X: float64(i)})
				_ = ecs.Add(e, component.Velocity{X: 1, Y: 1})
			}
			ecs.Each2(movers, func(e *ecs.Entity, p *component.Position, v *component.Velocity) {
				_ = ecs.Replace(e, component.Position{X: p.X + v.X, Y: p.Y + v.Y})
			})
			collector.ClearCollectedEntities()
			_ = ctx.DestroyAllEntities()
		}
		collector.Deactivate()
	}
}
