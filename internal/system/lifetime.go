package system

import (
	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// LifetimeSystem counts lifetimes down and tags entities Expired when they
// reach zero.
type LifetimeSystem struct {
	clock  *Clock
	living *ecs.Group
}

func NewLifetimeSystem(ctx *ecs.Context, clock *Clock) *LifetimeSystem {
	r := ctx.Registry()
	return &LifetimeSystem{
		clock: clock,
		living: ctx.GetGroup(ecs.AllOf(ecs.IDFor[component.Lifetime](r)).
			NoneOf(ecs.IDFor[component.Expired](r))),
	}
}

func (s *LifetimeSystem) Spec() coresys.Spec {
	return coresys.Spec{Name: "lifetime", Execute: s.execute}
}

func (s *LifetimeSystem) execute() error {
	for _, e := range s.living.Entities() {
		var left int
		if err := ecs.Update(e, func(lt *component.Lifetime) {
			lt.Frames--
			left = lt.Frames
		}); err != nil {
			return err
		}
		if left > 0 {
			continue
		}
		if err := ecs.Add(e, component.Expired{Frame: s.clock.Frame}); err != nil {
			return err
		}
	}
	return nil
}
