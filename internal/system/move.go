package system

import (
	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// MoveSystem adds Velocity to Position for every moving entity each tick.
type MoveSystem struct {
	movers *ecs.Group
}

func NewMoveSystem(ctx *ecs.Context) *MoveSystem {
	r := ctx.Registry()
	return &MoveSystem{
		movers: ctx.GetGroup(ecs.AllOf(ecs.IDFor[component.Position](r), ecs.IDFor[component.Velocity](r))),
	}
}

func (s *MoveSystem) Spec() coresys.Spec {
	return coresys.Spec{Name: "move", Execute: s.execute}
}

func (s *MoveSystem) execute() error {
	var err error
	ecs.Each2(s.movers, func(e *ecs.Entity, _ *component.Position, v *component.Velocity) {
		if err != nil {
			return
		}
		err = ecs.Update(e, func(p *component.Position) {
			p.X += v.X
			p.Y += v.Y
		})
	})
	return err
}
