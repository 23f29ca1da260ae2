package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/core/event"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
	"github.com/l1jgo/ecsrt/internal/telemetry"
)

// DispatchSystem flips the event bus at tick start and delivers last tick's
// events. It also keeps running lifecycle totals for the demo log.
type DispatchSystem struct {
	ctx       *ecs.Context
	bus       *event.Bus
	log       *zap.Logger
	created   int
	destroyed int
	groups    int
}

func NewDispatchSystem(ctx *ecs.Context, bus *event.Bus, log *zap.Logger) *DispatchSystem {
	s := &DispatchSystem{ctx: ctx, bus: bus, log: log}
	event.Subscribe(bus, func(event.EntityCreated) { s.created++ })
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		s.destroyed++
		if ev.Retained {
			s.log.Debug("entity destroyed while retained", zap.Uint32("entity", ev.ID))
		}
	})
	event.Subscribe(bus, func(ev event.GroupCreated) {
		s.groups++
		s.log.Debug("group created", zap.String("matcher", ev.Matcher), zap.Int("count", ev.Count))
	})
	return s
}

func (s *DispatchSystem) Spec() coresys.Spec {
	return coresys.Spec{
		Name:     "dispatch",
		Execute:  s.execute,
		Teardown: s.teardown,
	}
}

func (s *DispatchSystem) execute() error {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
	telemetry.EmitEntityCount(s.ctx.Name(), s.ctx.Count())
	return nil
}

func (s *DispatchSystem) teardown() error {
	s.log.Info("lifecycle totals",
		zap.Int("created", s.created),
		zap.Int("destroyed", s.destroyed),
		zap.Int("groups", s.groups),
		zap.Int("live", s.ctx.Count()),
	)
	return nil
}

// Totals reports the created and destroyed counts delivered so far.
func (s *DispatchSystem) Totals() (created, destroyed int) {
	return s.created, s.destroyed
}
