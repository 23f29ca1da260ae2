package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// CleanupSystem destroys expired entities at tick end. Entities tagged
// Expired are queued during execute and destroyed in the cleanup phase.
// The queue holds a reference to each entity until it is flushed.
type CleanupSystem struct {
	ctx       *ecs.Context
	log       *zap.Logger
	expired   ecs.Matcher
	queue     []*ecs.Entity
	destroyed int
}

func NewCleanupSystem(r *ecs.Registry, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{
		log:     log,
		expired: ecs.AllOf(ecs.IDFor[component.Expired](r)),
	}
}

func (s *CleanupSystem) ReactiveSpec() coresys.ReactiveSpec {
	return coresys.ReactiveSpec{
		Name:     "cleanup",
		Triggers: []ecs.Trigger{s.expired.OnEntityAdded()},
		Ensure:   s.expired,
		SetContext: func(ctx *ecs.Context) {
			s.ctx = ctx
		},
		Execute:  s.enqueue,
		Cleanup:  s.flush,
		Teardown: s.teardown,
	}
}

func (s *CleanupSystem) enqueue(entities []*ecs.Entity) error {
	for _, e := range entities {
		if e.IsRetainedBy(s) {
			continue
		}
		if err := e.Retain(s); err != nil {
			return err
		}
		s.queue = append(s.queue, e)
	}
	return nil
}

// flush destroys the queued entities.
func (s *CleanupSystem) flush() error {
	queue := s.queue
	s.queue = nil
	for _, e := range queue {
		if e.IsEnabled() && s.ctx.HasEntity(e) {
			if err := s.ctx.DestroyEntity(e); err != nil {
				return err
			}
			s.destroyed++
		}
		if err := e.Release(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *CleanupSystem) teardown() error {
	pending := len(s.queue)
	err := s.flush()
	s.log.Info("cleanup finished", zap.Int("destroyed", s.destroyed), zap.Int("pending", pending))
	return err
}

// Pending is the number of entities queued for the next cleanup.
func (s *CleanupSystem) Pending() int   { return len(s.queue) }
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
