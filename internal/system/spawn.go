package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// Spawner builds an entity from a named prefab.
type Spawner interface {
	Spawn(name string) (*ecs.Entity, error)
}

// SpawnSystem spawns one wave of prefabs on initialize, and a fresh wave on
// any fixed tick that finds every labelled entity gone.
type SpawnSystem struct {
	spawner  Spawner
	prefabs  []string
	labelled *ecs.Group
	log      *zap.Logger
	waves    int
}

func NewSpawnSystem(ctx *ecs.Context, spawner Spawner, prefabs []string, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{
		spawner:  spawner,
		prefabs:  prefabs,
		labelled: ctx.GetGroup(ecs.AllOf(ecs.IDFor[component.Label](ctx.Registry()))),
		log:      log,
	}
}

func (s *SpawnSystem) Spec() coresys.Spec {
	return coresys.Spec{
		Name:         "spawn",
		Initialize:   s.wave,
		FixedExecute: s.respawn,
	}
}

func (s *SpawnSystem) respawn() error {
	if s.labelled.Count() > 0 {
		return nil
	}
	return s.wave()
}

func (s *SpawnSystem) wave() error {
	for _, name := range s.prefabs {
		e, err := s.spawner.Spawn(name)
		if err != nil {
			return err
		}
		// Prefabs may set their own label.
		if !ecs.Has[component.Label](e) {
			if err := ecs.Add(e, component.Label{Text: name}); err != nil {
				return err
			}
		}
	}
	s.waves++
	s.log.Debug("spawned wave", zap.Int("wave", s.waves), zap.Int("prefabs", len(s.prefabs)))
	return nil
}

func (s *SpawnSystem) Waves() int { return s.waves }
