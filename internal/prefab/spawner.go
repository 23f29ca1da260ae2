package prefab

import (
	"fmt"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// Spawner builds entities on one context from the specs of a library.
type Spawner struct {
	ctx     *ecs.Context
	lib     *Library
	builder *Builder
}

func NewSpawner(ctx *ecs.Context, lib *Library, builder *Builder) *Spawner {
	return &Spawner{ctx: ctx, lib: lib, builder: builder}
}

// Spawn builds the named prefab.
func (s *Spawner) Spawn(name string) (*ecs.Entity, error) {
	spec, ok := s.lib.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown prefab %q", name)
	}
	return s.builder.Build(s.ctx, spec)
}

func (s *Spawner) Library() *Library { return s.lib }

// Reload re-reads the library and checks every spec against the builder.
// A spec that references an unknown component fails the reload and the
// previous specs stay active.
func (s *Spawner) Reload() error {
	prev := s.lib.specs
	if err := s.lib.Reload(); err != nil {
		return err
	}
	for _, name := range s.lib.Names() {
		spec, _ := s.lib.Get(name)
		if err := s.builder.Validate(spec); err != nil {
			s.lib.specs = prev
			return err
		}
	}
	return nil
}
