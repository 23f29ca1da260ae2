package system

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/telemetry"
)

// ErrNoContext is returned when a system asks for its context but the
// container was built without one.
var ErrNoContext = eris.New("container has no context")

type entry struct {
	name string
	run  func() error
}

// reactiveNode is either a reactive adapter or a nested container, kept in
// registration order for the activate/deactivate/clear walks.
type reactiveNode struct {
	reactive  *Reactive
	container *Container
}

// Container runs systems phase by phase in registration order. Containers
// nest, so a Container is itself a System.
type Container struct {
	name   string
	ctx    *ecs.Context
	log    *zap.Logger
	timing bool

	phases [PhaseTeardown + 1][]entry
	nodes  []reactiveNode
}

// Option configures a Container.
type Option func(*Container)

// WithContext gives systems that ask for one the context to operate on.
func WithContext(ctx *ecs.Context) Option {
	return func(c *Container) { c.ctx = ctx }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Container) { c.log = log }
}

// WithTiming reports each system's phase duration through telemetry.
func WithTiming(enabled bool) Option {
	return func(c *Container) { c.timing = enabled }
}

func NewContainer(name string, opts ...Option) *Container {
	c := &Container{
		name: name,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Container) Name() string { return c.name }

// Add registers s in every phase its Spec declares a hook for. Reactive
// adapters and nested containers also join the reactive walks, whichever
// Add variant registered them.
func (c *Container) Add(s System) error {
	spec := s.Spec()
	if spec.SetContext != nil {
		if c.ctx == nil {
			return eris.Wrapf(ErrNoContext, "add system %s to %s", spec.Name, c.name)
		}
		spec.SetContext(c.ctx)
	}
	for p := PhaseInitialize; p <= PhaseTeardown; p++ {
		if hook := spec.Hook(p); hook != nil {
			c.phases[p] = append(c.phases[p], entry{name: spec.Name, run: hook})
		}
	}
	c.log.Debug("system added",
		zap.String("container", c.name),
		zap.String("system", spec.Name),
		zap.Stringers("phases", spec.Phases()))

	switch n := s.(type) {
	case *Reactive:
		c.nodes = append(c.nodes, reactiveNode{reactive: n})
	case *Container:
		c.nodes = append(c.nodes, reactiveNode{container: n})
	}
	return nil
}

// AddReactive registers an adapter so it also takes part in the reactive
// activate, deactivate and clear walks.
func (c *Container) AddReactive(r *Reactive) error { return c.Add(r) }

// AddReactiveSystem wraps s on the container's context and registers it.
func (c *Container) AddReactiveSystem(s ReactiveSystem) (*Reactive, error) {
	if c.ctx == nil {
		return nil, eris.Wrapf(ErrNoContext, "add reactive system %s to %s", s.ReactiveSpec().Name, c.name)
	}
	r, err := NewReactive(c.ctx, s)
	if err != nil {
		return nil, err
	}
	return r, c.AddReactive(r)
}

// AddContainer nests child. Its phases run in child's own order at the
// point it was added, including systems added to child afterwards.
func (c *Container) AddContainer(child *Container) error { return c.Add(child) }

// Spec lets a Container be nested as an ordinary system. Every phase is
// hooked so the parent keeps running whatever child holds at call time.
func (c *Container) Spec() Spec {
	return Spec{
		Name:         c.name,
		Initialize:   c.Initialize,
		Execute:      c.Execute,
		FixedExecute: c.FixedExecute,
		Cleanup:      c.Cleanup,
		Teardown:     c.Teardown,
	}
}

func (c *Container) Initialize() error   { return c.Run(PhaseInitialize) }
func (c *Container) Execute() error      { return c.Run(PhaseExecute) }
func (c *Container) FixedExecute() error { return c.Run(PhaseFixedExecute) }
func (c *Container) Cleanup() error      { return c.Run(PhaseCleanup) }
func (c *Container) Teardown() error     { return c.Run(PhaseTeardown) }

// Run calls every hook registered for phase p. The first failing hook stops
// the phase and its error is returned.
func (c *Container) Run(p Phase) error {
	for _, e := range c.phases[p] {
		var start time.Time
		if c.timing {
			start = time.Now()
		}
		if err := e.run(); err != nil {
			c.log.Error("system failed",
				zap.String("container", c.name),
				zap.String("system", e.name),
				zap.Stringer("phase", p),
				zap.Error(err))
			return eris.Wrapf(err, "system %s: %s", e.name, p)
		}
		if c.timing {
			telemetry.EmitPhaseStat(start, e.name, p.String())
		}
	}
	return nil
}

// Count reports how many systems are registered for phase p.
func (c *Container) Count(p Phase) int { return len(c.phases[p]) }

func (c *Container) ActivateReactiveSystems() {
	for _, n := range c.nodes {
		if n.reactive != nil {
			n.reactive.Activate()
		} else {
			n.container.ActivateReactiveSystems()
		}
	}
}

func (c *Container) DeactivateReactiveSystems() {
	for _, n := range c.nodes {
		if n.reactive != nil {
			n.reactive.Deactivate()
		} else {
			n.container.DeactivateReactiveSystems()
		}
	}
}

func (c *Container) ClearReactiveSystems() {
	for _, n := range c.nodes {
		if n.reactive != nil {
			n.reactive.Clear()
		} else {
			n.container.ClearReactiveSystems()
		}
	}
}
