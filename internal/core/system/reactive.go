package system

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// ReactiveSpec describes a system that runs on the entities a collector has
// gathered since the previous execute.
type ReactiveSpec struct {
	Name string
	// Triggers name the groups to watch and the membership change to collect.
	Triggers []ecs.Trigger
	// Ensure, when non-empty, keeps only entities it matches at execute time.
	Ensure ecs.Matcher
	// Exclude, when non-empty, drops entities it matches at execute time.
	Exclude ecs.Matcher
	// ClearAfterExecute clears the collector once more after Execute, dropping
	// whatever the execute hook itself caused to be collected.
	ClearAfterExecute bool

	SetContext func(*ecs.Context)
	Execute    func(entities []*ecs.Entity) error
	Initialize func() error
	Cleanup    func() error
	Teardown   func() error
}

// ReactiveSystem is anything that can describe a reactive registration.
type ReactiveSystem interface {
	ReactiveSpec() ReactiveSpec
}

// Reactive adapts a ReactiveSpec into a System backed by one Collector.
type Reactive struct {
	spec      ReactiveSpec
	collector *ecs.Collector
	buffer    []*ecs.Entity
}

// NewReactive builds the adapter, creating and activating its collector on
// ctx.
func NewReactive(ctx *ecs.Context, s ReactiveSystem) (*Reactive, error) {
	spec := s.ReactiveSpec()
	if spec.Execute == nil {
		return nil, eris.Errorf("reactive system %s has no execute hook", spec.Name)
	}
	if len(spec.Triggers) == 0 {
		return nil, eris.Errorf("reactive system %s has no triggers", spec.Name)
	}
	groups := make([]*ecs.Group, len(spec.Triggers))
	events := make([]ecs.GroupEvent, len(spec.Triggers))
	for i, tr := range spec.Triggers {
		groups[i] = ctx.GetGroup(tr.Matcher)
		events[i] = tr.Event
	}
	collector, err := ecs.NewCollector(groups, events)
	if err != nil {
		return nil, eris.Wrapf(err, "reactive system %s", spec.Name)
	}
	if spec.SetContext != nil {
		spec.SetContext(ctx)
	}
	return &Reactive{spec: spec, collector: collector}, nil
}

func (r *Reactive) Name() string               { return r.spec.Name }
func (r *Reactive) Collector() *ecs.Collector { return r.collector }

// Spec exposes the adapter's execute together with the wrapped system's own
// initialize, cleanup and teardown hooks.
func (r *Reactive) Spec() Spec {
	return Spec{
		Name:       r.spec.Name,
		Execute:    r.Execute,
		Initialize: r.spec.Initialize,
		Cleanup:    r.spec.Cleanup,
		Teardown:   r.spec.Teardown,
	}
}

func (r *Reactive) Activate()   { r.collector.Activate() }
func (r *Reactive) Deactivate() { r.collector.Deactivate() }
func (r *Reactive) Clear()      { r.collector.ClearCollectedEntities() }

// Execute filters the collected entities through Ensure and Exclude, clears
// the collector and runs the wrapped execute with the survivors. Nothing runs
// when none survive. The slice passed to the hook is only valid during the
// call, and every entity in it stays retained until the hook returns.
func (r *Reactive) Execute() error {
	if r.collector.Count() == 0 {
		return nil
	}
	for _, e := range r.collector.CollectedEntities() {
		if !r.spec.Ensure.IsEmpty() && !r.spec.Ensure.Matches(e) {
			continue
		}
		if !r.spec.Exclude.IsEmpty() && r.spec.Exclude.Matches(e) {
			continue
		}
		if err := e.Retain(r); err != nil {
			_ = r.releaseBuffer()
			return eris.Wrapf(err, "reactive system %s", r.spec.Name)
		}
		r.buffer = append(r.buffer, e)
	}
	r.collector.ClearCollectedEntities()
	if len(r.buffer) == 0 {
		return nil
	}

	err := r.spec.Execute(slices.Clip(r.buffer))
	if rerr := r.releaseBuffer(); rerr != nil && err == nil {
		err = eris.Wrapf(rerr, "reactive system %s", r.spec.Name)
	}

	if r.spec.ClearAfterExecute {
		r.collector.ClearCollectedEntities()
	}
	return err
}

// releaseBuffer drops the adapter's hold on every buffered entity and empties
// the buffer. The first release error is returned after all are released.
func (r *Reactive) releaseBuffer() error {
	var err error
	for _, e := range r.buffer {
		if rerr := e.Release(r); rerr != nil && err == nil {
			err = rerr
		}
	}
	clear(r.buffer)
	r.buffer = r.buffer[:0]
	return err
}
