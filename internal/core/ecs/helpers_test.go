package ecs

import (
	"strconv"
	"testing"
)

type position struct{ X, Y float64 }

func (position) Name() string { return "position" }

type velocity struct{ X, Y float64 }

func (velocity) Name() string { return "velocity" }

type health struct{ HP int }

type label struct{ Text string }

func newTestContext(t testing.TB, opts ...Option) *Context {
	t.Helper()
	return NewContext(append([]Option{WithRegistry(NewRegistry())}, opts...)...)
}

// recorder captures group events as "added:<id>", "removed:<id>", "updated:<id>".
type recorder struct {
	events []string
}

func (r *recorder) watch(g *Group) {
	g.OnEntityAdded().Add(func(_ *Group, e *Entity, _ ComponentID, _ any) {
		r.events = append(r.events, "added:"+strconv.Itoa(int(e.ID())))
	})
	g.OnEntityRemoved().Add(func(_ *Group, e *Entity, _ ComponentID, _ any) {
		r.events = append(r.events, "removed:"+strconv.Itoa(int(e.ID())))
	})
	g.OnEntityUpdated().Add(func(_ *Group, e *Entity, _ ComponentID, _, _ any) {
		r.events = append(r.events, "updated:"+strconv.Itoa(int(e.ID())))
	})
}
