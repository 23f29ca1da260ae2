package ecs

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

// GroupEvent selects which membership change a collector reacts to.
type GroupEvent uint8

const (
	GroupEventAdded GroupEvent = iota
	GroupEventRemoved
	GroupEventAddedOrRemoved
)

func (ev GroupEvent) String() string {
	switch ev {
	case GroupEventAdded:
		return "added"
	case GroupEventRemoved:
		return "removed"
	case GroupEventAddedOrRemoved:
		return "added_or_removed"
	}
	return "unknown"
}

// Trigger pairs a matcher with the group event a reactive system listens for.
type Trigger struct {
	Matcher Matcher
	Event   GroupEvent
}

// GroupChangedFunc observes an entity entering or leaving a group because of
// component id (NoComponent for creation and destruction).
type GroupChangedFunc func(g *Group, e *Entity, id ComponentID, c any)

// GroupUpdatedFunc observes a member's component being replaced.
type GroupUpdatedFunc func(g *Group, e *Entity, id ComponentID, prev, next any)

// Group is the live set of entities matching a matcher. Groups are created and
// kept current by their Context.
type Group struct {
	matcher  Matcher
	registry *Registry
	entities map[*Entity]struct{}
	cache    []*Entity
	attached bool

	onEntityAdded   Delegate[GroupChangedFunc]
	onEntityRemoved Delegate[GroupChangedFunc]
	onEntityUpdated Delegate[GroupUpdatedFunc]
}

func newGroup(m Matcher, r *Registry) *Group {
	return &Group{
		matcher:  m,
		registry: r,
		entities: make(map[*Entity]struct{}, 64),
		attached: true,
	}
}

func (g *Group) Matcher() Matcher { return g.matcher }
func (g *Group) Count() int       { return len(g.entities) }

func (g *Group) OnEntityAdded() *Delegate[GroupChangedFunc]   { return &g.onEntityAdded }
func (g *Group) OnEntityRemoved() *Delegate[GroupChangedFunc] { return &g.onEntityRemoved }
func (g *Group) OnEntityUpdated() *Delegate[GroupUpdatedFunc] { return &g.onEntityUpdated }

// IsAttached reports whether the owning Context still maintains this group.
// Detached groups keep their last membership but receive no further updates.
func (g *Group) IsAttached() bool { return g.attached }

func (g *Group) ContainsEntity(e *Entity) bool {
	_, ok := g.entities[e]
	return ok
}

// Entities returns the members ordered by creation index. The slice is shared
// and must not be modified; it stays valid after later membership changes,
// which build a new slice on next call.
func (g *Group) Entities() []*Entity {
	if g.cache == nil {
		cache := make([]*Entity, 0, len(g.entities))
		for e := range g.entities {
			cache = append(cache, e)
		}
		slices.SortFunc(cache, func(a, b *Entity) int {
			return cmp.Compare(a.id, b.id)
		})
		g.cache = cache
	}
	return g.cache
}

// SingleEntity returns the only member, nil for an empty group, or
// ErrMultipleEntities.
func (g *Group) SingleEntity() (*Entity, error) {
	switch len(g.entities) {
	case 0:
		return nil, nil
	case 1:
		for e := range g.entities {
			return e, nil
		}
	}
	return nil, eris.Wrapf(ErrMultipleEntities, "group %s has %d entities", g.matcher, len(g.entities))
}

// CreateCollector builds an active collector over this group.
func (g *Group) CreateCollector(ev GroupEvent) *Collector {
	c, _ := NewCollector([]*Group{g}, []GroupEvent{ev})
	return c
}

// handleEntitySilently fixes membership without notifying listeners.
func (g *Group) handleEntitySilently(e *Entity) {
	if g.matcher.Matches(e) {
		g.addSilently(e)
	} else {
		g.removeSilently(e)
	}
}

// handleEntity fixes membership and returns the delegate the caller must fire,
// or nil when membership did not change.
func (g *Group) handleEntity(e *Entity) *Delegate[GroupChangedFunc] {
	if g.matcher.Matches(e) {
		if g.addSilently(e) {
			return &g.onEntityAdded
		}
		return nil
	}
	if g.removeSilently(e) {
		return &g.onEntityRemoved
	}
	return nil
}

func (g *Group) addSilently(e *Entity) bool {
	if !e.enabled || e.destroying {
		return false
	}
	if _, ok := g.entities[e]; ok {
		return false
	}
	g.entities[e] = struct{}{}
	g.cache = nil
	return true
}

func (g *Group) removeSilently(e *Entity) bool {
	if _, ok := g.entities[e]; !ok {
		return false
	}
	delete(g.entities, e)
	g.cache = nil
	return true
}

// updateEntity announces a replaced component on a member as removed(prev),
// added(next) and updated(prev, next).
func (g *Group) updateEntity(e *Entity, id ComponentID, prev, next any) {
	if _, ok := g.entities[e]; !ok {
		return
	}
	g.onEntityRemoved.each(func(f GroupChangedFunc) { f(g, e, id, prev) })
	g.onEntityAdded.each(func(f GroupChangedFunc) { f(g, e, id, next) })
	g.onEntityUpdated.each(func(f GroupUpdatedFunc) { f(g, e, id, prev, next) })
}

func (g *Group) removeAllEventHandlers() {
	g.onEntityAdded.Clear()
	g.onEntityRemoved.Clear()
	g.onEntityUpdated.Clear()
}
