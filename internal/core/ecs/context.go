package ecs

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// EntityEventFunc observes entity lifecycle changes on a Context.
type EntityEventFunc func(c *Context, e *Entity)

// GroupEventFunc observes group creation and teardown on a Context.
type GroupEventFunc func(c *Context, g *Group)

type pendingEvent struct {
	group    *Group
	delegate *Delegate[GroupChangedFunc]
}

// Context owns a population of entities, recycles destroyed ones, and keeps
// every group it has handed out consistent with the live entities. A Context
// is not safe for concurrent use.
type Context struct {
	name string
	log  *zap.Logger

	registry *Registry
	pools    *ComponentPools
	arena    *handleArena

	startCreationIndex uint32
	creationIndex      uint32

	entities      map[*Entity]struct{}
	entitiesCache []*Entity
	reusable      []*Entity
	retained      map[*Entity]struct{}

	groups         map[uint32][]*Group
	groupList      []*Group
	groupsForIndex [][]*Group
	bareGroups     []*Group

	// pending holds spare event buffers; nested component changes each take
	// their own buffer.
	pending [][]pendingEvent

	onEntityCreated         Delegate[EntityEventFunc]
	onEntityWillBeDestroyed Delegate[EntityEventFunc]
	onEntityDestroyed       Delegate[EntityEventFunc]
	onGroupCreated          Delegate[GroupEventFunc]
	onGroupCleared          Delegate[GroupEventFunc]

	componentAdded    ComponentChangedFunc
	componentReplaced ComponentReplacedFunc
	entityReleased    func(e *Entity) error
}

func NewContext(opts ...Option) *Context {
	c := &Context{
		name:               "context",
		log:                zap.NewNop(),
		registry:           DefaultRegistry(),
		pools:              NewComponentPools(),
		arena:              newHandleArena(),
		startCreationIndex: 1,
		entities:           make(map[*Entity]struct{}, 1024),
		retained:           make(map[*Entity]struct{}),
		groups:             make(map[uint32][]*Group),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.creationIndex = c.startCreationIndex
	c.componentAdded = c.updateGroupsComponentAddedOrRemoved
	c.componentReplaced = c.updateGroupsComponentReplaced
	c.entityReleased = c.onEntityReleased
	return c
}

func (c *Context) Name() string               { return c.name }
func (c *Context) Registry() *Registry        { return c.registry }
func (c *Context) Pools() *ComponentPools     { return c.pools }
func (c *Context) Count() int                 { return len(c.entities) }
func (c *Context) ReusableEntitiesCount() int { return len(c.reusable) }
func (c *Context) RetainedEntitiesCount() int { return len(c.retained) }

func (c *Context) OnEntityCreated() *Delegate[EntityEventFunc]         { return &c.onEntityCreated }
func (c *Context) OnEntityWillBeDestroyed() *Delegate[EntityEventFunc] { return &c.onEntityWillBeDestroyed }
func (c *Context) OnEntityDestroyed() *Delegate[EntityEventFunc]       { return &c.onEntityDestroyed }
func (c *Context) OnGroupCreated() *Delegate[GroupEventFunc]           { return &c.onGroupCreated }
func (c *Context) OnGroupCleared() *Delegate[GroupEventFunc]           { return &c.onGroupCleared }

// CreateEntity returns an enabled, component-less entity, reusing a recycled
// one when available.
func (c *Context) CreateEntity() *Entity {
	var e *Entity
	if n := len(c.reusable); n > 0 {
		e = c.reusable[n-1]
		c.reusable[n-1] = nil
		c.reusable = c.reusable[:n-1]
	} else {
		e = newEntity(c.registry, c.pools)
		e.handle = c.arena.allocate(e)
		e.slot = e.handle.Index()
	}
	e.handle = c.arena.current(e.slot)
	e.id = c.creationIndex
	c.creationIndex++
	e.enabled = true

	c.entities[e] = struct{}{}
	c.entitiesCache = nil

	e.onComponentAdded.Add(c.componentAdded)
	e.onComponentRemoved.Add(c.componentAdded)
	e.onComponentReplaced.Add(c.componentReplaced)
	e.released = c.entityReleased

	c.fireBare(e, (*Group).addSilently, func(g *Group) *Delegate[GroupChangedFunc] { return &g.onEntityAdded })
	c.onEntityCreated.each(func(f EntityEventFunc) { f(c, e) })
	return e
}

// DestroyEntity strips e, disables it, and recycles it once no owner
// retains it.
func (c *Context) DestroyEntity(e *Entity) error {
	if _, ok := c.entities[e]; !ok {
		return eris.Wrapf(ErrEntityNotFound, "destroy %s in %s", e, c.name)
	}
	delete(c.entities, e)
	c.entitiesCache = nil

	c.onEntityWillBeDestroyed.each(func(f EntityEventFunc) { f(c, e) })
	e.destroy()
	c.fireBare(e, (*Group).removeSilently, func(g *Group) *Delegate[GroupChangedFunc] { return &g.onEntityRemoved })
	c.arena.invalidate(e.handle)
	c.onEntityDestroyed.each(func(f EntityEventFunc) { f(c, e) })

	if e.RetainCount() == 0 {
		e.released = nil
		c.reusable = append(c.reusable, e)
	} else {
		c.retained[e] = struct{}{}
	}
	return nil
}

// DestroyAllEntities destroys every live entity. It reports
// ErrRetainedEntities when some destroyed entities are still retained
// afterwards; the destroys themselves have already happened.
func (c *Context) DestroyAllEntities() error {
	for _, e := range slices.Clone(c.Entities()) {
		if err := c.DestroyEntity(e); err != nil {
			return err
		}
	}
	if n := len(c.retained); n > 0 {
		c.log.Warn("entities still retained after destroy all",
			zap.String("context", c.name), zap.Int("retained", n))
		return eris.Wrapf(ErrRetainedEntities, "%s: %d retained", c.name, n)
	}
	return nil
}

func (c *Context) HasEntity(e *Entity) bool {
	_, ok := c.entities[e]
	return ok
}

// Entities returns every live entity ordered by creation index. The slice is
// shared and must not be modified.
func (c *Context) Entities() []*Entity {
	if c.entitiesCache == nil {
		cache := make([]*Entity, 0, len(c.entities))
		for e := range c.entities {
			cache = append(cache, e)
		}
		slices.SortFunc(cache, func(a, b *Entity) int { return cmp.Compare(a.id, b.id) })
		c.entitiesCache = cache
	}
	return c.entitiesCache
}

// GetEntities returns the members of the group for m.
func (c *Context) GetEntities(m Matcher) []*Entity {
	return c.GetGroup(m).Entities()
}

// Lookup resolves a handle to its live entity. Handles of destroyed entities
// report false even after the entity object has been reused.
func (c *Context) Lookup(h Handle) (*Entity, bool) {
	return c.arena.resolve(h)
}

// GetGroup returns the group for m, creating and populating it on first use.
// Equal matchers always yield the same group.
func (c *Context) GetGroup(m Matcher) *Group {
	for _, g := range c.groups[m.Hash()] {
		if g.matcher.Equal(m) {
			return g
		}
	}

	g := newGroup(m, c.registry)
	for _, e := range c.Entities() {
		g.handleEntitySilently(e)
	}
	c.groups[m.Hash()] = append(c.groups[m.Hash()], g)
	c.groupList = append(c.groupList, g)
	for _, id := range m.Indices() {
		for int(id) >= len(c.groupsForIndex) {
			c.groupsForIndex = append(c.groupsForIndex, nil)
		}
		c.groupsForIndex[id] = append(c.groupsForIndex[id], g)
	}
	if m.matchesBare() {
		c.bareGroups = append(c.bareGroups, g)
	}

	c.log.Debug("group created",
		zap.String("context", c.name),
		zap.String("matcher", m.Format(c.registry)),
		zap.Int("entities", g.Count()))
	c.onGroupCreated.each(func(f GroupEventFunc) { f(c, g) })
	return g
}

// ClearGroups detaches every group. Detached groups keep their contents but
// are no longer updated, and their listeners are dropped.
func (c *Context) ClearGroups() {
	groups := c.groupList
	c.groups = make(map[uint32][]*Group)
	c.groupList = nil
	c.groupsForIndex = nil
	c.bareGroups = nil
	for _, g := range groups {
		g.removeAllEventHandlers()
		g.attached = false
		c.onGroupCleared.each(func(f GroupEventFunc) { f(c, g) })
	}
	if len(groups) > 0 {
		c.log.Debug("groups cleared", zap.String("context", c.name), zap.Int("groups", len(groups)))
	}
}

func (c *Context) ResetCreationIndex() { c.creationIndex = c.startCreationIndex }

// Reset clears groups, destroys every entity and resets the creation index.
func (c *Context) Reset() error {
	c.ClearGroups()
	err := c.DestroyAllEntities()
	c.ResetCreationIndex()
	return err
}

func (c *Context) ClearComponentPool(id ComponentID) { c.pools.Clear(id) }
func (c *Context) ClearComponentPools()              { c.pools.ClearAll() }
func (c *Context) ComponentPoolSize(id ComponentID) int {
	return c.pools.Len(id)
}

// updateGroupsComponentAddedOrRemoved classifies e against every interested
// group before firing any listener, so listeners always observe memberships
// that already reflect the change.
func (c *Context) updateGroupsComponentAddedOrRemoved(e *Entity, id ComponentID, comp any) {
	if int(id) >= len(c.groupsForIndex) {
		return
	}
	groups := c.groupsForIndex[id]
	if len(groups) == 0 {
		return
	}
	buf := c.takePending()
	for _, g := range groups {
		if d := g.handleEntity(e); d != nil {
			buf = append(buf, pendingEvent{group: g, delegate: d})
		}
	}
	for _, p := range buf {
		p.delegate.each(func(f GroupChangedFunc) { f(p.group, e, id, comp) })
	}
	c.givePending(buf)
}

func (c *Context) updateGroupsComponentReplaced(e *Entity, id ComponentID, prev, next any) {
	if int(id) >= len(c.groupsForIndex) {
		return
	}
	for _, g := range c.groupsForIndex[id] {
		g.updateEntity(e, id, prev, next)
	}
}

// fireBare applies a membership change for groups whose matcher accepts a
// component-less entity, then fires the resulting events.
func (c *Context) fireBare(e *Entity, apply func(*Group, *Entity) bool, delegate func(*Group) *Delegate[GroupChangedFunc]) {
	if len(c.bareGroups) == 0 {
		return
	}
	buf := c.takePending()
	for _, g := range c.bareGroups {
		if apply(g, e) {
			buf = append(buf, pendingEvent{group: g, delegate: delegate(g)})
		}
	}
	for _, p := range buf {
		p.delegate.each(func(f GroupChangedFunc) { f(p.group, e, NoComponent, nil) })
	}
	c.givePending(buf)
}

func (c *Context) takePending() []pendingEvent {
	if n := len(c.pending); n > 0 {
		buf := c.pending[n-1]
		c.pending = c.pending[:n-1]
		return buf
	}
	return make([]pendingEvent, 0, 8)
}

func (c *Context) givePending(buf []pendingEvent) {
	clear(buf)
	c.pending = append(c.pending, buf[:0])
}

// onEntityReleased recycles a destroyed entity once its last owner lets go.
// Entity.Release only calls it for disabled entities.
func (c *Context) onEntityReleased(e *Entity) error {
	if e.enabled {
		return eris.Wrapf(ErrEntityStillEnabled, "release %s in %s", e, c.name)
	}
	e.released = nil
	delete(c.retained, e)
	c.reusable = append(c.reusable, e)
	return nil
}
