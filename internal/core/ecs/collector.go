package ecs

import (
	"cmp"
	"slices"

	"github.com/rotisserie/eris"
)

type collectorSub struct {
	group   *Group
	added   Subscription
	removed Subscription
}

// Collector accumulates the entities that entered and/or left a set of groups
// since it was last cleared. Collected entities are retained by the collector
// so a destroyed entity is not recycled while it is still pending.
type Collector struct {
	groups    []*Group
	events    []GroupEvent
	subs      []collectorSub
	collected map[*Entity]struct{}
	cache     []*Entity
}

// NewCollector pairs groups[i] with events[i] and activates the collector.
func NewCollector(groups []*Group, events []GroupEvent) (*Collector, error) {
	if len(groups) != len(events) {
		return nil, eris.Wrapf(ErrCollectorMismatch, "%d groups, %d events", len(groups), len(events))
	}
	c := &Collector{
		groups:    slices.Clone(groups),
		events:    slices.Clone(events),
		collected: make(map[*Entity]struct{}, 32),
	}
	c.Activate()
	return c, nil
}

// Activate subscribes to the groups. Calling it on an active collector is a
// no-op; detached groups are skipped.
func (c *Collector) Activate() {
	if len(c.subs) > 0 {
		return
	}
	for i, g := range c.groups {
		if !g.attached {
			continue
		}
		sub := collectorSub{group: g}
		ev := c.events[i]
		if ev == GroupEventAdded || ev == GroupEventAddedOrRemoved {
			sub.added = g.onEntityAdded.Add(c.addEntity)
		}
		if ev == GroupEventRemoved || ev == GroupEventAddedOrRemoved {
			sub.removed = g.onEntityRemoved.Add(c.addEntity)
		}
		c.subs = append(c.subs, sub)
	}
}

// Deactivate unsubscribes from the groups and clears the collected set.
func (c *Collector) Deactivate() {
	for _, sub := range c.subs {
		if !sub.group.attached {
			continue
		}
		if sub.added != 0 {
			sub.group.onEntityAdded.Remove(sub.added)
		}
		if sub.removed != 0 {
			sub.group.onEntityRemoved.Remove(sub.removed)
		}
	}
	c.subs = nil
	c.ClearCollectedEntities()
}

func (c *Collector) IsActive() bool { return len(c.subs) > 0 }

// CollectedEntities returns the pending entities ordered by creation index.
func (c *Collector) CollectedEntities() []*Entity {
	if c.cache == nil {
		cache := make([]*Entity, 0, len(c.collected))
		for e := range c.collected {
			cache = append(cache, e)
		}
		slices.SortFunc(cache, func(a, b *Entity) int {
			return cmp.Compare(a.id, b.id)
		})
		c.cache = cache
	}
	return c.cache
}

func (c *Collector) Count() int { return len(c.collected) }

// ClearCollectedEntities empties the set and releases the collector's hold on
// each entity.
func (c *Collector) ClearCollectedEntities() {
	if len(c.collected) == 0 {
		return
	}
	pending := c.collected
	c.collected = make(map[*Entity]struct{}, len(pending))
	c.cache = nil
	for e := range pending {
		e.releaseOwner(c)
	}
}

func (c *Collector) addEntity(_ *Group, e *Entity, _ ComponentID, _ any) {
	if _, ok := c.collected[e]; ok {
		return
	}
	c.collected[e] = struct{}{}
	c.cache = nil
	e.owners[c] = struct{}{}
}
