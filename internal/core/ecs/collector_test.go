package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCollectsAddedEntitiesOnce(t *testing.T) {
	ctx := newTestContext(t)
	h := IDFor[health](ctx.Registry())
	c := ctx.GetGroup(AllOf(h)).CreateCollector(GroupEventAdded)

	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{HP: 1}))
	require.NoError(t, Replace(e, health{HP: 2}))
	require.NoError(t, Update(e, func(h *health) { h.HP++ }))

	assert.Equal(t, []*Entity{e}, c.CollectedEntities())
	assert.True(t, e.IsRetainedBy(c))

	c.ClearCollectedEntities()
	assert.Equal(t, 0, c.Count())
	assert.False(t, e.IsRetainedBy(c))
}

func TestCollectorEvents(t *testing.T) {
	tests := []struct {
		name  string
		event GroupEvent
		add   int
		rem   int
	}{
		{"added", GroupEventAdded, 1, 0},
		{"removed", GroupEventRemoved, 0, 1},
		{"added or removed", GroupEventAddedOrRemoved, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t)
			c := ctx.GetGroup(AllOf(IDFor[health](ctx.Registry()))).CreateCollector(tt.event)

			e := ctx.CreateEntity()
			require.NoError(t, Add(e, health{}))
			assert.Equal(t, tt.add, c.Count())
			c.ClearCollectedEntities()

			require.NoError(t, Remove[health](e))
			assert.Equal(t, tt.rem, c.Count())
		})
	}
}

func TestCollectorOverSeveralGroups(t *testing.T) {
	ctx := newTestContext(t)
	r := ctx.Registry()
	gp := ctx.GetGroup(AllOf(IDFor[position](r)))
	gv := ctx.GetGroup(AllOf(IDFor[velocity](r)))

	c, err := NewCollector([]*Group{gp, gv}, []GroupEvent{GroupEventAdded, GroupEventRemoved})
	require.NoError(t, err)

	a := ctx.CreateEntity()
	b := ctx.CreateEntity()
	require.NoError(t, Add(a, position{}))
	require.NoError(t, Add(b, velocity{}))
	assert.Equal(t, []*Entity{a}, c.CollectedEntities())

	require.NoError(t, Remove[velocity](b))
	assert.Equal(t, []*Entity{a, b}, c.CollectedEntities())
}

func TestCollectorRejectsMismatchedInputs(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.GetGroup(AllOf(IDFor[health](ctx.Registry())))
	_, err := NewCollector([]*Group{g}, nil)
	assert.ErrorIs(t, err, ErrCollectorMismatch)
}

func TestCollectorDeactivateAndActivate(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.GetGroup(AllOf(IDFor[health](ctx.Registry())))
	c := g.CreateCollector(GroupEventAdded)
	require.True(t, c.IsActive())

	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{}))
	c.Deactivate()
	assert.False(t, c.IsActive())
	assert.Equal(t, 0, c.Count(), "deactivate clears")
	assert.Equal(t, 0, g.OnEntityAdded().Len())

	require.NoError(t, Remove[health](e))
	require.NoError(t, Add(e, health{}))
	assert.Equal(t, 0, c.Count())

	c.Activate()
	c.Activate()
	assert.Equal(t, 1, g.OnEntityAdded().Len(), "activate is idempotent")
	require.NoError(t, Remove[health](e))
	require.NoError(t, Add(e, health{}))
	assert.Equal(t, 1, c.Count())
}

func TestCollectorSurvivesClearedGroups(t *testing.T) {
	ctx := newTestContext(t)
	c := ctx.GetGroup(AllOf(IDFor[health](ctx.Registry()))).CreateCollector(GroupEventAdded)
	ctx.ClearGroups()

	assert.NotPanics(t, c.Deactivate)
	c.Activate()
	assert.False(t, c.IsActive(), "detached groups cannot be observed")
}

func TestCollectedEntityIsRecycledAfterClear(t *testing.T) {
	ctx := newTestContext(t)
	c := ctx.GetGroup(AllOf(IDFor[health](ctx.Registry()))).CreateCollector(GroupEventAdded)

	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{}))
	require.NoError(t, ctx.DestroyEntity(e))
	assert.Equal(t, 1, ctx.RetainedEntitiesCount())
	assert.Equal(t, 0, ctx.ReusableEntitiesCount())

	c.ClearCollectedEntities()
	assert.Equal(t, 0, ctx.RetainedEntitiesCount())
	assert.Equal(t, 1, ctx.ReusableEntitiesCount())
}

// A collector over a group sees exactly the entity that joined.
func TestCollectorSeesNewMember(t *testing.T) {
	ctx := newTestContext(t)
	g := ctx.GetGroup(AllOf(IDFor[position](ctx.Registry())))
	c := g.CreateCollector(GroupEventAdded)

	ctx.CreateEntity()
	e2 := ctx.CreateEntity()
	require.NoError(t, Add(e2, position{}))
	assert.Equal(t, []*Entity{e2}, c.CollectedEntities())

	c.ClearCollectedEntities()
	assert.Empty(t, c.CollectedEntities())
}
