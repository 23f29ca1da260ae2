package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityAddGetHas(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()

	require.NoError(t, Add(e, position{X: 1, Y: 2}))
	assert.True(t, Has[position](e))
	assert.False(t, Has[velocity](e))

	p, err := Get[position](e)
	require.NoError(t, err)
	assert.Equal(t, position{X: 1, Y: 2}, *p)

	err = Add(e, position{})
	assert.ErrorIs(t, err, ErrComponentExists)

	_, err = Get[velocity](e)
	assert.ErrorIs(t, err, ErrComponentNotFound)
	assert.ErrorIs(t, Remove[velocity](e), ErrComponentNotFound)
}

func TestEntityReplaceActsAsAddWhenAbsent(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()

	var added, replaced int
	e.OnComponentAdded().Add(func(*Entity, ComponentID, any) { added++ })
	e.OnComponentReplaced().Add(func(*Entity, ComponentID, any, any) { replaced++ })

	require.NoError(t, Replace(e, health{HP: 3}))
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, replaced)

	require.NoError(t, Replace(e, health{HP: 5}))
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, replaced)

	h, err := Get[health](e)
	require.NoError(t, err)
	assert.Equal(t, 5, h.HP)
}

func TestEntityReplaceNilOnEmptySlotIsNoop(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, e.ReplaceComponent(ID[health](e), nil))
	assert.Equal(t, 0, e.ComponentCount())
}

func TestEntityReplacedEventCarriesBothInstances(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{HP: 1}))
	before, _ := Get[health](e)

	var prev, next any
	e.OnComponentReplaced().Add(func(_ *Entity, _ ComponentID, p, n any) { prev, next = p, n })
	require.NoError(t, Replace(e, health{HP: 2}))

	after, _ := Get[health](e)
	assert.Same(t, before, prev)
	assert.Same(t, after, next)
	assert.Equal(t, 1, ctx.ComponentPoolSize(ID[health](e)), "previous instance is pooled")
}

func TestEntityRefreshKeepsInstance(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{HP: 1}))
	inst, _ := Get[health](e)

	var calls int
	e.OnComponentReplaced().Add(func(_ *Entity, _ ComponentID, p, n any) {
		calls++
		assert.Same(t, inst, p)
		assert.Same(t, inst, n)
	})

	require.NoError(t, Update(e, func(h *health) { h.HP = 9 }))
	require.NoError(t, Refresh[health](e))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 9, inst.HP)
	assert.Equal(t, 0, ctx.ComponentPoolSize(ID[health](e)))
	assert.ErrorIs(t, Refresh[position](e), ErrComponentNotFound)
}

func TestEntityComponentInstancesAreRecycled(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()

	require.NoError(t, Add(e, health{HP: 1}))
	first, _ := Get[health](e)
	require.NoError(t, Remove[health](e))
	assert.False(t, Has[health](e))
	assert.Equal(t, 1, ctx.ComponentPoolSize(ID[health](e)))

	require.NoError(t, Add(e, health{HP: 7}))
	second, _ := Get[health](e)
	assert.Same(t, first, second)
	assert.Equal(t, 7, second.HP, "recycled instance is re-initialised")
	assert.Equal(t, 0, ctx.ComponentPoolSize(ID[health](e)))
}

func TestEntityRemovedEventCarriesPreviousInstance(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, label{Text: "a"}))

	var got any
	e.OnComponentRemoved().Add(func(_ *Entity, _ ComponentID, c any) { got = c })
	require.NoError(t, Remove[label](e))

	l, ok := got.(*label)
	require.True(t, ok)
	assert.Equal(t, "a", l.Text)
}

func TestEntityHasComponents(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, position{}))
	require.NoError(t, Add(e, velocity{}))
	p, v, h := ID[position](e), ID[velocity](e), ID[health](e)

	assert.True(t, e.HasComponents(ComponentIDList{p, v}))
	assert.False(t, e.HasComponents(ComponentIDList{p, h}))
	assert.True(t, e.HasComponents(nil))
	assert.True(t, e.HasAnyComponent(ComponentIDList{h, v}))
	assert.False(t, e.HasAnyComponent(ComponentIDList{h}))
	assert.False(t, e.HasAnyComponent(nil))
	assert.Equal(t, ComponentIDList{p, v}, e.ComponentIDs())
	assert.Len(t, e.Components(), 2)
}

func TestEntityRemoveAllComponents(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, position{}))
	require.NoError(t, Add(e, velocity{}))
	require.NoError(t, Add(e, health{}))

	var removed []ComponentID
	e.OnComponentRemoved().Add(func(_ *Entity, id ComponentID, _ any) { removed = append(removed, id) })
	require.NoError(t, e.RemoveAllComponents())

	assert.Len(t, removed, 3)
	assert.Equal(t, 0, e.ComponentCount())
}

func TestEntityRejectsNonPointerComponents(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	id := IDFor[health](ctx.Registry())

	assert.ErrorIs(t, e.AddComponent(id, health{}), ErrInvalidComponent)
	assert.ErrorIs(t, e.AddComponent(id, nil), ErrInvalidComponent)
	assert.ErrorIs(t, e.AddComponent(id, (*health)(nil)), ErrInvalidComponent)
	assert.ErrorIs(t, e.AddComponent(id, &label{}), ErrInvalidComponent, "type registered under another id")
	assert.ErrorIs(t, e.AddComponent(ComponentID(99), &health{}), ErrInvalidComponent, "unregistered id")
	assert.NoError(t, e.AddComponent(id, &health{HP: 1}))
	assert.ErrorIs(t, e.ReplaceComponent(id, &label{}), ErrInvalidComponent)
}

func TestDisabledEntityRejectsMutation(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, health{}))
	require.NoError(t, e.Retain(t))
	require.NoError(t, ctx.DestroyEntity(e))

	assert.False(t, e.IsEnabled())
	assert.ErrorIs(t, Add(e, position{}), ErrEntityDisabled)
	assert.ErrorIs(t, Replace(e, health{}), ErrEntityDisabled)
	assert.ErrorIs(t, Remove[health](e), ErrEntityDisabled)
	_, err := Get[health](e)
	assert.ErrorIs(t, err, ErrEntityDisabled)
	assert.ErrorIs(t, e.RemoveAllComponents(), ErrEntityDisabled)
}

func TestEntityRetainRelease(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	owner := &struct{ name string }{"system"}

	require.NoError(t, e.Retain(owner))
	assert.ErrorIs(t, e.Retain(owner), ErrAlreadyRetained)
	assert.True(t, e.IsRetainedBy(owner))
	assert.Equal(t, 1, e.RetainCount())

	require.NoError(t, e.Release(owner))
	assert.ErrorIs(t, e.Release(owner), ErrNotRetained)
	assert.Equal(t, 0, e.RetainCount())
	assert.True(t, e.IsEnabled(), "releasing a live entity does not recycle it")
	assert.Equal(t, 0, ctx.ReusableEntitiesCount())
}

func TestEntityString(t *testing.T) {
	ctx := newTestContext(t)
	e := ctx.CreateEntity()
	require.NoError(t, Add(e, velocity{}))
	require.NoError(t, Add(e, position{}))

	assert.Equal(t, "Entity_1(velocity, position)", e.String())
}
