package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type ping struct{ N int }

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{N: 1})
	Emit(b, ping{N: 2})
	b.DispatchAll()
	assert.Empty(t, got, "events are not visible before the swap")

	b.SwapBuffers()
	assert.Equal(t, 2, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got)
	assert.Zero(t, b.Pending())

	b.DispatchAll()
	assert.Equal(t, []int{1, 2}, got, "events are delivered once")
}

func TestBusKeepsTypesApart(t *testing.T) {
	b := NewBus()
	var pings, created int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(EntityCreated) { created++ })

	Emit(b, ping{})
	Emit(b, EntityCreated{})
	Emit(b, EntityCreated{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, pings)
	assert.Equal(t, 2, created)
}

func TestObserveMirrorsContextLifecycle(t *testing.T) {
	r := ecs.NewRegistry()
	ctx := ecs.NewContext(ecs.WithRegistry(r), ecs.WithName("game"))
	b := NewBus()
	detach := Observe(ctx, b)

	var created []EntityCreated
	var destroyed []EntityDestroyed
	var groups []string
	Subscribe(b, func(ev EntityCreated) { created = append(created, ev) })
	Subscribe(b, func(ev EntityDestroyed) { destroyed = append(destroyed, ev) })
	Subscribe(b, func(ev GroupCreated) { groups = append(groups, "created "+ev.Matcher) })
	Subscribe(b, func(ev GroupCleared) { groups = append(groups, "cleared "+ev.Matcher) })

	type marker struct{ On bool }
	e := ctx.CreateEntity()
	require.NoError(t, ecs.Add(e, marker{On: true}))
	ctx.GetGroup(ecs.AllOf(ecs.IDFor[marker](r)))
	require.NoError(t, ctx.DestroyEntity(e))
	ctx.ClearGroups()

	b.SwapBuffers()
	b.DispatchAll()

	require.Len(t, created, 1)
	assert.Equal(t, "game", created[0].Context)
	assert.Equal(t, uint32(1), created[0].ID)
	require.Len(t, destroyed, 1)
	assert.Equal(t, 1, destroyed[0].Components)
	assert.False(t, destroyed[0].Retained)
	assert.Equal(t, []string{"created ALL(marker)", "cleared ALL(marker)"}, groups)

	detach()
	ctx.CreateEntity()
	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, created, 1)
}
