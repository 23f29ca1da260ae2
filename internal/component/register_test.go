package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/prefab"
)

func TestRegisterExposesNames(t *testing.T) {
	r := ecs.NewRegistry()
	Register(r)

	assert.Equal(t, 5, r.Count())
	for _, name := range []string{"position", "velocity", "lifetime", "expired", "label"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, name)
	}
	id, ok := r.Lookup("velocity")
	require.True(t, ok)
	assert.Equal(t, ecs.IDFor[Velocity](r), id)
}

func TestBindBuildsDemoPrefab(t *testing.T) {
	spec, err := prefab.Parse([]byte(`
name: mover
components:
  position: {x: 1, y: 2}
  velocity: {x: 0.5, y: -1}
  lifetime: {frames: 3}
  label: {text: scout}
`), "")
	require.NoError(t, err)

	r := ecs.NewRegistry()
	Register(r)
	b := prefab.NewBuilder()
	Bind(b)
	for _, name := range []string{"position", "velocity", "lifetime", "expired", "label"} {
		assert.True(t, b.Knows(name), name)
	}

	e, err := b.Build(ecs.NewContext(ecs.WithRegistry(r)), spec)
	require.NoError(t, err)
	p, err := ecs.Get[Position](e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: 2}, *p)
	v, err := ecs.Get[Velocity](e)
	require.NoError(t, err)
	assert.Equal(t, Velocity{X: 0.5, Y: -1}, *v)
	lt, err := ecs.Get[Lifetime](e)
	require.NoError(t, err)
	assert.Equal(t, 3, lt.Frames)
	l, err := ecs.Get[Label](e)
	require.NoError(t, err)
	assert.Equal(t, "scout", l.Text)
	assert.False(t, ecs.Has[Expired](e))
}
