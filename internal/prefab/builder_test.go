package prefab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type tag struct{}

type hp struct {
	Max int `yaml:"max"`
}

const moverYAML = `
name: mover
components:
  point: {x: 1.5, y: -2}
  hp:
    max: 30
  tag:
`

func newBuilder() *Builder {
	b := NewBuilder()
	Register[point](b, "point")
	Register[tag](b, "tag")
	Register[hp](b, "hp")
	return b
}

func newContext() *ecs.Context {
	return ecs.NewContext(ecs.WithRegistry(ecs.NewRegistry()))
}

func TestParseAndBuild(t *testing.T) {
	spec, err := Parse([]byte(moverYAML), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "mover", spec.Name)
	assert.Equal(t, []string{"hp", "point", "tag"}, spec.ComponentNames())

	ctx := newContext()
	e, err := newBuilder().Build(ctx, spec)
	require.NoError(t, err)

	p, err := ecs.Get[point](e)
	require.NoError(t, err)
	assert.Equal(t, point{X: 1.5, Y: -2}, *p)
	h, err := ecs.Get[hp](e)
	require.NoError(t, err)
	assert.Equal(t, 30, h.Max)
	assert.True(t, ecs.Has[tag](e))
}

func TestParseUsesFallbackName(t *testing.T) {
	spec, err := Parse([]byte("components:\n  tag:\n"), "beacon")
	require.NoError(t, err)
	assert.Equal(t, "beacon", spec.Name)

	_, err = Parse([]byte("components: {}"), "")
	assert.Error(t, err)

	_, err = Parse([]byte("components: [1, 2"), "broken")
	assert.ErrorContains(t, err, "parse prefab broken")
}

func TestBuildRejectsUnknownComponents(t *testing.T) {
	spec, err := Parse([]byte("name: x\ncomponents:\n  wings: {}\n"), "")
	require.NoError(t, err)

	ctx := newContext()
	_, err = newBuilder().Build(ctx, spec)
	assert.ErrorContains(t, err, `unknown component "wings"`)
	assert.Equal(t, 0, ctx.Count(), "no entity is created")
}

func TestBuildDestroysEntityOnDecodeError(t *testing.T) {
	spec, err := Parse([]byte("name: bad\ncomponents:\n  point: {x: [1]}\n  tag:\n"), "")
	require.NoError(t, err)

	ctx := newContext()
	_, err = newBuilder().Build(ctx, spec)
	assert.ErrorContains(t, err, "component point")
	assert.Equal(t, 0, ctx.Count())
}

func TestLibraryAndSpawner(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mover.yaml"), []byte(moverYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beacon.yml"), []byte("components:\n  tag:\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	lib, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"beacon", "mover"}, lib.Names())

	ctx := newContext()
	s := NewSpawner(ctx, lib, newBuilder())
	e, err := s.Spawn("beacon")
	require.NoError(t, err)
	assert.True(t, ecs.Has[tag](e))

	_, err = s.Spawn("ghost")
	assert.Error(t, err)

	// a broken reload keeps the previous specs
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("components:\n  wings:\n"), 0o644))
	assert.Error(t, s.Reload())
	assert.Equal(t, 2, lib.Count())

	require.NoError(t, os.Remove(filepath.Join(dir, "bad.yaml")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte("components:\n  hp: {max: 1}\n"), 0o644))
	require.NoError(t, s.Reload())
	assert.Equal(t, []string{"beacon", "extra", "mover"}, lib.Names())
}

func TestLoadDirMissingIsEmpty(t *testing.T) {
	lib, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Zero(t, lib.Count())
}

func TestLoadDirRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: same\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: same\n"), 0o644))
	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, "duplicate prefab")
}
